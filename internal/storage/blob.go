// Package storage keeps exported result files.
package storage

import (
	"errors"
	"io"
)

var ErrBadKey = errors.New("storage: invalid key")

type BlobStore interface {
	// Put stores r under key and returns the key it was stored as.
	Put(key string, r io.Reader) (string, error)
	Get(key string) (io.ReadCloser, error)
	// URL points at the stored object; file:// for the local store.
	URL(key string) (string, error)
}
