package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadChecks(t *testing.T) {
	dir := t.TempDir()

	one := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(one, []byte(`{"id":"a","title":"A","questions":[{"question":"Q?","correct":"x"}]}`), 0o600))
	got, err := readChecks(one)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Q?", got[0].Questions[0].Text)

	many := filepath.Join(dir, "many.json")
	require.NoError(t, os.WriteFile(many, []byte(`[{"id":"a"},{"id":"b","hint_empty":"Fill it"}]`), 0o600))
	got, err = readChecks(many)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fill it", got[1].EmptyHint)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`nope`), 0o600))
	_, err = readChecks(bad)
	assert.Error(t, err)
}
