package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export <checkID>",
	Short: "Write a check's completions as CSV or XLSX into the export directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		format, _ := cmd.Flags().GetString("format")
		blobs, err := storage.NewFSStore(dir)
		if err != nil {
			return err
		}
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		u, n, err := exportCompletions(ctx, check.NewSQLStore(dbh, cfg.DBDriver), blobs, args[0], format, time.Now())
		if err != nil {
			return err
		}
		slog.Info("exported completions", "check_id", args[0], "rows", n, "url", u)
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("dir", "./exports", "Directory to write exports into")
	exportCmd.Flags().String("format", "csv", "csv or xlsx")
	rootCmd.AddCommand(exportCmd)
}

var exportWriters = map[string]func(io.Writer, []check.Completion) error{
	"csv":  check.WriteCSV,
	"xlsx": check.WriteXLSX,
}

func exportCompletions(ctx context.Context, store check.Store, blobs storage.BlobStore, checkID, format string, now time.Time) (string, int, error) {
	write, ok := exportWriters[format]
	if !ok {
		return "", 0, fmt.Errorf("unknown export format %q", format)
	}
	if _, err := store.GetCheck(ctx, checkID); err != nil {
		return "", 0, fmt.Errorf("export %s: %w", checkID, err)
	}
	list, err := store.ListCompletions(ctx, checkID)
	if err != nil {
		return "", 0, err
	}
	var buf bytes.Buffer
	if err := write(&buf, list); err != nil {
		return "", 0, err
	}
	key, err := blobs.Put(fmt.Sprintf("%s/%s.%s", checkID, now.UTC().Format("20060102T150405Z"), format), &buf)
	if err != nil {
		return "", 0, err
	}
	u, err := blobs.URL(key)
	return u, len(list), err
}
