package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/understanding-check/internal/check"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load checks from a JSON file (one check or an array)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		checks, err := readChecks(args[0])
		if err != nil {
			return err
		}
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		store := check.NewSQLStore(dbh, cfg.DBDriver)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		for _, c := range checks {
			if err := store.PutCheck(ctx, c); err != nil {
				return fmt.Errorf("import %s: %w", c.ID, err)
			}
			slog.Info("imported check", "id", c.ID, "questions", len(c.Questions))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d check(s)\n", len(checks))
		return nil
	},
}

func readChecks(path string) ([]check.Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var many []check.Check
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one check.Check
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []check.Check{one}, nil
}
