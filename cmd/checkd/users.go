package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	auth "github.com/mind-engage/understanding-check/internal/auth/middleware"
)

var hashpwCmd = &cobra.Command{
	Use:               "hashpw <password>",
	Short:             "Print the bcrypt hash for ADMIN_PASS_HASH",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage experimenter accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		if role == "" {
			return errors.New("--role must not be empty")
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
		id, err := auth.NewUserStore(dbh).Create(ctx, args[0], args[1], role)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", args[0], role, id)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("role", "experimenter", "Account role (experimenter|admin)")
	userCmd.AddCommand(userAddCmd)
}
