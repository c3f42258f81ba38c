package main

import (
	"fmt"
	"time"

	"chatservice/backend/internal/auth"
	"chatservice/backend/internal/storage"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the development data set",
	Long: `Insert two administrator accounts, a chat between them and two messages.
Records that already exist are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.Seed(cmd.Context(), deps.store, time.Now(), deps.log); err != nil {
			return err
		}
		fmt.Println("Seed data in place.")
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <userId>",
	Short: "Issue an access token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := deps.users.GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		issuer := auth.NewIssuer(deps.cfg.JWTSecret, deps.cfg.JWTIssuer, deps.cfg.TokenTTL)
		token, err := issuer.Issue(u.ID, u.Role)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}
