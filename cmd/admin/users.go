package main

import (
	"fmt"

	"chatservice/backend/internal/user"

	"github.com/spf13/cobra"
)

var userInput user.Input

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := deps.users.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		table := newTable("ID", "Email", "Role", "First name", "Last name", "Patronymic")
		for _, u := range users {
			table.Append([]string{u.ID, u.Email, u.Role, u.FirstName, u.LastName, u.Patronymic})
		}
		table.Render()
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create [id]",
	Short: "Create a user",
	Long: `Create a user. The id is normally issued by the identity provider and
must be a UUID; when omitted a new one is generated.

Example:
  admin users create --email driver@example.com --role Driver --first-name Dan`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		u, err := deps.users.CreateUser(cmd.Context(), id, userInput)
		if err != nil {
			return err
		}
		fmt.Printf("User %s created.\n", u.ID)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace the fields of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := deps.users.UpdateUser(cmd.Context(), args[0], userInput)
		if err != nil {
			return err
		}
		fmt.Printf("User %s updated.\n", u.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := deps.users.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("User %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		cmd.Flags().StringVar(&userInput.Email, "email", "", "email address (required)")
		cmd.Flags().StringVar(&userInput.Role, "role", "", "one of Administrator, FleetManager, Technician, InsuranceAgent, HrManager, Driver")
		cmd.Flags().StringVar(&userInput.FirstName, "first-name", "", "first name")
		cmd.Flags().StringVar(&userInput.LastName, "last-name", "", "last name")
		cmd.Flags().StringVar(&userInput.Patronymic, "patronymic", "", "patronymic")
	}
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
}
