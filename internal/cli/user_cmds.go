package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
	"github.com/openshelf/libctl/internal/core/service"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (librarian)",
	}
	cmd.AddCommand(
		newUsersListCmd(app),
		newUsersShowCmd(app),
		newUsersCreateCmd(app),
		newUsersUpdateCmd(app),
		newUsersDeactivateCmd(app),
		newUsersDeleteCmd(app),
	)
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	var page ports.PageRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			result, err := app.client.ListUsers(cmd.Context(), page)
			if err != nil {
				return err
			}
			printUsers(result.Content)
			fmt.Printf("\nPage %d of %d (%d users total)\n", page.Page+1, result.TotalPages, result.TotalElements)
			return nil
		},
	}
	addPageFlags(cmd, &page)
	return cmd
}

func newUsersShowCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}

			var user *domain.User
			var err error
			switch {
			case len(args) == 1:
				user, err = app.client.GetUser(cmd.Context(), args[0])
			case email != "":
				user, err = app.client.GetUserByEmail(cmd.Context(), email)
			default:
				return fmt.Errorf("give a user id or --email")
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s %s (@%s)\n", user.Name, user.Surname, user.Username)
			fmt.Printf("  ID:     %s\n", user.ID)
			fmt.Printf("  Email:  %s\n", user.Email)
			fmt.Printf("  Role:   %s\n", user.Role)
			fmt.Printf("  Status: %s\n", user.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "look up by email instead of id")
	return cmd
}

// userFormInput is validated locally before any account mutation.
type userFormInput struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"omitempty,min=6"`
	Name     string `validate:"required"`
	Surname  string `validate:"required"`
	Role     string `validate:"required,oneof=PATRON LIBRARIAN"`
	Status   string `validate:"required,oneof=ACTIVE INACTIVE"`
}

func addUserFormFlags(cmd *cobra.Command, input *userFormInput) {
	cmd.Flags().StringVar(&input.Username, "username", "", "account username")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password")
	cmd.Flags().StringVar(&input.Name, "name", "", "given name")
	cmd.Flags().StringVar(&input.Surname, "surname", "", "family name")
	cmd.Flags().StringVar(&input.Role, "role", string(domain.RolePatron), "PATRON or LIBRARIAN")
	cmd.Flags().StringVar(&input.Status, "status", string(domain.UserActive), "ACTIVE or INACTIVE")
}

func (i userFormInput) toPort() ports.UserInput {
	return ports.UserInput{
		Username: i.Username,
		Email:    i.Email,
		Password: i.Password,
		Name:     i.Name,
		Surname:  i.Surname,
		Role:     domain.Role(i.Role),
		Status:   domain.UserStatus(i.Status),
	}
}

func newUsersCreateCmd(app *App) *cobra.Command {
	input := userFormInput{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if input.Password == "" {
				return fmt.Errorf("password is required")
			}
			if err := validateInput(input); err != nil {
				return err
			}
			user, err := app.client.CreateUser(cmd.Context(), input.toPort())
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (ID %s)\n", user.Username, user.ID)
			return nil
		},
	}
	addUserFormFlags(cmd, &input)
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	input := userFormInput{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := validateInput(input); err != nil {
				return err
			}
			user, err := app.client.UpdateUser(cmd.Context(), args[0], input.toPort())
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", user.Username)
			return nil
		},
	}
	addUserFormFlags(cmd, &input)
	return cmd
}

func newUsersDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			user, err := app.client.DeactivateUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deactivated %s\n", user.Username)
			return nil
		},
	}
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := app.client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted user %s\n", args[0])
			return nil
		},
	}
}

func printUsers(users []domain.User) {
	if len(users) == 0 {
		fmt.Println("No users.")
		return
	}

	fmt.Printf("%-38s %-18s %-28s %-11s %s\n", "ID", "Username", "Email", "Role", "Status")
	fmt.Println(strings.Repeat("-", 105))
	for _, u := range users {
		fmt.Printf("%-38s %-18s %-28s %-11s %s\n",
			u.ID,
			truncate(u.Username, 18),
			truncate(u.Email, 28),
			u.Role,
			u.Status)
	}
}
