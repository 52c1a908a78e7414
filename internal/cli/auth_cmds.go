package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openshelf/libctl/internal/core/ports"
)

// readPassword reads a password from the terminal with echo disabled.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func newLoginCmd(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate against the catalog service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				return fmt.Errorf("username is required")
			}

			password, err := readPassword(fmt.Sprintf("Password for %s: ", username))
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			if !app.session.Login(cmd.Context(), username, password) {
				return fmt.Errorf("%s", app.session.Snapshot().LoginError)
			}

			identity := app.session.Snapshot().Identity
			fmt.Printf("Logged in as %s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			app.session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// registerInput is validated locally before the request goes out.
type registerInput struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required"`
	Surname  string `validate:"required"`
}

func newRegisterCmd(app *App) *cobra.Command {
	input := registerInput{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new patron account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword("Choose a password: ")
			if err != nil {
				return err
			}
			input.Password = password

			if err := validateInput(input); err != nil {
				return err
			}

			ok := app.session.Register(cmd.Context(), ports.RegisterInput{
				Username: input.Username,
				Email:    input.Email,
				Password: input.Password,
				Name:     input.Name,
				Surname:  input.Surname,
			})
			if !ok {
				return fmt.Errorf("%s", app.session.Snapshot().RegisterError)
			}

			// Registration never logs the account in.
			fmt.Printf("Account %s created. Run `libctl login %s` to sign in.\n", input.Username, input.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&input.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&input.Name, "name", "", "given name")
	cmd.Flags().StringVar(&input.Surname, "surname", "", "family name")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			state := app.session.Snapshot()
			if !state.IsAuthenticated {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s (%s)\n", state.Identity.Username, state.Identity.Role)
			return nil
		},
	}
}
