package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user account",
	Long: `Create a user account with an empty gallery.

The password is read from --password or, when absent, prompted for
without echo.

Examples:
  folio user add alice
  folio user add bob --password s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var userAddPassword string

func init() {
	userAddCmd.Flags().StringVarP(&userAddPassword, "password", "p", "", "account password (prompted when empty)")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	username := strings.TrimSpace(args[0])

	password := userAddPassword
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return handlePromptError(err)
		}
		if password == "" {
			return nil
		}
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.service.Register(ctx, username, password)
	if errors.Is(err, folio.ErrUsernameTaken) {
		return fmt.Errorf("user %q already exists", username)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %q\n", user.Username)
	return nil
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if err != nil {
		return "", err
	}

	confirm := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
	}
	again, err := confirm.Run()
	if err != nil {
		return "", err
	}
	if again != password {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
