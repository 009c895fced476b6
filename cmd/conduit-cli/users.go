package main

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/conduit/clientcli"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE:    runUsersList,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user. Missing --name or --email values are prompted for.

Examples:
  conduit-cli users create --name Ada --email ada@example.com
  conduit-cli users create`,
	Args: cobra.NoArgs,
	RunE: runUsersCreate,
}

var (
	createName  string
	createEmail string
)

func init() {
	usersCreateCmd.Flags().StringVar(&createName, "name", "", "user name")
	usersCreateCmd.Flags().StringVar(&createEmail, "email", "", "user email")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers(cmd.Context())
	if err != nil {
		return report(err)
	}

	return getFormatter().FormatUsers(os.Stdout, users)
}

func runUsersCreate(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	name := createName
	if strings.TrimSpace(name) == "" {
		prompt := promptui.Prompt{
			Label:    "Name",
			Validate: requireValue("name"),
		}
		if name, err = prompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	email := createEmail
	if strings.TrimSpace(email) == "" {
		prompt := promptui.Prompt{
			Label: "Email",
			Validate: func(input string) error {
				if err := requireValue("email")(input); err != nil {
					return err
				}
				if _, err := mail.ParseAddress(input); err != nil {
					return errors.New("invalid email address")
				}
				return nil
			},
		}
		if email, err = prompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	user, err := client.CreateUser(cmd.Context(), clientcli.CreateUserOptions{Name: name, Email: email})
	if err != nil {
		return report(err)
	}

	return getFormatter().FormatUser(os.Stdout, user)
}

func requireValue(field string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
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
