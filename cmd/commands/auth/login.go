package auth

import (
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/services/auth"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <api-user>",
		Short: "Store the API password for a user",
		Long: `Store the API password for a user in the local keychain and make that
user the default for later commands.

The API user has the form customerUUID/login.

Example:
  flexctl auth login 6a1c2e9f-0000-4000-8000-000000000001/ops@example.com`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			apiUser := strings.TrimSpace(args[0])
			if err := config.Lookup("api-user").Validate(apiUser); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return
			}

			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Enter API password: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return
				}
				password = strings.TrimSpace(string(bytes))
			}

			if password == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: password cannot be empty")
				return
			}

			if err := auth.DefaultStore().SetPassword(apiUser, password); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return
			}

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return
			}
			cfg.APIUser = apiUser
			if err := cfg.Save(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved password for %s\n", apiUser)
		},
	}

	cmd.Flags().String("password", "", "API password (optional, overrides prompt)")

	return cmd
}
