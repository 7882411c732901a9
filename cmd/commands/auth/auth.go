package auth

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
		Long: `Manage API credentials.

Use this command group to store the Extility API password for a user
securely in the OS keychain.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())

	return cmd
}
