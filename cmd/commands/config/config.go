package config

import (
	"nathanbeddoewebdev/flexctl/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage flexctl configuration",
		Long: "View and modify persistent flexctl settings.\n\n" +
			"Configuration is stored at ~/.config/flexctl/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
