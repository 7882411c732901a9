package server

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage servers",
		Long: `Create, list, start, stop and delete servers on the configured
Extility endpoint.

The endpoint and API user come from 'flexctl config'; the password comes
from 'flexctl auth login'.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(StartCommand())
	cmd.AddCommand(StopCommand())
	cmd.AddCommand(DeleteCommand())

	return cmd
}
