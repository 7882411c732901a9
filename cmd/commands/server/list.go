package server

import (
	"fmt"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Long: `List servers, optionally only those whose name starts with --prefix.

Examples:
  flexctl server list
  flexctl server list --prefix agent-
  flexctl server list -o json`,
		Run: runList,
	}

	cmd.Flags().String("prefix", "", "Only list servers whose name starts with this prefix")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		cmdutil.PrintError(cmd, fmt.Errorf("unsupported output format %q", output))
		return
	}
	prefix, _ := cmd.Flags().GetString("prefix")

	sess, err := cmdutil.OpenSession(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer sess.Close()

	servers, err := sess.Compute.GetServers(cmd.Context(), prefix)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error listing servers: %v\n", err)
		return
	}

	if output == "json" {
		cmdutil.PrintJSON(cmd.OutOrStdout(), servers)
		return
	}

	if len(servers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No servers found.")
		return
	}
	printServerTable(cmd.OutOrStdout(), servers)
}
