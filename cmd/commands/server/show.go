package server

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/domain"

	"github.com/spf13/cobra"
)

// ShowCommand returns a cobra.Command that displays details for a single server.
func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show details for a server",
		Long: `Display detailed information about a single server, found either by
UUID or by IP address.

Examples:
  flexctl server show --id 0d6e0c3b-5f7a-4c1e-9b8a-2f1d3c4b5a69
  flexctl server show --ip 10.0.0.12 --prefix agent-
  flexctl server show --ip 10.0.0.12 -o json`,
		Run:          runShow,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Server UUID")
	cmd.Flags().String("ip", "", "Server IP address")
	cmd.Flags().String("prefix", "", "Restrict the IP search to servers whose name starts with this prefix")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("id", "ip")
	cmd.MarkFlagsOneRequired("id", "ip")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	ip, _ := cmd.Flags().GetString("ip")
	prefix, _ := cmd.Flags().GetString("prefix")
	output, _ := cmd.Flags().GetString("output")

	if id != "" {
		if err := cmdutil.ValidateUUID("id", id); err != nil {
			cmdutil.PrintError(cmd, err)
			return
		}
	}

	sess, err := cmdutil.OpenSession(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer sess.Close()

	var server *domain.Server
	if id != "" {
		server, err = sess.Compute.GetServer(cmd.Context(), id)
	} else {
		server, err = sess.Compute.GetServerByIP(cmd.Context(), ip, prefix)
	}
	if err != nil {
		cmdutil.PrintError(cmd, fmt.Errorf("failed to fetch server: %w", err))
		return
	}
	if server == nil {
		cmdutil.PrintError(cmd, errors.New("server not found"))
		return
	}

	switch output {
	case "json":
		cmdutil.PrintJSON(cmd.OutOrStdout(), server)
	case "table":
		printServerDetail(cmd.OutOrStdout(), server)
	default:
		cmdutil.PrintError(cmd, fmt.Errorf("unsupported output format %q", output))
	}
}
