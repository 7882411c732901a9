package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/compute"

	"github.com/spf13/cobra"
)

// StartCommand returns a cobra.Command that powers on a server.
func StartCommand() *cobra.Command {
	return powerCommand("start", "Start a server", `Power on a stopped server and wait for the provider job to finish.

Example:
  flexctl server start --id 0d6e0c3b-5f7a-4c1e-9b8a-2f1d3c4b5a69`,
		"Starting", "started", (*compute.Client).StartServer)
}

// StopCommand returns a cobra.Command that shuts a server down.
func StopCommand() *cobra.Command {
	return powerCommand("stop", "Stop a server", `Shut down a running server and wait for the provider job to finish.
The guest is asked to shut down cleanly.

Example:
  flexctl server stop --id 0d6e0c3b-5f7a-4c1e-9b8a-2f1d3c4b5a69`,
		"Stopping", "stopped", (*compute.Client).StopServer)
}

func powerCommand(use, short, long, progress, done string, op func(*compute.Client, context.Context, string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Run: func(cmd *cobra.Command, args []string) {
			serverID, _ := cmd.Flags().GetString("id")
			if err := cmdutil.ValidateUUID("id", serverID); err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}

			sess, err := cmdutil.OpenSession(cmd)
			if err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}
			defer sess.Close()

			ctx, cancel := interruptible(cmd)
			defer cancel()

			fmt.Fprintf(cmd.ErrOrStderr(), "%s server %s...\n", progress, serverID)
			if err := op(sess.Compute, ctx, serverID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server %s %s successfully.\n", serverID, done)
		},
	}

	cmd.Flags().String("id", "", "Server UUID (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

// interruptible returns a context cancelled on Ctrl+C. The provider job
// keeps running server-side; it stays in the job history as running.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
