package jobs

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished jobs older than a duration",
		Long: `Delete finished jobs older than a duration. Jobs still marked running
are kept.

Examples:
  flexctl jobs prune --older-than 30d
  flexctl jobs prune --older-than 72h`,
		Run:          runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "7d", "Remove jobs older than this duration (e.g. 30d, 72h)")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) {
	raw, _ := cmd.Flags().GetString("older-than")
	olderThan, err := cmdutil.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	svc, err := openService(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer svc.Close()

	removed, err := svc.Cleanup(olderThan)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s).\n", removed)
}
