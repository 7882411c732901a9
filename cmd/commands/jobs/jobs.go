package jobs

import (
	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/jobstore"
	"nathanbeddoewebdev/flexctl/internal/services/jobs"

	"github.com/spf13/cobra"
)

// NewCommand returns the "jobs" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "View and prune the local job history",
		Long: "View the provider jobs flexctl has submitted and prune old entries.\n\n" +
			"Job history is stored locally in ~/.config/flexctl/flexctl.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}

func openService(cmd *cobra.Command) (*jobs.Service, error) {
	repo, err := jobstore.Open()
	if err != nil {
		return nil, err
	}
	return jobs.NewService(repo, "", cmdutil.Logger(cmd)), nil
}
