package jobs

import (
	"fmt"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/jobstore"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		Long: `List jobs recorded locally, newest first.

Jobs still marked running were interrupted before flexctl saw them finish;
their outcome is only known to the provider.

Examples:
  flexctl jobs list
  flexctl jobs list -n 50
  flexctl jobs list --running
  flexctl jobs list -o json`,
		Run:          runList,
		SilenceUsage: true,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of jobs to display")
	cmd.Flags().Bool("running", false, "Only show jobs still marked running")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		cmdutil.PrintError(cmd, fmt.Errorf("limit must be greater than 0"))
		return
	}
	running, _ := cmd.Flags().GetBool("running")
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		cmdutil.PrintError(cmd, fmt.Errorf("unsupported output format %q", output))
		return
	}

	svc, err := openService(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer svc.Close()

	var records []jobstore.JobRecord
	if running {
		records, err = svc.ListRunning()
		if len(records) > limit {
			records = records[:limit]
		}
	} else {
		records, err = svc.ListRecent(limit)
	}
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	if output == "json" {
		if records == nil {
			records = []jobstore.JobRecord{}
		}
		cmdutil.PrintJSON(cmd.OutOrStdout(), records)
		return
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMAND\tSTATUS\tDURATION\tJOB\tITEM\tERROR")
	fmt.Fprintln(w, "----\t-------\t------\t--------\t---\t----\t-----")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Command,
			r.Status,
			formatDuration(r),
			orDash(r.JobUUID),
			orDash(r.ItemUUID),
			orDash(r.ErrorMessage),
		)
	}
	w.Flush()
}

func formatDuration(r jobstore.JobRecord) string {
	if r.Status == jobstore.StatusRunning {
		return "-"
	}
	d := r.UpdatedAt.Sub(r.CreatedAt)
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
