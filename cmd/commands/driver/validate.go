package driver

import (
	"fmt"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/driver"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every template against the provider",
		Long: `Check the location, image and hardware of every template in the cloud
description against the provider and report each finding.

Example:
  flexctl driver validate --cloud cloud.yaml`,
		Run: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) {
	d, closeFn, err := openDriver(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer closeFn()

	r := lipgloss.NewRenderer(cmd.OutOrStdout())
	badge := map[driver.Severity]lipgloss.Style{
		driver.SeverityOK:      r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		driver.SeverityWarning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		driver.SeverityError:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	label := r.NewStyle().Width(10)

	counts := map[driver.Severity]int{}
	report := driver.ValidationFunc(func(ev driver.ValidationEvent) {
		counts[ev.Severity]++
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			badge[ev.Severity].Render(fmt.Sprintf("%-7s", ev.Severity)),
			label.Render(ev.Check),
			ev.Message,
		)
	})

	err = d.ValidateCloudConfiguration(cmd.Context(), report)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d ok, %d warning(s), %d error(s)\n",
		counts[driver.SeverityOK], counts[driver.SeverityWarning], counts[driver.SeverityError])
	if err != nil {
		cmdutil.PrintError(cmd, err)
	}
}
