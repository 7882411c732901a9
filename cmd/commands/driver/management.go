package driver

import (
	"fmt"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/driver"

	"github.com/spf13/cobra"
)

func BootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create and start the management machines",
		Long: `Create and start the management machines one after another. Refuses to
run while any server already carries the management group prefix. When a
machine fails, all management machines are torn down again.

Examples:
  flexctl driver bootstrap --cloud cloud.yaml
  flexctl driver bootstrap --cloud cloud.yaml --count 3 --timeout 30m`,
		Run: runBootstrap,
	}

	cmd.Flags().Int("count", 0, "Number of machines (defaults to provider.numberOfManagementMachines)")
	cmd.Flags().Duration("timeout", 30*time.Minute, "Time allowed for creating all machines (0 for no limit)")

	return cmd
}

func runBootstrap(cmd *cobra.Command, args []string) {
	count, _ := cmd.Flags().GetInt("count")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	d, closeFn, err := openDriver(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer closeFn()
	if err := d.SetConfig(driver.Config{Management: true}); err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	machines, err := d.StartManagementMachines(cmd.Context(), driver.ManagementProvisioningContext{Count: count}, timeout)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started %d management machine(s):\n", len(machines))
	for _, md := range machines {
		printMachine(cmd, md)
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

func TeardownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete every management machine",
		Long: `Delete every server carrying the management group prefix, stopping at
the first failure.

Example:
  flexctl driver teardown --cloud cloud.yaml`,
		Run: func(cmd *cobra.Command, args []string) {
			d, closeFn, err := openDriver(cmd)
			if err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}
			defer closeFn()

			if err := d.StopManagementMachines(cmd.Context()); err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Management machines stopped.")
		},
	}

	return cmd
}

func ListManagementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-management",
		Short: "List the existing management machines",
		Long: `List the servers carrying the management group prefix.

Examples:
  flexctl driver list-management --cloud cloud.yaml
  flexctl driver list-management --cloud cloud.yaml -o json`,
		Run: runListManagement,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runListManagement(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		cmdutil.PrintError(cmd, fmt.Errorf("unsupported output format %q", output))
		return
	}

	d, closeFn, err := openDriver(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer closeFn()

	machines, err := d.GetExistingManagementServers(cmd.Context())
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	if output == "json" {
		cmdutil.PrintJSON(cmd.OutOrStdout(), machines)
		return
	}
	if len(machines) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No management machines found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MACHINE ID\tTEMPLATE\tADDRESS\tUSER")
	fmt.Fprintln(w, "----------\t--------\t-------\t----")
	for _, md := range machines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", md.MachineID, md.TemplateName, md.PublicAddress, md.RemoteUsername)
	}
	w.Flush()
}
