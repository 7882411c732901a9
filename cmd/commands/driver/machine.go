package driver

import (
	"fmt"
	"time"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/driver"

	"github.com/spf13/cobra"
)

func StartMachineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-machine",
		Short: "Create and start one agent machine",
		Long: `Create and start one agent machine from a template. The machine is named
<machineNamePrefix><service>-<n>, where n counts the machines started by
this driver.

Example:
  flexctl driver start-machine --cloud cloud.yaml --template SMALL_LINUX --service web`,
		Run: runStartMachine,
	}

	cmd.Flags().String("template", "", "Template name (required)")
	cmd.Flags().String("service", "", "Service name embedded in the machine name (required)")
	cmd.Flags().Duration("timeout", 15*time.Minute, "Time allowed for the whole operation (0 for no limit)")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("service")

	return cmd
}

func runStartMachine(cmd *cobra.Command, args []string) {
	template, _ := cmd.Flags().GetString("template")
	service, _ := cmd.Flags().GetString("service")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	d, closeFn, err := openDriver(cmd)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	defer closeFn()

	if err := d.SetConfig(driver.Config{CloudTemplateName: template, ServiceName: service}); err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	md, err := d.StartMachine(cmd.Context(), driver.ProvisioningContext{}, timeout)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Machine started:")
	printMachine(cmd, *md)
}

func StopMachineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop-machine",
		Short: "Delete the machine with an IP address",
		Long: `Delete the machine whose first IPv4 address is --ip.

Example:
  flexctl driver stop-machine --cloud cloud.yaml --ip 10.0.0.12`,
		Run: func(cmd *cobra.Command, args []string) {
			ip, _ := cmd.Flags().GetString("ip")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			d, closeFn, err := openDriver(cmd)
			if err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}
			defer closeFn()

			if _, err := d.StopMachine(cmd.Context(), ip, timeout); err != nil {
				cmdutil.PrintError(cmd, err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Machine with ip %s stopped.\n", ip)
		},
	}

	cmd.Flags().String("ip", "", "IP address of the machine (required)")
	cmd.Flags().Duration("timeout", 15*time.Minute, "Time allowed for the whole operation (0 for no limit)")
	cmd.MarkFlagRequired("ip")

	return cmd
}
