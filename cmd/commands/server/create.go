package server

import (
	"fmt"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/compute"
	"nathanbeddoewebdev/flexctl/internal/util"

	"github.com/spf13/cobra"
)

func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a server",
		Long: `Create a server from a product offer, disk product offer, VDC, network
and image, and wait until the provider has built it.

New servers are left stopped unless --start is given. The generated
initial password is printed once on success.

Example:
  flexctl server create --name agent-1 --offer <uuid> --disk-offer <uuid> \
    --vdc <uuid> --network <uuid> --image <uuid> --start`,
		Run: runCreate,
	}

	cmd.Flags().String("name", "", "Server name (required)")
	cmd.Flags().String("offer", "", "Server product offer UUID (required)")
	cmd.Flags().String("disk-offer", "", "Disk product offer UUID (required)")
	cmd.Flags().String("vdc", "", "VDC UUID (required)")
	cmd.Flags().String("network", "", "Network UUID (required)")
	cmd.Flags().String("image", "", "Image UUID (required)")
	cmd.Flags().Bool("start", false, "Start the server once it has been created")
	for _, name := range []string{"name", "offer", "disk-offer", "vdc", "network", "image"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) {
	flags := cmd.Flags()
	opts := compute.CreateServerOpts{}
	opts.Name, _ = flags.GetString("name")
	opts.ServerOffer, _ = flags.GetString("offer")
	opts.DiskOffer, _ = flags.GetString("disk-offer")
	opts.VDC, _ = flags.GetString("vdc")
	opts.Network, _ = flags.GetString("network")
	opts.Image, _ = flags.GetString("image")
	start, _ := flags.GetBool("start")

	if err := util.ValidateServerName(opts.Name); err != nil {
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

	fmt.Fprintf(cmd.ErrOrStderr(), "Creating server %q...\n", opts.Name)
	server, err := sess.Compute.CreateServer(ctx, opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error creating server: %v\n", err)
		return
	}

	if start {
		fmt.Fprintf(cmd.ErrOrStderr(), "Starting server %s...\n", server.ID)
		if err := sess.Compute.StartServerRecord(ctx, server); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error starting server: %v\n", err)
			return
		}
		if refreshed, err := sess.Compute.GetServer(ctx, server.ID); err == nil && refreshed != nil {
			refreshed.InitialPassword = server.InitialPassword
			server = refreshed
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Server created:")
	printServerDetail(cmd.OutOrStdout(), server)
	if server.InitialPassword != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  Initial password:  %s\n", server.InitialPassword)
	}
}
