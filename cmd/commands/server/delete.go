package server

import (
	"errors"
	"fmt"
	"os"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a server",
		Long: `Delete a server together with its disks and NICs.

In a terminal the server is shown and confirmation is requested unless
--yes is given. Non-interactive invocations must pass --yes.

Examples:
  flexctl server delete --id 0d6e0c3b-5f7a-4c1e-9b8a-2f1d3c4b5a69
  flexctl server delete --id 0d6e0c3b-5f7a-4c1e-9b8a-2f1d3c4b5a69 --yes`,
		Run: runDelete,
	}

	cmd.Flags().String("id", "", "Server UUID to delete (required)")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.MarkFlagRequired("id")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) {
	serverID, _ := cmd.Flags().GetString("id")
	if err := cmdutil.ValidateUUID("id", serverID); err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	yes, _ := cmd.Flags().GetBool("yes")
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if !yes && !interactive {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: refusing to delete without confirmation; pass --yes")
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

	server, err := sess.Compute.GetServer(ctx, serverID)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	if server == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: server %s not found\n", serverID)
		return
	}

	accessible := os.Getenv("ACCESSIBLE") != ""
	if !yes {
		confirmed := false
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("Delete server %q (%s)?", server.Name, server.ID)).
			Description("Disks and NICs attached to the server are deleted as well.").
			Affirmative("Yes, delete").
			Negative("Cancel").
			Value(&confirmed)
		err := huh.NewForm(huh.NewGroup(confirm)).WithAccessible(accessible).Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			cmdutil.PrintError(cmd, err)
			return
		}
		if !confirmed {
			fmt.Fprintln(cmd.ErrOrStderr(), "Server deletion cancelled.")
			return
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Deleting server %q (ID: %s)...\n", server.Name, server.ID)

	if interactive {
		var deleteErr error
		spinErr := spinner.New().
			Title("Deleting server...").
			Accessible(accessible).
			Output(cmd.ErrOrStderr()).
			Action(func() {
				deleteErr = sess.Compute.DeleteServerRecord(ctx, server)
			}).
			Run()
		if spinErr != nil {
			cmdutil.PrintError(cmd, spinErr)
			return
		}
		err = deleteErr
	} else {
		err = sess.Compute.DeleteServerRecord(ctx, server)
	}

	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error deleting server: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server %q (ID: %s) deleted successfully.\n", server.Name, server.ID)
}
