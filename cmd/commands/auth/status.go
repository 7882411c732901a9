package auth

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/services/auth"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the configured API user is logged in",
		Long: `Show the configured endpoint and API user, and whether a password is
stored for that user.

Example:
  flexctl auth status`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				cmdutil.PrintError(cmd, fmt.Errorf("failed to load config: %w", err))
				return
			}

			out := cmd.OutOrStdout()
			endpoint := cfg.Endpoint
			if endpoint == "" {
				endpoint = "(not set)"
			}
			fmt.Fprintf(out, "endpoint: %s\n", endpoint)

			if cfg.APIUser == "" {
				fmt.Fprintln(out, "api-user: (not set)")
				return
			}

			_, err = auth.DefaultStore().GetPassword(cfg.APIUser)
			switch {
			case err == nil:
				fmt.Fprintf(out, "%s: logged in\n", cfg.APIUser)
			case errors.Is(err, auth.ErrPasswordNotFound):
				fmt.Fprintf(out, "%s: not logged in\n", cfg.APIUser)
			default:
				fmt.Fprintf(out, "%s: error (%v)\n", cfg.APIUser, err)
			}
		},
		SilenceUsage: true,
	}

	return cmd
}
