package cmd

import (
	"fmt"
	"os"

	"nathanbeddoewebdev/flexctl/cmd/commands/auth"
	"nathanbeddoewebdev/flexctl/cmd/commands/catalog"
	cfgcmd "nathanbeddoewebdev/flexctl/cmd/commands/config"
	"nathanbeddoewebdev/flexctl/cmd/commands/driver"
	"nathanbeddoewebdev/flexctl/cmd/commands/jobs"
	"nathanbeddoewebdev/flexctl/cmd/commands/probe"
	"nathanbeddoewebdev/flexctl/cmd/commands/server"
	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/obs/logging"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "flexctl",
		Short: "A CLI tool for managing Flexiant / Extility compute resources",
		Long: `flexctl manages servers on a Flexiant / Extility cloud and drives
provisioning of management and service machines from a cloud description.

Quick start:
  flexctl config set endpoint https://api.example.com:4442/user/
  flexctl auth login <customer-uuid>/<login>
  flexctl server list
  flexctl driver validate --cloud cloud.yaml`,
		PersistentPreRunE: setupLogger,
	}

	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (console, json)")

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(server.NewCommand())
	cmd.AddCommand(catalog.NewCommand())
	cmd.AddCommand(driver.NewCommand())
	cmd.AddCommand(jobs.NewCommand())
	cmd.AddCommand(probe.NewCommand())

	return cmd
}

// setupLogger resolves the logging configuration (flag, then environment,
// then config file, then default) and installs the logger in the command
// context.
func setupLogger(cmd *cobra.Command, args []string) error {
	lc := logging.Config{Level: "warn", Format: "console"}

	if cfg, err := config.Load(); err == nil {
		if cfg.LogLevel != "" {
			lc.Level = cfg.LogLevel
		}
		if cfg.LogFormat != "" {
			lc.Format = cfg.LogFormat
		}
	}
	if v := os.Getenv(logging.EnvLevel); v != "" {
		lc.Level = v
	}
	if v := os.Getenv(logging.EnvFormat); v != "" {
		lc.Format = v
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		lc.Level = f.Value.String()
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil && f.Changed {
		lc.Format = f.Value.String()
	}

	log, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	cmd.SetContext(logr.NewContext(cmd.Context(), log.WithName("flexctl")))
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
