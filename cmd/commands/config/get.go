package config

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/config"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Get a persistent configuration value, or list every value when no key\n" +
			"is given.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  flexctl config get              # list all values\n" +
			"  flexctl config get endpoint     # print a single value",
		Args:         cobra.MaximumNArgs(1),
		Run:          runGet,
		SilenceUsage: true,
	}

	return cmd
}

func runGet(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		cmdutil.PrintError(cmd, fmt.Errorf("failed to load config: %w", err))
		return
	}

	if len(args) == 0 {
		for _, spec := range config.Keys {
			value := spec.Get(cfg)
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", spec.Name, value)
		}
		return
	}

	spec := config.Lookup(args[0])
	if spec == nil {
		cmdutil.PrintError(cmd, fmt.Errorf("unknown configuration key %q (valid: %s)", args[0], strings.Join(config.KeyNames(), ", ")))
		return
	}

	value := spec.Get(cfg)
	if value == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "not set")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
}
