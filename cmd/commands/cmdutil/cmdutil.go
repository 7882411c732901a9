// Package cmdutil holds helpers shared by the flexctl subcommands.
package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/flexctl/internal/config"
	"nathanbeddoewebdev/flexctl/internal/services/auth"
	"nathanbeddoewebdev/flexctl/internal/session"
)

// Logger returns the logger installed by the root command, or a discarding
// logger when the subcommand runs on its own (as in tests).
func Logger(cmd *cobra.Command) logr.Logger {
	return logr.FromContextOrDiscard(cmd.Context())
}

// OpenSession loads the user configuration and connects to the configured
// endpoint with the password stored for the configured API user.
func OpenSession(cmd *cobra.Command) (*session.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return session.Open(cfg, auth.DefaultStore(), session.Options{Log: Logger(cmd)})
}

// PrintError writes err to the command's stderr in the standard format.
func PrintError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}

// PrintJSON encodes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ValidateUUID rejects values that are not UUIDs, naming the flag in the error.
func ValidateUUID(flag, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", flag)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("--%s %q is not a valid UUID", flag, value)
	}
	return nil
}

// ParseDuration accepts Go durations plus a whole-day "Nd" form.
func ParseDuration(input string) (time.Duration, error) {
	if before, ok := strings.CutSuffix(input, "d"); ok {
		days, err := strconv.Atoi(before)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
