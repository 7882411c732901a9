// Package probe exposes the host CPU monitor as a one-shot reading or a
// Prometheus scrape endpoint.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nathanbeddoewebdev/flexctl/cmd/commands/cmdutil"
	"nathanbeddoewebdev/flexctl/internal/probe"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewCommand returns the "probe" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report host CPU time",
		Long: `Read the total CPU time of this host from procfs.

Without --listen the current value is printed in milliseconds. With --listen
a Prometheus endpoint is served at /metrics until interrupted.

Examples:
  flexctl probe
  flexctl probe --listen :9101`,
		SilenceUsage: true,
		Run:          runProbe,
	}

	cmd.Flags().String("listen", "", "Serve Prometheus metrics on this address")
	cmd.Flags().String("mount", "/proc", "Mount point of procfs")

	return cmd
}

func runProbe(cmd *cobra.Command, args []string) {
	listen, _ := cmd.Flags().GetString("listen")
	mount, _ := cmd.Flags().GetString("mount")

	p, err := probe.NewCPU(mount)
	if err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}

	if listen == "" {
		values, err := p.MonitorValues(cmd.Context())
		if err != nil {
			cmdutil.PrintError(cmd, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", probe.MetricTotalCPUTime, values[probe.MetricTotalCPUTime])
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, listen, NewMux(p)); err != nil {
		cmdutil.PrintError(cmd, err)
		return
	}
	cmdutil.Logger(cmd).Info("Probe endpoint stopped", "addr", listen)
}

// NewMux routes /metrics to the probe exporter.
func NewMux(p *probe.CPU) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", probe.Handler(p))
	return mux
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("probe endpoint: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
