// Package probe reads host CPU counters for monitoring.
package probe

import (
	"context"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

// MetricTotalCPUTime is the key reported by MonitorValues.
const MetricTotalCPUTime = "Total System CPU Time"

// CPU reports the cumulative CPU time of the host, summed over all CPUs and
// all modes, in milliseconds since boot.
type CPU struct {
	fs procfs.FS
}

// NewCPU returns a probe reading from the proc filesystem at mountPoint.
// An empty mountPoint selects /proc.
func NewCPU(mountPoint string) (*CPU, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("probe: failed to open %s: %w", mountPoint, err)
	}
	return &CPU{fs: fs}, nil
}

// MonitorValues returns {"Total System CPU Time": <milliseconds>}.
func (p *CPU) MonitorValues(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total, err := p.TotalMillis()
	if err != nil {
		return nil, err
	}
	return map[string]int64{MetricTotalCPUTime: total}, nil
}

// TotalMillis returns the summed CPU time in milliseconds. Guest time is
// already counted in user time and is not added again.
func (p *CPU) TotalMillis() (int64, error) {
	seconds, err := p.totalSeconds()
	if err != nil {
		return 0, err
	}
	return int64(math.Round(seconds * 1000)), nil
}

func (p *CPU) totalSeconds() (float64, error) {
	stat, err := p.fs.Stat()
	if err != nil {
		return 0, fmt.Errorf("probe: failed to read cpu stats: %w", err)
	}
	c := stat.CPUTotal
	return c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal, nil
}

var cpuTimeDesc = prometheus.NewDesc(
	"flexctl_system_cpu_time_seconds_total",
	"Total CPU time of the host summed over all CPUs and modes",
	nil, nil,
)

// Describe implements prometheus.Collector.
func (p *CPU) Describe(ch chan<- *prometheus.Desc) {
	ch <- cpuTimeDesc
}

// Collect implements prometheus.Collector. Each scrape reads the counters afresh.
func (p *CPU) Collect(ch chan<- prometheus.Metric) {
	seconds, err := p.totalSeconds()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(cpuTimeDesc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(cpuTimeDesc, prometheus.CounterValue, seconds)
}
