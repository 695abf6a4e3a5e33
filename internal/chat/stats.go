package chat

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// statsReporter logs a periodic health line from the event loop's timeout
// branch. Reads are point-in-time and never block the loop; a probe that
// fails just omits its attribute.
type statsReporter struct {
	log      *slog.Logger
	interval time.Duration
	start    time.Time
	last     time.Time
	proc     *process.Process
}

// newStatsReporter builds a reporter firing at most once per interval. An
// interval of zero or less disables reporting entirely.
func newStatsReporter(log *slog.Logger, interval time.Duration) *statsReporter {
	sr := &statsReporter{
		log:      log,
		interval: interval,
		start:    time.Now(),
		last:     time.Now(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sr.proc = proc
	}
	return sr
}

// housekeeping is invoked whenever a poll wait times out with no activity.
func (sr *statsReporter) housekeeping(clients int) {
	if sr.interval <= 0 || time.Since(sr.last) < sr.interval {
		return
	}
	sr.last = time.Now()

	attrs := []any{
		"clients", clients,
		"uptime", time.Since(sr.start).Round(time.Second).String(),
		"goroutines", runtime.NumGoroutine(),
	}
	if sr.proc != nil {
		if cpu, err := sr.proc.CPUPercent(); err == nil {
			attrs = append(attrs, "cpu_pct", cpu)
		}
		if mi, err := sr.proc.MemoryInfo(); err == nil && mi != nil {
			attrs = append(attrs, "rss_mb", mi.RSS/(1024*1024))
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		attrs = append(attrs, "sys_mem_pct", vm.UsedPercent)
	}

	sr.log.Info("housekeeping", attrs...)
}
