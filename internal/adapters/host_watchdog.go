package adapters

import (
	"context"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/rs/zerolog/log"
)

const defaultWatchdogInterval = 2 * time.Second

// HostWatchdog waits for the host process to go away.
type HostWatchdog struct {
	PID      int
	Interval time.Duration
	find     func(pid int) (ps.Process, error)
}

func NewHostWatchdog(pid int) HostWatchdog {
	return HostWatchdog{PID: pid, Interval: defaultWatchdogInterval, find: ps.FindProcess}
}

// Wait returns nil once the host has exited, or ctx's error if ctx ends
// first. Lookup failures are logged and retried.
func (w HostWatchdog) Wait(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = defaultWatchdogInterval
	}
	find := w.find
	if find == nil {
		find = ps.FindProcess
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		proc, err := find(w.PID)
		switch {
		case err != nil:
			log.Debug().Err(err).Int("pid", w.PID).Msg("host process lookup failed")
		case proc == nil:
			log.Info().Int("pid", w.PID).Msg("host process exited")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
