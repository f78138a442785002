package connectivity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
)

// Prober checks reachability once. A nil error means online.
type Prober interface {
	Probe(ctx context.Context) error
}

// Watcher polls a Prober and feeds the result into a Monitor.
type Watcher struct {
	prober   Prober
	monitor  *Monitor
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewWatcher(p Prober, m *Monitor, interval time.Duration, l logging.Logger) *Watcher {
	timeout := 3 * time.Second
	if interval < timeout {
		timeout = interval
	}
	return &Watcher{
		prober:   p,
		monitor:  m,
		interval: interval,
		timeout:  timeout,
		logger:   l.With("module", "connectivity"),
	}
}

// ProbeOnce probes synchronously, updates the monitor and returns the result.
func (w *Watcher) ProbeOnce(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.prober.Probe(ctx)
	cancel()

	online := err == nil
	if online != w.monitor.Current() {
		if online {
			w.logger.Info(ctx, "switched to online mode")
		} else {
			w.logger.Info(ctx, "switched to offline mode", "error", err)
		}
	}
	w.monitor.Set(online)

	return online
}

// Run probes every interval until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.ProbeOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
