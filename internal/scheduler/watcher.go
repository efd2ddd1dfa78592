// Package scheduler re-runs extraction and rendering on a cron schedule.
// The typical consumer is docs regeneration: keep a committed diagram in
// sync with a contract that is being edited. Nothing is persisted; a missed
// run is simply skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is the work the watcher performs on each tick.
type RunFunc func(ctx context.Context) error

// Watcher invokes a RunFunc according to a cron expression.
type Watcher struct {
	parser   cron.Parser
	schedule cron.Schedule
	spec     string
	run      RunFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a Watcher for the cron expression (standard 5-field
// spec, minute granularity).
func NewWatcher(spec string, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}

	return &Watcher{
		parser:   parser,
		schedule: schedule,
		spec:     spec,
		run:      run,
		logger:   logger,
	}, nil
}

// NextRun computes the next run time after from.
func (w *Watcher) NextRun(from time.Time) time.Time {
	return w.schedule.Next(from)
}

// Start launches the background loop. An initial run happens immediately so
// the first output does not wait for the next cron boundary.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(watchCtx)
	w.logger.Info("watcher started", slog.String("cron", w.spec))
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	w.tick(ctx)

	for {
		next := w.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			w.tick(ctx)
		}
	}
}

// tick runs the work once and logs failures instead of stopping the loop.
func (w *Watcher) tick(ctx context.Context) {
	if err := w.run(ctx); err != nil {
		w.logger.Error("scheduled run failed", slog.String("error", err.Error()))
	}
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return
	}

	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil

	w.logger.Info("watcher stopped")
}
