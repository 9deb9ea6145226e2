package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Job is one iteration of periodic background work.
type Job func(ctx context.Context) error

// Runner invokes a job on a fixed interval until the context is cancelled.
// A failing or panicking iteration is logged and does not stop the runner.
type Runner struct {
	name     string
	interval time.Duration
	job      Job
	clock    clockwork.Clock
	log      *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(name string, interval time.Duration, job Job, clock clockwork.Clock, logger *slog.Logger) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		job:      job,
		clock:    clock,
		log:      logger.With("worker", name),
	}
}

// Run blocks until ctx is cancelled, returning ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("worker started", "interval", r.interval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("worker stopped")
			return ctx.Err()
		case <-ticker.Chan():
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("worker iteration panicked", "panic", p)
		}
	}()

	start := r.clock.Now()
	if err := r.job(ctx); err != nil {
		r.log.Error("worker iteration failed", "error", err, "duration", r.clock.Since(start))
		return
	}
	r.log.Debug("worker iteration done", "duration", r.clock.Since(start))
}
