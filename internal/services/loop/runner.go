package loop

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/letterstacks/internal/dependencies/clock"
)

// DefaultInterval is the nominal frame interval
const DefaultInterval = 16 * time.Millisecond

// StepFunc advances the game by dt. Returning false stops the runner.
type StepFunc func(ctx context.Context, dt time.Duration) bool

// Runner drives a StepFunc from a ticker, passing the clock time measured
// between frames rather than the nominal interval
type Runner struct {
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Runner. A non-positive interval uses DefaultInterval.
func New(clk clock.Clock, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Runner{
		clock:    clk,
		interval: interval,
		logger:   logger.With(slog.String("component", "loop")),
	}
}

// Interval returns the ticker interval
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run blocks until step returns false or ctx is cancelled.
// Frame deltas are passed through raw; clamping is the step's concern.
func (r *Runner) Run(ctx context.Context, step StepFunc) error {
	last := r.clock.Now()
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("loop cancelled", slog.Int("frames", frames))
			return ctx.Err()
		case <-ticker.C():
			now := r.clock.Now()
			dt := now.Sub(last)
			last = now
			frames++
			if !step(ctx, dt) {
				r.logger.Debug("loop finished", slog.Int("frames", frames))
				return nil
			}
		}
	}
}

// Start runs the loop in a goroutine and returns a stop function that
// cancels it and waits for it to exit
func (r *Runner) Start(ctx context.Context, step StepFunc) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx, step)
	}()
	return func() {
		cancel()
		<-done
	}
}
