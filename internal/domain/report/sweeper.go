package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config holds configuration for the retention sweeper.
type Config struct {
	// Interval is how often the sweeper scans for expired reports.
	Interval time.Duration

	// RetentionWindow is how long a closed report stays queryable before it
	// becomes eligible for deletion.
	RetentionWindow time.Duration

	// RunImmediately triggers a sweep at startup instead of waiting for the
	// first interval to elapse.
	RunImmediately bool
}

// Sweeper periodically deletes reports that have been closed longer than the
// retention window. It is the only component that ever deletes reports.
//
// The cutoff comparison and the stored timestamps come from the same process
// clock, so skew between them is assumed negligible.
type Sweeper struct {
	store  Store
	config Config
	now    func() time.Time
}

// NewSweeper creates a new retention sweeper.
func NewSweeper(store Store, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 24 * time.Hour
	}

	return &Sweeper{
		store:  store,
		config: cfg,
		now:    time.Now,
	}
}

// Run starts the sweep loop. It blocks until the context is cancelled.
// Should be called in a goroutine. The first sweep happens only after the
// first interval elapses unless RunImmediately is set.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("retention sweeper started",
		"interval", s.config.Interval,
		"retention_window", s.config.RetentionWindow,
		"run_immediately", s.config.RunImmediately,
	)

	if s.config.RunImmediately {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep performs one cycle. Errors are logged and swallowed so the timer
// keeps running and retries on the next tick.
func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.SweepOnce(ctx)
	if err != nil {
		slog.Error("report cleanup failed", "operation", "sweepOnce", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("expired closed reports deleted", "count", deleted)
	}
}

// SweepOnce deletes all reports closed for longer than the retention window
// and returns the number removed. An empty match set is a no-op, not an
// error. The deletion is one bulk operation per sweep; a report updated to
// closed mid-sweep is picked up by the next tick.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.RetentionWindow)

	expired, err := s.store.FindClosedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("finding expired reports: %w", err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, len(expired))
	for i, r := range expired {
		ids[i] = r.ID
	}

	if err := s.store.DeleteBatch(ctx, ids); err != nil {
		return 0, fmt.Errorf("deleting expired reports: %w", err)
	}

	return len(ids), nil
}
