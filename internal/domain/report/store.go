package report

import (
	"context"
	"time"
)

// Store defines the narrow persistence port the sweeper needs. Any store that
// can find records matching the retention predicate and bulk-delete a set of
// ids can serve it. Implementations live in infra/store.
type Store interface {
	// FindClosedBefore returns reports with status closed whose last update is
	// at or before cutoff.
	FindClosedBefore(ctx context.Context, cutoff time.Time) ([]*Report, error)

	// DeleteBatch removes the given reports as a single bulk operation: all
	// matched deletes succeed or none do.
	DeleteBatch(ctx context.Context, ids []string) error
}
