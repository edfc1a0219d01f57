package report

import "time"

// Status represents the lifecycle state of a crime report.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

// Report is the slice of a stored report the sweeper touches. Status and
// LastUpdated are the only field semantics the sweeper depends on; all other
// report data stays opaque in the store.
type Report struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}
