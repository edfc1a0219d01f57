package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crimewatch/internal/domain/mailer"
	"crimewatch/internal/domain/report"

	supa "github.com/supabase-community/supabase-go"
)

const (
	reportsTable     = "reports"
	subscribersTable = "subscribers"
	stationsTable    = "stations"
)

var (
	_ report.Store     = (*SupabaseStore)(nil)
	_ mailer.Directory = (*SupabaseStore)(nil)
)

// SupabaseStore implements the report store and the recipient directory using
// the Supabase Go SDK. Both the sweeper and the dispatcher share one client;
// the underlying HTTP client serializes its own network I/O.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// reportRow is the PostgREST representation of the report columns the
// sweeper reads.
type reportRow struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	LastUpdated string `json:"last_updated"`
}

// FindClosedBefore returns reports with status closed whose last update is at
// or before cutoff.
func (s *SupabaseStore) FindClosedBefore(ctx context.Context, cutoff time.Time) ([]*report.Report, error) {
	threshold := cutoff.UTC().Format(time.RFC3339Nano)

	data, _, err := s.client.From(reportsTable).
		Select("id,status,last_updated", "exact", false).
		Eq("status", string(report.StatusClosed)).
		Lte("last_updated", threshold).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("listing expired reports: %w", err)
	}

	var rows []reportRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing expired reports: %w", err)
	}

	reports := make([]*report.Report, len(rows))
	for i, row := range rows {
		r := &report.Report{
			ID:     row.ID,
			Status: report.Status(row.Status),
		}
		if row.LastUpdated != "" {
			if t, err := time.Parse(time.RFC3339Nano, row.LastUpdated); err == nil {
				r.LastUpdated = t
			}
		}
		reports[i] = r
	}

	return reports, nil
}

// DeleteBatch removes the given reports in a single bulk delete.
func (s *SupabaseStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, _, err := s.client.From(reportsTable).
		Delete("", "").
		In("id", ids).
		Execute()
	if err != nil {
		return fmt.Errorf("deleting reports: %w", err)
	}

	return nil
}

type subscriberRow struct {
	Email string `json:"email"`
}

// ActiveSubscribers returns the addresses of all active newsletter subscribers.
func (s *SupabaseStore) ActiveSubscribers(ctx context.Context) ([]string, error) {
	data, _, err := s.client.From(subscribersTable).
		Select("email", "exact", false).
		Eq("is_active", "true").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}

	var rows []subscriberRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing subscribers: %w", err)
	}

	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Email != "" {
			emails = append(emails, row.Email)
		}
	}

	return emails, nil
}

type stationRow struct {
	OCSEmail *string `json:"ocs_email"`
}

// StationOCSEmail returns the OCS contact address for a station, or an empty
// string when the station has none configured.
func (s *SupabaseStore) StationOCSEmail(ctx context.Context, stationID string) (string, error) {
	data, _, err := s.client.From(stationsTable).
		Select("ocs_email", "exact", false).
		Eq("id", stationID).
		Execute()
	if err != nil {
		return "", fmt.Errorf("fetching station %s: %w", stationID, err)
	}

	var rows []stationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("parsing station %s: %w", stationID, err)
	}

	if len(rows) == 0 || rows[0].OCSEmail == nil {
		return "", nil
	}

	return *rows[0].OCSEmail, nil
}
