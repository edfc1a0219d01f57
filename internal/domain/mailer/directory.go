package mailer

import "context"

// Directory exposes the recipient lookups the dispatcher resolves at send
// time. Implementations live in infra/store.
type Directory interface {
	// ActiveSubscribers returns the addresses of all currently active
	// newsletter subscribers.
	ActiveSubscribers(ctx context.Context) ([]string, error)

	// StationOCSEmail returns the OCS contact address for a station, or an
	// empty string when the station has none configured.
	StationOCSEmail(ctx context.Context, stationID string) (string, error)
}
