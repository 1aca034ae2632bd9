// Package store archives one flow reading per site per day so the weekly
// trend endpoints keep working when the live USGS service is unreachable.
package store

import (
	"context"
	"time"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// Store persists daily flow readings. Implementations must be safe for
// concurrent use: the ingest pipeline writes while the HTTP API reads.
type Store interface {
	// UpsertDailyFlows records each reading under its site and UTC day,
	// keeping the newest reading when a day already has one.
	UpsertDailyFlows(ctx context.Context, readings []domain.FlowReading) error

	// GetWeek returns the archived readings for the 7 UTC days ending at
	// end, oldest first. Days with no reading are simply absent.
	GetWeek(ctx context.Context, site string, end time.Time) ([]domain.FlowReading, error)

	// LatestFlow returns the most recent archived reading for a site, or
	// ErrNotFound when the site has never been seen.
	LatestFlow(ctx context.Context, site string) (domain.FlowReading, error)

	Close() error
}

// NopStore discards writes and reports every site as unseen. It stands in
// when no archive path is configured.
type NopStore struct{}

func (NopStore) UpsertDailyFlows(context.Context, []domain.FlowReading) error {
	return nil
}

func (NopStore) GetWeek(context.Context, string, time.Time) ([]domain.FlowReading, error) {
	return nil, nil
}

func (NopStore) LatestFlow(context.Context, string) (domain.FlowReading, error) {
	return domain.FlowReading{}, ErrNotFound
}

func (NopStore) Close() error { return nil }
