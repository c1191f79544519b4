package ports

import (
	"context"
	"errors"
	"time"

	"scholartrack/internal/domain"
)

// Identifier resolution errors. Missing means the roster row carries nothing
// for this source to query; invalid means it carries something that failed
// the source's validation. Callers treat the two differently: missing
// entities are skipped outright, invalid ones keep their last-known state.
var (
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrInvalidIdentifier = errors.New("identifier failed validation")
)

// ActivitySource reads an entity's publication activity from a bibliographic
// provider. Each source owns its identifier rules: ResolveIdentifier picks
// and validates the roster column it queries by, and the id it returns is
// the only thing the fetch methods accept. Fetch failures are returned as
// errors and absorbed by the caller, never retried here.
type ActivitySource interface {
	Name() string
	// ResolveIdentifier extracts this source's query identifier from the
	// entity, or fails with ErrMissingIdentifier / ErrInvalidIdentifier.
	ResolveIdentifier(entity domain.TrackedEntity) (string, error)
	// FetchWorksSince returns works published on or after sinceDate (ISO
	// yyyy-mm-dd, inclusive).
	FetchWorksSince(ctx context.Context, id, sinceDate string) ([]domain.Work, error)
	FetchTotals(ctx context.Context, id string) (domain.Totals, error)
}

// RosterSource loads the externally maintained entity roster.
type RosterSource interface {
	LoadRoster(ctx context.Context) ([]domain.TrackedEntity, error)
}

// SnapshotStore persists the last-observed state per entity. ReplaceAll must
// be atomic from the caller's point of view: either the full new set lands or
// the prior contents stay untouched.
type SnapshotStore interface {
	ReadAll(ctx context.Context) (map[string]domain.SnapshotRow, error)
	ReplaceAll(ctx context.Context, rows []domain.SnapshotRow) error
}

// ActivityLog is the append-only ledger of non-zero deltas.
type ActivityLog interface {
	Append(ctx context.Context, runID string, records []domain.DeltaRecord) error
}

// AggregateSink appends monthly rollups and their rendered summaries.
type AggregateSink interface {
	AppendAggregates(ctx context.Context, aggregates []domain.CountryAggregate) error
	AppendSummaries(ctx context.Context, summaries []domain.ExecutiveSummary) error
}

// RosterArchive appends a month-end copy of the roster's status columns,
// keeping entity-level history alongside the country rollups.
type RosterArchive interface {
	Append(ctx context.Context, monthEnd string, entities []domain.TrackedEntity) error
}

// Notifier publishes rendered summaries to an out-of-band channel.
type Notifier interface {
	PublishSummary(ctx context.Context, text string) error
}

// Scheduler drives recurring runs: daily fires every day, monthly fires on
// the first day of a month.
type Scheduler interface {
	Start(ctx context.Context, daily func(time.Time), monthly func(time.Time)) error
	Stop(ctx context.Context) error
}
