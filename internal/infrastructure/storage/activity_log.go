package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// ActivityLog appends non-zero deltas to the daily ledger. Append-only: rows
// are never updated or deleted by this service.
type ActivityLog struct {
	db *sql.DB
}

var _ ports.ActivityLog = (*ActivityLog)(nil)

// NewActivityLog wires a sql.DB implementation.
func NewActivityLog(db *sql.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

// Append writes the batch of delta records stamped with the run id.
func (l *ActivityLog) Append(ctx context.Context, runID string, records []domain.DeltaRecord) error {
	if len(records) == 0 {
		return nil
	}

	insert := psql.Insert("daily_activity_log").
		Columns("run_id", "day", "entity_id", "new_publications", "titles", "links", "citation_delta", "source")
	for _, r := range records {
		insert = insert.Values(
			runID,
			r.Date,
			r.EntityID,
			r.NewPublications,
			pq.Array(r.Titles),
			pq.Array(r.Links),
			r.CitationDelta,
			r.Source,
		)
	}

	if _, err := insert.RunWith(l.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}

	return nil
}
