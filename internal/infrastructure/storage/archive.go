package storage

import (
	"context"
	"database/sql"
	"fmt"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// RosterArchive appends month-end copies of the roster's status columns,
// preserving entity-level history next to the country rollups.
type RosterArchive struct {
	db *sql.DB
}

var _ ports.RosterArchive = (*RosterArchive)(nil)

// NewRosterArchive wires a sql.DB implementation.
func NewRosterArchive(db *sql.DB) *RosterArchive {
	return &RosterArchive{db: db}
}

// Append writes one monthly_status_log row per entity, keyed by the month-end
// date.
func (a *RosterArchive) Append(ctx context.Context, monthEnd string, entities []domain.TrackedEntity) error {
	if len(entities) == 0 {
		return nil
	}

	insert := psql.Insert("monthly_status_log").
		Columns(
			"month_end",
			"entity_id",
			"country",
			"university",
			"department",
			"name",
			"category_code",
			"machines",
			"activity_status",
			"last_pub_date",
			"source_url",
		)
	for _, e := range entities {
		insert = insert.Values(
			monthEnd,
			e.ID,
			e.Country,
			e.University,
			e.Department,
			e.Name,
			e.CategoryCode,
			e.Machines,
			string(e.Status),
			e.LastPubDate,
			e.ProfileURL,
		)
	}

	if _, err := insert.RunWith(a.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("append roster archive: %w", err)
	}

	return nil
}
