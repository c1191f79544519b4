package storage

import (
	"context"
	"database/sql"
	"fmt"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// RosterStore reads the externally maintained roster table. The table is
// write-owned by the roster import job; this service only selects from it.
type RosterStore struct {
	db *sql.DB
}

var _ ports.RosterSource = (*RosterStore)(nil)

// NewRosterStore wires a sql.DB implementation.
func NewRosterStore(db *sql.DB) *RosterStore {
	return &RosterStore{db: db}
}

// LoadRoster returns every roster row in import order. Import order matters:
// ranking tie-breaks downstream follow first appearance in the roster.
func (s *RosterStore) LoadRoster(ctx context.Context) ([]domain.TrackedEntity, error) {
	query := psql.Select(
		"entity_id",
		"name",
		"country",
		"university",
		"department",
		"category_code",
		"machines",
		"activity_status",
		"days_since_last_pub",
		"last_pub_date",
		"openalex_id",
		"profile_url",
	).
		From("tracked_entities").
		OrderBy("roster_order")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}

	var entities []domain.TrackedEntity
	for rows.Next() {
		var e domain.TrackedEntity
		var status string
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Country,
			&e.University,
			&e.Department,
			&e.CategoryCode,
			&e.Machines,
			&status,
			&e.DaysSinceLastPub,
			&e.LastPubDate,
			&e.OpenAlexID,
			&e.ProfileURL,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		e.Status = domain.ActivityStatus(status)
		entities = append(entities, e)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return entities, nil
}
