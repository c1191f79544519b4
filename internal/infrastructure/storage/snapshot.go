package storage

import (
	"context"
	"database/sql"
	"fmt"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// SnapshotStore persists the last-observed state per entity.
type SnapshotStore struct {
	db *sql.DB
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore wires a sql.DB implementation.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// ReadAll loads the full snapshot keyed by entity id.
func (s *SnapshotStore) ReadAll(ctx context.Context) (map[string]domain.SnapshotRow, error) {
	query := psql.Select("entity_id", "last_check", "total_works", "total_citations", "last_pub_date").
		From("daily_snapshot")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	result := make(map[string]domain.SnapshotRow)
	for rows.Next() {
		var r domain.SnapshotRow
		if err := rows.Scan(&r.EntityID, &r.LastCheck, &r.TotalWorks, &r.TotalCitations, &r.LastPubDate); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		result[r.EntityID] = r
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// ReplaceAll swaps the snapshot contents for the given rows in a single
// transaction. Either the full new set commits or the old state survives;
// there is no partial outcome for a reader to see.
func (s *SnapshotStore) ReplaceAll(ctx context.Context, snapshotRows []domain.SnapshotRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := psql.Delete("daily_snapshot").RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	if len(snapshotRows) > 0 {
		insert := psql.Insert("daily_snapshot").
			Columns("entity_id", "last_check", "total_works", "total_citations", "last_pub_date")
		for _, r := range snapshotRows {
			insert = insert.Values(r.EntityID, r.LastCheck, r.TotalWorks, r.TotalCitations, r.LastPubDate)
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	return nil
}
