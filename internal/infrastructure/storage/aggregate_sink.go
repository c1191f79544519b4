package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// AggregateSink appends monthly country rollups and their executive
// summaries. Both tables keep full history; nothing is overwritten.
type AggregateSink struct {
	db *sql.DB
}

var _ ports.AggregateSink = (*AggregateSink)(nil)

// NewAggregateSink wires a sql.DB implementation.
func NewAggregateSink(db *sql.DB) *AggregateSink {
	return &AggregateSink{db: db}
}

// AppendAggregates writes one monthly_snapshot row per country aggregate.
func (s *AggregateSink) AppendAggregates(ctx context.Context, aggregates []domain.CountryAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	insert := psql.Insert("monthly_snapshot").
		Columns(
			"month",
			"country",
			"total",
			"highly_active",
			"active",
			"stable",
			"dormant",
			"stagnant",
			"priority_outreach",
			"top_universities",
			"top_machines",
		)
	for _, a := range aggregates {
		insert = insert.Values(
			a.Month,
			a.Country,
			a.Total,
			a.Count(domain.StatusHighlyActive),
			a.Count(domain.StatusActive),
			a.Count(domain.StatusStable),
			a.Count(domain.StatusDormant),
			a.Count(domain.StatusStagnant),
			a.PriorityOutreach,
			pq.Array(a.TopUniversities),
			pq.Array(a.TopMachines),
		)
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("append aggregates: %w", err)
	}

	return nil
}

// AppendSummaries writes the rendered summary text per (month, country),
// with the generation timestamp as its own column.
func (s *AggregateSink) AppendSummaries(ctx context.Context, summaries []domain.ExecutiveSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	insert := psql.Insert("exec_summary").
		Columns("month", "country", "summary", "created_at")
	for _, sum := range summaries {
		insert = insert.Values(sum.Month, sum.Country, sum.Text, sum.CreatedAt)
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("append summaries: %w", err)
	}

	return nil
}
