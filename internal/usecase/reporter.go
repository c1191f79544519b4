package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
	"scholartrack/internal/report"
)

// ReporterDeps wires the driven adapters into the monthly report run.
// Archive and Notifier are optional.
type ReporterDeps struct {
	Roster   ports.RosterSource
	Sink     ports.AggregateSink
	Archive  ports.RosterArchive
	Notifier ports.Notifier
	Options  report.Options
	Logger   *slog.Logger
}

// ReportStats summarizes one monthly run.
type ReportStats struct {
	Month      string
	Countries  []string
	Aggregates int
	Summaries  int
	Archived   int
}

// Reporter rolls the roster up into country aggregates, renders executive
// summaries, and appends both to the sink, plus the month-end roster archive.
type Reporter struct {
	roster   ports.RosterSource
	sink     ports.AggregateSink
	archive  ports.RosterArchive
	notifier ports.Notifier
	opts     report.Options
	logger   *slog.Logger
}

// NewReporter constructs the monthly-run orchestration component.
func NewReporter(deps ReporterDeps) *Reporter {
	return &Reporter{
		roster:   deps.Roster,
		sink:     deps.Sink,
		archive:  deps.Archive,
		notifier: deps.Notifier,
		opts:     deps.Options,
		logger:   deps.Logger,
	}
}

// ProcessMonth builds and appends the rollup for the month containing now.
// Sink writes are fatal (the run exists to produce them); notification
// failures only warn.
func (r *Reporter) ProcessMonth(ctx context.Context, now time.Time) (ReportStats, error) {
	month := report.MonthLabel(now)
	stats := ReportStats{Month: month}

	entities, err := r.roster.LoadRoster(ctx)
	if err != nil {
		return stats, fmt.Errorf("load roster: %w", err)
	}

	aggregates := report.Build(month, entities, r.opts)
	createdAt := now.UTC().Truncate(time.Second)

	summaries := make([]domain.ExecutiveSummary, 0, len(aggregates))
	for _, agg := range aggregates {
		stats.Countries = append(stats.Countries, agg.Country)
		summaries = append(summaries, domain.ExecutiveSummary{
			Month:     agg.Month,
			Country:   agg.Country,
			Text:      report.RenderSummary(agg),
			CreatedAt: createdAt,
		})
	}

	if len(aggregates) > 0 {
		if err := r.sink.AppendAggregates(ctx, aggregates); err != nil {
			return stats, fmt.Errorf("append aggregates: %w", err)
		}
		if err := r.sink.AppendSummaries(ctx, summaries); err != nil {
			return stats, fmt.Errorf("append summaries: %w", err)
		}
	}
	stats.Aggregates = len(aggregates)
	stats.Summaries = len(summaries)

	if r.archive != nil {
		archivable := make([]domain.TrackedEntity, 0, len(entities))
		for _, e := range entities {
			if e.ID != "" {
				archivable = append(archivable, e)
			}
		}
		monthEnd := report.MonthEnd(now).Format("2006-01-02")
		if err := r.archive.Append(ctx, monthEnd, archivable); err != nil {
			return stats, fmt.Errorf("append roster archive: %w", err)
		}
		stats.Archived = len(archivable)
	}

	if r.notifier != nil {
		for _, s := range summaries {
			if err := r.notifier.PublishSummary(ctx, s.Text); err != nil {
				r.warn("summary notification failed", "country", s.Country, "error", err)
			}
		}
	}

	r.info("monthly run complete",
		"month", month,
		"countries", stats.Countries,
		"aggregates", stats.Aggregates,
		"archived", stats.Archived)
	return stats, nil
}

func (r *Reporter) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Reporter) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
