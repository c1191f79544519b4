package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

// TrackerDeps wires the driven adapters into the daily delta run.
type TrackerDeps struct {
	Roster    ports.RosterSource
	Source    ports.ActivitySource
	Snapshots ports.SnapshotStore
	Log       ports.ActivityLog
	// DropUnresolved drops prior snapshot rows for entities whose identifier
	// fails shape validation instead of carrying them forward.
	DropUnresolved bool
	Logger         *slog.Logger
}

// EntityResult records how each source operation for one entity went, so
// callers and tests can tell "no change" from "fetch degraded" apart.
type EntityResult struct {
	Works  domain.FetchOutcome
	Totals domain.FetchOutcome
	Logged bool
}

// RunStats summarizes one daily run.
type RunStats struct {
	RunID        string
	Entities     int
	SnapshotRows int
	DeltasLogged int
	Results      map[string]EntityResult
}

// Tracker is the delta computation engine: it diffs each entity's current
// source state against the prior snapshot and produces the activity log plus
// the replacement snapshot.
type Tracker struct {
	roster         ports.RosterSource
	source         ports.ActivitySource
	snapshots      ports.SnapshotStore
	log            ports.ActivityLog
	dropUnresolved bool
	logger         *slog.Logger
}

// NewTracker constructs the daily-run orchestration component.
func NewTracker(deps TrackerDeps) *Tracker {
	return &Tracker{
		roster:         deps.Roster,
		source:         deps.Source,
		snapshots:      deps.Snapshots,
		log:            deps.Log,
		dropUnresolved: deps.DropUnresolved,
		logger:         deps.Logger,
	}
}

// ProcessDay runs one full delta pass over the roster.
//
// Per-entity source failures degrade to "no data" and never abort the run.
// All snapshot rows are computed before anything is written: the log append
// and the snapshot replace happen only after the loop, so a failure inside
// the loop leaves the store untouched and the replace itself is a single
// transaction in the store adapter.
func (t *Tracker) ProcessDay(ctx context.Context, day time.Time) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString(), Results: map[string]EntityResult{}}

	entities, err := t.roster.LoadRoster(ctx)
	if err != nil {
		return stats, fmt.Errorf("load roster: %w", err)
	}

	prior, err := t.snapshots.ReadAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("read snapshot: %w", err)
	}

	today := day.Format("2006-01-02")
	var deltas []domain.DeltaRecord
	var next []domain.SnapshotRow

	for _, e := range entities {
		stats.Entities++

		if e.ID == "" {
			// No stable key: nothing to diff against or write back.
			continue
		}

		// Each source owns its identifier rules (author-id column for the
		// API, profile-URL column for the page scanner).
		id, rerr := t.source.ResolveIdentifier(e)
		if rerr != nil {
			skip := domain.Skipped(rerr.Error())
			stats.Results[e.ID] = EntityResult{Works: skip, Totals: skip}
			if errors.Is(rerr, ports.ErrInvalidIdentifier) {
				// Invalid, not absent: keep the last-known state instead
				// of silently losing the entity's history.
				if prev, ok := prior[e.ID]; ok && !t.dropUnresolved {
					next = append(next, prev)
				}
				t.warn("unresolvable identifier", "entity", e.ID, "error", rerr)
			}
			continue
		}

		res := EntityResult{}
		prev := prior[e.ID]
		lastCheck := prev.LastCheck
		if lastCheck == "" {
			lastCheck = domain.SnapshotSentinelDate
		}
		lastPub := prev.LastPubDate

		works, werr := t.source.FetchWorksSince(ctx, id, lastCheck)
		if werr != nil {
			res.Works = domain.Degraded(werr.Error())
			works = nil
			t.warn("works fetch degraded", "entity", e.ID, "error", werr)
		} else {
			res.Works = domain.OK()
		}

		var titles, links []string
		for _, w := range works {
			if w.Title != "" {
				titles = append(titles, w.Title)
			}
			if w.Link != "" {
				links = append(links, w.Link)
			}
			// ISO date strings compare safely lexicographically.
			if w.PublicationDate != "" && w.PublicationDate > lastPub {
				lastPub = w.PublicationDate
			}
		}

		totals, terr := t.source.FetchTotals(ctx, id)
		if terr != nil {
			// Keep the roster-wide rewrite complete: carry the previous
			// counters forward and skip delta logging for this entity.
			res.Totals = domain.Degraded(terr.Error())
			stats.Results[e.ID] = res
			next = append(next, domain.SnapshotRow{
				EntityID:       e.ID,
				LastCheck:      today,
				TotalWorks:     prev.TotalWorks,
				TotalCitations: prev.TotalCitations,
				LastPubDate:    lastPub,
			})
			t.warn("totals fetch degraded", "entity", e.ID, "error", terr)
			continue
		}
		res.Totals = domain.OK()

		citeDelta := totals.Citations - prev.TotalCitations
		if citeDelta < 0 {
			// The source revises counts asynchronously; an apparent
			// decrease is clamped, never logged as negative.
			citeDelta = 0
		}

		if len(works) > 0 || citeDelta > 0 {
			deltas = append(deltas, domain.DeltaRecord{
				Date:            today,
				EntityID:        e.ID,
				NewPublications: len(works),
				Titles:          titles,
				Links:           links,
				CitationDelta:   citeDelta,
				Source:          t.source.Name(),
			})
			res.Logged = true
		}

		next = append(next, domain.SnapshotRow{
			EntityID:       e.ID,
			LastCheck:      today,
			TotalWorks:     totals.Works,
			TotalCitations: totals.Citations,
			LastPubDate:    lastPub,
		})
		stats.Results[e.ID] = res
	}

	if len(deltas) > 0 {
		if err := t.log.Append(ctx, stats.RunID, deltas); err != nil {
			return stats, fmt.Errorf("append activity log: %w", err)
		}
	}

	if err := t.snapshots.ReplaceAll(ctx, next); err != nil {
		return stats, fmt.Errorf("replace snapshot: %w", err)
	}

	stats.DeltasLogged = len(deltas)
	stats.SnapshotRows = len(next)
	t.info("daily run complete",
		"run_id", stats.RunID,
		"entities", stats.Entities,
		"snapshot_rows", stats.SnapshotRows,
		"deltas_logged", stats.DeltasLogged)
	return stats, nil
}

func (t *Tracker) info(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}

func (t *Tracker) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}
