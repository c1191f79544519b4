package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholartrack/internal/domain"
	"scholartrack/internal/report"
)

var monthlyRun = time.Date(2026, time.August, 1, 2, 0, 0, 0, time.UTC)

func rosterFixture() []domain.TrackedEntity {
	return []domain.TrackedEntity{
		{ID: "p1", Country: "Singapore", University: "NUS", Status: domain.StatusHighlyActive, DaysSinceLastPub: "12", Machines: "GPU cluster"},
		{ID: "p2", Country: "Singapore", University: "NTU", Status: domain.StatusActive, DaysSinceLastPub: "30"},
		{ID: "p3", Country: "Malaysia", University: "UM", Status: domain.StatusDormant, DaysSinceLastPub: "500"},
		{ID: "", Country: "Malaysia", University: "UM", Status: domain.StatusStable},
	}
}

func TestProcessMonthAppendsAggregatesAndSummaries(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	archive := &fakeArchive{}
	rep := NewReporter(ReporterDeps{
		Roster:  &fakeRoster{entities: rosterFixture()},
		Sink:    sink,
		Archive: archive,
		Options: report.Options{},
	})

	stats, err := rep.ProcessMonth(context.Background(), monthlyRun)
	require.NoError(t, err)

	assert.Equal(t, "2026-08", stats.Month)
	assert.Equal(t, []string{"Singapore", "Malaysia"}, stats.Countries)
	assert.Equal(t, 2, stats.Aggregates)
	assert.Equal(t, 2, stats.Summaries)

	require.Len(t, sink.aggregates, 1)
	require.Len(t, sink.summaries, 1)
	require.Len(t, sink.summaries[0], 2)

	sg := sink.summaries[0][0]
	assert.Equal(t, "Singapore", sg.Country)
	assert.Equal(t, report.RenderSummary(sink.aggregates[0][0]), sg.Text)
	assert.NotContains(t, sg.Text, sg.CreatedAt.Format("15:04"), "timestamp lives outside the text")
	assert.Equal(t, monthlyRun.UTC().Truncate(time.Second), sg.CreatedAt)
}

func TestProcessMonthArchivesRosterAtMonthEnd(t *testing.T) {
	t.Parallel()

	archive := &fakeArchive{}
	rep := NewReporter(ReporterDeps{
		Roster:  &fakeRoster{entities: rosterFixture()},
		Sink:    &fakeSink{},
		Archive: archive,
	})

	stats, err := rep.ProcessMonth(context.Background(), monthlyRun)
	require.NoError(t, err)

	require.Len(t, archive.monthEnds, 1)
	assert.Equal(t, "2026-07-31", archive.monthEnds[0], "run on the 1st archives the closed month")
	require.Len(t, archive.batches[0], 3, "blank entity ids are not archived")
	assert.Equal(t, 3, stats.Archived)
}

func TestProcessMonthEmptyRosterWritesNothing(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	rep := NewReporter(ReporterDeps{Roster: &fakeRoster{}, Sink: sink})

	stats, err := rep.ProcessMonth(context.Background(), monthlyRun)
	require.NoError(t, err)

	assert.Zero(t, stats.Aggregates)
	assert.Empty(t, sink.aggregates)
	assert.Empty(t, sink.summaries)
}

func TestProcessMonthNotifierFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	rep := NewReporter(ReporterDeps{
		Roster:   &fakeRoster{entities: rosterFixture()},
		Sink:     &fakeSink{},
		Notifier: &fakeNotifier{err: errors.New("chat unreachable")},
	})

	_, err := rep.ProcessMonth(context.Background(), monthlyRun)
	assert.NoError(t, err)
}

func TestProcessMonthNotifiesEachSummary(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	rep := NewReporter(ReporterDeps{
		Roster:   &fakeRoster{entities: rosterFixture()},
		Sink:     &fakeSink{},
		Notifier: notifier,
	})

	_, err := rep.ProcessMonth(context.Background(), monthlyRun)
	require.NoError(t, err)
	assert.Len(t, notifier.published, 2)
}

func TestProcessMonthSinkFailureIsFatal(t *testing.T) {
	t.Parallel()

	rep := NewReporter(ReporterDeps{
		Roster: &fakeRoster{entities: rosterFixture()},
		Sink:   &fakeSink{err: errors.New("sheet quota")},
	})

	_, err := rep.ProcessMonth(context.Background(), monthlyRun)
	assert.Error(t, err)
}

func TestProcessMonthCountryAllowList(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	rep := NewReporter(ReporterDeps{
		Roster:  &fakeRoster{entities: rosterFixture()},
		Sink:    sink,
		Options: report.Options{Countries: []string{"Malaysia"}},
	})

	stats, err := rep.ProcessMonth(context.Background(), monthlyRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"Malaysia"}, stats.Countries)
}
