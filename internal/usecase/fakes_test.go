package usecase

import (
	"context"
	"strings"

	"scholartrack/internal/domain"
	"scholartrack/internal/openalex"
	"scholartrack/internal/ports"
)

type fakeRoster struct {
	entities []domain.TrackedEntity
	err      error
}

func (f *fakeRoster) LoadRoster(ctx context.Context) ([]domain.TrackedEntity, error) {
	return f.entities, f.err
}

type fakeSource struct {
	works     map[string][]domain.Work
	worksErr  map[string]error
	totals    map[string]domain.Totals
	totalsErr map[string]error

	sinceByID map[string]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		works:     map[string][]domain.Work{},
		worksErr:  map[string]error{},
		totals:    map[string]domain.Totals{},
		totalsErr: map[string]error{},
		sinceByID: map[string]string{},
	}
}

func (f *fakeSource) Name() string { return "openalex" }

func (f *fakeSource) ResolveIdentifier(e domain.TrackedEntity) (string, error) {
	raw := strings.TrimSpace(e.OpenAlexID)
	if raw == "" {
		return "", ports.ErrMissingIdentifier
	}
	id := openalex.NormalizeAuthorID(raw)
	if !openalex.IsAuthorID(id) {
		return "", ports.ErrInvalidIdentifier
	}
	return id, nil
}

func (f *fakeSource) FetchWorksSince(ctx context.Context, id, sinceDate string) ([]domain.Work, error) {
	f.sinceByID[id] = sinceDate
	if err := f.worksErr[id]; err != nil {
		return nil, err
	}
	return f.works[id], nil
}

func (f *fakeSource) FetchTotals(ctx context.Context, id string) (domain.Totals, error) {
	if err := f.totalsErr[id]; err != nil {
		return domain.Totals{}, err
	}
	return f.totals[id], nil
}

type fakeSnapshots struct {
	rows       map[string]domain.SnapshotRow
	replaced   [][]domain.SnapshotRow
	readErr    error
	replaceErr error
}

func newFakeSnapshots(rows ...domain.SnapshotRow) *fakeSnapshots {
	m := map[string]domain.SnapshotRow{}
	for _, r := range rows {
		m[r.EntityID] = r
	}
	return &fakeSnapshots{rows: m}
}

func (f *fakeSnapshots) ReadAll(ctx context.Context) (map[string]domain.SnapshotRow, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[string]domain.SnapshotRow, len(f.rows))
	for k, v := range f.rows {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSnapshots) ReplaceAll(ctx context.Context, rows []domain.SnapshotRow) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, rows)
	f.rows = map[string]domain.SnapshotRow{}
	for _, r := range rows {
		f.rows[r.EntityID] = r
	}
	return nil
}

func (f *fakeSnapshots) lastReplace() []domain.SnapshotRow {
	if len(f.replaced) == 0 {
		return nil
	}
	return f.replaced[len(f.replaced)-1]
}

type fakeLog struct {
	runIDs  []string
	batches [][]domain.DeltaRecord
	err     error
}

func (f *fakeLog) Append(ctx context.Context, runID string, records []domain.DeltaRecord) error {
	if f.err != nil {
		return f.err
	}
	f.runIDs = append(f.runIDs, runID)
	f.batches = append(f.batches, records)
	return nil
}

type fakeSink struct {
	aggregates [][]domain.CountryAggregate
	summaries  [][]domain.ExecutiveSummary
	err        error
}

func (f *fakeSink) AppendAggregates(ctx context.Context, aggs []domain.CountryAggregate) error {
	if f.err != nil {
		return f.err
	}
	f.aggregates = append(f.aggregates, aggs)
	return nil
}

func (f *fakeSink) AppendSummaries(ctx context.Context, sums []domain.ExecutiveSummary) error {
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, sums)
	return nil
}

type fakeArchive struct {
	monthEnds []string
	batches   [][]domain.TrackedEntity
}

func (f *fakeArchive) Append(ctx context.Context, monthEnd string, entities []domain.TrackedEntity) error {
	f.monthEnds = append(f.monthEnds, monthEnd)
	f.batches = append(f.batches, entities)
	return nil
}

type fakeNotifier struct {
	published []string
	err       error
}

func (f *fakeNotifier) PublishSummary(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, text)
	return nil
}
