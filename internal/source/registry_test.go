package source

import (
	"context"
	"testing"

	"scholartrack/internal/domain"
)

type stubSource struct{ name string }

func (s stubSource) Name() string { return s.name }

func (s stubSource) ResolveIdentifier(e domain.TrackedEntity) (string, error) {
	return e.OpenAlexID, nil
}

func (s stubSource) FetchWorksSince(ctx context.Context, id, sinceDate string) ([]domain.Work, error) {
	return nil, nil
}

func (s stubSource) FetchTotals(ctx context.Context, id string) (domain.Totals, error) {
	return domain.Totals{}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubSource{name: "openalex"})
	reg.Register(stubSource{name: "scholar"})

	src, err := reg.Resolve("scholar")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if src.Name() != "scholar" {
		t.Fatalf("resolved wrong source: %s", src.Name())
	}

	if _, err := reg.Resolve("crossref"); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}
