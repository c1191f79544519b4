package openalex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scholartrack/internal/config"
	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.OpenAlexConfig{BaseURL: server.URL, Mailto: "ops@example.edu"}
	return NewClient(cfg, server.Client(), nil), server
}

func TestResolveIdentifier(t *testing.T) {
	t.Parallel()

	client := NewClient(config.OpenAlexConfig{}, nil, nil)

	id, err := client.ResolveIdentifier(domain.TrackedEntity{OpenAlexID: "https://openalex.org/A123"})
	if err != nil {
		t.Fatalf("ResolveIdentifier error: %v", err)
	}
	if id != "A123" {
		t.Fatalf("expected normalized id A123, got %s", id)
	}

	if _, err := client.ResolveIdentifier(domain.TrackedEntity{OpenAlexID: "  "}); !errors.Is(err, ports.ErrMissingIdentifier) {
		t.Fatalf("expected missing-identifier error, got %v", err)
	}
	if _, err := client.ResolveIdentifier(domain.TrackedEntity{OpenAlexID: "Alice"}); !errors.Is(err, ports.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid-identifier error, got %v", err)
	}
}

func TestFetchWorksSince(t *testing.T) {
	t.Parallel()

	var gotPath, gotFilter, gotUA string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("filter")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{
			"results": [
				{"id": "https://openalex.org/W1", "display_name": "First Paper", "doi": "https://doi.org/10.1/abc", "publication_date": "2026-07-02"},
				{"id": "https://openalex.org/W2", "display_name": "Second Paper", "doi": "", "publication_date": "2026-07-15"}
			]
		}`))
	})

	works, err := client.FetchWorksSince(context.Background(), "A123", "2026-07-01")
	if err != nil {
		t.Fatalf("FetchWorksSince error: %v", err)
	}

	if gotPath != "/works" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotFilter != "authorships.author.id:A123,from_publication_date:2026-07-01" {
		t.Fatalf("unexpected filter: %s", gotFilter)
	}
	if !strings.Contains(gotUA, "mailto:ops@example.edu") {
		t.Fatalf("user agent missing mailto: %s", gotUA)
	}

	if len(works) != 2 {
		t.Fatalf("expected 2 works, got %d", len(works))
	}
	if works[0].Link != "https://doi.org/10.1/abc" {
		t.Fatalf("expected DOI preferred as link, got %s", works[0].Link)
	}
	if works[1].Link != "https://openalex.org/W2" {
		t.Fatalf("expected source id fallback link, got %s", works[1].Link)
	}
	if works[1].PublicationDate != "2026-07-15" {
		t.Fatalf("unexpected publication date: %s", works[1].PublicationDate)
	}
}

func TestFetchTotals(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/authors/A123" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"works_count": 41, "cited_by_count": 1337}`))
	})

	totals, err := client.FetchTotals(context.Background(), "A123")
	if err != nil {
		t.Fatalf("FetchTotals error: %v", err)
	}
	if totals.Works != 41 || totals.Citations != 1337 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestNonOKStatusIsAnError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := client.FetchWorksSince(context.Background(), "A123", "2026-07-01"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if _, err := client.FetchTotals(context.Background(), "A123"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestMalformedBodyIsAnError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	if _, err := client.FetchTotals(context.Background(), "A123"); err == nil {
		t.Fatal("expected error on non-JSON body")
	}
}

func TestUserAgentWithoutMailto(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"works_count": 0, "cited_by_count": 0}`))
	}))
	defer server.Close()

	client := NewClient(config.OpenAlexConfig{BaseURL: server.URL}, server.Client(), nil)
	if _, err := client.FetchTotals(context.Background(), "A1"); err != nil {
		t.Fatalf("FetchTotals error: %v", err)
	}
	if gotUA != productToken {
		t.Fatalf("unexpected user agent: %s", gotUA)
	}
}
