package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"scholartrack/internal/config"
	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

const (
	defaultBaseURL = "https://api.openalex.org"
	productToken   = "scholartrack/1.0"
	worksPerPage   = "200"
)

// Client reads author activity from the OpenAlex REST API.
type Client struct {
	baseURL string
	mailto  string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.ActivitySource = (*Client)(nil)

// NewClient builds a client from configuration. A custom *http.Client may be
// injected for tests; nil uses one with the configured timeout.
func NewClient(cfg config.OpenAlexConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Client{
		baseURL: base,
		mailto:  cfg.Mailto,
		client:  httpClient,
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (c *Client) Name() string {
	return "openalex"
}

// ResolveIdentifier normalizes the roster's author-id cell and checks its
// shape, so junk pasted into the column never reaches the API.
func (c *Client) ResolveIdentifier(entity domain.TrackedEntity) (string, error) {
	raw := strings.TrimSpace(entity.OpenAlexID)
	if raw == "" {
		return "", ports.ErrMissingIdentifier
	}
	id := NormalizeAuthorID(raw)
	if !IsAuthorID(id) {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// FetchWorksSince lists works by the author published on or after sinceDate.
func (c *Client) FetchWorksSince(ctx context.Context, id, sinceDate string) ([]domain.Work, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("authorships.author.id:%s,from_publication_date:%s", id, sinceDate))
	query.Set("per_page", worksPerPage)

	var payload struct {
		Results []struct {
			ID              string `json:"id"`
			DisplayName     string `json:"display_name"`
			DOI             string `json:"doi"`
			PublicationDate string `json:"publication_date"`
		} `json:"results"`
	}

	if err := c.getJSON(ctx, "/works", query, &payload); err != nil {
		return nil, fmt.Errorf("works for %s: %w", id, err)
	}

	works := make([]domain.Work, 0, len(payload.Results))
	for _, res := range payload.Results {
		link := res.DOI
		if link == "" {
			link = res.ID
		}
		works = append(works, domain.Work{
			Title:           res.DisplayName,
			Link:            link,
			PublicationDate: res.PublicationDate,
		})
	}

	c.debug("fetched works", "author", id, "since", sinceDate, "count", len(works))
	return works, nil
}

// FetchTotals reads the author's current aggregate counters.
func (c *Client) FetchTotals(ctx context.Context, id string) (domain.Totals, error) {
	var payload struct {
		WorksCount   int `json:"works_count"`
		CitedByCount int `json:"cited_by_count"`
	}

	if err := c.getJSON(ctx, "/authors/"+id, nil, &payload); err != nil {
		return domain.Totals{}, fmt.Errorf("totals for %s: %w", id, err)
	}

	return domain.Totals{Works: payload.WorksCount, Citations: payload.CitedByCount}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("openalex returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// userAgent follows OpenAlex etiquette: identify the product and, when
// configured, a contact address for the polite pool.
func (c *Client) userAgent() string {
	if c.mailto != "" {
		return fmt.Sprintf("%s (mailto:%s)", productToken, c.mailto)
	}
	return productToken
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
