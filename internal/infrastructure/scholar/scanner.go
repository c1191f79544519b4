package scholar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scholartrack/internal/domain"
	"scholartrack/internal/ports"
)

var yearExpr = regexp.MustCompile(`^\d{4}$`)

// Scanner reads publication activity off a scholar profile page. It is the
// fallback for rosters whose identifier column holds a profile URL instead
// of an author id; the "identifier" passed to it is that URL.
//
// Profile pages expose publication years, not full dates, so the since-date
// cutoff is year-granular and extracted dates are pinned to January 1st.
type Scanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ActivitySource = (*Scanner)(nil)

// NewScanner wires an HTTP client; nil gets a 30s-timeout default.
func NewScanner(client *http.Client, logger *slog.Logger) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "scholar"
}

// ResolveIdentifier picks the roster's profile-URL column and requires a
// fetchable http(s) URL; anything else never reaches the network.
func (s *Scanner) ResolveIdentifier(entity domain.TrackedEntity) (string, error) {
	raw := strings.TrimSpace(entity.ProfileURL)
	if raw == "" {
		return "", ports.ErrMissingIdentifier
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidIdentifier, raw)
	}
	return raw, nil
}

// FetchWorksSince returns publications listed on the profile whose year is
// not older than sinceDate's year.
func (s *Scanner) FetchWorksSince(ctx context.Context, profileURL, sinceDate string) ([]domain.Work, error) {
	doc, base, err := s.fetchDocument(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	sinceYear := sinceDate
	if len(sinceYear) > 4 {
		sinceYear = sinceYear[:4]
	}

	var works []domain.Work
	doc.Find("tr.gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.gsc_a_at").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		year := strings.TrimSpace(row.Find("td.gsc_a_y").First().Text())
		if !yearExpr.MatchString(year) || year < sinceYear {
			return
		}

		href, _ := link.Attr("href")
		works = append(works, domain.Work{
			Title:           title,
			Link:            resolveLink(base, href),
			PublicationDate: year + "-01-01",
		})
	})

	s.debug("scanned profile", "url", profileURL, "since", sinceDate, "count", len(works))
	return works, nil
}

// FetchTotals reads the citation counter from the profile's stats table and
// counts listed publications as the works total.
func (s *Scanner) FetchTotals(ctx context.Context, profileURL string) (domain.Totals, error) {
	doc, _, err := s.fetchDocument(ctx, profileURL)
	if err != nil {
		return domain.Totals{}, err
	}

	citationsText := strings.TrimSpace(doc.Find("#gsc_rsb_st td.gsc_rsb_std").First().Text())
	citations, err := strconv.Atoi(citationsText)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("profile %s: unreadable citation counter %q", profileURL, citationsText)
	}

	return domain.Totals{
		Works:     doc.Find("tr.gsc_a_tr").Length(),
		Citations: citations,
	}, nil
}

func (s *Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil || !strings.HasPrefix(base.Scheme, "http") {
		return nil, nil, fmt.Errorf("invalid profile url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "scholartrack/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("profile returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse profile: %w", err)
	}

	return doc, base, nil
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}

func (s *Scanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
