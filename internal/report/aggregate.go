package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"scholartrack/internal/domain"
)

// veryManyDays stands in for unparsable day counts so those entities never
// qualify for priority outreach.
const veryManyDays = 999999

// Options tunes the country rollup. Zero values fall back to the defaults
// used since the first report: 90-day priority window, top 5 universities,
// top 8 machine signals, no country restriction.
type Options struct {
	Countries       []string
	PriorityDays    int
	TopUniversities int
	TopMachines     int
}

func (o Options) normalized() Options {
	if o.PriorityDays <= 0 {
		o.PriorityDays = 90
	}
	if o.TopUniversities <= 0 {
		o.TopUniversities = 5
	}
	if o.TopMachines <= 0 {
		o.TopMachines = 8
	}
	return o
}

// Build groups the roster by country and computes one aggregate per group.
// Group order follows first appearance in the roster; entities with an empty
// or header-like country cell are dropped, and when an allow-list is
// configured every other country is dropped too.
func Build(month string, roster []domain.TrackedEntity, opts Options) []domain.CountryAggregate {
	opts = opts.normalized()

	allowed := map[string]bool{}
	for _, c := range opts.Countries {
		if c = strings.TrimSpace(c); c != "" {
			allowed[c] = true
		}
	}

	groups := map[string][]domain.TrackedEntity{}
	var order []string
	for _, e := range roster {
		country := strings.TrimSpace(e.Country)
		if country == "" || country == "Country" {
			continue
		}
		if len(allowed) > 0 && !allowed[country] {
			continue
		}
		if _, ok := groups[country]; !ok {
			order = append(order, country)
		}
		groups[country] = append(groups[country], e)
	}

	aggregates := make([]domain.CountryAggregate, 0, len(order))
	for _, country := range order {
		aggregates = append(aggregates, buildCountry(month, country, groups[country], opts))
	}
	return aggregates
}

func buildCountry(month, country string, rows []domain.TrackedEntity, opts Options) domain.CountryAggregate {
	statusCounts := map[domain.ActivityStatus]int{}
	known := map[domain.ActivityStatus]bool{}
	for _, s := range domain.KnownStatuses() {
		known[s] = true
	}

	priority := 0
	universities := newCounter()
	machines := newCounter()

	for _, r := range rows {
		status := domain.ActivityStatus(strings.TrimSpace(string(r.Status)))
		if known[status] {
			statusCounts[status]++
		}

		if status == domain.StatusHighlyActive || status == domain.StatusActive {
			if safeInt(r.DaysSinceLastPub) <= opts.PriorityDays {
				priority++
			}
		}

		if uni := strings.TrimSpace(r.University); uni != "" {
			universities.add(uni)
		}

		for _, signal := range SplitSignals(r.Machines) {
			machines.add(signal)
		}
	}

	return domain.CountryAggregate{
		Month:            month,
		Country:          country,
		Total:            len(rows),
		StatusCounts:     statusCounts,
		PriorityOutreach: priority,
		TopUniversities:  universities.top(opts.TopUniversities),
		TopMachines:      machines.top(opts.TopMachines),
	}
}

// SplitSignals breaks a free-form equipment cell into individual tokens.
// Cells mix ";" and "," as delimiters; both split, tokens are trimmed and
// empties dropped.
func SplitSignals(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(cell, ";", ","), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func safeInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return veryManyDays
	}
	return n
}

// counter tallies string keys while remembering first-seen order, so ranking
// is stable: higher count first, earlier appearance wins ties.
type counter struct {
	counts map[string]int
	seen   map[string]int
	next   int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, seen: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.seen[key]; !ok {
		c.seen[key] = c.next
		c.next++
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if c.counts[keys[i]] != c.counts[keys[j]] {
			return c.counts[keys[i]] > c.counts[keys[j]]
		}
		return c.seen[keys[i]] < c.seen[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// MonthLabel renders the period key for aggregates, e.g. "2026-08".
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}

// MonthEnd returns the last day of the month preceding t, so a job run on
// the 1st archives the month that just closed.
func MonthEnd(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 0, -1)
}
