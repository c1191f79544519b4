package report

import (
	"fmt"
	"strings"

	"scholartrack/internal/domain"
)

// naSentinel marks empty rankings in the rendered sentence.
const naSentinel = "N/A"

// RenderSummary renders the executive paragraph for one aggregate. The text
// is a pure function of the aggregate: identical input always produces the
// identical byte sequence, which lets downstream consumers diff summaries
// month over month. Timestamps live next to the text, never inside it.
func RenderSummary(a domain.CountryAggregate) string {
	dormant := a.Count(domain.StatusDormant) + a.Count(domain.StatusStagnant)

	return fmt.Sprintf(
		"%s — %s academic activity summary: "+
			"%d professors tracked. "+
			"%d highly active and %d active (priority outreach), %d stable. "+
			"%d dormant/stagnant (monitor). "+
			"Top university clusters: %s. "+
			"Most frequent equipment signals: %s.",
		a.Month,
		a.Country,
		a.Total,
		a.Count(domain.StatusHighlyActive),
		a.Count(domain.StatusActive),
		a.Count(domain.StatusStable),
		dormant,
		joinOrNA(a.TopUniversities),
		joinOrNA(a.TopMachines),
	)
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return naSentinel
	}
	return strings.Join(items, " | ")
}
