package domain

import "time"

// CountryAggregate is the per-(month, country) rollup of roster statuses and
// ranked signals. Purely derived; persisted only by the aggregate sink.
type CountryAggregate struct {
	Month            string
	Country          string
	Total            int
	StatusCounts     map[ActivityStatus]int
	PriorityOutreach int
	TopUniversities  []string
	TopMachines      []string
}

// Count returns the histogram entry for one status (zero when absent).
func (a CountryAggregate) Count(status ActivityStatus) int {
	return a.StatusCounts[status]
}

// ExecutiveSummary is the rendered narrative for one aggregate. CreatedAt is
// bookkeeping recorded next to the text, never embedded in it, so the text
// stays reproducible.
type ExecutiveSummary struct {
	Month     string
	Country   string
	Text      string
	CreatedAt time.Time
}
