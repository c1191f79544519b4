package domain

// ActivityStatus classifies how recently an entity has published.
// Values are assigned upstream by the roster maintainers; anything outside
// the known set is kept on the entity but excluded from histograms.
type ActivityStatus string

const (
	StatusHighlyActive ActivityStatus = "HIGHLY ACTIVE"
	StatusActive       ActivityStatus = "ACTIVE"
	StatusStable       ActivityStatus = "STABLE"
	StatusDormant      ActivityStatus = "DORMANT"
	StatusStagnant     ActivityStatus = "STAGNANT"
)

// KnownStatuses returns the closed status set in report column order.
func KnownStatuses() []ActivityStatus {
	return []ActivityStatus{
		StatusHighlyActive,
		StatusActive,
		StatusStable,
		StatusDormant,
		StatusStagnant,
	}
}

// TrackedEntity is one roster row: a person or institution we follow.
// The roster is maintained externally and read-only to this service; free-form
// cells (Machines, DaysSinceLastPub) stay raw strings and are interpreted at
// the point of use.
type TrackedEntity struct {
	ID               string
	Name             string
	Country          string
	University       string
	Department       string
	CategoryCode     string
	Machines         string
	Status           ActivityStatus
	DaysSinceLastPub string
	LastPubDate      string
	OpenAlexID       string
	ProfileURL       string
}

// Work is a single publication returned by an activity source.
type Work struct {
	Title           string
	Link            string
	PublicationDate string
}

// Totals is the source's current aggregate view of one entity.
type Totals struct {
	Works     int
	Citations int
}
