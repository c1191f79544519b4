package domain

// SnapshotSentinelDate is used as last_check for entities observed for the
// first time, so the initial works query reaches arbitrarily far back.
const SnapshotSentinelDate = "1900-01-01"

// SnapshotRow is the last fully-observed state of one entity. Dates are ISO
// yyyy-mm-dd strings on purpose: they compare correctly as plain strings and
// round-trip through storage without timezone drift.
type SnapshotRow struct {
	EntityID       string
	LastCheck      string
	TotalWorks     int
	TotalCitations int
	LastPubDate    string
}

// DeltaRecord captures one entity's non-zero change for one run. Appended to
// the activity log and then discarded; never mutated after creation.
type DeltaRecord struct {
	Date            string
	EntityID        string
	NewPublications int
	Titles          []string
	Links           []string
	CitationDelta   int
	Source          string
}

// OutcomeKind tags the result of a per-entity source operation.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeDegraded
	OutcomeSkipped
)

// FetchOutcome makes degrade-and-continue explicit: instead of swallowing a
// source failure, each per-entity operation reports whether it produced data,
// degraded to "no data", or was skipped, with a human-readable reason.
type FetchOutcome struct {
	Kind   OutcomeKind
	Reason string
}

// OK reports a successful source operation.
func OK() FetchOutcome { return FetchOutcome{Kind: OutcomeOK} }

// Degraded reports a failed source operation absorbed as "no data".
func Degraded(reason string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeDegraded, Reason: reason}
}

// Skipped reports an operation that never ran (e.g. missing identifier).
func Skipped(reason string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSkipped, Reason: reason}
}
