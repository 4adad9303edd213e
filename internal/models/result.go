package models

// Outcome classifies how the service handled one entry line.
type Outcome string

const (
	OutcomeAppended  Outcome = "appended"
	OutcomeRetracted Outcome = "retracted"
	// OutcomeNoop is a retraction against an empty ledger.
	OutcomeNoop Outcome = "noop"
	// OutcomeDuplicate is a repeated idempotency key; the ledger is untouched.
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeRejected  Outcome = "rejected"
)

// LineResult is the outcome of one submission plus the view that follows it.
type LineResult struct {
	Outcome   Outcome
	Appended  int
	Retracted int
	Analysis  Analysis
}
