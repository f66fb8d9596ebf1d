package analysis

import (
	"errors"
	"strings"
)

// ErrMalformedOutput is returned when the model's response cannot be parsed
// as the required schema, or parses but violates a field constraint. It is
// distinct from transport failures: malformed output means prompt or schema
// drift and is worth alerting on, not just logging.
var ErrMalformedOutput = errors.New("malformed model output")

// Severity levels for flagged clauses.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// FlaggedClause is a contract clause the model considers problematic.
type FlaggedClause struct {
	Clause   string `json:"clause"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

// NegotiationMessage is a ready-to-send message the employee can use to push
// back on a clause. The clause text is expected, not guaranteed, to match a
// flagged clause by exact string equality; it is a soft association.
type NegotiationMessage struct {
	Clause  string `json:"clause"`
	Message string `json:"message"`
}

// Result is the structured legal-risk assessment for one contract.
// Immutable once produced.
type Result struct {
	Summary             string               `json:"summary"`
	OverallScore        int                  `json:"overall_score"`
	FlaggedClauses      []FlaggedClause      `json:"flagged_clauses"`
	NegotiationMessages []NegotiationMessage `json:"negotiation_messages"`
}

// normalizeSeverity maps case variants onto the canonical levels.
// Anything else is schema drift.
func normalizeSeverity(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	default:
		return "", false
	}
}
