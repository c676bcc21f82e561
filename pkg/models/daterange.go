package models

import "time"

// PromptClass selects the analysis prompt and token budget for a date range.
type PromptClass string

const (
	// PromptClassShort drives the tactical weekly template, used for ranges
	// of two weeks or less.
	PromptClassShort PromptClass = "short"
	// PromptClassLong drives the strategic quarterly template.
	PromptClassLong PromptClass = "long"
)

// DateRange is a resolved analysis window. Label keeps the phrase the range
// was derived from; the "(default)" suffix marks an assumed rather than
// requested window.
type DateRange struct {
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
	Days  int         `json:"days"`
	Label string      `json:"label"`
	Class PromptClass `json:"class"`
}

// StartDate formats the range start for analytics queries (YYYY-MM-DD, UTC).
func (r DateRange) StartDate() string {
	return r.Start.UTC().Format("2006-01-02")
}

// EndDate formats the range end for analytics queries (YYYY-MM-DD, UTC).
func (r DateRange) EndDate() string {
	return r.End.UTC().Format("2006-01-02")
}
