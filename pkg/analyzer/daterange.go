package analyzer

import (
	"strings"
	"time"

	"github.com/wizel-ai/insight-engine/pkg/models"
)

// DefaultRangeLabel marks a range that was assumed rather than requested.
const DefaultRangeLabel = "past 7 days (default)"

// rangeMatchers is evaluated top to bottom, first match wins. The ordering is
// deliberate: more specific multi-word phrases must come before shorter
// overlapping substrings, so new entries must preserve specificity ordering.
var rangeMatchers = []struct {
	phrases []string
	days    int
	label   string
	class   models.PromptClass
}{
	{[]string{"yesterday"}, 1, "yesterday", models.PromptClassShort},
	{[]string{"today"}, 1, "today", models.PromptClassShort},
	{[]string{"last 7 days", "past 7 days", "this week", "last week", "past week"},
		7, "past 7 days", models.PromptClassShort},
	{[]string{"last 14 days", "past 14 days", "two weeks", "2 weeks"},
		14, "past 14 days", models.PromptClassShort},
	{[]string{"last 30 days", "past 30 days", "this month", "last month", "past month"},
		30, "past 30 days", models.PromptClassLong},
	{[]string{"last 90 days", "past 90 days", "quarter", "quarterly"},
		90, "past 90 days", models.PromptClassLong},
}

// ParseDateRange resolves an analysis window from free text, defaulting to a
// trailing 7-day window when no phrase matches.
func ParseDateRange(message string) models.DateRange {
	return parseDateRangeAt(message, time.Now())
}

func parseDateRangeAt(message string, now time.Time) models.DateRange {
	lower := strings.ToLower(message)

	for _, m := range rangeMatchers {
		for _, phrase := range m.phrases {
			if !strings.Contains(lower, phrase) {
				continue
			}
			r := models.DateRange{
				Days:  m.days,
				Label: m.label,
				Class: m.class,
				End:   now,
			}
			switch m.label {
			case "yesterday":
				r.Start = now.AddDate(0, 0, -1)
				r.End = r.Start
			case "today":
				r.Start = now
			default:
				r.Start = now.AddDate(0, 0, -m.days)
			}
			return r
		}
	}

	return models.DateRange{
		Start: now.AddDate(0, 0, -7),
		End:   now,
		Days:  7,
		Label: DefaultRangeLabel,
		Class: models.PromptClassShort,
	}
}

// DateRangeFromContext extracts an explicit date range from on-screen UI
// state, e.g. a dashboard date picker. Returns nil when the context carries
// none; an explicit range takes precedence over text parsing.
func DateRangeFromContext(uiContext *models.UIContext) *models.DateRange {
	if uiContext == nil || uiContext.DateRange == nil {
		return nil
	}

	ui := uiContext.DateRange
	start, err := parseUIDate(ui.Start)
	if err != nil {
		return nil
	}
	end, err := parseUIDate(ui.End)
	if err != nil {
		return nil
	}

	days := ui.DaysSpan
	if days <= 0 {
		days = 7
	}
	label := ui.Preset
	if label == "" {
		label = "custom range"
	}
	class := models.PromptClassLong
	if days <= 14 {
		class = models.PromptClassShort
	}

	return &models.DateRange{
		Start: start,
		End:   end,
		Days:  days,
		Label: label,
		Class: class,
	}
}

func parseUIDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
