// Package sql provides safety checks applied to analytics queries: injection
// screening of filter values and single-statement validation of generated SQL.
package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/wizel-ai/insight-engine/pkg/models"
)

// InjectionCheckResult describes a filter value that failed injection
// screening.
type InjectionCheckResult struct {
	IsSQLi      bool   // SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Field       string // filter field whose value failed the check
	Value       any    // the value that was checked
}

// CheckFilterValue screens one filter value with libinjection. Filter values
// are always bound as parameters, never interpolated; this check is a second
// layer that rejects hostile values before they reach the analytics store at
// all.
//
// Only string values are checked. Numbers and booleans cannot carry injection
// payloads and return nil.
func CheckFilterValue(field string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Field:       field,
			Value:       value,
		}
	}

	return nil
}

// CheckFilters screens every value in a filter list. It returns one result
// per failing filter; an empty slice means all values are clean. Date-range
// bounds are included since they arrive as strings.
func CheckFilters(filters []models.Filter) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for _, f := range filters {
		switch f.Kind {
		case models.FilterDateRange:
			if r := CheckFilterValue(f.Field+".start", f.Start); r != nil {
				results = append(results, r)
			}
			if r := CheckFilterValue(f.Field+".end", f.End); r != nil {
				results = append(results, r)
			}
		default:
			if r := CheckFilterValue(f.Field, f.Value); r != nil {
				results = append(results, r)
			}
		}
	}
	return results
}
