package models

// AggregationMode determines the SELECT/GROUP BY shape of an analytics query.
type AggregationMode string

const (
	// AggregationNone returns raw rows with no grouping.
	AggregationNone AggregationMode = "none"
	// AggregationByCampaign groups rows per campaign, summing volume metrics
	// and averaging rate metrics.
	AggregationByCampaign AggregationMode = "by_campaign"
	// AggregationByFlow groups rows per flow, summing volume metrics and
	// averaging rate metrics.
	AggregationByFlow AggregationMode = "by_flow"
)

// FilterKind tags the shape of a query filter.
type FilterKind string

const (
	// FilterDateRange bounds the date column between Start and End (inclusive).
	FilterDateRange FilterKind = "date_range"
	// FilterEquality requires the column to equal Value.
	FilterEquality FilterKind = "equality"
	// FilterThreshold requires the column to be >= Value.
	FilterThreshold FilterKind = "threshold"
)

// Filter is a single declarative predicate. Field names are validated against
// a per-table allow-list before being lowered to SQL; values are always bound
// as named parameters, never interpolated into the query text.
type Filter struct {
	Kind  FilterKind `json:"kind"`
	Field string     `json:"field,omitempty"`
	Value any        `json:"value,omitempty"`
	Start string     `json:"start,omitempty"` // date range bound, YYYY-MM-DD
	End   string     `json:"end,omitempty"`   // date range bound, YYYY-MM-DD
}

// DefaultQueryLimit caps result sets when the caller does not set a limit.
const DefaultQueryLimit = 50

// QueryRequest is a declarative description of one analytics read.
type QueryRequest struct {
	// Table is the target dataset, e.g. "campaign_statistics".
	Table string `json:"table"`

	// Filters are applied in addition to the mandatory account-ID predicate.
	Filters []Filter `json:"filters,omitempty"`

	// Metrics are the projected columns when Aggregation is AggregationNone,
	// or the aggregated columns on the legacy ScalarAgg path.
	Metrics []string `json:"metrics,omitempty"`

	// Aggregation selects a named grouping template.
	Aggregation AggregationMode `json:"aggregation,omitempty"`

	// ScalarAgg is the legacy scalar aggregator ("sum", "avg", ...) applied to
	// each metric and grouped by account ID only. Ignored when Aggregation
	// names a grouping template.
	ScalarAgg string `json:"scalar_agg,omitempty"`

	// OrderBy overrides the mode's natural ordering. Must name an allow-listed
	// column or aggregate alias.
	OrderBy string `json:"order_by,omitempty"`

	// Limit caps the row count; 0 means DefaultQueryLimit.
	Limit int `json:"limit,omitempty"`
}

// Row is one result row keyed by output column name.
type Row map[string]any

// QueryInfo describes how a result set was produced.
type QueryInfo struct {
	Table          string   `json:"table"`
	StoresQueried  []string `json:"stores_queried"`
	TotalRows      int      `json:"total_rows"`
	Aggregation    string   `json:"aggregation"`
	FiltersApplied []string `json:"filters_applied"`
	DateRange      *Filter  `json:"date_range,omitempty"`
}

// QueryResult is the enriched output of the analytics query builder. Every row
// is traceable back to a store the caller was authorized to see.
type QueryResult struct {
	Rows []Row     `json:"data"`
	Info QueryInfo `json:"query_info"`
}
