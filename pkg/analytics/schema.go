package analytics

// accountColumn is the analytics account identifier column present on every
// queryable table. The mandatory access predicate is built over it.
const accountColumn = "account_id"

// tableColumns is the per-table column allow-list. Filter fields, metric
// projections, and order-by columns must all resolve here (or to an
// aggregate alias) before being lowered to SQL; a raw filter key never
// passes through as a column name.
var tableColumns = map[string]map[string]bool{
	"campaign_statistics": {
		"account_id":          true,
		"campaign_id":         true,
		"campaign_message_id": true,
		"campaign_name":       true,
		"send_channel":        true,
		"date":                true,
		"recipients":          true,
		"delivered":           true,
		"opens_unique":        true,
		"clicks_unique":       true,
		"conversions":         true,
		"conversion_value":    true,
		"open_rate":           true,
		"click_rate":          true,
		"conversion_rate":     true,
	},
	"flow_statistics": {
		"account_id":       true,
		"flow_id":          true,
		"flow_message_id":  true,
		"flow_name":        true,
		"send_channel":     true,
		"date":             true,
		"recipients":       true,
		"delivered":        true,
		"opens_unique":     true,
		"clicks_unique":    true,
		"conversions":      true,
		"conversion_value": true,
		"open_rate":        true,
		"click_rate":       true,
		"conversion_rate":  true,
	},
}

// aggregateAliases are the output columns produced by the grouped templates.
// They are valid order-by targets but not filterable source columns.
var aggregateAliases = map[string]bool{
	"total_recipients":    true,
	"total_delivered":     true,
	"total_opens_unique":  true,
	"total_clicks_unique": true,
	"total_conversions":   true,
	"total_revenue":       true,
	"avg_open_rate":       true,
	"avg_click_rate":      true,
	"avg_conversion_rate": true,
	"first_send_date":     true,
	"last_send_date":      true,
}

// scalarAggregators are the allowed legacy scalar aggregation functions.
var scalarAggregators = map[string]bool{
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
	"count": true,
}

func columnAllowed(table, column string) bool {
	cols, ok := tableColumns[table]
	return ok && cols[column]
}

func orderableColumn(table, column string) bool {
	return columnAllowed(table, column) || aggregateAliases[column]
}
