// Package analytics translates declarative query requests into parameterized
// aggregation SQL and executes them against the analytics store. The
// account-identifier membership predicate is never omitted; it is the
// enforcement boundary between a caller and data they are not authorized to
// see.
package analytics

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/logging"
	"github.com/wizel-ai/insight-engine/pkg/models"
	enginesql "github.com/wizel-ai/insight-engine/pkg/sql"
)

// Executor runs a parameterized query against the analytics store and returns
// row maps. Implementations must bind params server-side; query text never
// contains values.
type Executor interface {
	Query(ctx context.Context, query string, params map[string]any) ([]models.Row, error)
}

// Builder builds and executes analytics queries.
type Builder struct {
	executor Executor
	logger   *zap.Logger
}

// NewBuilder creates a Builder over the given executor.
func NewBuilder(executor Executor, logger *zap.Logger) *Builder {
	return &Builder{
		executor: executor,
		logger:   logger.Named("analytics"),
	}
}

// Execute runs one declarative query scoped to the authorized account IDs and
// enriches the result rows with store display names.
//
// accountIDs must come from the permission resolver (or an already-authorized
// internal caller); zero IDs is an immediate error with no query execution.
// Underlying execution failures are not retried here; retry policy belongs to
// the caller.
func (b *Builder) Execute(ctx context.Context, req models.QueryRequest, accountIDs []string, authorized []models.AccessibleStore) (*models.QueryResult, error) {
	if len(accountIDs) == 0 {
		return nil, apperrors.ErrNoAuthorizedAccounts
	}
	if _, ok := tableColumns[req.Table]; !ok {
		return nil, fmt.Errorf("unknown table %q", req.Table)
	}

	if hits := enginesql.CheckFilters(req.Filters); len(hits) > 0 {
		b.logger.Warn("rejected filter values failing injection screen",
			zap.String("table", req.Table),
			zap.String("field", hits[0].Field),
			zap.String("fingerprint", hits[0].Fingerprint))
		return nil, fmt.Errorf("filter value for %q rejected by injection screen", hits[0].Field)
	}

	query, params, err := b.buildQuery(req, accountIDs)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("executing analytics query",
		zap.String("table", req.Table),
		zap.String("aggregation", aggregationLabel(req)),
		zap.String("query", logging.SanitizeQuery(query)),
		zap.Int("account_count", len(accountIDs)))

	rows, err := b.executor.Query(ctx, query, params)
	if err != nil {
		b.logger.Error("analytics query failed",
			zap.String("table", req.Table),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("execute analytics query: %w", err)
	}

	enriched := enrichRows(rows, authorized)

	return &models.QueryResult{
		Rows: enriched,
		Info: models.QueryInfo{
			Table:          req.Table,
			StoresQueried:  storeNames(authorized),
			TotalRows:      len(enriched),
			Aggregation:    aggregationLabel(req),
			FiltersApplied: filterFields(req.Filters),
			DateRange:      dateRangeFilter(req.Filters),
		},
	}, nil
}

// buildQuery lowers the request to SQL text plus named parameters.
func (b *Builder) buildQuery(req models.QueryRequest, accountIDs []string) (string, map[string]any, error) {
	params := make(map[string]any)

	where, err := buildWhere(req, accountIDs, params)
	if err != nil {
		return "", nil, err
	}

	selectClause, groupBy, defaultOrder, err := buildProjection(req)
	if err != nil {
		return "", nil, err
	}

	orderBy := defaultOrder
	if req.OrderBy != "" {
		if !orderableColumn(req.Table, req.OrderBy) {
			return "", nil, fmt.Errorf("order_by column %q not allowed for table %q", req.OrderBy, req.Table)
		}
		orderBy = fmt.Sprintf("ORDER BY %s DESC", req.OrderBy)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = models.DefaultQueryLimit
	}
	params["limit"] = limit

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectClause)
	sb.WriteString(" FROM ")
	sb.WriteString(req.Table)
	sb.WriteString(" WHERE ")
	sb.WriteString(where)
	if groupBy != "" {
		sb.WriteString(" ")
		sb.WriteString(groupBy)
	}
	if orderBy != "" {
		sb.WriteString(" ")
		sb.WriteString(orderBy)
	}
	sb.WriteString(" LIMIT @limit")

	return sb.String(), params, nil
}

// buildWhere assembles the WHERE clause: the mandatory account membership
// predicate first, then one predicate per validated filter.
func buildWhere(req models.QueryRequest, accountIDs []string, params map[string]any) (string, error) {
	placeholders := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		name := fmt.Sprintf("aid%d", i)
		placeholders[i] = "@" + name
		params[name] = id
	}
	conditions := []string{
		fmt.Sprintf("%s IN (%s)", accountColumn, strings.Join(placeholders, ", ")),
	}

	for i, f := range req.Filters {
		switch f.Kind {
		case models.FilterDateRange:
			field := f.Field
			if field == "" {
				field = "date"
			}
			if !columnAllowed(req.Table, field) {
				return "", fmt.Errorf("filter column %q not allowed for table %q", field, req.Table)
			}
			startName := fmt.Sprintf("f%d_start", i)
			endName := fmt.Sprintf("f%d_end", i)
			params[startName] = f.Start
			params[endName] = f.End
			conditions = append(conditions, fmt.Sprintf("%s >= @%s AND %s <= @%s", field, startName, field, endName))

		case models.FilterEquality:
			if !columnAllowed(req.Table, f.Field) {
				return "", fmt.Errorf("filter column %q not allowed for table %q", f.Field, req.Table)
			}
			name := fmt.Sprintf("f%d", i)
			params[name] = f.Value
			conditions = append(conditions, fmt.Sprintf("%s = @%s", f.Field, name))

		case models.FilterThreshold:
			if !columnAllowed(req.Table, f.Field) {
				return "", fmt.Errorf("filter column %q not allowed for table %q", f.Field, req.Table)
			}
			name := fmt.Sprintf("f%d", i)
			params[name] = f.Value
			conditions = append(conditions, fmt.Sprintf("%s >= @%s", f.Field, name))

		default:
			return "", fmt.Errorf("unknown filter kind %q", f.Kind)
		}
	}

	return strings.Join(conditions, " AND "), nil
}

// buildProjection selects the SELECT/GROUP BY strategy for the request's
// aggregation mode and returns (select, groupBy, defaultOrder).
func buildProjection(req models.QueryRequest) (string, string, string, error) {
	switch req.Aggregation {
	case models.AggregationByCampaign:
		if req.Table != "campaign_statistics" {
			return "", "", "", fmt.Errorf("aggregation %q requires table campaign_statistics", req.Aggregation)
		}
		return groupedProjection("campaign_id, campaign_message_id"),
			"GROUP BY account_id, campaign_id, campaign_message_id, send_channel",
			"ORDER BY total_revenue DESC",
			nil

	case models.AggregationByFlow:
		if req.Table != "flow_statistics" {
			return "", "", "", fmt.Errorf("aggregation %q requires table flow_statistics", req.Aggregation)
		}
		return groupedProjection("flow_id, flow_message_id"),
			"GROUP BY account_id, flow_id, flow_message_id, send_channel",
			"ORDER BY total_revenue DESC",
			nil

	case models.AggregationNone, "":
		if req.ScalarAgg != "" {
			return scalarProjection(req)
		}
		return rawProjection(req)

	default:
		return "", "", "", fmt.Errorf("unknown aggregation mode %q", req.Aggregation)
	}
}

// groupedProjection is the fixed template shared by the by_campaign and
// by_flow modes: volume metrics summed, rate metrics averaged, send-date span
// included.
func groupedProjection(entityKeys string) string {
	return fmt.Sprintf(`account_id, %s, send_channel, `+
		`SUM(recipients) AS total_recipients, `+
		`SUM(delivered) AS total_delivered, `+
		`SUM(opens_unique) AS total_opens_unique, `+
		`SUM(clicks_unique) AS total_clicks_unique, `+
		`SUM(conversions) AS total_conversions, `+
		`SUM(conversion_value) AS total_revenue, `+
		`AVG(open_rate) AS avg_open_rate, `+
		`AVG(click_rate) AS avg_click_rate, `+
		`AVG(conversion_rate) AS avg_conversion_rate, `+
		`MIN(date) AS first_send_date, `+
		`MAX(date) AS last_send_date`, entityKeys)
}

// scalarProjection is the legacy scalar aggregation path: one aggregate per
// requested metric, grouped by account ID only.
func scalarProjection(req models.QueryRequest) (string, string, string, error) {
	agg := strings.ToLower(req.ScalarAgg)
	if !scalarAggregators[agg] {
		return "", "", "", fmt.Errorf("unknown scalar aggregator %q", req.ScalarAgg)
	}
	if len(req.Metrics) == 0 {
		return "", "", "", fmt.Errorf("scalar aggregation requires at least one metric")
	}

	parts := make([]string, 0, len(req.Metrics)+1)
	for _, m := range req.Metrics {
		if !columnAllowed(req.Table, m) {
			return "", "", "", fmt.Errorf("metric column %q not allowed for table %q", m, req.Table)
		}
		parts = append(parts, fmt.Sprintf("%s(%s) AS %s_%s", strings.ToUpper(agg), m, m, agg))
	}
	parts = append(parts, accountColumn)

	return strings.Join(parts, ", "), "GROUP BY " + accountColumn, "", nil
}

// rawProjection returns ungrouped columns.
func rawProjection(req models.QueryRequest) (string, string, string, error) {
	metrics := req.Metrics
	if len(metrics) == 0 {
		return "*", "", "", nil
	}
	for _, m := range metrics {
		if !columnAllowed(req.Table, m) {
			return "", "", "", fmt.Errorf("metric column %q not allowed for table %q", m, req.Table)
		}
	}
	return strings.Join(metrics, ", "), "", "", nil
}

// enrichRows joins rows back to the authorized store list in memory. Rows
// whose account ID has no match keep a placeholder name rather than being
// dropped.
func enrichRows(rows []models.Row, authorized []models.AccessibleStore) []models.Row {
	byAccount := make(map[string]models.AccessibleStore, len(authorized))
	for _, store := range authorized {
		byAccount[store.AnalyticsAccountID] = store
	}

	enriched := make([]models.Row, len(rows))
	for i, row := range rows {
		out := make(models.Row, len(row)+2)
		for k, v := range row {
			out[k] = v
		}

		accountID, _ := row[accountColumn].(string)
		if store, ok := byAccount[accountID]; ok {
			out["store_name"] = store.Name
			out["store_public_id"] = store.PublicID
		} else {
			out["store_name"] = "Unknown Store"
			out["store_public_id"] = nil
		}
		enriched[i] = out
	}
	return enriched
}

func aggregationLabel(req models.QueryRequest) string {
	if req.Aggregation != "" && req.Aggregation != models.AggregationNone {
		return string(req.Aggregation)
	}
	if req.ScalarAgg != "" {
		return req.ScalarAgg
	}
	return string(models.AggregationNone)
}

func filterFields(filters []models.Filter) []string {
	fields := make([]string, 0, len(filters))
	for _, f := range filters {
		field := f.Field
		if field == "" && f.Kind == models.FilterDateRange {
			field = "date"
		}
		fields = append(fields, field)
	}
	return fields
}

func dateRangeFilter(filters []models.Filter) *models.Filter {
	for _, f := range filters {
		if f.Kind == models.FilterDateRange {
			dup := f
			return &dup
		}
	}
	return nil
}

func storeNames(authorized []models.AccessibleStore) []string {
	names := make([]string, 0, len(authorized))
	for _, store := range authorized {
		names = append(names, store.Name)
	}
	return names
}
