package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

// fakeExecutor captures the built query instead of talking to a real store.
type fakeExecutor struct {
	lastQuery  string
	lastParams map[string]any
	rows       []models.Row
	err        error
	calls      int
}

func (f *fakeExecutor) Query(_ context.Context, query string, params map[string]any) ([]models.Row, error) {
	f.calls++
	f.lastQuery = query
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

var builderStores = []models.AccessibleStore{
	{PublicID: "st_alpha", Name: "Alpha Outfitters", AnalyticsAccountID: "ka_001"},
	{PublicID: "st_bravo", Name: "Bravo Beauty", AnalyticsAccountID: "ka_002"},
}

func newTestBuilder(exec *fakeExecutor) *Builder {
	return NewBuilder(exec, zap.NewNop())
}

func TestExecute_ZeroAccountIDsShortCircuits(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{Table: "campaign_statistics"}, nil, builderStores)
	assert.ErrorIs(t, err, apperrors.ErrNoAuthorizedAccounts)
	assert.Zero(t, exec.calls, "no query may execute without authorized accounts")
}

func TestExecute_AccountPredicateAlwaysPresent(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:       "campaign_statistics",
		Aggregation: models.AggregationByCampaign,
	}, []string{"ka_001", "ka_002"}, builderStores)
	require.NoError(t, err)

	assert.Contains(t, exec.lastQuery, "account_id IN (@aid0, @aid1)")
	assert.Equal(t, "ka_001", exec.lastParams["aid0"])
	assert.Equal(t, "ka_002", exec.lastParams["aid1"])

	// Only the authorized identifiers appear as parameters.
	for _, v := range exec.lastParams {
		assert.NotEqual(t, "ka_evil", v)
	}
}

func TestExecute_ByCampaignTemplate(t *testing.T) {
	exec := &fakeExecutor{rows: []models.Row{
		{"account_id": "ka_001", "campaign_id": "c1", "total_revenue": 1234.5},
	}}
	b := newTestBuilder(exec)

	result, err := b.Execute(context.Background(), models.QueryRequest{
		Table:       "campaign_statistics",
		Aggregation: models.AggregationByCampaign,
		Filters: []models.Filter{
			{Kind: models.FilterDateRange, Start: "2026-08-01", End: "2026-08-31"},
			{Kind: models.FilterEquality, Field: "send_channel", Value: "email"},
			{Kind: models.FilterThreshold, Field: "recipients", Value: 100},
		},
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	q := exec.lastQuery
	assert.Contains(t, q, "SUM(conversion_value) AS total_revenue")
	assert.Contains(t, q, "AVG(open_rate) AS avg_open_rate")
	assert.Contains(t, q, "GROUP BY account_id, campaign_id, campaign_message_id, send_channel")
	assert.Contains(t, q, "ORDER BY total_revenue DESC")
	assert.Contains(t, q, "date >= @f0_start AND date <= @f0_end")
	assert.Contains(t, q, "send_channel = @f1")
	assert.Contains(t, q, "recipients >= @f2")
	assert.Equal(t, "2026-08-01", exec.lastParams["f0_start"])
	assert.Equal(t, "email", exec.lastParams["f1"])

	// Enrichment joins rows back to the store roster in memory.
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Alpha Outfitters", result.Rows[0]["store_name"])
	assert.Equal(t, "st_alpha", result.Rows[0]["store_public_id"])

	assert.Equal(t, "by_campaign", result.Info.Aggregation)
	assert.Equal(t, []string{"Alpha Outfitters", "Bravo Beauty"}, result.Info.StoresQueried)
	require.NotNil(t, result.Info.DateRange)
	assert.Equal(t, "2026-08-01", result.Info.DateRange.Start)
}

func TestExecute_ByFlowTemplate(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:       "flow_statistics",
		Aggregation: models.AggregationByFlow,
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	assert.Contains(t, exec.lastQuery, "GROUP BY account_id, flow_id, flow_message_id, send_channel")
	assert.Contains(t, exec.lastQuery, "ORDER BY total_revenue DESC")
}

func TestExecute_AggregationTableMismatch(t *testing.T) {
	b := newTestBuilder(&fakeExecutor{})

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:       "flow_statistics",
		Aggregation: models.AggregationByCampaign,
	}, []string{"ka_001"}, builderStores)
	assert.Error(t, err)
}

func TestExecute_LegacyScalarAggregation(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:     "campaign_statistics",
		Metrics:   []string{"recipients", "conversion_value"},
		ScalarAgg: "sum",
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	assert.Contains(t, exec.lastQuery, "SUM(recipients) AS recipients_sum")
	assert.Contains(t, exec.lastQuery, "SUM(conversion_value) AS conversion_value_sum")
	assert.Contains(t, exec.lastQuery, "GROUP BY account_id")
}

func TestExecute_DefaultLimitApplied(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table: "campaign_statistics",
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(exec.lastQuery, "LIMIT @limit"))
	assert.Equal(t, models.DefaultQueryLimit, exec.lastParams["limit"])
}

func TestExecute_ExplicitLimitAndOrderBy(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:       "campaign_statistics",
		Aggregation: models.AggregationByCampaign,
		OrderBy:     "avg_open_rate",
		Limit:       10,
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	assert.Contains(t, exec.lastQuery, "ORDER BY avg_open_rate DESC")
	assert.NotContains(t, exec.lastQuery, "ORDER BY total_revenue")
	assert.Equal(t, 10, exec.lastParams["limit"])
}

func TestExecute_OrderByNotAllowListed(t *testing.T) {
	b := newTestBuilder(&fakeExecutor{})

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table:   "campaign_statistics",
		OrderBy: "evil; DROP TABLE x",
	}, []string{"ka_001"}, builderStores)
	assert.Error(t, err)
}

func TestExecute_UnknownFilterColumnRejected(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table: "campaign_statistics",
		Filters: []models.Filter{
			{Kind: models.FilterEquality, Field: "password", Value: "x"},
		},
	}, []string{"ka_001"}, builderStores)
	assert.Error(t, err)
	assert.Zero(t, exec.calls)
}

func TestExecute_HostileFilterValueRejected(t *testing.T) {
	exec := &fakeExecutor{}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table: "campaign_statistics",
		Filters: []models.Filter{
			{Kind: models.FilterEquality, Field: "send_channel", Value: "'; DROP TABLE campaign_statistics--"},
		},
	}, []string{"ka_001"}, builderStores)
	assert.Error(t, err)
	assert.Zero(t, exec.calls)
}

func TestExecute_UnmatchedAccountGetsPlaceholder(t *testing.T) {
	exec := &fakeExecutor{rows: []models.Row{
		{"account_id": "ka_gone", "campaign_id": "c9"},
	}}
	b := newTestBuilder(exec)

	result, err := b.Execute(context.Background(), models.QueryRequest{
		Table: "campaign_statistics",
	}, []string{"ka_001"}, builderStores)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Unknown Store", result.Rows[0]["store_name"])
	assert.Nil(t, result.Rows[0]["store_public_id"])
}

func TestExecute_ExecutionFailurePropagates(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("clickhouse: connection refused")}
	b := newTestBuilder(exec)

	_, err := b.Execute(context.Background(), models.QueryRequest{
		Table: "campaign_statistics",
	}, []string{"ka_001"}, builderStores)
	require.Error(t, err)
	assert.Equal(t, 1, exec.calls, "execution failures are not retried at this layer")
}
