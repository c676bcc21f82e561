package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/models"
)

type stubExecutor struct {
	rows   []models.Row
	err    error
	query  string
	params map[string]any
}

func (s *stubExecutor) Query(ctx context.Context, query string, params map[string]any) ([]models.Row, error) {
	s.query = query
	s.params = params
	return s.rows, s.err
}

func TestListAccessibleStores(t *testing.T) {
	executor := &stubExecutor{rows: []models.Row{
		{"store_public_id": "st_alpha", "store_name": "Alpha Outfitters", "account_id": "ka_001"},
		{"store_public_id": "st_charlie", "store_name": "Charlie Coffee", "account_id": ""},
		{"store_public_id": "", "store_name": "orphan row"},
	}}
	d := NewAnalyticsDirectory(executor, zap.NewNop())

	got, err := d.ListAccessibleStores(context.Background(), "user_1")
	require.NoError(t, err)

	assert.Equal(t, "user_1", executor.params["user_id"])
	assert.Contains(t, executor.query, "user_store_access")

	require.Len(t, got, 2)
	assert.True(t, got[0].Connected())
	assert.False(t, got[1].Connected())
	assert.Equal(t, "Alpha Outfitters", got[0].Name)
}

func TestListAccessibleStores_Errors(t *testing.T) {
	d := NewAnalyticsDirectory(&stubExecutor{err: errors.New("boom")}, zap.NewNop())

	_, err := d.ListAccessibleStores(context.Background(), "user_1")
	assert.Error(t, err)

	_, err = d.ListAccessibleStores(context.Background(), "")
	assert.Error(t, err)
}
