package stores

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/analytics"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

// accessQuery reads a caller's store roster from the replicated access table.
// account_id is empty for stores without a connected analytics integration.
const accessQuery = `SELECT store_public_id, store_name, account_id ` +
	`FROM user_store_access WHERE user_id = @user_id ORDER BY store_name`

// AnalyticsDirectory lists accessible stores from the access table replicated
// into the analytics store. It implements Directory.
type AnalyticsDirectory struct {
	executor analytics.Executor
	logger   *zap.Logger
}

// NewAnalyticsDirectory creates a Directory backed by the analytics store.
func NewAnalyticsDirectory(executor analytics.Executor, logger *zap.Logger) *AnalyticsDirectory {
	return &AnalyticsDirectory{
		executor: executor,
		logger:   logger.Named("directory"),
	}
}

// ListAccessibleStores implements Directory. Results are fetched fresh per
// request; authorization changes take effect immediately.
func (d *AnalyticsDirectory) ListAccessibleStores(ctx context.Context, callerID string) ([]models.AccessibleStore, error) {
	if callerID == "" {
		return nil, fmt.Errorf("caller ID is required")
	}

	rows, err := d.executor.Query(ctx, accessQuery, map[string]any{"user_id": callerID})
	if err != nil {
		return nil, fmt.Errorf("list accessible stores: %w", err)
	}

	accessible := make([]models.AccessibleStore, 0, len(rows))
	for _, row := range rows {
		publicID, _ := row["store_public_id"].(string)
		name, _ := row["store_name"].(string)
		accountID, _ := row["account_id"].(string)
		if publicID == "" {
			continue
		}
		accessible = append(accessible, models.AccessibleStore{
			PublicID:           publicID,
			Name:               name,
			AnalyticsAccountID: accountID,
		})
	}

	d.logger.Debug("listed accessible stores",
		zap.String("caller_id", callerID),
		zap.Int("count", len(accessible)))

	return accessible, nil
}
