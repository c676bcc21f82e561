package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/config"
)

func newTestHealthHandler() *HealthHandler {
	cfg := &config.Config{
		Env:     "test",
		Version: "1.2.3",
	}
	cfg.LLM.PremiumModel = "anthropic/claude-sonnet-4.5"
	cfg.LLM.LargeContextModel = "google/gemini-2.5-pro"
	cfg.LLM.MinimalModel = "anthropic/claude-haiku-4.5"
	cfg.ClickHouse.Database = "analytics"
	return NewHealthHandler(cfg, zap.NewNop())
}

func TestHealth(t *testing.T) {
	h := newTestHealthHandler()
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPing_ReportsRoutingTable(t *testing.T) {
	h := newTestHealthHandler()
	rec := httptest.NewRecorder()

	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "insight-engine", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "anthropic/claude-sonnet-4.5", resp.PremiumModel)
	assert.Equal(t, "google/gemini-2.5-pro", resp.LargeContextModel)
	assert.Equal(t, "anthropic/claude-haiku-4.5", resp.MinimalModel)
	assert.Equal(t, "analytics", resp.AnalyticsDatabase)
}
