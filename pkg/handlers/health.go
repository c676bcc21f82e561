package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/config"
)

// PingResponse reports service identity and the active model routing table.
// Operators use it to confirm which models a deployment routes to without
// reading its config.
type PingResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	Version           string `json:"version"`
	Environment       string `json:"environment"`
	PremiumModel      string `json:"premium_model"`
	LargeContextModel string `json:"large_context_model"`
	MinimalModel      string `json:"minimal_model"`
	AnalyticsDatabase string `json:"analytics_database"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler with the given configuration.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests with deployment details.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:            "ok",
		Service:           "insight-engine",
		Version:           h.cfg.Version,
		Environment:       h.cfg.Env,
		PremiumModel:      h.cfg.LLM.PremiumModel,
		LargeContextModel: h.cfg.LLM.LargeContextModel,
		MinimalModel:      h.cfg.LLM.MinimalModel,
		AnalyticsDatabase: h.cfg.ClickHouse.Database,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
