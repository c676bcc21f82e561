package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/logging"
)

// callerHeader identifies the authenticated caller. Authentication itself
// happens upstream; this service trusts the gateway-set header.
const callerHeader = "X-User-ID"

// RegisterRoutes registers the chat handler's routes on the given mux.
// The method guard mirrors the "POST /api/chat" mux pattern, which needs Go 1.22+.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.Chat(w, r)
	})
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	callerID := r.Header.Get(callerHeader)
	if callerID == "" {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "missing caller identity")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	req.CallerID = callerID

	if strings.TrimSpace(req.Message) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}

	start := time.Now()
	result, err := h.HandleMessage(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoAccessibleStores):
			_ = ErrorResponse(w, http.StatusForbidden, "no_accessible_stores",
				"No stores accessible. Please contact your administrator.")
		case errors.Is(err, apperrors.ErrBlockedInput):
			_ = ErrorResponse(w, http.StatusBadRequest, "blocked_input", "message was rejected")
		default:
			h.logger.Error("chat request failed",
				zap.String("request_id", requestID),
				zap.String("error", logging.SanitizeError(err)))
			_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error",
				"Something went wrong. Please try again.")
		}
		return
	}

	h.logger.Info("chat request completed",
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Strings("tools_used", result.ToolsUsed))

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}
