package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizel-ai/insight-engine/pkg/llm"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

func doChat(t *testing.T, f *handlerFixture, body string, withCaller bool) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	f.handler.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	if withCaller {
		req.Header.Set("X-User-ID", "user_1")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint_Success(t *testing.T) {
	f := newFixture(&fakeDirectory{stores: handlerStores})
	f.completer.CompleteFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{Content: "hi!", Model: req.Model}, nil
	}

	rec := doChat(t, f, `{"message": "hello"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "hi!", result.Response)
}

func TestChatEndpoint_MissingCaller(t *testing.T) {
	f := newFixture(&fakeDirectory{stores: handlerStores})

	rec := doChat(t, f, `{"message": "hello"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatEndpoint_BadBody(t *testing.T) {
	f := newFixture(&fakeDirectory{stores: handlerStores})

	assert.Equal(t, http.StatusBadRequest, doChat(t, f, `{not json`, true).Code)
	assert.Equal(t, http.StatusBadRequest, doChat(t, f, `{"message": "  "}`, true).Code)
}

func TestChatEndpoint_NoStoresIsForbidden(t *testing.T) {
	f := newFixture(&fakeDirectory{})

	rec := doChat(t, f, `{"message": "hello"}`, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_accessible_stores")
}
