package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMux_RoutesAnthropicModelsDirect(t *testing.T) {
	aggregator := NewMockCompleter()
	anthropic := NewMockCompleter()
	mux := NewMux(aggregator, anthropic)

	resp, err := mux.Complete(context.Background(), ChatRequest{Model: ModelSonnet})

	require.NoError(t, err)
	assert.Equal(t, 0, aggregator.CompleteCalls)
	require.Equal(t, 1, anthropic.CompleteCalls)
	// Vendor prefix stripped on the way in, restored on the way out.
	assert.Equal(t, "claude-sonnet-4.5", anthropic.Requests[0].Model)
	assert.Equal(t, ModelSonnet, resp.Model)
}

func TestMux_NonAnthropicGoesToAggregator(t *testing.T) {
	aggregator := NewMockCompleter()
	anthropic := NewMockCompleter()
	mux := NewMux(aggregator, anthropic)

	_, err := mux.Complete(context.Background(), ChatRequest{Model: ModelGemini})

	require.NoError(t, err)
	assert.Equal(t, 1, aggregator.CompleteCalls)
	assert.Equal(t, 0, anthropic.CompleteCalls)
}

func TestMux_NoDirectClientFallsThrough(t *testing.T) {
	aggregator := NewMockCompleter()
	mux := NewMux(aggregator, nil)

	_, err := mux.Complete(context.Background(), ChatRequest{Model: ModelSonnet})

	require.NoError(t, err)
	assert.Equal(t, 1, aggregator.CompleteCalls)
	assert.Equal(t, ModelSonnet, aggregator.Requests[0].Model)
}

func TestMux_NoClientAtAll(t *testing.T) {
	mux := NewMux(nil, nil)

	_, err := mux.Complete(context.Background(), ChatRequest{Model: ModelGemini})
	require.Error(t, err)
}
