package llm

import (
	"context"
	"fmt"
	"strings"
)

const anthropicVendorPrefix = "anthropic/"

// Mux fans requests out by model vendor: Anthropic models go to the direct
// Messages API client when one is configured, everything else goes through
// the aggregator. Either client may be nil.
type Mux struct {
	aggregator Completer
	anthropic  Completer
}

// NewMux creates a vendor-routing completer.
func NewMux(aggregator, anthropic Completer) *Mux {
	return &Mux{aggregator: aggregator, anthropic: anthropic}
}

// Complete implements Completer.
func (m *Mux) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if m.anthropic != nil && strings.HasPrefix(req.Model, anthropicVendorPrefix) {
		direct := req
		// The first-party API takes the bare model name, without the
		// aggregator's vendor prefix.
		direct.Model = strings.TrimPrefix(req.Model, anthropicVendorPrefix)
		resp, err := m.anthropic.Complete(ctx, direct)
		if resp != nil {
			resp.Model = req.Model
		}
		return resp, err
	}

	if m.aggregator == nil {
		return nil, fmt.Errorf("no client configured for model %s", req.Model)
	}
	return m.aggregator.Complete(ctx, req)
}
