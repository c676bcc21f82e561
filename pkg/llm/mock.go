package llm

import (
	"context"
)

// MockCompleter is a configurable mock for testing model calls.
// Set the function field to control behavior in tests.
type MockCompleter struct {
	// CompleteFunc is called when Complete is invoked. If nil, returns a
	// canned response echoing the requested model.
	CompleteFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Call tracking for verification.
	CompleteCalls int
	Requests      []ChatRequest
}

// NewMockCompleter creates a new mock with sensible defaults.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete implements Completer.
func (m *MockCompleter) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.CompleteCalls++
	m.Requests = append(m.Requests, req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &ChatResponse{Content: "mock response", Model: req.Model}, nil
}
