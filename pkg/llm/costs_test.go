package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	// 1M prompt tokens + 1M completion tokens of Sonnet.
	assert.InDelta(t, 18.0, EstimateCost(ModelSonnet, 1_000_000, 1_000_000), 1e-9)
	// Haiku is 1/5 per million.
	assert.InDelta(t, 0.006, EstimateCost(ModelHaiku, 1000, 1000), 1e-9)
	// Unknown models price at zero instead of failing.
	assert.Zero(t, EstimateCost("unknown/model", 1000, 1000))
}
