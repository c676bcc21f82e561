package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPerformanceQuery(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"How did my campaigns perform last week?", true},
		{"Show me revenue by store", true},
		{"ANALYZE MY FLOWS", true},
		{"why did open rate drop", true},
		{"give me a quarterly overview", true},
		{"which store is better?", true},
		{"hello", false},
		{"what's the weather like", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPerformanceQuery(tt.message))
		})
	}
}
