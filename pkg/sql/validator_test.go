package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSingleStatement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "plain select",
			input:    "SELECT campaign_id FROM campaign_statistics",
			expected: "SELECT campaign_id FROM campaign_statistics",
		},
		{
			name:     "trailing semicolon stripped",
			input:    "SELECT 1;",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon with whitespace",
			input:    "SELECT 1 ;  \n",
			expected: "SELECT 1",
		},
		{
			name:     "semicolon inside string literal",
			input:    "SELECT * FROM t WHERE name = 'a;b'",
			expected: "SELECT * FROM t WHERE name = 'a;b'",
		},
		{
			name:     "semicolon inside quoted identifier",
			input:    `SELECT * FROM "weird;table"`,
			expected: `SELECT * FROM "weird;table"`,
		},
		{
			name:     "doubled quote escape",
			input:    "SELECT * FROM t WHERE name = 'O''Brien;'",
			expected: "SELECT * FROM t WHERE name = 'O''Brien;'",
		},
		{
			name:    "stacked statements rejected",
			input:   "SELECT 1; DROP TABLE campaign_statistics",
			wantErr: true,
		},
		{
			name:    "stacked statements with trailing semicolon",
			input:   "SELECT 1; SELECT 2;",
			wantErr: true,
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSingleStatement(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMultipleStatements)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
