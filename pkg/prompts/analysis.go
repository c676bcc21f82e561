// Package prompts holds the static analysis prompt templates. The templates
// are embedded at build time, so they are versioned with the code, populated
// once per process, and read-only afterwards; they are the only cross-request
// shared state in this core.
package prompts

import (
	_ "embed"

	"github.com/wizel-ai/insight-engine/pkg/models"
)

//go:embed assets/tactical_analysis.md
var tactical string

//go:embed assets/strategic_analysis.md
var strategic string

// Template names reported in analysis metadata.
const (
	TacticalName  = "Focused Weekly Analysis"
	StrategicName = "Strategic Quarterly Analysis"
)

// Tactical returns the short-range (weekly review) analysis prompt.
func Tactical() string {
	return tactical
}

// Strategic returns the long-range (quarterly audit) analysis prompt.
func Strategic() string {
	return strategic
}

// ForClass selects the analysis prompt and its display name for a prompt
// class. The class, not the raw day count, decides the template.
func ForClass(class models.PromptClass) (prompt, name string) {
	if class == models.PromptClassLong {
		return Strategic(), StrategicName
	}
	return Tactical(), TacticalName
}
