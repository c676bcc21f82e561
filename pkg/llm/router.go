package llm

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/models"
)

// Model identifiers in aggregator notation (vendor/model).
const (
	ModelSonnet = "anthropic/claude-sonnet-4.5"
	ModelGemini = "google/gemini-2.5-pro"
	ModelHaiku  = "anthropic/claude-haiku-4.5"
)

// Context-size thresholds in serialized characters.
const (
	largeContextChars    = 30000
	moderateContextChars = 15000
	longQueryWords       = 15
)

// Complexity signals. Any match marks the query as needing deep reasoning.
var complexityPatterns = map[string]*regexp.Regexp{
	"analytical":  regexp.MustCompile(`(?i)\b(analy[sz]e|compar(e|ison)|trend|pattern|correlat|segment|cohort|attribution)\b`),
	"strategic":   regexp.MustCompile(`(?i)\b(strateg|recommend|optimi[sz]e|improve|should i|what if|forecast|predict)\b`),
	"multi_step":  regexp.MustCompile(`(?i)\b(then|after that|followed by|step by step|first.*then|breakdown)\b`),
	"calculation": regexp.MustCompile(`(?i)\b(calculat|percentage|average|total|sum|roi|growth rate|difference between)\b`),
}

// ModelTable holds the configured model for each routing tier.
type ModelTable struct {
	Premium      string // deep-reasoning model
	LargeContext string // huge context window, economical
	Minimal      string // cheapest, small queries
}

// DefaultModelTable returns the production routing table.
func DefaultModelTable() ModelTable {
	return ModelTable{
		Premium:      ModelSonnet,
		LargeContext: ModelGemini,
		Minimal:      ModelHaiku,
	}
}

// Router picks a model per request from query text and on-screen context.
type Router struct {
	table  ModelTable
	logger *zap.Logger
}

// NewRouter creates a model router.
func NewRouter(table ModelTable, logger *zap.Logger) *Router {
	if table.Premium == "" {
		table = DefaultModelTable()
	}
	return &Router{table: table, logger: logger.Named("router")}
}

// SelectModel applies the routing heuristic in order, first match wins.
func (r *Router) SelectModel(query string, uiContext *models.UIContext) models.ModelSelection {
	contextSize := serializedContextSize(uiContext)
	wordCount := len(strings.Fields(query))

	matched := make([]string, 0, len(complexityPatterns))
	for name, re := range complexityPatterns {
		if re.MatchString(query) {
			matched = append(matched, name)
		}
	}
	isComplex := len(matched) > 0
	largeContext := contextSize > largeContextChars

	var sel models.ModelSelection
	switch {
	case isComplex && !largeContext:
		sel = models.ModelSelection{
			Model:     r.table.Premium,
			Reasoning: "complex query requiring deep reasoning",
			CostTier:  models.CostTierPremium,
		}
	case wordCount > longQueryWords && contextSize > moderateContextChars:
		sel = models.ModelSelection{
			Model:     r.table.Premium,
			Reasoning: "long query with substantial context",
			CostTier:  models.CostTierPremium,
		}
	case largeContext:
		sel = models.ModelSelection{
			Model:     r.table.LargeContext,
			Reasoning: "large context favors a huge context window",
			CostTier:  models.CostTierEconomical,
		}
	default:
		sel = models.ModelSelection{
			Model:     r.table.Minimal,
			Reasoning: "simple query, cost-optimized",
			CostTier:  models.CostTierMinimal,
		}
	}

	r.logger.Info("model selected",
		zap.String("model", sel.Model),
		zap.String("cost_tier", string(sel.CostTier)),
		zap.String("reasoning", sel.Reasoning),
		zap.Strings("complexity_signals", matched),
		zap.Int("context_chars", contextSize),
		zap.Int("query_words", wordCount),
		zap.Int("query_tokens_est", EstimateTokens(query)))

	return sel
}

// Fallback returns the designated alternate for a model. The two reasoning
// families back each other; the minimal model escalates to premium.
func (r *Router) Fallback(model string) string {
	switch model {
	case r.table.Premium:
		return r.table.LargeContext
	case r.table.LargeContext:
		return r.table.Premium
	case r.table.Minimal:
		return r.table.Premium
	}
	return ""
}

func serializedContextSize(uiContext *models.UIContext) int {
	if uiContext == nil {
		return 0
	}
	b, err := json.Marshal(uiContext)
	if err != nil {
		return 0
	}
	return len(b)
}

// The encoding is expensive to construct, so it is loaded once per process and
// shared; tiktoken codecs are safe for concurrent use.
var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func tokenEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		encoding = enc
	})
	return encoding
}

// EstimateTokens approximates the token count of text for logging. Falls back
// to a chars/4 heuristic when the encoding is unavailable.
func EstimateTokens(text string) int {
	enc := tokenEncoding()
	if enc == nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
