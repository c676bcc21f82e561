package llm

import (
	"go.uber.org/zap"
)

// modelCosts is USD per million tokens. Unlisted models log zero cost rather
// than failing.
var modelCosts = map[string]struct{ input, output float64 }{
	ModelHaiku:  {input: 1, output: 5},
	ModelSonnet: {input: 3, output: 15},
	ModelGemini: {input: 1.25, output: 5},
}

// EstimateCost returns the estimated USD cost of a completed call.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, ok := modelCosts[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*pricing.input + float64(completionTokens)/1e6*pricing.output
}

// logUsage records token usage and estimated cost for one provider call.
func logUsage(logger *zap.Logger, resp *ChatResponse, usedFallback bool) {
	if resp == nil {
		return
	}
	logger.Info("model usage",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Int("total_tokens", resp.TotalTokens),
		zap.Float64("estimated_cost_usd", EstimateCost(resp.Model, resp.PromptTokens, resp.CompletionTokens)),
		zap.Bool("used_fallback", usedFallback))
}
