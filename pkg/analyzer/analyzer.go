package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wizel-ai/insight-engine/pkg/analytics"
	"github.com/wizel-ai/insight-engine/pkg/llm"
	"github.com/wizel-ai/insight-engine/pkg/logging"
	"github.com/wizel-ai/insight-engine/pkg/models"
	"github.com/wizel-ai/insight-engine/pkg/prompts"
	"github.com/wizel-ai/insight-engine/pkg/stores"
)

// Token budgets per prompt class.
const (
	shortMaxTokens = 8000
	longMaxTokens  = 16000
)

// History windows: turns sent to the model vs. turns carried forward.
const (
	historyPromptWindow = 6
	historyCarryWindow  = 8
)

// Analyzer orchestrates a performance analysis: resolve the window, query
// campaign and flow aggregates in parallel, and summarize via the LLM.
type Analyzer struct {
	resolver     *stores.Resolver
	builder      *analytics.Builder
	llm          *llm.FallbackController
	primaryModel string
	logger       *zap.Logger
}

// NewAnalyzer creates a performance analyzer. primaryModel is the model used
// for analysis summaries; its configured fallback covers provider outages.
func NewAnalyzer(resolver *stores.Resolver, builder *analytics.Builder, controller *llm.FallbackController, primaryModel string, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		resolver:     resolver,
		builder:      builder,
		llm:          controller,
		primaryModel: primaryModel,
		logger:       logger.Named("analyzer"),
	}
}

type payloadStore struct {
	StoreID            string `json:"store_id"`
	StoreName          string `json:"store_name"`
	AnalyticsAccountID string `json:"analytics_account_id,omitempty"`
}

type payloadPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Label     string `json:"label"`
}

type analysisPayload struct {
	AnalysisType    string            `json:"analysis_type"`
	Period          payloadPeriod     `json:"period"`
	Stores          []payloadStore    `json:"stores"`
	Campaigns       []models.Row      `json:"campaigns"`
	Flows           []models.Row      `json:"flows"`
	UserQuestion    string            `json:"user_question"`
	OnScreenContext *models.UIContext `json:"on_screen_context"`
}

// Analyze runs the full analysis flow and always returns a renderable result.
// Internal failures come back as friendly response text, never as an error.
func (a *Analyzer) Analyze(ctx context.Context, message string, authorized []models.AccessibleStore, uiContext *models.UIContext, history []models.ChatMessage, precomputed *models.DateRange) *models.ChatResult {
	rng := precomputed
	if rng == nil {
		parsed := ParseDateRange(message)
		rng = &parsed
	}

	a.logger.Info("starting performance analysis",
		zap.String("label", rng.Label),
		zap.Int("days", rng.Days),
		zap.String("class", string(rng.Class)))

	resolution, err := a.resolver.ResolveAccountIDs(stores.Request{}, authorized)
	if err != nil {
		return a.failure(message, history, err)
	}

	dateFilter := models.Filter{
		Kind:  models.FilterDateRange,
		Start: rng.StartDate(),
		End:   rng.EndDate(),
	}

	var campaigns, flows *models.QueryResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var qerr error
		campaigns, qerr = a.builder.Execute(gctx, models.QueryRequest{
			Table:       "campaign_statistics",
			Filters:     []models.Filter{dateFilter},
			Aggregation: models.AggregationByCampaign,
		}, resolution.AccountIDs, resolution.Stores)
		return qerr
	})
	g.Go(func() error {
		var qerr error
		flows, qerr = a.builder.Execute(gctx, models.QueryRequest{
			Table:       "flow_statistics",
			Filters:     []models.Filter{dateFilter},
			Aggregation: models.AggregationByFlow,
		}, resolution.AccountIDs, resolution.Stores)
		return qerr
	})
	if err := g.Wait(); err != nil {
		return a.failure(message, history, err)
	}

	systemPrompt, promptName := prompts.ForClass(rng.Class)
	payload := a.buildPayload(message, rng, resolution.Stores, campaigns.Rows, flows.Rows, uiContext)

	userContent, err := renderUserTurn(message, rng, payload, uiContext)
	if err != nil {
		return a.failure(message, history, err)
	}

	maxTokens := shortMaxTokens
	if rng.Class == models.PromptClassLong {
		maxTokens = longMaxTokens
	}

	result, err := a.llm.CallWithFallback(ctx, a.primaryModel, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		History:      llm.TrimHistory(history, historyPromptWindow),
		UserMessage:  userContent,
		MaxTokens:    maxTokens,
		Temperature:  0.7,
	})
	if err != nil {
		return a.failure(message, history, err)
	}

	a.logger.Info("performance analysis completed",
		zap.String("model", result.Model),
		zap.Bool("used_fallback", result.UsedFallback),
		zap.Int("campaigns_analyzed", len(campaigns.Rows)),
		zap.Int("flows_analyzed", len(flows.Rows)))

	toolLabel := "Weekly Performance Analysis"
	if rng.Class == models.PromptClassLong {
		toolLabel = "Quarterly Strategic Analysis"
	}

	return &models.ChatResult{
		Response: result.Content,
		Data: map[string]any{
			"analysis_type": payload.AnalysisType,
			"date_range": map[string]any{
				"start": rng.StartDate(),
				"end":   rng.EndDate(),
				"days":  rng.Days,
				"label": rng.Label,
			},
			"stores_analyzed":    len(resolution.Stores),
			"campaigns_analyzed": len(campaigns.Rows),
			"flows_analyzed":     len(flows.Rows),
			"prompt_used":        promptName,
			"model":              result.Model,
			"used_fallback":      result.UsedFallback,
		},
		ToolsUsed: []string{
			toolLabel,
			"ClickHouse",
			fmt.Sprintf("%d days of data", rng.Days),
		},
		ConversationHistory: appendExchange(history, message, result.Content),
	}
}

func (a *Analyzer) buildPayload(message string, rng *models.DateRange, analyzed []models.AccessibleStore, campaigns, flows []models.Row, uiContext *models.UIContext) analysisPayload {
	analysisType := "weekly_performance_review"
	if rng.Class == models.PromptClassLong {
		analysisType = "quarterly_performance_audit"
	}

	roster := make([]payloadStore, 0, len(analyzed))
	for _, s := range analyzed {
		roster = append(roster, payloadStore{
			StoreID:            s.PublicID,
			StoreName:          s.Name,
			AnalyticsAccountID: s.AnalyticsAccountID,
		})
	}

	return analysisPayload{
		AnalysisType:    analysisType,
		Period:          payloadPeriod{StartDate: rng.StartDate(), EndDate: rng.EndDate(), Days: rng.Days, Label: rng.Label},
		Stores:          roster,
		Campaigns:       campaigns,
		Flows:           flows,
		UserQuestion:    message,
		OnScreenContext: uiContext,
	}
}

// renderUserTurn assembles the final user message: question, context note,
// urgency note, and the serialized data payload.
func renderUserTurn(message string, rng *models.DateRange, payload analysisPayload, uiContext *models.UIContext) (string, error) {
	contextNote := buildContextNote(uiContext)

	urgencyNote := "\n\nIMPORTANT: Focus on THIS WEEK's priorities and immediate action items. Use store names, campaign names, and flow names in your response."
	if rng.Class == models.PromptClassLong {
		urgencyNote = "\n\nIMPORTANT: Provide strategic insights and 1-3 month recommendations. Use store names, campaign names, and flow names in your response."
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis payload: %w", err)
	}

	return fmt.Sprintf("The user asked: %q%s%s\n\nHere is the performance data for %s:\n\n%s\n\nProvide focused insights answering their question. Reference specific store names, campaign names, and flow names.",
		message, contextNote, urgencyNote, rng.Label, body), nil
}

// buildContextNote tells the model what the user is already looking at so it
// prioritizes visible entities.
func buildContextNote(uiContext *models.UIContext) string {
	if uiContext == nil || uiContext.PageType == "" {
		return ""
	}

	note := fmt.Sprintf("\n\n**User's Current View:** The user is on the %s page.", uiContext.PageType)

	if uiContext.PageType == "campaigns" {
		if visible, ok := uiContext.DataContext["campaigns"]; ok {
			if serialized, err := json.MarshalIndent(visible, "", "  "); err == nil {
				note += fmt.Sprintf("\nThey are currently viewing these campaigns on screen. Prioritize insights about these visible campaigns:\n%s", serialized)
			}
		}
	}
	if uiContext.PageType == "calendar" {
		if selected, ok := uiContext.DataContext["selected_date"]; ok {
			note += fmt.Sprintf("\nThey are looking at %v on the calendar. Focus on campaigns/flows around this date.", selected)
		}
	}
	return note
}

// failure converts an internal error into a renderable result. The chat
// surface never sees a raw exception from this orchestrator.
func (a *Analyzer) failure(message string, history []models.ChatMessage, err error) *models.ChatResult {
	safe := logging.SanitizeError(err)
	a.logger.Error("performance analysis failed", zap.String("error", safe))

	return &models.ChatResult{
		Response: fmt.Sprintf("I encountered an issue analyzing performance data: %s. Please make sure your stores have analytics integrations connected.", safe),
		Data: map[string]any{
			"analysis_type": "error",
			"error":         safe,
		},
		ToolsUsed:           []string{"Error Handler"},
		ConversationHistory: appendExchange(history, message, "Error: "+safe),
	}
}

func appendExchange(history []models.ChatMessage, userMessage, assistantMessage string) []models.ChatMessage {
	carried := llm.TrimHistory(history, historyCarryWindow)
	updated := make([]models.ChatMessage, 0, len(carried)+2)
	updated = append(updated, carried...)
	updated = append(updated,
		models.ChatMessage{Role: models.RoleUser, Content: userMessage},
		models.ChatMessage{Role: models.RoleAssistant, Content: assistantMessage},
	)
	return updated
}
