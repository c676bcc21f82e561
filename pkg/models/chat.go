package models

// Chat message roles. These follow the OpenAI wire convention since both
// supported providers accept it.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of conversation history. History is passed through
// this core, never stored by it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UIDateRange is an explicit date range carried by the caller's on-screen
// state, e.g. from a dashboard date picker.
type UIDateRange struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	DaysSpan int    `json:"days_span"`
	Preset   string `json:"preset,omitempty"`
}

// UIContext describes what the user is currently looking at. The orchestrator
// uses it to prioritize visible entities and to prefer an explicit on-screen
// date range over text parsing.
type UIContext struct {
	PageType    string         `json:"page_type,omitempty"`
	DataContext map[string]any `json:"data_context,omitempty"`
	DateRange   *UIDateRange   `json:"date_range,omitempty"`
}

// ChatResult is the response shape returned to the enclosing chat handler.
// Response is always safe to render directly to the end user; internal
// failures arrive here as friendly text, never as errors.
type ChatResult struct {
	Response            string         `json:"response"`
	Data                map[string]any `json:"data,omitempty"`
	ToolsUsed           []string       `json:"tools_used,omitempty"`
	ConversationHistory []ChatMessage  `json:"conversation_history"`
}

// CostTier labels the pricing class of a routed model.
type CostTier string

const (
	CostTierPremium    CostTier = "premium"
	CostTierEconomical CostTier = "economical"
	CostTierMinimal    CostTier = "minimal"
)

// ModelSelection is a routing decision. It is computed per request and never
// persisted.
type ModelSelection struct {
	Model     string   `json:"model"`
	Reasoning string   `json:"reasoning"`
	CostTier  CostTier `json:"cost_tier"`
}
