// Package analyzer detects performance-analysis intent, resolves analysis
// date ranges, and orchestrates the query-and-summarize flow.
package analyzer

import "strings"

// performanceKeywords spans time references, analysis verbs, comparison
// language, metric nouns, and account nouns. Recall-favoring: false positives
// cost one unnecessary analysis, false negatives silently degrade to plain
// chat.
var performanceKeywords = []string{
	// Time-based
	"this week", "last week", "past week", "past 7 days",
	"this month", "last month", "past month", "past 30 days",
	"yesterday", "today", "recent", "lately", "recently",
	"last 90 days", "past 90 days", "quarter", "quarterly",

	// Analysis requests
	"how did", "how is", "how are", "how have",
	"what happened", "why did", "analyze", "analysis",
	"performance", "performing", "performed",
	"show me", "tell me about", "give me",

	// Updates and summaries
	"update", "summary", "overview", "status",
	"report", "snapshot", "check", "review",
	"look at", "looking at", "see how", "breakdown",

	// Comparison
	"compare", "comparison", "which store", "which is better",
	"best", "worst", "top", "bottom", "leading", "lagging",

	// Account references
	"account", "accounts", "store", "stores",
	"my campaigns", "my flows", "my performance",

	// Metrics
	"revenue", "sales", "open rate", "click rate",
	"campaigns", "flows", "emails", "conversions",
	"orders", "customers", "subscribers",

	// Issues and opportunities
	"drop", "dropped", "increase", "increased", "decline",
	"underperform", "overperform", "issue", "problem",
	"opportunity", "improve", "fix", "optimize", "boost",
	"trend", "trending", "growing", "falling",
}

// IsPerformanceQuery reports whether the message looks like a request for
// performance analysis.
func IsPerformanceQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range performanceKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
