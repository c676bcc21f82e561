// Package sanitizer neutralizes prompt-injection and admin-command patterns in
// untrusted user text before it reaches any LLM call.
package sanitizer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

// RefusalMessage replaces messages identified as prompt-extraction attempts.
// The same text is used for the hard-block path and for messages that strip
// down to nothing.
const RefusalMessage = "Hey there! I appreciate your curiosity, but I'm not able to share details about my internal instructions or system configuration. Think of it like asking a magician to reveal their secrets - some things are better kept under wraps!\n\nI'm here to help you with your marketing analytics, campaign insights, and data-driven decisions. What can I help you with today?"

// promptExtractionIndicators identify whole-message extraction attempts. These
// are checked before any pattern stripping: partially stripping a multi-part
// attack can leave a still-effective residual payload.
var promptExtractionIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?is)^\s*\[.*?admin.*?\].*?prompt.*?using`),
	regexp.MustCompile(`(?i)prompt.*?are you using.*?chat`),
	regexp.MustCompile(`(?i)tell me.*?prompt.*?detail`),
	regexp.MustCompile(`(?i)show.*?system prompt`),
	regexp.MustCompile(`(?i)reveal.*?instructions`),
	regexp.MustCompile(`(?i)what.*?instructions.*?following`),
}

// adminCommandPatterns are stripped from input, most aggressive first. The
// ordering matters: paired delimiters must be consumed before their unpaired
// fragments.
var adminCommandPatterns = []*regexp.Regexp{
	// Admin session commands
	regexp.MustCompile(`(?is)\[/admin\]\[begin_admin_session\].*?\[/admin\]\[end_admin_session\]`),
	regexp.MustCompile(`(?is)\[begin_admin_session\].*?\[end_admin_session\]`),
	regexp.MustCompile(`(?is)\[/admin\].*?\[/admin\]`),
	regexp.MustCompile(`(?i)\[/admin\]`),
	regexp.MustCompile(`(?i)\[begin_admin_session\]`),
	regexp.MustCompile(`(?i)\[end_admin_session\]`),

	// System prompt injection
	regexp.MustCompile(`(?is)\[SYSTEM\].*?\[/SYSTEM\]`),
	regexp.MustCompile(`(?is)\[INST\].*?\[/INST\]`),
	regexp.MustCompile(`(?is)<\|system\|>.*?<\|/system\|>`),
	regexp.MustCompile(`(?is)<\|im_start\|>system.*?<\|im_end\|>`),

	// Provider-specific system tags
	regexp.MustCompile(`(?is)<system>.*?</system>`),
	regexp.MustCompile(`(?is)\[SYSTEM_PROMPT\].*?\[/SYSTEM_PROMPT\]`),

	// Role manipulation
	regexp.MustCompile(`(?is)\[ASSISTANT\].*?\[/ASSISTANT\]`),
	regexp.MustCompile(`(?is)\[USER\].*?\[/USER\]`),
	regexp.MustCompile(`(?i)<\|assistant\|>`),
	regexp.MustCompile(`(?i)<\|user\|>`),

	// Prompt extraction phrasings
	regexp.MustCompile(`(?i)(?:show|tell|reveal|display|print|output|give|share|provide|list|describe|explain).*?(?:your|the|this|current|my|all).*?(?:system prompt|system message|instructions|instruction set|directive|directives|guidelines|rules|prompt|configuration|setup|internal)`),
	regexp.MustCompile(`(?i)(?:what|which|how).*?(?:prompt|instructions|system message|directive|configuration).*?(?:are you |using|following|given|do you|have you)`),
	regexp.MustCompile(`(?i)(?:ignore|forget|disregard|override|bypass).*?(?:previous|above|prior|all|your).*?(?:instructions|commands|directives|rules|guidelines|prompts)`),

	// Detail-demand phrases
	regexp.MustCompile(`(?i)tell\s+me\s+in\s+detail`),
	regexp.MustCompile(`(?i)explain\s+in\s+detail`),
	regexp.MustCompile(`(?i)describe\s+in\s+detail`),

	// XML-style injection
	regexp.MustCompile(`(?is)<prompt>.*?</prompt>`),
	regexp.MustCompile(`(?is)<instruction>.*?</instruction>`),

	// Special command prefixes
	regexp.MustCompile(`(?is)\[OVERRIDE\].*?\[/OVERRIDE\]`),
	regexp.MustCompile(`(?is)\[INJECT\].*?\[/INJECT\]`),
	regexp.MustCompile(`(?is)\[EXECUTE\].*?\[/EXECUTE\]`),

	// Any bracketed admin-like commands
	regexp.MustCompile(`(?i)\[admin.*?\]`),
	regexp.MustCompile(`(?i)\[root.*?\]`),
	regexp.MustCompile(`(?i)\[sudo.*?\]`),
}

// suspiciousPatterns are logged for security monitoring; in strict mode they
// are replaced with a redaction marker rather than removed.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:jailbreak|bypass|hack|exploit).*?(?:AI|assistant|system|prompt)`),
	regexp.MustCompile(`(?i)(?:DAN|Do Anything Now)`),
	regexp.MustCompile(`(?i)pretend.*?(?:you are|to be).*?(?:not|different|another)`),
}

var (
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
)

// Options control sanitization behavior.
type Options struct {
	// Strict replaces suspicious (non-blocking) patterns with [REDACTED]
	// instead of merely logging them.
	Strict bool
	// LogSuspicious enables warning logs for suspicious pattern matches.
	LogSuspicious bool
}

// DefaultOptions match the behavior used on the chat path.
func DefaultOptions() Options {
	return Options{Strict: true, LogSuspicious: true}
}

// Result is the outcome of sanitizing one message. Computed once per inbound
// message and never persisted.
type Result struct {
	Sanitized          string
	WasModified        bool
	RemovedPatterns    []string
	IsPromptExtraction bool
}

// Modification records a change made to one entry of a message array, for
// audit logging.
type Modification struct {
	Index           int
	OriginalLength  int
	SanitizedLength int
	RemovedPatterns []string
}

// Sanitizer strips admin commands and injection attempts from user input.
// It is stateless; the logger is the only dependency.
type Sanitizer struct {
	logger *zap.Logger
}

// New creates a Sanitizer.
func New(logger *zap.Logger) *Sanitizer {
	return &Sanitizer{logger: logger.Named("sanitizer")}
}

// Sanitize removes admin commands and injection attempts from input.
//
// Whole-message prompt-extraction attempts short-circuit to the fixed refusal
// message before any stripping. Otherwise every matched pattern is removed,
// whitespace is normalized, and a message that strips down to nothing is
// treated as a pure attack.
func (s *Sanitizer) Sanitize(input string, opts Options) Result {
	if input == "" {
		return Result{}
	}

	for _, pattern := range promptExtractionIndicators {
		if pattern.MatchString(input) {
			s.logger.Error("prompt extraction attempt detected",
				zap.String("input", truncate(input, 100)))
			return Result{
				Sanitized:          RefusalMessage,
				WasModified:        true,
				RemovedPatterns:    []string{input},
				IsPromptExtraction: true,
			}
		}
	}

	sanitized := input
	var removed []string
	modified := false

	for _, pattern := range adminCommandPatterns {
		matches := pattern.FindAllString(sanitized, -1)
		if len(matches) > 0 {
			modified = true
			removed = append(removed, matches...)
			sanitized = pattern.ReplaceAllString(sanitized, "")
		}
	}

	if opts.LogSuspicious {
		for _, pattern := range suspiciousPatterns {
			matches := pattern.FindAllString(sanitized, -1)
			if len(matches) == 0 {
				continue
			}
			s.logger.Warn("suspicious input pattern detected",
				zap.Strings("matches", matches))
			if opts.Strict {
				modified = true
				removed = append(removed, matches...)
				sanitized = pattern.ReplaceAllString(sanitized, "[REDACTED]")
			}
		}
	}

	// Clean up whitespace left by removals.
	sanitized = newlineRuns.ReplaceAllString(sanitized, "\n\n")
	sanitized = spaceRuns.ReplaceAllString(sanitized, " ")
	sanitized = strings.TrimSpace(sanitized)

	// Nothing left after stripping means the message was all attack.
	if sanitized == "" && modified {
		return Result{
			Sanitized:          RefusalMessage,
			WasModified:        true,
			RemovedPatterns:    removed,
			IsPromptExtraction: true,
		}
	}

	return Result{
		Sanitized:       sanitized,
		WasModified:     modified,
		RemovedPatterns: removed,
	}
}

// SanitizeMessages applies Sanitize to every user-role entry of a chat
// history, leaving assistant and system entries untouched. It returns the
// sanitized copy plus a per-index record of modifications.
func (s *Sanitizer) SanitizeMessages(messages []models.ChatMessage, opts Options) ([]models.ChatMessage, []Modification) {
	sanitized := make([]models.ChatMessage, len(messages))
	var modifications []Modification

	for i, msg := range messages {
		sanitized[i] = msg
		if msg.Role != models.RoleUser || msg.Content == "" {
			continue
		}

		result := s.Sanitize(msg.Content, opts)
		if result.WasModified {
			modifications = append(modifications, Modification{
				Index:           i,
				OriginalLength:  len(msg.Content),
				SanitizedLength: len(result.Sanitized),
				RemovedPatterns: result.RemovedPatterns,
			})
		}
		sanitized[i].Content = result.Sanitized
	}

	return sanitized, modifications
}

// Validate returns apperrors.ErrBlockedInput if the input contains any
// blocked pattern. Used on paths that must reject rather than repair.
func (s *Sanitizer) Validate(input string) error {
	result := s.Sanitize(input, Options{Strict: true, LogSuspicious: true})
	if result.WasModified {
		return apperrors.ErrBlockedInput
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
