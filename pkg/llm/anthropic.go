package llm

import (
	"context"
	"fmt"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient talks to the Anthropic Messages API directly, bypassing the
// aggregator for models where a first-party key is configured.
type AnthropicClient struct {
	client *anthropic.Client
	logger *zap.Logger
}

// NewAnthropicClient creates a direct Anthropic client.
func NewAnthropicClient(apiKey string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		logger: logger.Named("anthropic"),
	}, nil
}

// Complete generates a chat completion via the Messages API.
func (c *AnthropicClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	messages := make([]anthropic.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case string(anthropic.RoleAssistant):
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}
	messages = append(messages, anthropic.NewUserTextMessage(req.UserMessage))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.SystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: &req.Temperature,
		Messages:    messages,
	})
	if err != nil {
		c.logger.Error("Anthropic request failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Model = req.Model
		return nil, classified
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			content = *block.Text
			break
		}
	}
	if content == "" {
		return nil, NewError(ErrorTypeUnknown, "no text content in response", false, nil)
	}

	c.logger.Info("Anthropic request completed",
		zap.String("model", req.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &ChatResponse{
		Content:          content,
		Model:            req.Model,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
