package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/apperrors"
	"github.com/wizel-ai/insight-engine/pkg/models"
)

// FallbackResult is a completion plus which models were tried to get it.
type FallbackResult struct {
	Content        string
	Model          string
	UsedFallback   bool
	AttemptedModel string
	FallbackModel  string
	Usage          *ChatResponse
}

// FallbackController calls a primary model and retries exactly once with its
// designated alternate on failure. No third attempt is ever made.
type FallbackController struct {
	completer      Completer
	router         *Router
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewFallbackController creates a fallback controller. attemptTimeout bounds
// each provider call separately, so total latency never exceeds twice the
// timeout; zero means the caller's context is the only bound.
func NewFallbackController(completer Completer, router *Router, attemptTimeout time.Duration, logger *zap.Logger) *FallbackController {
	return &FallbackController{
		completer:      completer,
		router:         router,
		attemptTimeout: attemptTimeout,
		logger:         logger.Named("fallback"),
	}
}

// attempt runs one provider call under the per-attempt deadline. A hung
// provider counts as a failed attempt, which lets the fallback trigger.
func (c *FallbackController) attempt(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}
	return c.completer.Complete(ctx, req)
}

// CallWithFallback runs the request against primaryModel, and on failure
// against its alternate. If both fail it returns a single combined error
// wrapping apperrors.ErrBothModelsUnavailable.
func (c *FallbackController) CallWithFallback(ctx context.Context, primaryModel string, req ChatRequest) (*FallbackResult, error) {
	req.Model = primaryModel

	resp, primaryErr := c.attempt(ctx, req)
	if primaryErr == nil {
		logUsage(c.logger, resp, false)
		return &FallbackResult{
			Content:        resp.Content,
			Model:          primaryModel,
			AttemptedModel: primaryModel,
			Usage:          resp,
		}, nil
	}

	fallbackModel := c.router.Fallback(primaryModel)
	if fallbackModel == "" {
		return nil, fmt.Errorf("model %s failed with no fallback configured: %w", primaryModel, primaryErr)
	}

	c.logger.Warn("primary model failed, trying fallback",
		zap.String("attempted_model", primaryModel),
		zap.String("fallback_model", fallbackModel),
		zap.Error(primaryErr))

	req.Model = fallbackModel
	resp, fallbackErr := c.attempt(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback model also failed",
			zap.String("attempted_model", primaryModel),
			zap.String("fallback_model", fallbackModel),
			zap.Error(fallbackErr))
		return nil, fmt.Errorf("%w: %s failed (%v); %s failed (%v)",
			apperrors.ErrBothModelsUnavailable, primaryModel, primaryErr, fallbackModel, fallbackErr)
	}

	c.logger.Info("fallback model succeeded",
		zap.String("attempted_model", primaryModel),
		zap.String("fallback_model", fallbackModel))
	logUsage(c.logger, resp, true)

	return &FallbackResult{
		Content:        resp.Content,
		Model:          fallbackModel,
		UsedFallback:   true,
		AttemptedModel: primaryModel,
		FallbackModel:  fallbackModel,
		Usage:          resp,
	}, nil
}

// TrimHistory returns the trailing window of history passed to providers.
func TrimHistory(history []models.ChatMessage, max int) []models.ChatMessage {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
