package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
)

// CompletionService sends one request to a language model and returns its raw reply.
// An empty reply is reported as ErrEmptyCompletion wrapped in *ProviderCallError.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
	Model() string
}

// NewCompletionService builds the provider named in cfg.
func NewCompletionService(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (CompletionService, error) {
	log = logger.WithCommonFields(log, cfg.Provider, cfg.Model)

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg, log)
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg, log)
	default:
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("unknown LLM provider %q", cfg.Provider)}
	}
}

// wrapProviderError classifies a failed call, marking deadline overruns as timeouts.
func wrapProviderError(provider string, ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		strings.Contains(strings.ToLower(err.Error()), "timeout")
	return &ProviderCallError{Provider: provider, Timeout: timeout, Err: err}
}
