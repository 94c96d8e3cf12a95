package services

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
)

type OpenAIService struct {
	client          *openai.Client
	modelName       string
	timeout         time.Duration
	maxOutputTokens int
	logger          *zap.Logger
}

func NewOpenAIService(cfg config.LLMConfig, log *zap.Logger) (*OpenAIService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &config.ConfigurationError{Reason: "openai API key not configured"}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIService{
		client:          openai.NewClientWithConfig(clientConfig),
		modelName:       cfg.Model,
		timeout:         cfg.Timeout,
		maxOutputTokens: cfg.MaxOutputTokens,
		logger:          logger.WithFields(log),
	}, nil
}

func (o *OpenAIService) Provider() string { return config.ProviderOpenAI }

func (o *OpenAIService) Model() string { return o.modelName }

// Complete implements CompletionService.
func (o *OpenAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if o == nil || o.client == nil {
		return "", errNilClient
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	maxTokens := o.maxOutputTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}

	o.logger.Debug("openai chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(req.UserMessage)),
		zap.String("prompt_preview", logger.TruncateForLog(req.UserMessage, maxLogPreview)),
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instructions},
			{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
		},
	})
	if err != nil {
		o.logger.Error("openai API error", zap.Error(err))
		return "", wrapProviderError(o.Provider(), ctx, err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if text == "" {
		o.logger.Warn("openai returned no text content")
		return "", &ProviderCallError{Provider: o.Provider(), Err: ErrEmptyCompletion}
	}

	o.logger.Debug("openai chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, maxLogPreview)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}

var _ CompletionService = (*OpenAIService)(nil)
