package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
)

const maxLogPreview = 300

type GeminiService struct {
	client          *genai.Client
	modelName       string
	timeout         time.Duration
	maxOutputTokens int32
	logger          *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (*GeminiService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &config.ConfigurationError{Reason: "gemini API key not configured"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:          client,
		modelName:       cfg.Model,
		timeout:         cfg.Timeout,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		logger:          logger.WithFields(log),
	}, nil
}

func (g *GeminiService) Provider() string { return config.ProviderGemini }

func (g *GeminiService) Model() string { return g.modelName }

// Complete implements CompletionService.
func (g *GeminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g == nil || g.client == nil {
		return "", errNilClient
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := req.Temperature
	maxTokens := g.maxOutputTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = int32(req.MaxOutputTokens)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		},
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(req.UserMessage)),
		zap.String("prompt_preview", logger.TruncateForLog(req.UserMessage, maxLogPreview)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.UserMessage), genConfig)
	if err != nil {
		g.logger.Error("gemini API error", zap.Error(err))
		return "", wrapProviderError(g.Provider(), ctx, err)
	}

	text := candidateText(resp)
	if text == "" {
		g.logger.Warn("gemini returned no text content")
		return "", &ProviderCallError{Provider: g.Provider(), Err: ErrEmptyCompletion}
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, maxLogPreview)),
	)
	return text, nil
}

// candidateText joins the text parts of every candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

var _ CompletionService = (*GeminiService)(nil)

var errNilClient = errors.New("completion client is not initialized")
