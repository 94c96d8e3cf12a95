package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/job-fit-analyzer/internal/config"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func newTestOpenAI(t *testing.T, baseURL string, timeout time.Duration) *OpenAIService {
	t.Helper()
	svc, err := NewOpenAIService(config.LLMConfig{
		Provider:        config.ProviderOpenAI,
		APIKey:          "sk-test",
		Model:           "gpt-4o-mini",
		BaseURL:         baseURL + "/",
		Timeout:         timeout,
		MaxOutputTokens: 2500,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestOpenAICompleteSendsPrompt(t *testing.T) {
	var body map[string]any
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply("  {\"fitLevel\":\"Good Fit\"}  "))
	})

	svc := newTestOpenAI(t, server.URL, 5*time.Second)
	text, err := svc.Complete(context.Background(), NewPromptBuilder(8000, 2500, 0.1).BuildFitAnalysisRequest("job", "resume"))

	require.NoError(t, err)
	assert.Equal(t, `{"fitLevel":"Good Fit"}`, text)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 2500, body["max_tokens"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-6)

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAICompleteEmptyReply(t *testing.T) {
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply("   "))
	})

	_, err := newTestOpenAI(t, server.URL, 5*time.Second).Complete(context.Background(), CompletionRequest{UserMessage: "x"})

	var callErr *ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, config.ProviderOpenAI, callErr.Provider)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAICompleteServerError(t *testing.T) {
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	})

	_, err := newTestOpenAI(t, server.URL, 5*time.Second).Complete(context.Background(), CompletionRequest{UserMessage: "x"})

	var callErr *ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.False(t, callErr.Timeout)
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestOpenAICompleteTimeout(t *testing.T) {
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := newTestOpenAI(t, server.URL, 50*time.Millisecond).Complete(context.Background(), CompletionRequest{UserMessage: "x"})

	var callErr *ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.True(t, callErr.Timeout)
}

func TestNewCompletionService(t *testing.T) {
	ctx := context.Background()

	_, err := NewCompletionService(ctx, config.LLMConfig{Provider: "cohere", APIKey: "k"}, nil)
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewCompletionService(ctx, config.LLMConfig{Provider: config.ProviderOpenAI}, nil)
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewCompletionService(ctx, config.LLMConfig{Provider: config.ProviderGemini}, nil)
	require.ErrorAs(t, err, &cfgErr)

	svc, err := NewCompletionService(ctx, config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "sk", Model: "gpt-4o"}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, svc.Provider())
	assert.Equal(t, "gpt-4o", svc.Model())
}

func TestWrapProviderError(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, wrapProviderError("openai", ctx, nil))

	err := wrapProviderError("openai", ctx, errors.New("connection refused"))
	var callErr *ProviderCallError
	require.ErrorAs(t, err, &callErr)
	assert.False(t, callErr.Timeout)

	err = wrapProviderError("gemini", ctx, context.DeadlineExceeded)
	require.ErrorAs(t, err, &callErr)
	assert.True(t, callErr.Timeout)
	assert.Equal(t, "gemini completion timed out: context deadline exceeded", err.Error())
}

func TestCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "reasoning about the candidate", Thought: true},
				{Text: " {\"fitLevel\":"},
				nil,
				{Text: "\"Good Fit\"} "},
			}}},
			{Content: nil},
		},
	}

	assert.Equal(t, "{\"fitLevel\":\n\"Good Fit\"}", candidateText(resp))
	assert.Empty(t, candidateText(nil))
	assert.Empty(t, candidateText(&genai.GenerateContentResponse{}))
}

func TestNilCompletionClients(t *testing.T) {
	var gemini *GeminiService
	_, err := gemini.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, errNilClient)

	var openaiSvc *OpenAIService
	_, err = openaiSvc.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, errNilClient)
}
