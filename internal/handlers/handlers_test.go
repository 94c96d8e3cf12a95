package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/models"
	"alfredoptarigan/job-fit-analyzer/internal/services"
)

type stubAnalyzer struct {
	result *models.AnalysisResult
	err    error
	last   services.AnalysisInput
}

func (s *stubAnalyzer) Analyze(_ context.Context, in services.AnalysisInput) (*models.AnalysisResult, error) {
	s.last = in
	return s.result, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "test"},
		LLM:    config.LLMConfig{Provider: config.ProviderOpenAI},
		Limits: config.LimitsConfig{MaxUploadSize: 1024},
	}
}

func newTestApp(analyzer services.AnalyzerService, configErr error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(requestid.New())
	RegisterRoutes(app, NewAnalyzeHandler(analyzer, testConfig(), configErr, nil), NewKeywordsHandler())
	return app
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestHandleAnalyzeJSON(t *testing.T) {
	analyzer := &stubAnalyzer{result: &models.AnalysisResult{
		FitLevel:       "Good Fit",
		Recommendation: "Apply",
		MatchScore:     80,
		Explanation:    "ok",
		Improvements:   "none",
		Previews:       &models.Previews{JobText: "job", ResumeText: "resume"},
	}}
	app := newTestApp(analyzer, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"jobUrl":"https://jobs.example/1","resumeUrl":"https://cv.example/jane"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Good Fit", body["fitLevel"])
	assert.EqualValues(t, 80, body["matchScore"])
	assert.Equal(t, map[string]any{"jobText": "job", "resumeText": "resume"}, body["previews"])

	assert.Equal(t, "https://jobs.example/1", analyzer.last.JobURL)
	assert.Equal(t, "https://cv.example/jane", analyzer.last.ResumeURL)
	assert.Nil(t, analyzer.last.ResumeFile)
	assert.NotEmpty(t, analyzer.last.RequestID)
}

func TestHandleAnalyzeMultipartUpload(t *testing.T) {
	analyzer := &stubAnalyzer{result: &models.AnalysisResult{FitLevel: "Weak Fit"}}
	app := newTestApp(analyzer, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("jobDescription", "Senior Go engineer"))
	part, err := writer.CreateFormFile("resumeFile", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Jane Doe, Go engineer"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "Senior Go engineer", analyzer.last.JobDescription)
	require.NotNil(t, analyzer.last.ResumeFile)
	assert.Equal(t, "resume.txt", analyzer.last.ResumeFile.Filename)
	assert.Equal(t, "Jane Doe, Go engineer", string(analyzer.last.ResumeFile.Data))
}

func TestHandleAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing input",
			err:        &services.MissingInputError{Field: "job", Message: "Please provide either a job URL or job description"},
			wantStatus: fiber.StatusBadRequest,
			wantError:  "Please provide either a job URL or job description",
		},
		{
			name:       "configuration",
			err:        &config.ConfigurationError{Reason: "openai API key not configured"},
			wantStatus: fiber.StatusInternalServerError,
			wantError:  "Server configuration error",
		},
		{
			name:       "provider failure",
			err:        &services.ProviderCallError{Provider: "openai", Err: services.ErrEmptyCompletion},
			wantStatus: fiber.StatusBadGateway,
			wantError:  "Failed to analyze job fit",
		},
		{
			name:       "provider timeout",
			err:        &services.ProviderCallError{Provider: "openai", Timeout: true, Err: context.DeadlineExceeded},
			wantStatus: fiber.StatusGatewayTimeout,
			wantError:  "Failed to analyze job fit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubAnalyzer{err: tt.err}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode[models.ErrorResponse](t, resp)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestHandleAnalyzeInvalidPayload(t *testing.T) {
	app := newTestApp(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"jobUrl":`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleStatus(t *testing.T) {
	app := newTestApp(&stubAnalyzer{}, &config.ConfigurationError{Reason: "missing key"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[models.StatusResponse](t, resp)
	assert.True(t, body.OK)
	assert.Equal(t, "/api/analyze", body.Route)
	assert.False(t, body.ProviderConfigured)
	assert.Equal(t, config.ProviderOpenAI, body.Provider)
	assert.Equal(t, "test", body.Environment)
	assert.NotEmpty(t, body.Timestamp)
}

func TestHandleKeywords(t *testing.T) {
	app := newTestApp(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/keywords",
		strings.NewReader(`{"jobDescription":"Go Go Kubernetes","resumeText":"I write Go","limit":2}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	report := decode[models.KeywordReport](t, resp)
	assert.Equal(t, []string{"go", "kubernetes"}, report.Keywords)
	assert.Equal(t, []string{"go"}, report.Matched)
	assert.Equal(t, 50.0, report.Coverage)
}

func TestHandleKeywordsValidation(t *testing.T) {
	app := newTestApp(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/keywords", strings.NewReader(`{"jobDescription":"Go"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "resumeText is required", decode[models.ErrorResponse](t, resp).Error)
}

func TestHealthAndRoot(t *testing.T) {
	app := newTestApp(&stubAnalyzer{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, "healthy", decode[map[string]any](t, resp)["status"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
