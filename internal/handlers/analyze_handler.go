package handlers

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/models"
	"alfredoptarigan/job-fit-analyzer/internal/services"
)

const resumeFileField = "resumeFile"

type AnalyzeHandler struct {
	analyzer    services.AnalyzerService
	maxFileSize int64
	cfg         *config.Config
	configErr   error
	logger      *zap.Logger
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	cfg *config.Config,
	configErr error,
	logger *zap.Logger,
) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{
		analyzer:    analyzer,
		maxFileSize: cfg.Limits.MaxUploadSize,
		cfg:         cfg,
		configErr:   configErr,
		logger:      logger,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request payload",
			Details: err.Error(),
		})
	}

	resumeFile, err := h.readResumeFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Failed to read uploaded resume",
			Details: err.Error(),
		})
	}

	result, err := h.analyzer.Analyze(c.UserContext(), services.AnalysisInput{
		JobURL:         req.JobURL,
		JobDescription: req.JobDescription,
		ResumeURL:      req.ResumeURL,
		ResumeFile:     resumeFile,
		RequestID:      c.GetRespHeader(fiber.HeaderXRequestID),
	})
	if err != nil {
		return h.writeAnalysisError(c, err)
	}

	return c.JSON(result)
}

// HandleStatus handles GET /analyze
func (h *AnalyzeHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(models.StatusResponse{
		OK:                 true,
		Message:            "Job fit analysis API is running",
		Route:              "/api/analyze",
		Expects:            "POST multipart/form-data or JSON with jobUrl or jobDescription, and resumeUrl or resumeFile",
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		ProviderConfigured: h.configErr == nil,
		Provider:           h.cfg.LLM.Provider,
		Environment:        h.cfg.Server.Env,
	})
}

// readResumeFile returns nil when the request carries no multipart upload.
func (h *AnalyzeHandler) readResumeFile(c *fiber.Ctx) (*services.UploadedDocument, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files, exists := form.File[resumeFileField]
	if !exists || len(files) == 0 {
		return nil, nil
	}
	fileHeader := files[0]

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxFileSize > 0 {
		// one byte past the limit lets the parser report the file as too large
		reader = io.LimitReader(file, h.maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &services.UploadedDocument{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func (h *AnalyzeHandler) writeAnalysisError(c *fiber.Ctx, err error) error {
	var (
		missing  *services.MissingInputError
		cfgErr   *config.ConfigurationError
		callErr  *services.ProviderCallError
		status   = fiber.StatusInternalServerError
		response = models.ErrorResponse{Error: "Failed to analyze job fit", Details: err.Error()}
	)

	switch {
	case errors.As(err, &missing):
		status = fiber.StatusBadRequest
		response = models.ErrorResponse{Error: missing.Message}
	case errors.As(err, &cfgErr):
		response = models.ErrorResponse{Error: "Server configuration error", Details: cfgErr.Reason}
	case errors.As(err, &callErr):
		status = fiber.StatusBadGateway
		if callErr.Timeout {
			status = fiber.StatusGatewayTimeout
		}
	}

	h.logger.Warn("analysis request failed",
		zap.Int("status", status),
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.Error(err),
	)
	return c.Status(status).JSON(response)
}
