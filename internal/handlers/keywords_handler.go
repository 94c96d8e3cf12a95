package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/job-fit-analyzer/internal/models"
	"alfredoptarigan/job-fit-analyzer/internal/services"
)

type KeywordsHandler struct{}

func NewKeywordsHandler() *KeywordsHandler {
	return &KeywordsHandler{}
}

// HandleKeywords handles POST /keywords
func (h *KeywordsHandler) HandleKeywords(c *fiber.Ctx) error {
	var req models.KeywordsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "jobDescription is required",
		})
	}

	if strings.TrimSpace(req.ResumeText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "resumeText is required",
		})
	}

	return c.JSON(services.BuildKeywordReport(req.JobDescription, req.ResumeText, req.Limit))
}
