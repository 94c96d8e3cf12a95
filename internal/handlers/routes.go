package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the analysis endpoints under /api and their versioned aliases under /api/v1.
func RegisterRoutes(app *fiber.App, analyze *AnalyzeHandler, keywords *KeywordsHandler) {
	api := app.Group("/api")
	api.Get("/analyze", analyze.HandleStatus)
	api.Post("/analyze", analyze.HandleAnalyze)
	api.Post("/keywords", keywords.HandleKeywords)

	v1 := app.Group("/api/v1")

	// Health check
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	v1.Get("/analyze", analyze.HandleStatus)
	v1.Post("/analyze", analyze.HandleAnalyze)
	v1.Post("/keywords", keywords.HandleKeywords)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Fit Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/analyze",
				"POST /api/analyze",
				"POST /api/keywords",
				"GET /api/v1/health",
			},
		})
	})
}

// ErrorHandler renders errors that escape a handler as {error, code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
