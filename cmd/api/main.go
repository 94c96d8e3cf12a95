package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/handlers"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
	"alfredoptarigan/job-fit-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zapLogger.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	// A missing credential does not stop the server; analysis requests report it instead.
	ctx := context.Background()
	configErr := cfg.Validate()
	var completion services.CompletionService
	if configErr == nil {
		completion, configErr = services.NewCompletionService(ctx, cfg.LLM, zapLogger)
	}
	if configErr != nil {
		zapLogger.Warn("⚠️  Completion provider not available", zap.Error(configErr))
	} else {
		zapLogger.Info("✅ Completion provider initialized",
			zap.String(logger.FieldProvider, completion.Provider()),
			zap.String(logger.FieldModel, completion.Model()),
		)
	}

	// Initialize services
	normalizer := services.NewNormalizer(cfg.Limits.ExtractionCap)
	fetcher := services.NewFetcher(cfg.Fetch, normalizer, zapLogger)
	documentParser := services.NewDocumentParser(cfg.Limits.MaxUploadSize, zapLogger)
	analyzer := services.NewAnalyzerService(cfg, completion, configErr, fetcher, documentParser, zapLogger)
	zapLogger.Info("✅ Services initialized successfully")

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer, cfg, configErr, zapLogger)
	keywordsHandler := handlers.NewKeywordsHandler()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Job Fit Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + cfg.Fetch.Timeout*2 + 10*time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	handlers.RegisterRoutes(app, analyzeHandler, keywordsHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zapLogger.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zapLogger.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zapLogger.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
