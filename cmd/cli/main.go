package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
	"alfredoptarigan/job-fit-analyzer/internal/models"
	"alfredoptarigan/job-fit-analyzer/internal/services"
)

const app = "jobfit"

var (
	debugLogs bool
	jsonLogs  bool
	output    string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "jobfit scores how well a resume matches a job posting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "result format: text or json")

	rootCmd.AddCommand(newAnalyzeCmd(), newKeywordsCmd())
}

func newAnalyzeCmd() *cobra.Command {
	var in struct {
		jobURL, jobFile, resumeURL, resumeFile string
	}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a job posting against a resume with the configured completion provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			zapLogger, err := logger.New(jsonLogs, debugLogs)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer func() { _ = zapLogger.Sync() }()

			ctx := cmd.Context()
			configErr := cfg.Validate()
			var completion services.CompletionService
			if configErr == nil {
				completion, configErr = services.NewCompletionService(ctx, cfg.LLM, zapLogger)
			}

			normalizer := services.NewNormalizer(cfg.Limits.ExtractionCap)
			fetcher := services.NewFetcher(cfg.Fetch, normalizer, zapLogger)
			parser := services.NewDocumentParser(cfg.Limits.MaxUploadSize, zapLogger)
			analyzer := services.NewAnalyzerService(cfg, completion, configErr, fetcher, parser, zapLogger)

			input := services.AnalysisInput{JobURL: in.jobURL, ResumeURL: in.resumeURL}
			if in.jobFile != "" {
				data, err := os.ReadFile(in.jobFile)
				if err != nil {
					return fmt.Errorf("reading job file: %w", err)
				}
				input.JobDescription = string(data)
			}
			if in.resumeFile != "" {
				doc, err := readUpload(in.resumeFile)
				if err != nil {
					return err
				}
				input.ResumeFile = doc
			}

			result, err := analyzer.Analyze(ctx, input)
			if err != nil {
				return err
			}
			return printAnalysis(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&in.jobURL, "job-url", "", "job posting URL")
	cmd.Flags().StringVar(&in.jobFile, "job-file", "", "file with the pasted job description")
	cmd.Flags().StringVar(&in.resumeURL, "resume-url", "", "resume URL")
	cmd.Flags().StringVar(&in.resumeFile, "resume-file", "", "resume document (.pdf, .docx or .txt)")
	cmd.MarkFlagsOneRequired("job-url", "job-file")
	cmd.MarkFlagsOneRequired("resume-url", "resume-file")

	return cmd
}

func newKeywordsCmd() *cobra.Command {
	var jobFile, resumeFile string
	var limit int

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Report job keywords covered and missing in a resume",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := os.ReadFile(jobFile)
			if err != nil {
				return fmt.Errorf("reading job file: %w", err)
			}

			doc, err := readUpload(resumeFile)
			if err != nil {
				return err
			}
			resume := services.NewDocumentParser(0, zap.NewNop()).ExtractText(*doc)
			if services.IsDiagnosticText(resume) {
				return errors.New(resume)
			}

			report := services.BuildKeywordReport(string(job), resume, limit)
			return printKeywords(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&jobFile, "job-file", "", "file with the job description")
	cmd.Flags().StringVar(&resumeFile, "resume-file", "", "resume document (.pdf, .docx or .txt)")
	cmd.Flags().IntVar(&limit, "limit", services.DefaultKeywordLimit, "number of job keywords to check")
	_ = cmd.MarkFlagRequired("job-file")
	_ = cmd.MarkFlagRequired("resume-file")

	return cmd
}

func readUpload(path string) (*services.UploadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}
	return &services.UploadedDocument{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func printAnalysis(w io.Writer, result *models.AnalysisResult) error {
	if output == "json" {
		return writeJSON(w, result)
	}

	_, err := fmt.Fprintf(w, "Fit level:      %s\nMatch score:    %.0f/100\nRecommendation: %s\n\n%s\n\nImprovements:\n%s\n",
		result.FitLevel, result.MatchScore, result.Recommendation, result.Explanation, result.Improvements)
	return err
}

func printKeywords(w io.Writer, report models.KeywordReport) error {
	if output == "json" {
		return writeJSON(w, report)
	}

	_, err := fmt.Fprintf(w, "Coverage:  %.1f%%\nMatched:   %v\nMissing:   %v\nBuzzwords: %v\n",
		report.Coverage, report.Matched, report.Missing, report.Buzzwords)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
