package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/job-fit-analyzer/internal/config"
	"alfredoptarigan/job-fit-analyzer/internal/logger"
	"alfredoptarigan/job-fit-analyzer/internal/models"
)

// minPastedJobChars is the trimmed length above which pasted job text wins over the URL.
const minPastedJobChars = 50

const (
	jobTooShortRecommendation     = "Could not extract sufficient job description content. Please try pasting the job description directly or use a different URL."
	jobTooShortExplanation        = "Unable to analyze due to insufficient job description content."
	searchPageRecommendation      = "The URL appears to be a job search page rather than a specific job posting. Please navigate to the actual job posting and copy that URL."
	searchPageExplanation         = "The extracted content appears to be from a job search or careers page rather than a specific job description."
	jobErrorPageRecommendation    = "Could not read the job posting from this URL. Please try pasting the job description directly or use a different URL."
	resumeTooShortRecommendation  = "Could not extract resume content. Please try uploading a different PDF or use a resume URL."
	resumeTooShortExplanation     = "Unable to analyze due to insufficient resume content."
	resumeErrorPageRecommendation = "Could not read the resume. Please try uploading a different file or use a resume URL."
)

// AnalysisInput carries the sources of one request. At least one job source and one
// resume source are required.
type AnalysisInput struct {
	JobURL         string
	JobDescription string
	ResumeURL      string
	ResumeFile     *UploadedDocument
	RequestID      string
}

type AnalyzerService interface {
	Analyze(ctx context.Context, in AnalysisInput) (*models.AnalysisResult, error)
}

type analyzerService struct {
	completion CompletionService
	configErr  error
	fetcher    TextFetcher
	documents  DocumentTextExtractor
	normalizer *Normalizer
	prompts    *PromptBuilder
	previewCap int
	logger     *zap.Logger
}

// NewAnalyzerService wires the pipeline. A non-nil configErr (or a nil completion service)
// makes every Analyze call fail with that configuration error.
func NewAnalyzerService(
	cfg *config.Config,
	completion CompletionService,
	configErr error,
	fetcher TextFetcher,
	documents DocumentTextExtractor,
	log *zap.Logger,
) AnalyzerService {
	return &analyzerService{
		completion: completion,
		configErr:  configErr,
		fetcher:    fetcher,
		documents:  documents,
		normalizer: NewNormalizer(cfg.Limits.ExtractionCap),
		prompts:    NewPromptBuilder(cfg.Limits.PromptCap, cfg.LLM.MaxOutputTokens, cfg.LLM.Temperature),
		previewCap: cfg.Limits.PreviewCap,
		logger:     logger.WithFields(log),
	}
}

func (a *analyzerService) Analyze(ctx context.Context, in AnalysisInput) (*models.AnalysisResult, error) {
	if err := a.checkConfigured(); err != nil {
		return nil, err
	}

	log := a.logger
	if in.RequestID != "" {
		log = log.With(zap.String(logger.FieldRequestID, in.RequestID))
	}

	if strings.TrimSpace(in.JobURL) == "" && strings.TrimSpace(in.JobDescription) == "" {
		return nil, &MissingInputError{Field: "job", Message: "Please provide either a job URL or job description"}
	}
	if strings.TrimSpace(in.ResumeURL) == "" && in.ResumeFile == nil {
		return nil, &MissingInputError{Field: "resume", Message: "Please provide either a resume URL or upload a resume file"}
	}

	jobText := a.normalizer.Clip(a.resolveJobText(ctx, in))
	resumeText := a.normalizer.Clip(a.resolveResumeText(ctx, in))

	log.Info("📄 Texts extracted",
		zap.Int("job_text_length", RuneLen(jobText)),
		zap.Int("resume_text_length", RuneLen(resumeText)),
	)

	previews := &models.Previews{
		JobText:    TruncateRunes(jobText, a.previewCap),
		ResumeText: TruncateRunes(resumeText, a.previewCap),
	}

	if result := shortCircuitJob(jobText); result != nil {
		log.Info("⚠️  Skipping completion call: unusable job text", zap.String("verdict", Validate(jobText, RoleJob).String()))
		result.Previews = previews
		return result, nil
	}
	if result := shortCircuitResume(resumeText); result != nil {
		log.Info("⚠️  Skipping completion call: unusable resume text", zap.String("verdict", Validate(resumeText, RoleResume).String()))
		result.Previews = previews
		return result, nil
	}

	req := a.prompts.BuildFitAnalysisRequest(jobText, resumeText)

	log.Info("🤖 Requesting fit analysis",
		zap.String(logger.FieldProvider, a.completion.Provider()),
		zap.String(logger.FieldModel, a.completion.Model()),
	)
	started := time.Now()
	raw, err := a.completion.Complete(ctx, req)
	if err != nil {
		log.Error("❌ Completion call failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, err
	}

	recovery := RecoverAnalysis(raw)
	if recovery.Kind == RecoveryDegraded {
		log.Warn("model reply could not be parsed, using degraded result",
			zap.Error(recovery.Cause),
			zap.String("reply_preview", logger.TruncateForLog(raw, maxLogPreview)),
		)
	}

	result := recovery.Result
	result.Previews = previews

	log.Info("✅ Analysis completed",
		zap.String("recovery", recovery.Kind.String()),
		zap.Float64("match_score", result.MatchScore),
		zap.String("fit_level", result.FitLevel),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &result, nil
}

func (a *analyzerService) checkConfigured() error {
	if a.configErr != nil {
		return a.configErr
	}
	if a.completion == nil {
		return &config.ConfigurationError{Reason: "completion provider not configured"}
	}
	return nil
}

func (a *analyzerService) resolveJobText(ctx context.Context, in AnalysisInput) string {
	pasted := strings.TrimSpace(in.JobDescription)
	if RuneLen(pasted) > minPastedJobChars || strings.TrimSpace(in.JobURL) == "" {
		return a.normalizer.NormalizePlain(pasted)
	}
	return a.fetcher.ExtractText(ctx, in.JobURL)
}

func (a *analyzerService) resolveResumeText(ctx context.Context, in AnalysisInput) string {
	if strings.TrimSpace(in.ResumeURL) != "" {
		return a.fetcher.ExtractText(ctx, in.ResumeURL)
	}
	return a.normalizer.NormalizePlain(a.documents.ExtractText(*in.ResumeFile))
}

func shortCircuitJob(text string) *models.AnalysisResult {
	switch Validate(text, RoleJob) {
	case TooShort:
		return unusableInputResult(jobTooShortRecommendation, jobTooShortExplanation)
	case LooksLikeSearchResults:
		return unusableInputResult(searchPageRecommendation, searchPageExplanation)
	case LooksLikeErrorPage:
		return unusableInputResult(jobErrorPageRecommendation, strings.TrimSpace(text))
	}
	return nil
}

func shortCircuitResume(text string) *models.AnalysisResult {
	switch Validate(text, RoleResume) {
	case TooShort:
		return unusableInputResult(resumeTooShortRecommendation, resumeTooShortExplanation)
	case LooksLikeErrorPage:
		return unusableInputResult(resumeErrorPageRecommendation, strings.TrimSpace(text))
	}
	return nil
}

func unusableInputResult(recommendation, explanation string) *models.AnalysisResult {
	return &models.AnalysisResult{
		FitLevel:       models.FitLevelAnalysisError,
		Recommendation: recommendation,
		MatchScore:     0,
		Explanation:    explanation,
		Improvements:   DefaultImprovements,
	}
}
