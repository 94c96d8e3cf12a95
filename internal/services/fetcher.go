package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alfredoptarigan/job-fit-analyzer/internal/config"
)

const (
	// FetchErrorMessage replaces the text of any source that could not be fetched.
	FetchErrorMessage = "Error fetching job posting content. Please check the URL and try again."

	// UnextractableMessage replaces pages that were fetched but carry no usable posting.
	UnextractableMessage = `Error: Unable to extract job content from this URL. The page may require JavaScript or have access restrictions. Please try:
1. Copy and paste the job description directly
2. Use a different job posting URL (try Indeed, LinkedIn Jobs, or company career pages)
3. Look for a "View Full Job Description" or "Apply" link that goes to a static page`
)

// TextFetcher obtains plain text for a URL. Implementations never fail the request:
// problems come back as explanatory text.
type TextFetcher interface {
	ExtractText(ctx context.Context, rawURL string) string
}

type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBody    int64
	limiter    *rate.Limiter
	normalizer *Normalizer
	logger     *zap.Logger
}

func NewFetcher(cfg config.FetchConfig, normalizer *Normalizer, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Fetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		userAgent:  userAgent,
		maxBody:    cfg.MaxBodyBytes,
		normalizer: normalizer,
		logger:     logger,
	}
}

// FetchText downloads rawURL and normalizes it. Non-2xx statuses fail with *HTTPStatusError;
// bodies that are neither HTML nor text yield NonTextMarker.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", target.Scheme)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("fetch rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPStatusError{URL: target.String(), StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !IsHTMLContentType(contentType) && !IsTextContentType(contentType) {
		return NonTextMarker, nil
	}

	var body io.Reader = resp.Body
	if f.maxBody > 0 {
		body = io.LimitReader(resp.Body, f.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return f.normalizer.Normalize(RawDocument{Body: string(data), ContentType: contentType}), nil
}

// ExtractText applies the degrade-to-text policy on top of FetchText.
func (f *Fetcher) ExtractText(ctx context.Context, rawURL string) string {
	text, err := f.FetchText(ctx, rawURL)
	if err != nil {
		f.logger.Warn("document fetch failed", zap.String("url", rawURL), zap.Error(err))
		return FetchErrorMessage
	}
	if text == NonTextMarker {
		return text
	}

	if LooksUnextractable(text) {
		f.logger.Info("fetched page has no usable posting",
			zap.String("url", rawURL),
			zap.Int("text_length", RuneLen(text)),
		)
		return UnextractableMessage
	}

	return text
}
