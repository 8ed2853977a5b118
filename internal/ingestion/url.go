package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/logger"
)

var (
	// ErrHTTPRequestFailed is returned when the job posting could not be downloaded
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be pulled out of the page
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions controls how a job description is pulled from a posting URL.
type URLOptions struct {
	Fetch *fetch.Options
	// UseBrowser enables the headless browser fallback for client-rendered pages.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger
}

// JobDescriptionFromURL downloads a job posting and returns its cleaned text.
// HTML pages use the job board's selectors; PDF, DOCX and plain text postings go
// through ExtractText.
func JobDescriptionFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, error) {
	log := logger.OrNop(opts.Logger)

	page, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	var text string
	if page.IsHTML() {
		text, err = postingText(ctx, page, opts, log)
	} else {
		text, err = documentText(page)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: page at %s has no text", ErrContentExtractionFailed, urlStr)
	}
	log.Debug("extracted job description", zap.String("url", page.URL), zap.Int("chars", len(cleaned)))
	return cleaned, nil
}

// postingText extracts an HTML posting, re-rendering it in a browser when the
// static page looks client-rendered.
func postingText(ctx context.Context, page *fetch.Page, opts URLOptions, log *zap.Logger) (string, error) {
	platform := fetch.DetectPlatform(page.URL)
	content := fetch.PlatformContentSelectors(platform)
	noise := fetch.PlatformNoiseSelectors(platform)
	log.Debug("extracting posting", zap.String("url", page.URL), zap.String("platform", string(platform)))

	text, err := fetch.ExtractMainText(page.HTML(), content, noise...)
	if err != nil {
		return "", err
	}
	if !opts.UseBrowser || !fetch.ShouldUseBrowser(text) {
		return text, nil
	}

	log.Info("page content too short, rendering in browser",
		zap.String("url", page.URL), zap.Int("chars", len(text)))
	rendered, err := fetch.WithBrowser(ctx, page.URL, fetch.BrowserOptions{
		Timeout:      opts.BrowserTimeout,
		WaitSelector: strings.Join(content, ", "),
		Logger:       log,
	})
	if err != nil {
		log.Warn("browser rendering failed, using HTTP content", zap.Error(err))
		return text, nil
	}
	if renderedText, err := fetch.ExtractMainText(rendered, content, noise...); err == nil && len(renderedText) > len(text) {
		return renderedText, nil
	}
	return text, nil
}

// documentText extracts a posting served as a document rather than a web page.
func documentText(page *fetch.Page) (string, error) {
	ext := page.Extension()
	if ext == "" {
		return "", fmt.Errorf("unsupported content type %q", page.ContentType)
	}
	return ExtractText("posting"+ext, page.Body)
}
