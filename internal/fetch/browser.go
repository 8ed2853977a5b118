package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logger"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP fetch.
// Shorter pages are usually rendered client-side and need a browser.
const MinContentLength = 500

// defaultSettle is how long a rendered page may take to show its content.
const defaultSettle = 3 * time.Second

// ShouldUseBrowser reports whether the extracted text is too short to be the real page.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout time.Duration
	// WaitSelector is a CSS selector for the content; rendering stops waiting once
	// it is visible or after the settle time.
	WaitSelector string
	Settle       time.Duration
	Logger       *zap.Logger
}

// WithBrowser renders a page in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, pageURL string, opts BrowserOptions) (string, error) {
	log := logger.OrNop(opts.Logger)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = defaultSettle
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	log.Debug("rendering page", zap.String("url", pageURL), zap.String("wait_for", opts.WaitSelector))
	if err := chromedp.Run(tabCtx, chromedp.Navigate(pageURL), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	if opts.WaitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, settle)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			log.Debug("content selector not visible, using page as is", zap.Error(err))
		}
	} else if err := chromedp.Run(tabCtx, chromedp.Sleep(settle)); err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read rendered %s: %w", pageURL, err)
	}
	log.Debug("rendered page", zap.String("url", pageURL), zap.Int("bytes", len(html)))
	return html, nil
}
