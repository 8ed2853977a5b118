// Package fetch retrieves remote pages and reduces HTML to readable text.
// Job descriptions given as a URL and HTML résumé uploads both go through here.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the screener to job boards.
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeScreener/1.0)"
	// DefaultMaxBodyBytes caps the size of a fetched page.
	DefaultMaxBodyBytes = 5 << 20
)

// ErrBodyTooLarge is returned when a page exceeds Options.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// boilerplate is stripped from every page before text extraction.
const boilerplate = "nav, footer, header, script, style, noscript, svg, iframe, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup"

// blockElements get a trailing newline so adjacent blocks keep their words apart.
const blockElements = "p, li, h1, h2, h3, h4, h5, h6, div, tr, dt, dd, section"

// Page is a fetched document.
type Page struct {
	// URL is the final location after redirects.
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// HTML returns the body as a string.
func (p *Page) HTML() string {
	return string(p.Body)
}

func (p *Page) mediaType() string {
	mt, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return ""
	}
	return mt
}

// IsHTML reports whether the page should be parsed as HTML. Pages served without a
// content type are assumed to be HTML.
func (p *Page) IsHTML() bool {
	switch p.mediaType() {
	case "", "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// Extension maps a non-HTML content type to the file extension used for text
// extraction, or "" when the type has no extractor.
func (p *Page) Extension() string {
	switch p.mediaType() {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "text/plain":
		return ".txt"
	case "text/markdown":
		return ".md"
	}
	return ""
}

// Error describes a failed fetch. StatusCode is set when the server answered.
type Error struct {
	URL        string
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Op, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures a fetch. Zero fields fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Headers      map[string]string
	Client       *http.Client
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (o *Options) limit() int64 {
	if o.MaxBodyBytes > 0 {
		return o.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

// URL downloads an http or https page. A non-2xx answer returns the page together
// with an *Error carrying the status.
func URL(ctx context.Context, rawURL string, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: rawURL, Op: "invalid URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "build request", Err: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readLimited(resp.Body, opts.limit())
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "read body", StatusCode: resp.StatusCode, Err: err}
	}

	page := &Page{
		URL:         resp.Request.URL.String(),
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, &Error{URL: rawURL, Op: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}
	return page, nil
}

// readLimited reads at most limit bytes and fails if the body is longer.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// ExtractMainText parses HTML and returns the readable text of its main content.
// Boilerplate and noiseSelectors are removed first; the first content selector
// that matches wins, otherwise the whole body is used. Lines are trimmed and blank
// lines dropped.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find(boilerplate).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			content = match
			break
		}
	}

	content.Find("br").ReplaceWithHtml("\n")
	content.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(content.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// DefaultTextSelectors returns the main-content selectors for generic pages.
func DefaultTextSelectors() []string {
	return []string{"main", "article", "[role='main']", ".content", "#content", ".main-content", "#main-content"}
}

// JobPostingSelectors returns job board content selectors followed by the generic ones.
func JobPostingSelectors() []string {
	return append([]string{
		".job-description",
		"#job-description",
		".job-content",
		"#job-content",
		".job-details",
		".posting-content",
		"[data-testid='job-description']",
		"[itemprop='description']",
	}, DefaultTextSelectors()...)
}
