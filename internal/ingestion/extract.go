package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/types"
)

const (
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

// SupportedExtensions lists the file extensions ExtractText understands.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md", ".html", ".htm"}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// ExtractionError reports a document whose text could not be extracted.
type ExtractionError struct {
	Filename string
	Reason   string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Filename, e.Reason, e.Cause)
	}
	return fmt.Sprintf("extract %s: %s", e.Filename, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ExtractText decodes raw file content into plain text. The extension of
// filename selects the method. Empty results are reported as errors.
func ExtractText(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", &ExtractionError{Filename: filename, Reason: "empty file"}
	}

	var (
		text string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md":
		text, err = extractPlain(content)
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".html", ".htm":
		text, err = fetch.ExtractMainText(string(content), fetch.DefaultTextSelectors())
	default:
		return "", &ExtractionError{Filename: filename, Reason: fmt.Sprintf("unsupported file type %q, want one of %s", ext, strings.Join(SupportedExtensions, " "))}
	}

	if err != nil {
		return "", &ExtractionError{Filename: filename, Reason: "unreadable content", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Filename: filename, Reason: "no text content"}
	}

	return text, nil
}

// ReadUpload reads a local file into an Upload named after its base name.
func ReadUpload(path string) (types.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Upload{}, fmt.Errorf("file not found: %w", err)
		}
		return types.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}
	return types.Upload{Filename: filepath.Base(path), Content: content}, nil
}

func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	text := string(content)
	if IsBinaryData(text) {
		return "", fmt.Errorf("content appears to be binary")
	}
	return text, nil
}

func extractPDF(content []byte) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(content []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer func() { _ = r.Close() }()

	xml := r.Editable().GetContent()
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	text := xmlTag.ReplaceAllString(xml, "")
	return html.UnescapeString(text), nil
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	if strings.HasPrefix(content, "%PDF-") {
		return true
	}

	// ZIP local file header (DOCX files)
	if strings.HasPrefix(content, "PK\x03\x04") {
		return true
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}
