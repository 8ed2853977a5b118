package ingestion

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/resume-screener/internal/types"
)

var (
	// nonWordPattern matches anything that is not a letter, digit or underscore.
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, replaces every non-word character with a space
// and collapses whitespace runs to a single space. Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Casers hold state, so one is built per call.
	text = cases.Lower(language.Und).String(text)
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// NewDocument builds a Document from already-extracted text.
func NewDocument(filename, rawText string) types.Document {
	return types.Document{
		Filename:   filename,
		RawText:    rawText,
		Normalized: Normalize(rawText),
	}
}
