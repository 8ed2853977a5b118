package ingestion

import (
	"strings"
	"unicode"
)

// bulletGlyphs are list markers that HTML-to-text and PDF extraction leave behind.
var bulletGlyphs = []string{"•", "◦", "▪", "‣", "·", "–"}

// CleanText tidies a fetched job posting for display and storage. Line breaks and
// list structure survive; runs of spaces collapse, bullet glyphs become "- " and at
// most one blank line separates paragraphs. Scoring uses Normalize, not this.
func CleanText(content string) string {
	content = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(content)

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(content, "\n") {
		line = cleanLine(line)
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
			if blank > 0 {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		blank = 0
	}
	return b.String()
}

// cleanLine keeps a line's leading indentation and list marker and squeezes the rest.
func cleanLine(line string) string {
	line = strings.Map(func(r rune) rune {
		if r == '\u00a0' || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, line)

	body := strings.TrimLeft(line, " ")
	if body == "" {
		return ""
	}
	indent := line[:len(line)-len(body)]

	for _, glyph := range bulletGlyphs {
		if rest, ok := strings.CutPrefix(body, glyph); ok {
			body = "- " + strings.TrimLeft(rest, " ")
			break
		}
	}
	return indent + strings.Join(strings.Fields(body), " ")
}
