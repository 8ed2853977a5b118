// Package experience parses claimed years of experience out of normalized text.
package experience

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultUnits are the year tokens recognized when none are configured.
var DefaultUnits = []string{"years", "year", "yrs", "yr"}

// Extractor finds "<digits>[+] <unit>" claims and reports the largest one.
// It is safe for concurrent use.
type Extractor struct {
	units   []string
	pattern *regexp.Regexp
}

// NewExtractor compiles an extractor for the given year-unit tokens.
// Units are lowercased; an empty list selects DefaultUnits.
func NewExtractor(units []string) (*Extractor, error) {
	cleaned := make([]string, 0, len(units))
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" || seen[u] {
			continue
		}
		if strings.ContainsAny(u, "0123456789") {
			return nil, fmt.Errorf("year unit %q must not contain digits", u)
		}
		seen[u] = true
		cleaned = append(cleaned, u)
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultUnits...)
	}

	// Longest first so "years" wins over "year" in the alternation.
	alternatives := make([]string, len(cleaned))
	copy(alternatives, cleaned)
	sort.SliceStable(alternatives, func(i, j int) bool {
		return len(alternatives[i]) > len(alternatives[j])
	})
	for i, a := range alternatives {
		alternatives[i] = regexp.QuoteMeta(a)
	}

	pattern, err := regexp.Compile(`(\d+)\+?\s*(?:` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile experience pattern: %w", err)
	}

	return &Extractor{units: cleaned, pattern: pattern}, nil
}

// Units returns the configured unit tokens.
func (e *Extractor) Units() []string {
	out := make([]string, len(e.units))
	copy(out, e.units)
	return out
}

// MaxYears returns the largest year count claimed in the text, or 0 when there is none.
// Every match counts; the best claim wins.
func (e *Extractor) MaxYears(text string) int {
	best := 0
	for _, m := range e.pattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// out of range for int
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}
