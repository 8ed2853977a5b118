package skills

import "strings"

// Match returns the vocabulary phrases that occur as substrings of normalized text.
// Multi-word phrases must appear contiguously. The result is in vocabulary order,
// holds no duplicates and is never nil.
func (v *Vocabulary) Match(normalized string) []string {
	found := make([]string, 0)
	if normalized == "" {
		return found
	}

	for _, phrase := range v.phrases {
		if strings.Contains(normalized, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
