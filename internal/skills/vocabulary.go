// Package skills matches a fixed skill vocabulary against normalized document text.
package skills

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-screener/internal/ingestion"
)

// DefaultPhrases is the vocabulary used when none is configured.
// "c++" is absent on purpose: normalization reduces it to "c", which occurs almost everywhere.
var DefaultPhrases = []string{
	"python",
	"java",
	"machine learning",
	"deep learning",
	"sql",
	"mongodb",
	"aws",
	"flask",
	"django",
	"spring",
	"react",
	"tensorflow",
	"pytorch",
	"html",
	"css",
}

// ErrEmptyVocabulary is returned when a vocabulary has no usable phrases.
var ErrEmptyVocabulary = errors.New("skill vocabulary is empty")

// PhraseError reports a vocabulary phrase that would not survive text normalization.
type PhraseError struct {
	Phrase     string
	Normalized string
}

func (e *PhraseError) Error() string {
	if e.Normalized == "" {
		return fmt.Sprintf("skill %q has no word characters", e.Phrase)
	}
	return fmt.Sprintf("skill %q normalizes to %q and would never match as written", e.Phrase, e.Normalized)
}

// LoadError represents an error reading or parsing a vocabulary file.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Vocabulary is an ordered, read-only set of lowercase skill phrases.
type Vocabulary struct {
	phrases []string
}

// NewVocabulary builds a vocabulary from phrases. Phrases are lowercased and trimmed,
// duplicates are dropped keeping the first occurrence, and every phrase must already be
// in normalized form so that it can match normalized text.
func NewVocabulary(phrases []string) (*Vocabulary, error) {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))

	for _, raw := range phrases {
		phrase := strings.ToLower(strings.TrimSpace(raw))
		if phrase == "" {
			continue
		}
		if normalized := ingestion.Normalize(phrase); normalized != phrase {
			return nil, &PhraseError{Phrase: raw, Normalized: normalized}
		}
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		out = append(out, phrase)
	}

	if len(out) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &Vocabulary{phrases: out}, nil
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := NewVocabulary(DefaultPhrases)
	if err != nil {
		panic(err)
	}
	return v
}

type vocabularyFile struct {
	Skills []string `yaml:"skills"`
}

// LoadVocabularyFile reads a YAML file with a top-level "skills" list.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read vocabulary file", Cause: err}
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse vocabulary file", Cause: err}
	}

	v, err := NewVocabulary(file.Skills)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "invalid vocabulary", Cause: err}
	}
	return v, nil
}

// Phrases returns a copy of the vocabulary in configured order.
func (v *Vocabulary) Phrases() []string {
	out := make([]string, len(v.phrases))
	copy(out, v.phrases)
	return out
}

// Size returns the number of phrases.
func (v *Vocabulary) Size() int {
	return len(v.phrases)
}
