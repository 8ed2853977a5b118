package similarity

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// TFIDF vectorizes the job description and résumés of a single run together.
// Vocabulary and IDF weights are rebuilt on every call and never shared between runs.
type TFIDF struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// TFIDFOption configures a TFIDF strategy.
type TFIDFOption func(*TFIDF)

// WithStopwords drops the given tokens before weighting. Matching ignores case.
func WithStopwords(words []string) TFIDFOption {
	return func(t *TFIDF) {
		for _, w := range words {
			t.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithEnglishStopwords drops common English function words.
func WithEnglishStopwords() TFIDFOption {
	return WithStopwords(englishStopwords)
}

// NewTFIDF returns a TF-IDF strategy. Tokens are runs of two or more word characters.
func NewTFIDF(opts ...TFIDFOption) *TFIDF {
	t := &TFIDF{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
		stopwords:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns "tfidf".
func (t *TFIDF) Name() string { return NameTFIDF }

// Score returns raw cosine similarities in [0, 1] on scale 1.
func (t *TFIDF) Score(ctx context.Context, jobDescription string, resumes []string) ([]types.SimilarityScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := make([]string, 0, len(resumes)+1)
	corpus = append(corpus, jobDescription)
	corpus = append(corpus, resumes...)

	vectors := t.vectorize(corpus)
	scores := make([]types.SimilarityScore, len(resumes))
	for i := range resumes {
		// TF-IDF weights are non-negative so the cosine is too.
		scores[i] = types.SimilarityScore{
			Value: clamp(Cosine(vectors[0], vectors[i+1]), 0, 1),
			Scale: 1,
		}
	}
	return scores, nil
}

// vectorize returns one L2-normalized dense vector per document over a sorted vocabulary.
// Term frequency is the raw count and IDF is smoothed: ln((1+n)/(1+df)) + 1.
func (t *TFIDF) vectorize(corpus []string) [][]float64 {
	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)

	for i, doc := range corpus {
		counts[i] = make(map[string]int)
		for _, tok := range t.tokenPattern.FindAllString(doc, -1) {
			if _, stop := t.stopwords[tok]; stop {
				continue
			}
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([][]float64, len(corpus))
	for d := range corpus {
		vec := make([]float64, len(terms))
		var norm float64
		for i, term := range terms {
			if c := counts[d][term]; c > 0 {
				vec[i] = float64(c) * idf[i]
				norm += vec[i] * vec[i]
			}
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i] /= norm
			}
		}
		vectors[d] = vec
	}
	return vectors
}

var englishStopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
	"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this",
	"that", "these", "those", "from", "up", "down", "over", "under", "than", "so", "such",
	"into", "about", "between", "through", "during", "before", "after", "out", "off", "own",
	"same", "too", "very", "can", "will", "just", "should", "now", "we", "you", "our", "your",
}
