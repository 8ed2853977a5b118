// Package similarity scores how close each résumé is to a job description.
//
// Two strategies share one contract: TF-IDF over the run's own corpus (0-1 scale)
// and dense embeddings from an external model (0-100 scale). Both are symmetric,
// deterministic for identical inputs and return 0 when texts share nothing.
package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/types"
)

// Strategy names accepted by New.
const (
	NameTFIDF     = "tfidf"
	NameEmbedding = "embedding"
)

// Strategy computes one SimilarityScore per résumé, in input order.
type Strategy interface {
	Name() string
	Score(ctx context.Context, jobDescription string, resumes []string) ([]types.SimilarityScore, error)
}

// New returns the strategy registered under name. The embedder is only
// required for the embedding strategy; the TF-IDF options only apply to TF-IDF.
func New(name string, embedder llm.Embedder, opts ...TFIDFOption) (Strategy, error) {
	switch name {
	case NameTFIDF, "":
		return NewTFIDF(opts...), nil
	case NameEmbedding:
		if embedder == nil {
			return nil, fmt.Errorf("embedding strategy requires an embedder")
		}
		return NewEmbedding(embedder), nil
	default:
		return nil, fmt.Errorf("unknown similarity strategy %q", name)
	}
}

// Cosine returns the cosine similarity of a and b. Zero vectors, length
// mismatches and non-finite results yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	c := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return clamp(c, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
