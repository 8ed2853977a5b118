package similarity

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/types"
)

// Embedding embeds each text independently and compares vectors by cosine.
type Embedding struct {
	embedder llm.Embedder
}

// NewEmbedding returns an embedding strategy backed by embedder.
func NewEmbedding(embedder llm.Embedder) *Embedding {
	return &Embedding{embedder: embedder}
}

// Name returns "embedding".
func (e *Embedding) Name() string { return NameEmbedding }

// Score returns cosine similarity scaled to 0-100 and rounded to two decimals.
// Negative cosines are reported as 0. Any embedder failure fails the whole call.
func (e *Embedding) Score(ctx context.Context, jobDescription string, resumes []string) ([]types.SimilarityScore, error) {
	jdVec, err := e.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description with %s: %w", e.embedder.Name(), err)
	}

	scores := make([]types.SimilarityScore, len(resumes))
	for i, text := range resumes {
		vec, err := e.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed résumé %d with %s: %w", i, e.embedder.Name(), err)
		}
		if len(vec) != len(jdVec) {
			return nil, fmt.Errorf("embedding dimension mismatch: job description %d, résumé %d has %d",
				len(jdVec), i, len(vec))
		}
		scores[i] = types.SimilarityScore{
			Value: round2(clamp(Cosine(jdVec, vec)*100, 0, 100)),
			Scale: 100,
		}
	}
	return scores, nil
}
