package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func extraction(skills int, years int) types.ExtractionResult {
	found := make([]string, skills)
	for i := range found {
		found[i] = string(rune('a' + i))
	}
	return types.ExtractionResult{SkillsFound: found, ExperienceYears: years}
}

func TestFinalScore_Additive(t *testing.T) {
	agg, err := NewAggregator(DefaultAdditiveWeights())
	require.NoError(t, err)

	tests := []struct {
		name string
		sim  types.SimilarityScore
		ext  types.ExtractionResult
		want float64
	}{
		{"embedding scale", types.SimilarityScore{Value: 72.5, Scale: 100}, extraction(2, 5), 72.5 + 4 + 7.5},
		{"tfidf scale is converted", types.SimilarityScore{Value: 0.4312, Scale: 1}, extraction(1, 0), 43.12 + 2},
		{"nothing", types.SimilarityScore{Value: 0, Scale: 1}, extraction(0, 0), 0},
		{"rounded", types.SimilarityScore{Value: 0.123456, Scale: 1}, extraction(0, 0), 12.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, agg.FinalScore(tt.sim, tt.ext, 15), 1e-9)
		})
	}
}

func TestFinalScore_Normalized(t *testing.T) {
	agg, err := NewAggregator(DefaultNormalizedWeights())
	require.NoError(t, err)

	// (0.8*0.6 + 3/15*0.3 + 5/10*0.3) * 100 = 48 + 6 + 15
	got := agg.FinalScore(types.SimilarityScore{Value: 80, Scale: 100}, extraction(3, 5), 15)
	assert.InDelta(t, 69.0, got, 1e-9)

	// Experience is capped at 10 years.
	capped := agg.FinalScore(types.SimilarityScore{Value: 0, Scale: 1}, extraction(0, 40), 15)
	atCap := agg.FinalScore(types.SimilarityScore{Value: 0, Scale: 1}, extraction(0, 10), 15)
	assert.Equal(t, atCap, capped)
	assert.InDelta(t, 30.0, capped, 1e-9)

	// Zero vocabulary means zero coverage rather than a division by zero.
	assert.Equal(t, 0.0, agg.FinalScore(types.SimilarityScore{Scale: 1}, extraction(2, 0), 0))
}

func TestFinalScore_Monotonic(t *testing.T) {
	schemes := []Weights{DefaultAdditiveWeights(), DefaultNormalizedWeights()}
	sims := []float64{0, 0.001, 0.25, 0.5, 0.5049, 0.505, 0.99, 1}
	skillCounts := []int{0, 1, 2, 5, 15, 20}
	years := []int{0, 1, 3, 9, 10, 11, 50}
	const vocab = 15

	for _, w := range schemes {
		agg, err := NewAggregator(w)
		require.NoError(t, err)

		score := func(s float64, k, y int) float64 {
			return agg.FinalScore(types.SimilarityScore{Value: s, Scale: 1}, extraction(k, y), vocab)
		}

		t.Run(string(w.Scheme), func(t *testing.T) {
			for _, k := range skillCounts {
				for _, y := range years {
					for i := 1; i < len(sims); i++ {
						assert.GreaterOrEqual(t, score(sims[i], k, y), score(sims[i-1], k, y))
					}
				}
			}
			for _, s := range sims {
				for _, y := range years {
					for i := 1; i < len(skillCounts); i++ {
						assert.GreaterOrEqual(t, score(s, skillCounts[i], y), score(s, skillCounts[i-1], y))
					}
				}
				for _, k := range skillCounts {
					for i := 1; i < len(years); i++ {
						assert.GreaterOrEqual(t, score(s, k, years[i]), score(s, k, years[i-1]))
					}
				}
			}
		})
	}
}

func TestFinalScore_Deterministic(t *testing.T) {
	agg, err := NewAggregator(DefaultWeights())
	require.NoError(t, err)

	sim := types.SimilarityScore{Value: 0.3333333, Scale: 1}
	ext := extraction(2, 4)
	assert.Equal(t, agg.FinalScore(sim, ext, 15), agg.FinalScore(sim, ext, 15))
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr string
	}{
		{"unknown scheme", Weights{Scheme: "linear"}, "unknown scoring scheme"},
		{"negative similarity", Weights{Scheme: SchemeAdditive, Similarity: -1}, "similarity weight"},
		{"negative skills", Weights{Scheme: SchemeAdditive, Skills: -0.5}, "skills weight"},
		{"nan experience", Weights{Scheme: SchemeAdditive, Experience: math.NaN()}, "experience weight"},
		{"zero cap", Weights{Scheme: SchemeNormalized, Similarity: 1, ExperienceCap: 0}, "experience cap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator(tt.weights)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// The cap is irrelevant to the additive scheme.
	_, err := NewAggregator(Weights{Scheme: SchemeAdditive, Similarity: 1})
	assert.NoError(t, err)
}

func TestDefaultWeightsFor(t *testing.T) {
	w, err := DefaultWeightsFor(SchemeNormalized)
	require.NoError(t, err)
	assert.Equal(t, DefaultNormalizedWeights(), w)

	w, err = DefaultWeightsFor(SchemeAdditive)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	_, err = DefaultWeightsFor("other")
	assert.Error(t, err)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.235000001))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 100.0, Round2(99.999))
}
