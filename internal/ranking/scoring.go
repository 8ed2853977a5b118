// Package ranking combines similarity and extracted features into a final score
// and orders résumés by it.
package ranking

import (
	"fmt"
	"math"

	"github.com/jonathan/resume-screener/internal/types"
)

// Scheme selects the weighting formula.
type Scheme string

const (
	// SchemeAdditive: similarity(0-100)*s + skills*k + years*e
	SchemeAdditive Scheme = "additive"
	// SchemeNormalized: (similarity(0-1)*s + coverage*k + min(years,cap)/cap*e) * 100
	SchemeNormalized Scheme = "normalized"
)

// Default weights for the additive scheme
const (
	additiveSimilarityWeight = 1.0
	additiveSkillWeight      = 2.0
	additiveExperienceWeight = 1.5
)

// Default weights for the normalized scheme
const (
	normalizedSimilarityWeight = 0.6
	normalizedSkillWeight      = 0.3
	normalizedExperienceWeight = 0.3
	defaultExperienceCap       = 10
)

// Weights configures the aggregator. ExperienceCap only applies to the normalized scheme.
type Weights struct {
	Scheme        Scheme  `json:"scheme" mapstructure:"scheme"`
	Similarity    float64 `json:"similarity" mapstructure:"similarity"`
	Skills        float64 `json:"skills" mapstructure:"skills"`
	Experience    float64 `json:"experience" mapstructure:"experience"`
	ExperienceCap int     `json:"experience_cap" mapstructure:"experience_cap"`
}

// DefaultWeights returns the additive weights.
func DefaultWeights() Weights {
	return DefaultAdditiveWeights()
}

// DefaultAdditiveWeights returns similarity + 2 per skill + 1.5 per year.
func DefaultAdditiveWeights() Weights {
	return Weights{
		Scheme:        SchemeAdditive,
		Similarity:    additiveSimilarityWeight,
		Skills:        additiveSkillWeight,
		Experience:    additiveExperienceWeight,
		ExperienceCap: defaultExperienceCap,
	}
}

// DefaultNormalizedWeights returns 0.6/0.3/0.3 with experience capped at 10 years.
func DefaultNormalizedWeights() Weights {
	return Weights{
		Scheme:        SchemeNormalized,
		Similarity:    normalizedSimilarityWeight,
		Skills:        normalizedSkillWeight,
		Experience:    normalizedExperienceWeight,
		ExperienceCap: defaultExperienceCap,
	}
}

// DefaultWeightsFor returns the defaults of a scheme.
func DefaultWeightsFor(scheme Scheme) (Weights, error) {
	switch scheme {
	case SchemeAdditive:
		return DefaultAdditiveWeights(), nil
	case SchemeNormalized:
		return DefaultNormalizedWeights(), nil
	default:
		return Weights{}, fmt.Errorf("unknown scoring scheme %q", scheme)
	}
}

// Validate rejects weights that would break monotonicity.
func (w Weights) Validate() error {
	switch w.Scheme {
	case SchemeAdditive, SchemeNormalized:
	default:
		return fmt.Errorf("unknown scoring scheme %q", w.Scheme)
	}

	for name, v := range map[string]float64{
		"similarity": w.Similarity,
		"skills":     w.Skills,
		"experience": w.Experience,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s weight must be a non-negative number, got %v", name, v)
		}
	}

	if w.Scheme == SchemeNormalized && w.ExperienceCap <= 0 {
		return fmt.Errorf("experience cap must be positive, got %d", w.ExperienceCap)
	}
	return nil
}

// Aggregator turns one résumé's similarity and features into a final score.
// FinalScore is a pure function of its inputs and never decreases when
// similarity, skill count or years of experience increase.
type Aggregator struct {
	weights Weights
}

// NewAggregator validates w and returns an aggregator using it.
func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: w}, nil
}

// Weights returns the configured weights.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// FinalScore returns the weighted score rounded to two decimals.
// vocabSize is only used by the normalized scheme to compute skill coverage.
func (a *Aggregator) FinalScore(sim types.SimilarityScore, ext types.ExtractionResult, vocabSize int) float64 {
	w := a.weights
	years := math.Max(0, float64(ext.ExperienceYears))
	skills := float64(ext.SkillCount())

	var score float64
	switch w.Scheme {
	case SchemeNormalized:
		coverage := 0.0
		if vocabSize > 0 {
			coverage = math.Min(1, skills/float64(vocabSize))
		}
		capped := math.Min(years, float64(w.ExperienceCap)) / float64(w.ExperienceCap)
		score = (clampUnit(sim.Unit())*w.Similarity + coverage*w.Skills + capped*w.Experience) * 100
	default:
		score = clampUnit(sim.Unit())*100*w.Similarity + skills*w.Skills + years*w.Experience
	}

	return Round2(score)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
