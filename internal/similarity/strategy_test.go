package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
		{"nan", []float64{math.NaN(), 1}, []float64{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float64{0.3, 0.1, 0.9}
	b := []float64{0.5, 0.7, 0.2}
	assert.Equal(t, Cosine(a, b), Cosine(b, a))
}

func TestNew(t *testing.T) {
	s, err := New(NameTFIDF, nil)
	require.NoError(t, err)
	assert.Equal(t, NameTFIDF, s.Name())

	s, err = New("", nil)
	require.NoError(t, err)
	assert.Equal(t, NameTFIDF, s.Name())

	_, err = New(NameEmbedding, nil)
	assert.Error(t, err)

	s, err = New(NameEmbedding, &fakeEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, NameEmbedding, s.Name())

	_, err = New("bm25", nil)
	assert.Error(t, err)
}

func TestNew_PassesTFIDFOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []TFIDFOption
		wantZero bool
	}{
		{"no stopwords", nil, false},
		{"english stopwords", []TFIDFOption{WithEnglishStopwords()}, true},
		{"custom stopwords", []TFIDFOption{WithStopwords([]string{"The", "with"})}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(NameTFIDF, nil, tt.opts...)
			require.NoError(t, err)
			scores, err := s.Score(context.Background(), "the python with", []string{"the cobol with"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantZero, scores[0].Value == 0, scores[0].Value)
		})
	}
}
