package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float64
	failOn  string
	calls   []string
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls = append(f.calls, text)
	if text == f.failOn {
		return nil, errors.New("model unavailable")
	}
	return f.vectors[text], nil
}

func (f *fakeEmbedder) Close() error { return nil }

func TestEmbedding_Score(t *testing.T) {
	fake := &fakeEmbedder{vectors: map[string][]float64{
		"jd":        {1, 0},
		"same":      {2, 0},
		"diagonal":  {1, 1},
		"unrelated": {0, 1},
		"opposite":  {-1, 0},
	}}

	scores, err := NewEmbedding(fake).Score(context.Background(), "jd",
		[]string{"same", "diagonal", "unrelated", "opposite"})
	require.NoError(t, err)
	require.Len(t, scores, 4)

	assert.Equal(t, 100.0, scores[0].Value)
	assert.Equal(t, 70.71, scores[1].Value)
	assert.Equal(t, 0.0, scores[2].Value)
	assert.Equal(t, 0.0, scores[3].Value)
	for _, s := range scores {
		assert.Equal(t, 100.0, s.Scale)
	}
	assert.Equal(t, []string{"jd", "same", "diagonal", "unrelated", "opposite"}, fake.calls)
}

func TestEmbedding_Errors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeEmbedder
		want string
	}{
		{
			name: "job description fails",
			fake: &fakeEmbedder{failOn: "jd", vectors: map[string][]float64{}},
			want: "job description",
		},
		{
			name: "résumé fails",
			fake: &fakeEmbedder{failOn: "r", vectors: map[string][]float64{"jd": {1}}},
			want: "résumé 0",
		},
		{
			name: "dimension mismatch",
			fake: &fakeEmbedder{vectors: map[string][]float64{"jd": {1, 0}, "r": {1}}},
			want: "dimension mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmbedding(tt.fake).Score(context.Background(), "jd", []string{"r"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
