package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/ingestion"
)

func TestMatch(t *testing.T) {
	v := Default()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "job description",
			text: "Looking for a Python developer with 3+ years experience in machine learning",
			want: []string{"python", "machine learning"},
		},
		{
			name: "no overlap",
			text: "Entry level, no experience mentioned, C++ only",
			want: []string{},
		},
		{
			name: "duplicates collapse",
			text: "SQL, sql and more SQL",
			want: []string{"sql"},
		},
		{
			name: "substring inside a longer word",
			text: "MySQL administrator",
			want: []string{"sql"},
		},
		{
			name: "vocabulary order",
			text: "CSS, HTML, React, Python",
			want: []string{"python", "react", "html", "css"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Match(ingestion.Normalize(tt.text))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_MultiWordPhrasesMustBeContiguous(t *testing.T) {
	v, err := NewVocabulary([]string{"machine learning"})
	require.NoError(t, err)

	assert.Empty(t, v.Match(ingestion.Normalize("machine vision and reinforcement learning")))
	assert.Equal(t, []string{"machine learning"}, v.Match(ingestion.Normalize("Machine-Learning")))
}
