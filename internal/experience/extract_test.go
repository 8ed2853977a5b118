package experience

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/ingestion"
)

func TestMaxYears(t *testing.T) {
	e, err := NewExtractor(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"max wins", "5 years, 10+ years experience", 10},
		{"no pattern", "Entry level, no experience mentioned, C++ only", 0},
		{"empty", "", 0},
		{"single", "5 years Python and machine learning experience", 5},
		{"plus sign", "3+ years experience in machine learning", 3},
		{"abbreviation", "7yrs backend, 2 yr frontend", 7},
		{"singular", "1 year internship", 1},
		{"no space", "12years of Go", 12},
		{"number without unit", "worked on 40 projects", 0},
		{"uppercase", "8 YEARS", 8},
		{"overflow ignored", strings.Repeat("9", 40) + " years and 4 years", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.MaxYears(ingestion.Normalize(tt.text)))
		})
	}
}

func TestMaxYears_RawPlusSign(t *testing.T) {
	e, err := NewExtractor(nil)
	require.NoError(t, err)

	assert.Equal(t, 10, e.MaxYears("10+ years"))
	assert.Equal(t, 10, e.MaxYears("10+years"))
}

func TestNewExtractor_CustomUnits(t *testing.T) {
	e, err := NewExtractor([]string{"Jahre", "ans", "ans"})
	require.NoError(t, err)

	assert.Equal(t, []string{"jahre", "ans"}, e.Units())
	assert.Equal(t, 6, e.MaxYears("6 jahre erfahrung, 3 ans"))
	assert.Equal(t, 0, e.MaxYears("9 years"))
}

func TestNewExtractor_DefaultUnits(t *testing.T) {
	e, err := NewExtractor([]string{" ", ""})
	require.NoError(t, err)
	assert.Equal(t, DefaultUnits, e.Units())
}

func TestNewExtractor_RejectsDigits(t *testing.T) {
	_, err := NewExtractor([]string{"y2k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not contain digits")
}
