package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n\t\n  ", ""},
		{"squeezes spaces", "Line    with \t multiple   spaces  ", "Line with multiple spaces"},
		{"line endings", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"one blank line between paragraphs", "Role\n\n\n\n\nRequirements", "Role\n\nRequirements"},
		{"markdown kept", "# Title\n- item\n* other", "# Title\n- item\n* other"},
		{"bullet glyphs", "• Python\n▪  SQL\n· Go", "- Python\n- SQL\n- Go"},
		{"indentation kept", "Stack\n   • Kafka", "Stack\n   - Kafka"},
		{"non-breaking space", "5+\u00a0years\u00a0 ago", "5+ years ago"},
		{"unicode kept", "spéciàl 🚀 chàracters", "spéciàl 🚀 chàracters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	input := "Posting   title\r\n\r\n\r\n• 3+ years   Go\n   ▪ SQL"
	once := CleanText(input)
	assert.Equal(t, once, CleanText(once))
}

func TestCleanText_PostingFixture(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "complex_formatting.txt"))
	require.NoError(t, err)

	result := CleanText(string(content))

	assert.Contains(t, result, "# Senior Software Engineer\n\n## Responsibilities")
	assert.Contains(t, result, "   - Build APIs with gRPC")
	assert.Contains(t, result, "* SQL and Postgres")
	assert.NotContains(t, result, "\n\n\n")
	assert.Equal(t, result, CleanText(result))
}
