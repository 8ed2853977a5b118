package types

import (
	"time"

	"github.com/google/uuid"
)

// RankingRow is the scored outcome for one uploaded résumé.
// Rows are immutable once computed; Position is the upload order (0-based).
type RankingRow struct {
	ID              uuid.UUID `json:"id"`
	RunID           uuid.UUID `json:"run_id"`
	Position        int       `json:"position"`
	Filename        string    `json:"filename"`
	Similarity      float64   `json:"similarity"`
	SimilarityScale float64   `json:"similarity_scale"`
	SkillsFound     []string  `json:"skills_found"`
	ExperienceYears int       `json:"experience_years"`
	FinalScore      float64   `json:"final_score"`
	Rank            int       `json:"rank,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RankingTable is a sequence of rows sorted by FinalScore descending.
type RankingTable struct {
	Rows []RankingRow `json:"rows"`
}

// Filenames returns the row filenames in table order.
func (t RankingTable) Filenames() []string {
	names := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		names[i] = row.Filename
	}
	return names
}

// AnalysisRun describes one scoring run over a batch of résumés.
type AnalysisRun struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	JobDescription string     `json:"job_description"`
	Strategy       string     `json:"strategy"`
	Scheme         string     `json:"scheme"`
	ResumeCount    int        `json:"resume_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SkippedDocument reports a résumé that was left out of a run.
type SkippedDocument struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AnalysisResult is the full outcome of an analysis run.
type AnalysisResult struct {
	Run            AnalysisRun       `json:"run"`
	Table          RankingTable      `json:"table"`
	Skipped        []SkippedDocument `json:"skipped,omitempty"`
	Persisted      []string          `json:"persisted"`
	PersistFailed  []string          `json:"persist_failed,omitempty"`
	VocabularySize int               `json:"vocabulary_size"`
}
