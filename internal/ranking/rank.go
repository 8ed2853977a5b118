package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Rank returns the rows sorted by final score, highest first, with Rank set from 1.
// Rows with equal scores keep their input order. The input slice is not modified.
func Rank(rows []types.RankingRow) types.RankingTable {
	sorted := make([]types.RankingRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalScore > sorted[j].FinalScore
	})

	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return types.RankingTable{Rows: sorted}
}

// Summary describes a row in one line for logs and terminal output.
func Summary(row types.RankingRow) string {
	var parts []string

	if len(row.SkillsFound) > 0 {
		parts = append(parts, fmt.Sprintf("skills: %s", strings.Join(row.SkillsFound, ", ")))
	} else {
		parts = append(parts, "no skill matches")
	}

	switch {
	case row.ExperienceYears == 0:
		parts = append(parts, "no stated experience")
	case row.ExperienceYears == 1:
		parts = append(parts, "1 year")
	default:
		parts = append(parts, fmt.Sprintf("%d years", row.ExperienceYears))
	}

	return strings.Join(parts, "; ")
}
