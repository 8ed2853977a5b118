package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jonathan/resume-screener/internal/types"
)

// DefaultBarWidth is the bar length of the top-scoring row.
const DefaultBarWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderTable renders the table as a bordered terminal table in its current order.
func RenderTable(t types.RankingTable) string {
	rows := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		rank := row.Rank
		if rank == 0 {
			rank = i + 1
		}
		rows = append(rows, append([]string{strconv.Itoa(rank)}, Record(row)...))
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(append([]string{"#"}, Columns...)...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// RenderRuns renders stored runs as a terminal table.
func RenderRuns(runs []types.AnalysisRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		jd := []rune(strings.Join(strings.Fields(r.JobDescription), " "))
		if len(jd) > 40 {
			jd = append([]rune(strings.TrimSpace(string(jd[:37]))), []rune("...")...)
		}
		rows = append(rows, []string{
			r.ID.String(),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Strategy,
			r.Scheme,
			strconv.Itoa(r.ResumeCount),
			string(jd),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Run", "Created", "Strategy", "Scheme", "Résumés", "Job").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// RenderBarChart draws one horizontal bar per row scaled to the highest final score.
// A non-positive width uses DefaultBarWidth.
func RenderBarChart(t types.RankingTable, width int) string {
	if len(t.Rows) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultBarWidth
	}

	labelWidth := 0
	maxScore := 0.0
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Filename))
		maxScore = max(maxScore, row.FinalScore)
	}
	label := labelStyle.Width(labelWidth)

	var b strings.Builder
	for _, row := range t.Rows {
		n := 0
		if maxScore > 0 {
			n = int(row.FinalScore/maxScore*float64(width) + 0.5)
		}
		fmt.Fprintf(&b, "%s │%s %s\n",
			label.Render(row.Filename),
			barStyle.Render(strings.Repeat("█", n)),
			formatFloat(row.FinalScore),
		)
	}
	return b.String()
}
