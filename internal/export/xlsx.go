package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-screener/internal/types"
)

const (
	rankingSheet = "Ranking"
	chartCell    = "H2"
)

// WriteXLSX writes the table to a workbook with a final score bar chart.
func WriteXLSX(w io.Writer, table types.RankingTable, title string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := append([]string{"Rank"}, Columns...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(rankingSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(rankingSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range table.Rows {
		rank := row.Rank
		if rank == 0 {
			rank = i + 1
		}
		values := []any{rank, row.Filename, row.Similarity, strings.Join(row.SkillsFound, ", "), row.ExperienceYears, row.FinalScore}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rankingSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Filename, err)
		}
	}

	_ = f.SetColWidth(rankingSheet, "A", "A", 8)
	_ = f.SetColWidth(rankingSheet, "B", "B", 32)
	_ = f.SetColWidth(rankingSheet, "C", "C", 16)
	_ = f.SetColWidth(rankingSheet, "D", "D", 40)
	_ = f.SetColWidth(rankingSheet, "E", "F", 18)

	if len(table.Rows) > 0 {
		if err := addScoreChart(f, len(table.Rows), title); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addScoreChart(f *excelize.File, n int, title string) error {
	if title == "" {
		title = "Final Score by Resume"
	}
	last := n + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$F$1", rankingSheet),
			Categories: fmt.Sprintf("'%s'!$B$2:$B$%d", rankingSheet, last),
			Values:     fmt.Sprintf("'%s'!$F$2:$F$%d", rankingSheet, last),
		}},
		Title:    []excelize.RichTextRun{{Text: title}},
		Legend:   excelize.ChartLegend{Position: "none"},
		PlotArea: excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{
			Width:  uint(480 + 40*n),
			Height: 320,
		},
	}
	if err := f.AddChart(rankingSheet, chartCell, chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}
