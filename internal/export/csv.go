// Package export serializes a ranking table for download and display.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Columns is the header row shared by the CSV and XLSX exports.
var Columns = []string{"Resume", "Similarity Score", "Skills Found", "Experience (Years)", "Final Score"}

// Record flattens a row into export cells.
func Record(row types.RankingRow) []string {
	return []string{
		row.Filename,
		formatFloat(row.Similarity),
		strings.Join(row.SkillsFound, ", "),
		strconv.Itoa(row.ExperienceYears),
		formatFloat(row.FinalScore),
	}
}

// WriteCSV writes the table in its current order with a header row.
func WriteCSV(w io.Writer, table types.RankingTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(Record(row)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
