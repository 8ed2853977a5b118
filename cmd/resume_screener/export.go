package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/export"
	"github.com/jonathan/resume-screener/internal/types"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		runID    string
		csvPath  string
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "export --run ID",
		Short: "Export a stored run",
		Long:  "Print a stored run's ranking table, or write it as CSV or an Excel workbook with a score chart.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd, runID, csvPath, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an Excel workbook to this file")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, rawID, csvPath, xlsxPath string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", rawID, err)
	}

	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}
	rows, err := store.ListRankingRows(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list rows: %w", err)
	}
	table := types.RankingTable{Rows: rows}

	if csvPath == "" && xlsxPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), export.RenderTable(table))
		return nil
	}
	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, table) }); err != nil {
			return err
		}
	}
	if xlsxPath != "" {
		if err := writeFile(xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, table, "") }); err != nil {
			return err
		}
	}
	return nil
}
