package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/export"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/pipeline"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/types"
	embedded "github.com/jonathan/resume-screener/schemas"
)

type analyzeFlags struct {
	jd         string
	jdURL      string
	csvPath    string
	xlsxPath   string
	jsonPath   string
	chartWidth int
	noStore    bool
	quiet      bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze --jd FILE|--jd-url URL RESUME...",
		Short: "Score and rank résumé files against a job description",
		Long: `Extracts text from each résumé, scores it against the job description and prints
the ranking table with a bar chart of final scores. Unreadable files are skipped and listed.

Results are stored in the configured database unless --no-store is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, f, args)
		},
	}

	cmd.Flags().StringVar(&f.jd, "jd", "", "Job description file (.txt, .md, .pdf, .docx, .html)")
	cmd.Flags().StringVar(&f.jdURL, "jd-url", "", "URL of a job posting to use as the job description")
	cmd.Flags().Bool("jd-browser", false, "Render --jd-url in headless Chrome when the plain fetch finds too little text")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "Write the ranking table as CSV to this file")
	cmd.Flags().StringVar(&f.xlsxPath, "xlsx", "", "Write the ranking table and score chart as an Excel workbook")
	cmd.Flags().StringVar(&f.jsonPath, "json", "", "Write the full result as JSON to this file")
	cmd.Flags().IntVar(&f.chartWidth, "chart-width", export.DefaultBarWidth, "Width of the longest bar in the score chart")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "Do not save the run")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not print progress")
	cmd.MarkFlagsMutuallyExclusive("jd", "jd-url")
	cmd.MarkFlagsOneRequired("jd", "jd-url")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, f *analyzeFlags, paths []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	jd, err := a.loadJobDescription(cmd, f)
	if err != nil {
		return err
	}

	uploads := make([]types.Upload, 0, len(paths))
	for _, path := range paths {
		up, err := ingestion.ReadUpload(path)
		if err != nil {
			up = types.Upload{Filename: filepath.Base(path), ReadErr: err}
		}
		uploads = append(uploads, up)
	}

	var store db.Store
	if !f.noStore {
		store, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var onProgress pipeline.ProgressCallback
	if !f.quiet {
		onProgress = func(e pipeline.ProgressEvent) {
			if e.Filename != "" {
				fmt.Fprintf(errOut, "[%s] %s: %s\n", e.Step, e.Filename, e.Message)
				return
			}
			fmt.Fprintf(errOut, "[%s] %s\n", e.Step, e.Message)
		}
	}

	// A nil db.Store must stay a nil interface for the analyzer.
	var rows pipeline.RowStore
	if store != nil {
		rows = store
	}
	analyzer, release, err := a.newAnalyzer(ctx, rows, onProgress)
	if err != nil {
		return err
	}
	defer release()

	result, err := analyzer.Run(ctx, pipeline.Request{JobDescription: jd, Uploads: uploads})
	var persistErr *pipeline.PersistError
	switch {
	case err == nil:
	case errors.As(err, &persistErr):
		a.log.Warn("some rows were not saved", zap.Strings("files", persistErr.Failed), zap.Error(err))
		fmt.Fprintf(errOut, "warning: %d row(s) were not saved: %v\n", len(persistErr.Failed), err)
	case errors.Is(err, pipeline.ErrNoReadableResumes) && result != nil:
		printSkipped(errOut, result.Skipped)
		return err
	default:
		return err
	}

	fmt.Fprintln(out, export.RenderTable(result.Table))
	fmt.Fprintln(out)
	fmt.Fprint(out, export.RenderBarChart(result.Table, f.chartWidth))
	printSkipped(errOut, result.Skipped)
	if store != nil && len(result.Persisted) > 0 {
		fmt.Fprintf(errOut, "saved run %s\n", result.Run.ID)
	}

	return writeReports(result, f)
}

// loadJobDescription reads --jd or fetches --jd-url.
func (a *app) loadJobDescription(cmd *cobra.Command, f *analyzeFlags) (string, error) {
	if f.jdURL != "" {
		text, err := ingestion.JobDescriptionFromURL(cmd.Context(), f.jdURL, a.cfg.Fetch.URLOptions(a.log))
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, nil
	}

	up, err := ingestion.ReadUpload(f.jd)
	if err != nil {
		return "", fmt.Errorf("job description: %w", err)
	}
	text, err := ingestion.ExtractText(up.Filename, up.Content)
	if err != nil {
		return "", fmt.Errorf("job description: %w", err)
	}
	return text, nil
}

func printSkipped(w io.Writer, skipped []types.SkippedDocument) {
	for _, s := range skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", s.Filename, s.Reason)
	}
}

// writeReports writes the optional CSV, workbook and JSON files.
func writeReports(result *types.AnalysisResult, f *analyzeFlags) error {
	if f.csvPath != "" {
		if err := writeFile(f.csvPath, func(w io.Writer) error { return export.WriteCSV(w, result.Table) }); err != nil {
			return err
		}
	}
	if f.xlsxPath != "" {
		if err := writeFile(f.xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, result.Table, "") }); err != nil {
			return err
		}
	}
	if f.jsonPath != "" {
		if err := schemas.Validate(embedded.RankingTable, result); err != nil {
			return fmt.Errorf("result does not match the report schema: %w", err)
		}
		if err := writeFile(f.jsonPath, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path (and its directory) and fills it with write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
