// Package pipeline runs one analysis: text extraction, feature extraction,
// similarity, scoring, persistence and ranking.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/experience"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/similarity"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
)

// Progress steps reported through OnProgress.
const (
	StepExtract    = "extract"
	StepSimilarity = "similarity"
	StepScore      = "score"
	StepPersist    = "persist"
	StepRank       = "rank"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step     string `json:"step"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// RowStore persists runs and their rows. Rows are inserted one at a time in upload order.
type RowStore interface {
	CreateRun(ctx context.Context, run *types.AnalysisRun) error
	InsertRankingRow(ctx context.Context, row *types.RankingRow) error
}

// Options configures an Analyzer. Zero values select the defaults: TF-IDF,
// the built-in vocabulary, default year units and additive weights. A nil
// Store disables persistence.
type Options struct {
	Strategy   similarity.Strategy
	Vocabulary *skills.Vocabulary
	Extractor  *experience.Extractor
	Aggregator *ranking.Aggregator
	Store      RowStore
	Logger     *zap.Logger
	OnProgress ProgressCallback
	Now        func() time.Time
}

// Request is one analysis: a job description and the uploaded résumés.
type Request struct {
	JobDescription string
	Uploads        []types.Upload
	UserID         *uuid.UUID
	// OnProgress receives this run's events in addition to Options.OnProgress.
	OnProgress ProgressCallback
}

// Analyzer scores résumés against a job description.
// It holds no per-run state, so one Analyzer may serve concurrent runs.
type Analyzer struct {
	strategy   similarity.Strategy
	vocabulary *skills.Vocabulary
	extractor  *experience.Extractor
	aggregator *ranking.Aggregator
	store      RowStore
	log        *zap.Logger
	onProgress ProgressCallback
	now        func() time.Time
}

// NewAnalyzer returns an Analyzer, filling unset options with defaults.
func NewAnalyzer(opts Options) *Analyzer {
	a := &Analyzer{
		strategy:   opts.Strategy,
		vocabulary: opts.Vocabulary,
		extractor:  opts.Extractor,
		aggregator: opts.Aggregator,
		store:      opts.Store,
		log:        logger.OrNop(opts.Logger),
		onProgress: opts.OnProgress,
		now:        opts.Now,
	}
	if a.strategy == nil {
		a.strategy = similarity.NewTFIDF()
	}
	if a.vocabulary == nil {
		a.vocabulary = skills.Default()
	}
	if a.extractor == nil {
		// Default units always compile.
		a.extractor, _ = experience.NewExtractor(nil)
	}
	if a.aggregator == nil {
		a.aggregator, _ = ranking.NewAggregator(ranking.DefaultWeights())
	}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}
	return a
}

// timestamp is the clock reading at the precision both stores keep.
func (a *Analyzer) timestamp() time.Time {
	return a.now().Truncate(time.Microsecond)
}

// progress returns the callback for one run.
func (a *Analyzer) progress(perRun ProgressCallback) func(step, filename, message string) {
	return func(step, filename, message string) {
		event := ProgressEvent{Step: step, Filename: filename, Message: message}
		if a.onProgress != nil {
			a.onProgress(event)
		}
		if perRun != nil {
			perRun(event)
		}
	}
}

// Run scores every readable upload and returns the ranking table.
//
// Unreadable uploads are skipped and listed in the result. A similarity failure
// aborts the run before anything is stored. Storage failures do not stop the run:
// the full result is returned together with a *PersistError naming the rows that
// were not stored.
func (a *Analyzer) Run(ctx context.Context, req Request) (*types.AnalysisResult, error) {
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, ErrNoJobDescription
	}
	if len(req.Uploads) == 0 {
		return nil, ErrNoResumes
	}

	run := types.AnalysisRun{
		ID:             uuid.New(),
		UserID:         req.UserID,
		JobDescription: req.JobDescription,
		Strategy:       a.strategy.Name(),
		Scheme:         string(a.aggregator.Weights().Scheme),
		CreatedAt:      a.timestamp(),
	}
	log := a.log.With(zap.String("run_id", run.ID.String()))
	log.Info("starting analysis",
		zap.String("strategy", run.Strategy),
		zap.String("scheme", run.Scheme),
		zap.Int("uploads", len(req.Uploads)))
	log.Debug("job description", zap.String("text", logger.TruncateForLog(req.JobDescription, 200)))

	emit := a.progress(req.OnProgress)
	result := &types.AnalysisResult{
		Skipped:        make([]types.SkippedDocument, 0),
		Persisted:      make([]string, 0),
		VocabularySize: a.vocabulary.Size(),
	}

	docs, positions := a.extractAll(req.Uploads, result, log, emit)
	if len(docs) == 0 {
		log.Warn("no readable résumés", zap.Int("skipped", len(result.Skipped)))
		return result, ErrNoReadableResumes
	}
	run.ResumeCount = len(docs)

	jd := ingestion.Normalize(req.JobDescription)
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Normalized
	}

	emit(StepSimilarity, "", fmt.Sprintf("scoring %d résumé(s) with %s", len(docs), a.strategy.Name()))
	sims, err := a.strategy.Score(ctx, jd, texts)
	if err == nil && len(sims) != len(docs) {
		err = fmt.Errorf("strategy returned %d scores for %d résumés", len(sims), len(docs))
	}
	if err != nil {
		log.Error("similarity failed, aborting run", zap.Error(err))
		return nil, &SimilarityError{Strategy: a.strategy.Name(), Cause: err}
	}

	runErr := a.createRun(ctx, &run, log)
	var persistErr error
	var failed []string

	rows := make([]types.RankingRow, len(docs))
	for i, doc := range docs {
		ext := types.ExtractionResult{
			SkillsFound:     a.vocabulary.Match(doc.Normalized),
			ExperienceYears: a.extractor.MaxYears(doc.Normalized),
		}
		rows[i] = types.RankingRow{
			ID:              uuid.New(),
			RunID:           run.ID,
			Position:        positions[i],
			Filename:        doc.Filename,
			Similarity:      sims[i].Value,
			SimilarityScale: sims[i].Scale,
			SkillsFound:     ext.SkillsFound,
			ExperienceYears: ext.ExperienceYears,
			FinalScore:      a.aggregator.FinalScore(sims[i], ext, a.vocabulary.Size()),
			CreatedAt:       a.timestamp(),
		}
		emit(StepScore, doc.Filename, fmt.Sprintf("final score %.2f (%s)", rows[i].FinalScore, ranking.Summary(rows[i])))

		if a.store == nil {
			continue
		}
		if runErr != nil {
			failed = append(failed, doc.Filename)
			continue
		}
		if err := a.store.InsertRankingRow(ctx, &rows[i]); err != nil {
			log.Error("failed to persist row", zap.String("filename", doc.Filename), zap.Error(err))
			persistErr = multierr.Append(persistErr, fmt.Errorf("%s: %w", doc.Filename, err))
			failed = append(failed, doc.Filename)
			continue
		}
		result.Persisted = append(result.Persisted, doc.Filename)
		emit(StepPersist, doc.Filename, "stored")
	}
	if runErr != nil {
		persistErr = multierr.Append(runErr, persistErr)
	}

	result.Run = run
	result.Table = ranking.Rank(rows)
	result.PersistFailed = failed
	emit(StepRank, "", fmt.Sprintf("ranked %d résumé(s)", len(rows)))

	log.Info("analysis finished",
		zap.Strings("ranked", result.Table.Filenames()),
		zap.Strings("persisted", result.Persisted),
		zap.Strings("persist_failed", failed),
		zap.Int("skipped", len(result.Skipped)))

	if persistErr != nil {
		return result, &PersistError{RunID: run.ID, Failed: failed, Err: persistErr}
	}
	return result, nil
}

// extractAll turns uploads into documents, recording failures as skipped.
// positions holds each document's index in the original upload list.
func (a *Analyzer) extractAll(uploads []types.Upload, result *types.AnalysisResult, log *zap.Logger, emit func(step, filename, message string)) ([]types.Document, []int) {
	docs := make([]types.Document, 0, len(uploads))
	positions := make([]int, 0, len(uploads))

	for i, up := range uploads {
		text, err := uploadText(up)
		if err == nil && ingestion.Normalize(text) == "" {
			err = &ingestion.ExtractionError{Filename: up.Filename, Reason: "no text content"}
		}
		if err != nil {
			log.Warn("skipping résumé", zap.String("filename", up.Filename), zap.Error(err))
			result.Skipped = append(result.Skipped, types.SkippedDocument{Filename: up.Filename, Reason: err.Error()})
			emit(StepExtract, up.Filename, "skipped: "+err.Error())
			continue
		}

		docs = append(docs, ingestion.NewDocument(up.Filename, text))
		positions = append(positions, i)
		emit(StepExtract, up.Filename, fmt.Sprintf("%d characters", len(text)))
	}
	return docs, positions
}

// uploadText extracts the text of an upload, reporting a failed read as an extraction error.
func uploadText(up types.Upload) (string, error) {
	if up.ReadErr != nil {
		return "", &ingestion.ExtractionError{Filename: up.Filename, Reason: "unreadable file", Cause: up.ReadErr}
	}
	return ingestion.ExtractText(up.Filename, up.Content)
}

// createRun stores the run header. A failure here means no row can be stored.
func (a *Analyzer) createRun(ctx context.Context, run *types.AnalysisRun, log *zap.Logger) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.CreateRun(ctx, run); err != nil {
		log.Error("failed to persist run", zap.Error(err))
		return fmt.Errorf("run %s: %w", run.ID, err)
	}
	return nil
}
