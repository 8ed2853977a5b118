package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/db/sqlite"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/pipeline"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/similarity"
)

// openStore connects to PostgreSQL when a URL is configured, otherwise to the SQLite file.
func (a *app) openStore(ctx context.Context) (db.Store, error) {
	if a.cfg.DatabaseURL != "" {
		a.log.Debug("using postgres store")
		store, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return store, nil
	}

	a.log.Debug("using sqlite store", zap.String("path", a.cfg.SQLitePath))
	store, err := sqlite.Open(ctx, a.cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newAnalyzer builds the analyzer for the configured strategy and weights.
// The returned func releases the embedding client, if any.
func (a *app) newAnalyzer(ctx context.Context, store pipeline.RowStore, onProgress pipeline.ProgressCallback) (*pipeline.Analyzer, func(), error) {
	sc := a.cfg.Scoring

	vocabulary, err := sc.Vocabulary()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load skill vocabulary: %w", err)
	}
	extractor, err := sc.Extractor()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid year units: %w", err)
	}
	weights, err := sc.RankingWeights()
	if err != nil {
		return nil, nil, err
	}
	aggregator, err := ranking.NewAggregator(weights)
	if err != nil {
		return nil, nil, err
	}

	release := func() {}
	var embedder llm.Embedder
	if sc.Strategy == similarity.NameEmbedding {
		embedder, err = llm.NewEmbedder(ctx, a.cfg.Embedding.LLMConfig(), "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		release = func() { _ = embedder.Close() }
	}

	strategy, err := similarity.New(sc.Strategy, embedder, sc.TFIDFOptions()...)
	if err != nil {
		release()
		return nil, nil, err
	}

	a.log.Debug("analyzer ready",
		zap.String("strategy", strategy.Name()),
		zap.String("scheme", string(weights.Scheme)),
		zap.Int("vocabulary", vocabulary.Size()))

	return pipeline.NewAnalyzer(pipeline.Options{
		Strategy:   strategy,
		Vocabulary: vocabulary,
		Extractor:  extractor,
		Aggregator: aggregator,
		Store:      store,
		Logger:     a.log,
		OnProgress: onProgress,
	}), release, nil
}
