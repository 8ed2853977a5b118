// Package db provides PostgreSQL storage for users, analysis runs and ranking rows.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-screener/internal/types"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id              UUID PRIMARY KEY,
		user_id         UUID REFERENCES users(id) ON DELETE SET NULL,
		job_description TEXT NOT NULL,
		strategy        TEXT NOT NULL,
		scheme          TEXT NOT NULL,
		resume_count    INTEGER NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_user ON analysis_runs (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS ranking_rows (
		id               UUID PRIMARY KEY,
		run_id           UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		filename         TEXT NOT NULL,
		similarity       DOUBLE PRECISION NOT NULL,
		similarity_scale DOUBLE PRECISION NOT NULL,
		skills_found     JSONB NOT NULL DEFAULT '[]',
		experience_years INTEGER NOT NULL,
		final_score      DOUBLE PRECISION NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ranking_rows_run ON ranking_rows (run_id)`,
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// EnsureSchema creates the tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateRun inserts an analysis run header
func (db *DB) CreateRun(ctx context.Context, run *types.AnalysisRun) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, user_id, job_description, strategy, scheme, resume_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.UserID, run.JobDescription, run.Strategy, run.Scheme, run.ResumeCount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// InsertRankingRow stores one scored résumé
func (db *DB) InsertRankingRow(ctx context.Context, row *types.RankingRow) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO ranking_rows (id, run_id, position, filename, similarity, similarity_scale,
		                           skills_found, experience_years, final_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID, row.RunID, row.Position, row.Filename, row.Similarity, row.SimilarityScale,
		StringArray(row.SkillsFound), row.ExperienceYears, row.FinalScore, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ranking row %s: %w", row.Filename, err)
	}
	return nil
}

// GetRun retrieves an analysis run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.AnalysisRun, error) {
	var run types.AnalysisRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_description, strategy, scheme, resume_count, created_at
		 FROM analysis_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.UserID, &run.JobDescription, &run.Strategy, &run.Scheme, &run.ResumeCount, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent analysis runs, optionally for one user
func (db *DB) ListRuns(ctx context.Context, userID *uuid.UUID, limit int) ([]types.AnalysisRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_description, strategy, scheme, resume_count, created_at
		 FROM analysis_runs
		 WHERE $1::uuid IS NULL OR user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]types.AnalysisRun, 0)
	for rows.Next() {
		var run types.AnalysisRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.JobDescription, &run.Strategy, &run.Scheme, &run.ResumeCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListRankingRows returns the rows of a run sorted by final score, ties in upload order
func (db *DB) ListRankingRows(ctx context.Context, runID uuid.UUID) ([]types.RankingRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, position, filename, similarity, similarity_scale,
		        skills_found, experience_years, final_score, created_at
		 FROM ranking_rows WHERE run_id = $1
		 ORDER BY final_score DESC, position ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking rows: %w", err)
	}
	defer rows.Close()

	out := make([]types.RankingRow, 0)
	for rows.Next() {
		var r types.RankingRow
		var skills StringArray
		if err := rows.Scan(&r.ID, &r.RunID, &r.Position, &r.Filename, &r.Similarity, &r.SimilarityScale,
			&skills, &r.ExperienceYears, &r.FinalScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		r.SkillsFound = []string(skills)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list ranking rows: %w", err)
	}
	return AssignRanks(out), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
