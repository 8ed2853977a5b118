// Package sqlite is the embedded single-file store used by the CLI when no
// Postgres URL is configured. It implements the same contract as package db.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

// Fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id              TEXT PRIMARY KEY,
		user_id         TEXT REFERENCES users(id) ON DELETE SET NULL,
		job_description TEXT NOT NULL,
		strategy        TEXT NOT NULL,
		scheme          TEXT NOT NULL,
		resume_count    INTEGER NOT NULL,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_user ON analysis_runs (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS ranking_rows (
		id               TEXT PRIMARY KEY,
		run_id           TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		filename         TEXT NOT NULL,
		similarity       REAL NOT NULL,
		similarity_scale REAL NOT NULL,
		skills_found     TEXT NOT NULL DEFAULT '[]',
		experience_years INTEGER NOT NULL,
		final_score      REAL NOT NULL,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ranking_rows_run ON ranking_rows (run_id)`,
}

// Store is a SQLite-backed db.Store.
type Store struct {
	conn *sql.DB
}

var _ db.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; also keeps :memory: on a single connection.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateRun inserts an analysis run header
func (s *Store) CreateRun(ctx context.Context, run *types.AnalysisRun) error {
	var userID sql.NullString
	if run.UserID != nil {
		userID = sql.NullString{String: run.UserID.String(), Valid: true}
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, user_id, job_description, strategy, scheme, resume_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), userID, run.JobDescription, run.Strategy, run.Scheme, run.ResumeCount, formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// InsertRankingRow stores one scored résumé
func (s *Store) InsertRankingRow(ctx context.Context, row *types.RankingRow) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO ranking_rows (id, run_id, position, filename, similarity, similarity_scale,
		                           skills_found, experience_years, final_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID.String(), row.RunID.String(), row.Position, row.Filename, row.Similarity, row.SimilarityScale,
		db.StringArray(row.SkillsFound), row.ExperienceYears, row.FinalScore, formatTime(row.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ranking row %s: %w", row.Filename, err)
	}
	return nil
}

const runColumns = `id, user_id, job_description, strategy, scheme, resume_count, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*types.AnalysisRun, error) {
	var (
		run       types.AnalysisRun
		id        string
		userID    sql.NullString
		createdAt string
	)
	if err := sc.Scan(&id, &userID, &run.JobDescription, &run.Strategy, &run.Scheme, &run.ResumeCount, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if userID.Valid {
		uid, err := uuid.Parse(userID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", userID.String, err)
		}
		run.UserID = &uid
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun retrieves an analysis run by ID
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*types.AnalysisRun, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs WHERE id = ?`, runID.String())
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent analysis runs, optionally for one user
func (s *Store) ListRuns(ctx context.Context, userID *uuid.UUID, limit int) ([]types.AnalysisRun, error) {
	var filter sql.NullString
	if userID != nil {
		filter = sql.NullString{String: userID.String(), Valid: true}
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs
		 WHERE ?1 IS NULL OR user_id = ?1
		 ORDER BY created_at DESC LIMIT ?2`,
		filter, db.NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]types.AnalysisRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListRankingRows returns the rows of a run sorted by final score, ties in upload order
func (s *Store) ListRankingRows(ctx context.Context, runID uuid.UUID) ([]types.RankingRow, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, run_id, position, filename, similarity, similarity_scale,
		        skills_found, experience_years, final_score, created_at
		 FROM ranking_rows WHERE run_id = ?
		 ORDER BY final_score DESC, position ASC`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.RankingRow, 0)
	for rows.Next() {
		var (
			r           types.RankingRow
			id, run, ts string
			skills      db.StringArray
		)
		if err := rows.Scan(&id, &run, &r.Position, &r.Filename, &r.Similarity, &r.SimilarityScale,
			&skills, &r.ExperienceYears, &r.FinalScore, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid row id %q: %w", id, err)
		}
		if r.RunID, err = uuid.Parse(run); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", run, err)
		}
		if r.CreatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		r.SkillsFound = []string(skills)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list ranking rows: %w", err)
	}
	return db.AssignRanks(out), nil
}

// CreateUser inserts a new user and returns it
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*db.User, error) {
	user := &db.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.PasswordHash, formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	if username == "" {
		return nil, nil
	}

	var (
		user      db.User
		id        string
		createdAt string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username,
	).Scan(&id, &user.Username, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameExists reports whether a username is taken
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
