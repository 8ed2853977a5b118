package db

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-screener/internal/types"
)

// ErrUsernameTaken is returned by CreateUser when the username already exists.
var ErrUsernameTaken = errors.New("username already exists")

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 50

// User represents a stored account
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the user without credentials.
func (u *User) Public() types.User {
	return types.User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// Store is the persistence contract shared by the Postgres and SQLite backends.
// Lookups return nil, nil when nothing matches.
type Store interface {
	CreateRun(ctx context.Context, run *types.AnalysisRun) error
	InsertRankingRow(ctx context.Context, row *types.RankingRow) error
	GetRun(ctx context.Context, runID uuid.UUID) (*types.AnalysisRun, error)
	// ListRuns returns runs newest first. A nil userID lists every run.
	ListRuns(ctx context.Context, userID *uuid.UUID, limit int) ([]types.AnalysisRun, error)
	// ListRankingRows returns a run's rows in rank order with Rank filled in.
	ListRankingRows(ctx context.Context, runID uuid.UUID) ([]types.RankingRow, error)

	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	Close() error
}

// StringArray handles string arrays stored as JSON
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	var source []byte
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", src)
	}
	if err := json.Unmarshal(source, a); err != nil {
		return err
	}
	if *a == nil {
		*a = []string{}
	}
	return nil
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// AssignRanks sets Rank from 1 in slice order.
func AssignRanks(rows []types.RankingRow) []types.RankingRow {
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// NormalizeLimit applies DefaultListLimit to non-positive limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
