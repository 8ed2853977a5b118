package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

// setupTestDB connects to TEST_DATABASE_URL and skips the test when it is unset or unreachable.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIntegration_UserLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	username := "user-" + uuid.New().String()
	user, err := db.CreateUser(ctx, username, "hash")
	require.NoError(t, err)
	defer func() { _ = db.DeleteUser(ctx, user.ID) }()

	exists, err := db.UsernameExists(ctx, username)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = db.CreateUser(ctx, username, "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := db.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	missing, err := db.GetUserByUsername(ctx, "missing-"+uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_RunRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "runner-"+uuid.New().String(), "hash")
	require.NoError(t, err)
	defer func() { _ = db.DeleteUser(ctx, user.ID) }()

	now := time.Now().UTC().Truncate(time.Microsecond)
	run := &types.AnalysisRun{
		ID:             uuid.New(),
		UserID:         &user.ID,
		JobDescription: "Python developer",
		Strategy:       "tfidf",
		Scheme:         "additive",
		ResumeCount:    2,
		CreatedAt:      now,
	}
	require.NoError(t, db.CreateRun(ctx, run))
	defer func() { _ = db.DeleteRun(ctx, run.ID) }()

	rows := []types.RankingRow{
		{ID: uuid.New(), RunID: run.ID, Position: 0, Filename: "b.txt", Similarity: 0.123456789, SimilarityScale: 1,
			SkillsFound: []string{}, ExperienceYears: 0, FinalScore: 12.35, CreatedAt: now},
		{ID: uuid.New(), RunID: run.ID, Position: 1, Filename: "a.txt", Similarity: 0.5, SimilarityScale: 1,
			SkillsFound: []string{"python", "machine learning"}, ExperienceYears: 5, FinalScore: 61.5, CreatedAt: now},
	}
	for i := range rows {
		require.NoError(t, db.InsertRankingRow(ctx, &rows[i]))
	}

	gotRun, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, gotRun)
	assert.Equal(t, run.JobDescription, gotRun.JobDescription)
	require.NotNil(t, gotRun.UserID)
	assert.Equal(t, user.ID, *gotRun.UserID)
	assert.True(t, now.Equal(gotRun.CreatedAt))

	got, err := db.ListRankingRows(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Filename)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, rows[1].SkillsFound, got[0].SkillsFound)
	assert.Equal(t, rows[1].FinalScore, got[0].FinalScore)
	assert.Equal(t, rows[0].Similarity, got[1].Similarity)
	assert.Equal(t, []string{}, got[1].SkillsFound)

	runs, err := db.ListRuns(ctx, &user.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	missing, err := db.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
