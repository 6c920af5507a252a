package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

func TestSessionRepo_StartAndComplete(t *testing.T) {
	db := setupTestDB(t)
	repoID, prID := seedPR(t, db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	id, err := sessions.Start(ctx, repoID, model.SessionTypePRAnalysis)
	require.NoError(t, err)

	recent, err := sessions.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.SessionStatusRunning, recent[0].Status)
	assert.Nil(t, recent[0].CompletedAt)
	assert.Nil(t, recent[0].PullRequestID)

	require.NoError(t, sessions.Complete(ctx, id, prID, 12, 5))

	recent, err = sessions.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	s := recent[0]
	assert.Equal(t, id, s.ID)
	assert.Equal(t, repoID, s.RepositoryID)
	require.NotNil(t, s.PullRequestID)
	assert.Equal(t, prID, *s.PullRequestID)
	assert.Equal(t, model.SessionTypePRAnalysis, s.Type)
	assert.Equal(t, model.SessionStatusCompleted, s.Status)
	assert.Equal(t, 12, s.CommentsProcessed)
	assert.Equal(t, 5, s.CommentsParsed)
	require.NotNil(t, s.CompletedAt)
	assert.Empty(t, s.ErrorMessage)
}

func TestSessionRepo_Fail(t *testing.T) {
	db := setupTestDB(t)
	repoID, _ := seedPR(t, db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	id, err := sessions.Start(ctx, repoID, model.SessionTypePRAnalysis)
	require.NoError(t, err)
	require.NoError(t, sessions.Fail(ctx, id, "No PR found using {}"))

	recent, err := sessions.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.SessionStatusFailed, recent[0].Status)
	assert.Equal(t, "No PR found using {}", recent[0].ErrorMessage)
	assert.NotNil(t, recent[0].CompletedAt)
}

func TestSessionRepo_FinishUnknownSession(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	assert.Error(t, sessions.Fail(ctx, 42, "boom"))
	assert.Error(t, sessions.Complete(ctx, 42, 1, 0, 0))
}

func TestSessionRepo_ListRecent_NewestFirstWithLimit(t *testing.T) {
	db := setupTestDB(t)
	repoID, _ := seedPR(t, db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var ids []int64
	for i := range 3 {
		freezeClock(t, base.Add(time.Duration(i)*time.Minute))
		id, err := sessions.Start(ctx, repoID, model.SessionTypePRAnalysis)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := sessions.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestSessionRepo_RejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	repoID, _ := seedPR(t, db)

	_, err := NewSessionRepo(db).Start(context.Background(), repoID, model.SessionType("nightly"))
	assert.Error(t, err)
}
