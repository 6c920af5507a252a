package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

func makeStoredPR(repoID int64, number int, title string) model.StoredPullRequest {
	return model.StoredPullRequest{
		PullRequest: model.PullRequest{
			Number:      number,
			Title:       title,
			HeadRefName: "feature-x",
			BaseRefName: "main",
			URL:         "https://github.com/octocat/hello-world/pull/42",
		},
		RepositoryID:  repoID,
		State:         model.PullRequestStateOpen,
		AuthorLogin:   "octocat",
		LastFetchedAt: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		TotalComments: 3,
	}
}

func TestPRRepo_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repoID, err := NewRepoRepo(db).Upsert(ctx, "octocat", "hello-world")
	require.NoError(t, err)

	prs := NewPRRepo(db)
	in := makeStoredPR(repoID, 42, "Add feature X")
	id, err := prs.Upsert(ctx, in)
	require.NoError(t, err)

	got, err := prs.GetByNumber(ctx, repoID, 42)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.PullRequest, got.PullRequest)
	assert.Equal(t, repoID, got.RepositoryID)
	assert.Equal(t, model.PullRequestStateOpen, got.State)
	assert.Equal(t, "octocat", got.AuthorLogin)
	assert.True(t, in.LastFetchedAt.Equal(got.LastFetchedAt))
	assert.Equal(t, 3, got.TotalComments)
}

func TestPRRepo_Upsert_UpdatesExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repoID, err := NewRepoRepo(db).Upsert(ctx, "octocat", "hello-world")
	require.NoError(t, err)

	prs := NewPRRepo(db)
	first, err := prs.Upsert(ctx, makeStoredPR(repoID, 42, "Draft title"))
	require.NoError(t, err)

	updated := makeStoredPR(repoID, 42, "Final title")
	updated.State = model.PullRequestStateMerged
	updated.TotalComments = 9
	second, err := prs.Upsert(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := prs.GetByNumber(ctx, repoID, 42)
	require.NoError(t, err)
	assert.Equal(t, "Final title", got.Title)
	assert.Equal(t, model.PullRequestStateMerged, got.State)
	assert.Equal(t, 9, got.TotalComments)
}

func TestPRRepo_Upsert_Defaults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	freezeClock(t, at)

	repoID, err := NewRepoRepo(db).Upsert(ctx, "octocat", "hello-world")
	require.NoError(t, err)

	prs := NewPRRepo(db)
	_, err = prs.Upsert(ctx, model.StoredPullRequest{
		PullRequest:  model.PullRequest{Number: 1, Title: "t", URL: "u"},
		RepositoryID: repoID,
	})
	require.NoError(t, err)

	got, err := prs.GetByNumber(ctx, repoID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.PullRequestStateOpen, got.State)
	assert.True(t, at.Equal(got.LastFetchedAt))
}

func TestPRRepo_Upsert_UnknownRepository(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewPRRepo(db).Upsert(context.Background(), makeStoredPR(999, 1, "orphan"))
	assert.Error(t, err, "foreign key to repositories must be enforced")
}

func TestPRRepo_GetByNumber_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repoID, _ := seedPR(t, db)

	got, err := NewPRRepo(db).GetByNumber(context.Background(), repoID, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}
