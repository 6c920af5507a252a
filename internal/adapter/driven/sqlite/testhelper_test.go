package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() keeps tests isolated from each other.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)

	writer, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open test db writer")
	writer.SetMaxOpenConns(1)
	require.NoError(t, writer.PingContext(context.Background()), "ping test db writer")

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("open test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer), "run migrations")

	return db
}

// freezeClock pins nowUTC to at for the duration of the test.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowUTC
	nowUTC = func() time.Time { return at }
	t.Cleanup(func() { nowUTC = prev })
}

// seedPR inserts a repository and one pull request, returning their IDs.
func seedPR(t *testing.T, db *DB) (repoID, prID int64) {
	t.Helper()
	ctx := context.Background()

	repoID, err := NewRepoRepo(db).Upsert(ctx, "octocat", "hello-world")
	require.NoError(t, err)

	prID, err = NewPRRepo(db).Upsert(ctx, model.StoredPullRequest{
		PullRequest: model.PullRequest{
			Number:      7,
			Title:       "Add parser",
			HeadRefName: "feature/parser",
			BaseRefName: "main",
			URL:         "https://github.com/octocat/hello-world/pull/7",
		},
		RepositoryID: repoID,
	})
	require.NoError(t, err)

	return repoID, prID
}
