package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PRStore = (*PRRepo)(nil)

// PRRepo is the SQLite implementation of the PRStore port interface.
type PRRepo struct {
	db *DB
}

// NewPRRepo creates a new PRRepo backed by the given DB.
func NewPRRepo(db *DB) *PRRepo {
	return &PRRepo{db: db}
}

// Upsert inserts or updates a pull request keyed by (repository, number) and
// returns its ID. A zero LastFetchedAt is stored as the current time and an
// empty State as open.
func (r *PRRepo) Upsert(ctx context.Context, pr model.StoredPullRequest) (int64, error) {
	const query = `
		INSERT INTO pull_requests (
			repository_id, pr_number, title, head_ref_name, base_ref_name, url,
			state, author_login, last_fetched_at, total_comments, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, pr_number) DO UPDATE SET
			title = excluded.title,
			head_ref_name = excluded.head_ref_name,
			base_ref_name = excluded.base_ref_name,
			url = excluded.url,
			state = excluded.state,
			author_login = excluded.author_login,
			last_fetched_at = excluded.last_fetched_at,
			total_comments = excluded.total_comments,
			updated_at = excluded.updated_at
		RETURNING id
	`

	now := nowUTC()
	fetchedAt := pr.LastFetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now
	}
	state := pr.State
	if state == "" {
		state = model.PullRequestStateOpen
	}

	var id int64
	err := r.db.Writer.QueryRowContext(ctx, query,
		pr.RepositoryID, pr.Number, pr.Title, pr.HeadRefName, pr.BaseRefName, pr.URL,
		string(state), pr.AuthorLogin, formatTime(fetchedAt), pr.TotalComments,
		formatTime(now), formatTime(now),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert pull request %d#%d: %w", pr.RepositoryID, pr.Number, err)
	}

	return id, nil
}

// GetByNumber retrieves a single pull request by repository and number.
// Returns nil, nil if the pull request does not exist.
func (r *PRRepo) GetByNumber(ctx context.Context, repositoryID int64, number int) (*model.StoredPullRequest, error) {
	const query = `
		SELECT id, repository_id, pr_number, title, head_ref_name, base_ref_name, url,
		       state, author_login, last_fetched_at, total_comments
		FROM pull_requests
		WHERE repository_id = ? AND pr_number = ?
	`

	pr, err := scanPR(r.db.Reader.QueryRowContext(ctx, query, repositoryID, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get PR %d#%d: %w", repositoryID, number, err)
	}

	return pr, nil
}

func scanPR(s scanner) (*model.StoredPullRequest, error) {
	var pr model.StoredPullRequest
	var state, fetchedAt string

	err := s.Scan(
		&pr.ID, &pr.RepositoryID, &pr.Number, &pr.Title, &pr.HeadRefName, &pr.BaseRefName, &pr.URL,
		&state, &pr.AuthorLogin, &fetchedAt, &pr.TotalComments,
	)
	if err != nil {
		return nil, err
	}

	pr.State = model.PullRequestState(state)
	pr.LastFetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_fetched_at: %w", err)
	}

	return &pr, nil
}
