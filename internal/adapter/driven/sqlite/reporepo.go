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
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Upsert inserts the repository if it is new, reactivates it otherwise, and
// returns its ID.
func (r *RepoRepo) Upsert(ctx context.Context, owner, repoName string) (int64, error) {
	const query = `
		INSERT INTO repositories (owner, repo_name, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(full_name) DO UPDATE SET
			is_active = 1,
			updated_at = excluded.updated_at
		RETURNING id
	`

	fullName := owner + "/" + repoName
	now := formatTime(nowUTC())

	var id int64
	err := r.db.Writer.QueryRowContext(ctx, query, owner, repoName, fullName, now, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert repository %s: %w", fullName, err)
	}

	return id, nil
}

// GetByFullName retrieves a repository by its full name. Returns nil, nil if
// the repository does not exist.
func (r *RepoRepo) GetByFullName(ctx context.Context, fullName string) (*model.Repository, error) {
	const query = `
		SELECT id, owner, repo_name, full_name, default_branch, last_analyzed_at, is_active
		FROM repositories
		WHERE full_name = ?
	`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, fullName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", fullName, err)
	}

	return repo, nil
}

// MarkAnalyzed stamps the repository's last analysis time. An empty
// defaultBranch keeps the stored value.
func (r *RepoRepo) MarkAnalyzed(ctx context.Context, id int64, defaultBranch string) error {
	const query = `
		UPDATE repositories SET
			last_analyzed_at = ?,
			default_branch = COALESCE(NULLIF(?, ''), default_branch),
			updated_at = ?
		WHERE id = ?
	`

	now := formatTime(nowUTC())
	result, err := r.db.Writer.ExecContext(ctx, query, now, defaultBranch, now, id)
	if err != nil {
		return fmt.Errorf("mark repository %d analyzed: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("mark repository %d analyzed: repository not found", id)
	}

	return nil
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var lastAnalyzed sql.NullString
	var isActive int

	err := s.Scan(&repo.ID, &repo.Owner, &repo.RepoName, &repo.FullName, &repo.DefaultBranch, &lastAnalyzed, &isActive)
	if err != nil {
		return nil, err
	}

	repo.LastAnalyzedAt, err = parseNullTime(lastAnalyzed)
	if err != nil {
		return nil, fmt.Errorf("parse last_analyzed_at: %w", err)
	}
	repo.IsActive = isActive == 1

	return &repo, nil
}
