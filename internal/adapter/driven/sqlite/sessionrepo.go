package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Start inserts a running session.
func (r *SessionRepo) Start(ctx context.Context, repositoryID int64, sessionType model.SessionType) (int64, error) {
	const query = `
		INSERT INTO analysis_sessions (repository_id, session_type, status, started_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		repositoryID, string(sessionType), string(model.SessionStatusRunning), formatTime(nowUTC()),
	)
	if err != nil {
		return 0, fmt.Errorf("start %s session for repository %d: %w", sessionType, repositoryID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read session id: %w", err)
	}

	return id, nil
}

// Complete marks a running session completed.
func (r *SessionRepo) Complete(ctx context.Context, id int64, pullRequestID int64, processed, parsed int) error {
	const query = `
		UPDATE analysis_sessions SET
			status = ?,
			pull_request_id = ?,
			comments_processed = ?,
			comments_parsed = ?,
			completed_at = ?
		WHERE id = ?
	`

	return r.finish(ctx, id, query,
		string(model.SessionStatusCompleted), pullRequestID, processed, parsed, formatTime(nowUTC()), id,
	)
}

// Fail marks a session failed and records the error message.
func (r *SessionRepo) Fail(ctx context.Context, id int64, errMsg string) error {
	const query = `
		UPDATE analysis_sessions SET
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`

	return r.finish(ctx, id, query, string(model.SessionStatusFailed), errMsg, formatTime(nowUTC()), id)
}

func (r *SessionRepo) finish(ctx context.Context, id int64, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish session %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("finish session %d: session not found", id)
	}

	return nil
}

// ListRecent returns up to limit sessions, newest first.
func (r *SessionRepo) ListRecent(ctx context.Context, limit int) ([]model.AnalysisSession, error) {
	const query = `
		SELECT id, repository_id, pull_request_id, session_type, status, started_at, completed_at,
		       comments_processed, comments_parsed, error_message
		FROM analysis_sessions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.AnalysisSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(s scanner) (*model.AnalysisSession, error) {
	var sess model.AnalysisSession
	var prID sql.NullInt64
	var sessionType, status, startedAt string
	var completedAt sql.NullString

	err := s.Scan(
		&sess.ID, &sess.RepositoryID, &prID, &sessionType, &status, &startedAt, &completedAt,
		&sess.CommentsProcessed, &sess.CommentsParsed, &sess.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	if prID.Valid {
		id := prID.Int64
		sess.PullRequestID = &id
	}
	sess.Type = model.SessionType(sessionType)
	sess.Status = model.SessionStatus(status)

	sess.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	sess.CompletedAt, err = parseNullTime(completedAt)
	if err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}

	return &sess, nil
}
