package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewCommentStore = (*ReviewRepo)(nil)

// ReviewRepo is the SQLite implementation of the ReviewCommentStore port.
// Parsed CodeRabbit fields are stored as a JSON document in parsed_comment.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo backed by the given DB.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Upsert inserts or updates a review comment by its GitHub comment ID.
// agreement, reply_message, did_reply and changes_done are only written on
// insert so a re-fetch never discards the user's follow-up.
func (r *ReviewRepo) Upsert(ctx context.Context, record model.ReviewCommentRecord) error {
	const query = `
		INSERT INTO review_comments (
			pull_request_id, github_comment_id, author_login, body, url, file_path, position,
			is_resolved, is_outdated, is_minimized, is_bot, bot_name, parsed_comment,
			agreement, reply_message, did_reply, changes_done,
			github_created_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(github_comment_id) DO UPDATE SET
			pull_request_id = excluded.pull_request_id,
			author_login = excluded.author_login,
			body = excluded.body,
			url = excluded.url,
			file_path = excluded.file_path,
			position = excluded.position,
			is_resolved = excluded.is_resolved,
			is_outdated = excluded.is_outdated,
			is_minimized = excluded.is_minimized,
			is_bot = excluded.is_bot,
			bot_name = excluded.bot_name,
			parsed_comment = excluded.parsed_comment,
			github_created_at = excluded.github_created_at,
			updated_at = excluded.updated_at
	`

	var parsed any
	if record.Parsed != nil {
		data, err := json.Marshal(record.Parsed)
		if err != nil {
			return fmt.Errorf("marshal parsed comment %d: %w", record.CommentID, err)
		}
		parsed = string(data)
	}

	var position any
	if record.Position != nil {
		position = *record.Position
	}

	now := formatTime(nowUTC())
	_, err := r.db.Writer.ExecContext(ctx, query,
		record.PullRequestID, record.CommentID, record.Author.Login, record.Body, record.URL, record.Path, position,
		boolToInt(record.IsResolved), boolToInt(record.IsOutdated), boolToInt(record.IsMinimized),
		boolToInt(record.IsBot), record.BotName, parsed,
		string(record.Agreement), record.ReplyMessage, boolToInt(record.DidReply), boolToInt(record.ChangesDone),
		formatTime(record.CreatedAt), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert review comment %d: %w", record.CommentID, err)
	}

	return nil
}

// ListByPullRequest returns all comments for a PR ordered by GitHub creation
// time, then by GitHub comment ID.
func (r *ReviewRepo) ListByPullRequest(ctx context.Context, pullRequestID int64) ([]model.ReviewCommentRecord, error) {
	const query = `
		SELECT id, pull_request_id, github_comment_id, author_login, body, url, file_path, position,
		       is_resolved, is_outdated, is_minimized, is_bot, bot_name, parsed_comment,
		       agreement, reply_message, did_reply, changes_done, github_created_at
		FROM review_comments
		WHERE pull_request_id = ?
		ORDER BY github_created_at, github_comment_id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, pullRequestID)
	if err != nil {
		return nil, fmt.Errorf("query review comments for PR %d: %w", pullRequestID, err)
	}
	defer rows.Close()

	var records []model.ReviewCommentRecord
	for rows.Next() {
		record, err := scanReviewComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review comment: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review comments: %w", err)
	}

	return records, nil
}

// UpdateAction records the user's follow-up on the comment with the given
// GitHub comment ID.
func (r *ReviewRepo) UpdateAction(ctx context.Context, githubCommentID int64, action model.CommentAction) error {
	const query = `
		UPDATE review_comments SET
			agreement = ?,
			reply_message = ?,
			did_reply = ?,
			changes_done = ?,
			updated_at = ?
		WHERE github_comment_id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		string(action.Agreement), action.ReplyMessage, boolToInt(action.DidReply), boolToInt(action.ChangesDone),
		formatTime(nowUTC()), githubCommentID,
	)
	if err != nil {
		return fmt.Errorf("update action for comment %d: %w", githubCommentID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update action for comment %d: %w", githubCommentID, driven.ErrCommentNotFound)
	}

	return nil
}

func scanReviewComment(s scanner) (*model.ReviewCommentRecord, error) {
	var rec model.ReviewCommentRecord
	var position sql.NullInt64
	var isResolved, isOutdated, isMinimized, isBot, didReply, changesDone int
	var parsed sql.NullString
	var agreement, createdAt string

	err := s.Scan(
		&rec.ID, &rec.PullRequestID, &rec.CommentID, &rec.Author.Login, &rec.Body, &rec.URL, &rec.Path, &position,
		&isResolved, &isOutdated, &isMinimized, &isBot, &rec.BotName, &parsed,
		&agreement, &rec.ReplyMessage, &didReply, &changesDone, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if position.Valid {
		p := int(position.Int64)
		rec.Position = &p
	}

	rec.IsResolved = isResolved != 0
	rec.IsOutdated = isOutdated != 0
	rec.IsMinimized = isMinimized != 0
	rec.IsBot = isBot != 0
	rec.DidReply = didReply != 0
	rec.ChangesDone = changesDone != 0
	rec.Agreement = model.CommentAgreement(agreement)

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse github_created_at: %w", err)
	}

	if parsed.Valid && parsed.String != "" {
		var cr model.CodeRabbitComment
		if err := json.Unmarshal([]byte(parsed.String), &cr); err != nil {
			return nil, fmt.Errorf("unmarshal parsed comment %d: %w", rec.CommentID, err)
		}
		rec.Parsed = &cr
	}

	return &rec, nil
}
