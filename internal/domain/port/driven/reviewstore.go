package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// ErrCommentNotFound indicates the requested review comment does not exist.
var ErrCommentNotFound = errors.New("review comment not found")

// ReviewCommentStore defines the driven port for persisting review comments
// and their parsed form.
type ReviewCommentStore interface {
	// Upsert inserts or updates a comment keyed by its GitHub comment ID.
	// User action fields are never overwritten by a re-fetch.
	Upsert(ctx context.Context, record model.ReviewCommentRecord) error
	// ListByPullRequest returns the comments of a PR ordered by GitHub creation time.
	ListByPullRequest(ctx context.Context, pullRequestID int64) ([]model.ReviewCommentRecord, error)
	// UpdateAction records the user's follow-up. Returns ErrCommentNotFound
	// if no comment has the given GitHub comment ID.
	UpdateAction(ctx context.Context, githubCommentID int64, action model.CommentAction) error
}
