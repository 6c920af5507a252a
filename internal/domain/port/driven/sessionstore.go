package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// SessionStore defines the driven port for analysis session bookkeeping.
type SessionStore interface {
	// Start inserts a running session and returns its ID.
	Start(ctx context.Context, repositoryID int64, sessionType model.SessionType) (int64, error)
	// Complete marks the session completed with its final counters.
	Complete(ctx context.Context, id int64, pullRequestID int64, processed, parsed int) error
	// Fail marks the session failed with the error message.
	Fail(ctx context.Context, id int64, errMsg string) error
	// ListRecent returns the newest sessions first.
	ListRecent(ctx context.Context, limit int) ([]model.AnalysisSession, error)
}
