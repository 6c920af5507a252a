package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// PRStore defines the driven port for pull request persistence.
type PRStore interface {
	// Upsert inserts or updates the PR keyed by (RepositoryID, Number) and
	// returns its database ID.
	Upsert(ctx context.Context, pr model.StoredPullRequest) (int64, error)
	GetByNumber(ctx context.Context, repositoryID int64, number int) (*model.StoredPullRequest, error)
}
