package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// RepoStore defines the driven port for repository persistence.
type RepoStore interface {
	// Upsert inserts the repository or returns the existing row's ID.
	Upsert(ctx context.Context, owner, repoName string) (int64, error)
	GetByFullName(ctx context.Context, fullName string) (*model.Repository, error)
	MarkAnalyzed(ctx context.Context, id int64, defaultBranch string) error
}
