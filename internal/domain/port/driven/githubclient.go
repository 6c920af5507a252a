// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// GitHubClient defines the driven port for reading pull requests and their
// review comments from GitHub.
type GitHubClient interface {
	// GetPullRequestForBranch returns the first open PR whose head is
	// "owner:branch", in the order GitHub lists them.
	GetPullRequestForBranch(ctx context.Context, owner, repoName, branch string) (*model.PullRequest, error)
	// GetReviewCommentsForPullRequest returns every review comment of pr in
	// page, thread, comment order.
	GetReviewCommentsForPullRequest(ctx context.Context, pr model.PullRequest) ([]model.Comment, error)
}

// RepoBranchDetector resolves the GitHub repository and branch of a local
// working tree.
type RepoBranchDetector interface {
	CurrentRepoAndBranch(ctx context.Context) (model.RepoBranch, error)
}
