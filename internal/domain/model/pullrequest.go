package model

import "time"

// PullRequest identifies the review target on GitHub. URL is the canonical
// html_url, from which owner, repository and number are re-derived.
type PullRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	HeadRefName string `json:"headRefName"`
	BaseRefName string `json:"baseRefName"`
	URL         string `json:"url"`
}

// StoredPullRequest is a PullRequest as persisted by the PRStore.
type StoredPullRequest struct {
	PullRequest
	ID            int64
	RepositoryID  int64
	State         PullRequestState
	AuthorLogin   string
	LastFetchedAt time.Time
	TotalComments int
}
