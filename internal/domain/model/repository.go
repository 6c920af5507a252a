package model

import "time"

// RepoBranch is the repository and branch of a local working tree.
type RepoBranch struct {
	Owner    string
	RepoName string
	Branch   string
}

// FullName returns "owner/repo".
func (rb RepoBranch) FullName() string {
	return rb.Owner + "/" + rb.RepoName
}

// Repository is a GitHub repository that has been analyzed at least once.
type Repository struct {
	ID             int64
	Owner          string
	RepoName       string
	FullName       string
	DefaultBranch  string
	LastAnalyzedAt *time.Time
	IsActive       bool
}
