package model

import "time"

// AnalysisSession records one analysis run and its outcome.
type AnalysisSession struct {
	ID                int64
	RepositoryID      int64
	PullRequestID     *int64
	Type              SessionType
	Status            SessionStatus
	StartedAt         time.Time
	CompletedAt       *time.Time
	CommentsProcessed int
	CommentsParsed    int
	ErrorMessage      string
}
