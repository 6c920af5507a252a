package model

// PullRequestState represents the state of a pull request.
type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateClosed PullRequestState = "closed"
	PullRequestStateMerged PullRequestState = "merged"
)

// SessionType distinguishes the kinds of analysis runs.
type SessionType string

const (
	SessionTypePRAnalysis    SessionType = "pr_analysis"
	SessionTypeRepoScan      SessionType = "repo_scan"
	SessionTypeCommentUpdate SessionType = "comment_update"
)

// SessionStatus represents the lifecycle state of an analysis session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// CommentAgreement records whether the user agreed with a review comment.
type CommentAgreement string

const (
	CommentAgreementTrue      CommentAgreement = "true"
	CommentAgreementFalse     CommentAgreement = "false"
	CommentAgreementPartially CommentAgreement = "partially"
)
