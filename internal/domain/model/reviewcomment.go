package model

import "time"

// Author is the GitHub account that wrote a comment.
type Author struct {
	Login string `json:"login"`
}

// Comment is one review comment flattened out of its review thread.
// IsResolved and IsOutdated belong to the thread and are identical for every
// comment of the same thread.
type Comment struct {
	CommentID   int64     `json:"commentId"`
	Body        string    `json:"body"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	Position    *int      `json:"position"`
	IsResolved  bool      `json:"isResolved"`
	IsOutdated  bool      `json:"isOutdated"`
	IsMinimized bool      `json:"isMinimized"`
}

// ReviewCommentRecord is a Comment as persisted by the ReviewCommentStore,
// together with its parsed form and the user's follow-up tracking.
type ReviewCommentRecord struct {
	Comment
	ID            int64
	PullRequestID int64
	IsBot         bool
	BotName       string
	Parsed        *CodeRabbitComment
	Agreement     CommentAgreement // Empty until the user records a decision.
	ReplyMessage  string
	DidReply      bool
	ChangesDone   bool
}

// CommentAction is the user's follow-up on a review comment.
type CommentAction struct {
	Agreement    CommentAgreement
	ReplyMessage string
	DidReply     bool
	ChangesDone  bool
}
