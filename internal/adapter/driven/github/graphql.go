package github

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/ericfisherdev/reviewdigest/internal/apperr"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// prURLPattern matches https://github.com/<owner>/<repo>/pull/<number>.
// Anything after the number that starts a new path, query or fragment is ignored.
var prURLPattern = regexp.MustCompile(`^https://github\.com/([^/?#]+)/([^/?#]+)/pull/([0-9]+)(?:[/?#].*)?$`)

type pageInfo struct {
	HasNextPage bool
	EndCursor   string
}

type reviewCommentNode struct {
	DatabaseID  int64 `graphql:"databaseId"`
	Author      model.Author
	Body        string
	CreatedAt   time.Time
	URL         string `graphql:"url"`
	Path        string
	Position    *int
	IsMinimized bool
}

type reviewThreadNode struct {
	IsResolved bool
	IsOutdated bool
	Comments   struct {
		Nodes    []reviewCommentNode
		PageInfo pageInfo
	} `graphql:"comments(first: 100)"`
}

// reviewThreadsQuery mirrors:
//
//	repository(owner: $owner, name: $repo) {
//	  pullRequest(number: $pr) {
//	    reviewThreads(first: 100, after: $cursor) { nodes {...} pageInfo {...} }
//	  }
//	}
type reviewThreadsQuery struct {
	Repository struct {
		PullRequest struct {
			ReviewThreads struct {
				Nodes    []reviewThreadNode
				PageInfo pageInfo
			} `graphql:"reviewThreads(first: 100, after: $cursor)"`
		} `graphql:"pullRequest(number: $pr)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

// GetReviewCommentsForPullRequest returns every review comment of pr, walking
// review threads one GraphQL page at a time. The result is ordered by page,
// then thread, then comment.
//
// Each thread's comments are read from the first inner page only (100
// comments). Threads with more comments are logged and truncated.
func (c *Client) GetReviewCommentsForPullRequest(ctx context.Context, pr model.PullRequest) ([]model.Comment, error) {
	c.logger.Debug("getting review comments for pull request", "pr_number", pr.Number, "pr_url", pr.URL)

	owner, repo, prNumber, err := parsePullRequestURL(pr)
	if err != nil {
		c.logger.Error("invalid pull request URL", "error", err)
		return nil, err
	}

	comments, err := c.fetchAllReviewThreads(ctx, owner, repo, prNumber)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		appErr := apperr.Service("Failed to get review comments for pull request", map[string]any{
			"owner":    owner,
			"repo":     repo,
			"prNumber": prNumber,
		}, err)
		c.logger.Error("review comment fetch failed", "error", appErr)
		return nil, appErr
	}

	return comments, nil
}

func (c *Client) fetchAllReviewThreads(ctx context.Context, owner, repo string, prNumber int) ([]model.Comment, error) {
	variables := map[string]any{
		"owner":  githubv4.String(owner),
		"repo":   githubv4.String(repo),
		"pr":     githubv4.Int(prNumber),
		"cursor": (*githubv4.String)(nil),
	}

	allComments := []model.Comment{}
	threadsProcessed := 0

	for {
		var q reviewThreadsQuery
		if err := c.graphql.Query(ctx, &q, variables); err != nil {
			return nil, err
		}

		threads := q.Repository.PullRequest.ReviewThreads
		threadsProcessed += len(threads.Nodes)

		c.logger.Debug("processing review threads page",
			"page_threads", len(threads.Nodes),
			"threads_processed", threadsProcessed,
			"has_next_page", threads.PageInfo.HasNextPage,
		)

		for _, thread := range threads.Nodes {
			allComments = append(allComments, c.flattenThread(thread)...)
		}

		if !threads.PageInfo.HasNextPage {
			break
		}
		if threads.PageInfo.EndCursor == "" {
			return nil, apperr.Service("Missing review threads cursor", map[string]any{
				"owner":            owner,
				"repo":             repo,
				"prNumber":         prNumber,
				"threadsProcessed": threadsProcessed,
			}, nil)
		}
		variables["cursor"] = githubv4.NewString(githubv4.String(threads.PageInfo.EndCursor))
	}

	c.logger.Debug("retrieved all review comments",
		"total_comments", len(allComments),
		"threads_processed", threadsProcessed,
	)

	return allComments, nil
}

// flattenThread converts a thread's comments into domain comments carrying
// the thread's resolved and outdated flags.
func (c *Client) flattenThread(thread reviewThreadNode) []model.Comment {
	comments := make([]model.Comment, 0, len(thread.Comments.Nodes))
	for _, node := range thread.Comments.Nodes {
		comments = append(comments, model.Comment{
			CommentID:   node.DatabaseID,
			Body:        node.Body,
			Author:      node.Author,
			CreatedAt:   node.CreatedAt,
			URL:         node.URL,
			Path:        node.Path,
			Position:    node.Position,
			IsResolved:  thread.IsResolved,
			IsOutdated:  thread.IsOutdated,
			IsMinimized: node.IsMinimized,
		})
	}

	// TODO: page through thread comments with comments(after:) once the
	// truncation policy for very long threads is decided.
	if thread.Comments.PageInfo.HasNextPage {
		c.logger.Warn("thread has more than 100 comments, later comments are missing",
			"thread_resolved", thread.IsResolved,
			"thread_outdated", thread.IsOutdated,
			"comments_in_first_page", len(thread.Comments.Nodes),
		)
	}

	return comments
}

// parsePullRequestURL extracts owner, repository and number from pr.URL.
func parsePullRequestURL(pr model.PullRequest) (string, string, int, error) {
	errCtx := map[string]any{"url": pr.URL, "prNumber": pr.Number}

	match := prURLPattern.FindStringSubmatch(pr.URL)
	if match == nil {
		return "", "", 0, apperr.Parsing("GitHub PR URL", errCtx, nil)
	}

	number, err := strconv.ParseInt(match[3], 10, 32)
	if err != nil {
		return "", "", 0, apperr.Parsing("PR number", errCtx, err)
	}

	return match[1], match[2], int(number), nil
}
