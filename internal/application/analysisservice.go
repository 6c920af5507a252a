// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// CommentParser extracts structured fields from a bot review comment.
type CommentParser interface {
	Parse(comment *model.Comment) (*model.CodeRabbitComment, error)
}

// AnalysisResult is the outcome of one branch analysis. Comments and Parsed
// keep the order in which GitHub returned the comments.
type AnalysisResult struct {
	PullRequest   model.PullRequest
	PullRequestID int64
	Comments      []model.Comment
	Parsed        []model.CodeRabbitComment
	ParseFailures int
	SessionID     int64
}

// StoredPullRequestComments is a previously analyzed PR with its stored comments.
type StoredPullRequestComments struct {
	PullRequest model.StoredPullRequest
	Comments    []model.ReviewCommentRecord
}

// AnalysisService fetches the review comments of a branch's pull request,
// parses the CodeRabbit ones and persists everything, recording each run as
// an analysis session.
type AnalysisService struct {
	ghClient     driven.GitHubClient
	parser       CommentParser
	repoStore    driven.RepoStore
	prStore      driven.PRStore
	commentStore driven.ReviewCommentStore
	sessionStore driven.SessionStore
	logger       *slog.Logger
	now          func() time.Time
}

// NewAnalysisService creates a new AnalysisService with all required dependencies.
func NewAnalysisService(
	ghClient driven.GitHubClient,
	parser CommentParser,
	repoStore driven.RepoStore,
	prStore driven.PRStore,
	commentStore driven.ReviewCommentStore,
	sessionStore driven.SessionStore,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		ghClient:     ghClient,
		parser:       parser,
		repoStore:    repoStore,
		prStore:      prStore,
		commentStore: commentStore,
		sessionStore: sessionStore,
		logger:       logger.With("module", "AnalysisService"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeBranch runs a full analysis of the open PR for rb.Branch. Errors
// from GitHub are returned unchanged after the session is marked failed.
func (s *AnalysisService) AnalyzeBranch(ctx context.Context, rb model.RepoBranch) (*AnalysisResult, error) {
	repoID, err := s.repoStore.Upsert(ctx, rb.Owner, rb.RepoName)
	if err != nil {
		return nil, fmt.Errorf("register repository %s: %w", rb.FullName(), err)
	}

	sessionID, err := s.sessionStore.Start(ctx, repoID, model.SessionTypePRAnalysis)
	if err != nil {
		return nil, fmt.Errorf("start analysis session for %s: %w", rb.FullName(), err)
	}

	s.logger.Info("analysis started",
		"repo", rb.FullName(),
		"branch", rb.Branch,
		"session_id", sessionID,
	)

	result, err := s.analyze(ctx, rb, repoID)
	if err != nil {
		// The caller's context may already be cancelled; the failure still
		// has to be recorded.
		if failErr := s.sessionStore.Fail(context.WithoutCancel(ctx), sessionID, err.Error()); failErr != nil {
			s.logger.Error("mark session failed", "session_id", sessionID, "error", failErr)
		}
		s.logger.Error("analysis failed", "repo", rb.FullName(), "branch", rb.Branch, "session_id", sessionID, "error", err)
		return nil, err
	}
	result.SessionID = sessionID

	if err := s.sessionStore.Complete(ctx, sessionID, result.PullRequestID, len(result.Comments), len(result.Parsed)); err != nil {
		return nil, fmt.Errorf("complete session %d: %w", sessionID, err)
	}

	s.logger.Info("analysis complete",
		"repo", rb.FullName(),
		"pr_number", result.PullRequest.Number,
		"comments", len(result.Comments),
		"parsed", len(result.Parsed),
		"parse_failures", result.ParseFailures,
		"session_id", sessionID,
	)

	return result, nil
}

func (s *AnalysisService) analyze(ctx context.Context, rb model.RepoBranch, repoID int64) (*AnalysisResult, error) {
	pr, err := s.ghClient.GetPullRequestForBranch(ctx, rb.Owner, rb.RepoName, rb.Branch)
	if err != nil {
		return nil, err
	}

	stored := model.StoredPullRequest{
		PullRequest:   *pr,
		RepositoryID:  repoID,
		State:         model.PullRequestStateOpen,
		LastFetchedAt: s.now(),
	}
	prID, err := s.prStore.Upsert(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("store pull request #%d: %w", pr.Number, err)
	}

	comments, err := s.ghClient.GetReviewCommentsForPullRequest(ctx, *pr)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		PullRequest:   *pr,
		PullRequestID: prID,
		Comments:      comments,
		Parsed:        []model.CodeRabbitComment{},
	}

	for i := range comments {
		record := model.ReviewCommentRecord{
			Comment:       comments[i],
			PullRequestID: prID,
		}
		record.IsBot, record.BotName = botIdentity(comments[i].Author.Login)

		if IsCodeRabbitAuthor(comments[i].Author.Login) {
			parsed, err := s.parser.Parse(&comments[i])
			if err != nil {
				result.ParseFailures++
				s.logger.Warn("skipping unparseable bot comment",
					"comment_id", comments[i].CommentID,
					"error", err,
				)
			} else {
				record.Parsed = parsed
				result.Parsed = append(result.Parsed, *parsed)
			}
		}

		if err := s.commentStore.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("store review comment %d: %w", comments[i].CommentID, err)
		}
	}

	stored.TotalComments = len(comments)
	if _, err := s.prStore.Upsert(ctx, stored); err != nil {
		return nil, fmt.Errorf("update comment total for pull request #%d: %w", pr.Number, err)
	}

	if err := s.repoStore.MarkAnalyzed(ctx, repoID, pr.BaseRefName); err != nil {
		return nil, fmt.Errorf("mark repository %s analyzed: %w", rb.FullName(), err)
	}

	return result, nil
}

// StoredComments returns the comments persisted by earlier analyses of PR
// number in owner/repoName. It returns nil, nil when nothing was stored.
func (s *AnalysisService) StoredComments(ctx context.Context, owner, repoName string, number int) (*StoredPullRequestComments, error) {
	fullName := owner + "/" + repoName

	repo, err := s.repoStore.GetByFullName(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("load repository %s: %w", fullName, err)
	}
	if repo == nil {
		return nil, nil
	}

	pr, err := s.prStore.GetByNumber(ctx, repo.ID, number)
	if err != nil {
		return nil, fmt.Errorf("load pull request %s#%d: %w", fullName, number, err)
	}
	if pr == nil {
		return nil, nil
	}

	comments, err := s.commentStore.ListByPullRequest(ctx, pr.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments for %s#%d: %w", fullName, number, err)
	}

	return &StoredPullRequestComments{PullRequest: *pr, Comments: comments}, nil
}

// RecordCommentAction stores the user's follow-up on a review comment.
func (s *AnalysisService) RecordCommentAction(ctx context.Context, githubCommentID int64, action model.CommentAction) error {
	switch action.Agreement {
	case "", model.CommentAgreementTrue, model.CommentAgreementFalse, model.CommentAgreementPartially:
	default:
		return fmt.Errorf("invalid agreement %q: want true, false or partially", action.Agreement)
	}

	if err := s.commentStore.UpdateAction(ctx, githubCommentID, action); err != nil {
		return fmt.Errorf("record action for comment %d: %w", githubCommentID, err)
	}

	s.logger.Info("comment action recorded",
		"comment_id", githubCommentID,
		"agreement", action.Agreement,
		"did_reply", action.DidReply,
		"changes_done", action.ChangesDone,
	)
	return nil
}

// RecentSessions returns the newest analysis sessions first.
func (s *AnalysisService) RecentSessions(ctx context.Context, limit int) ([]model.AnalysisSession, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	sessions, err := s.sessionStore.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// botIdentity reports whether login is a bot account and the bot's name.
// CodeRabbit logins map to model.BotCodeRabbit.
func botIdentity(login string) (bool, string) {
	if IsCodeRabbitAuthor(login) {
		return true, model.BotCodeRabbit
	}
	if name, ok := strings.CutSuffix(login, "[bot]"); ok {
		return true, name
	}
	return false, ""
}
