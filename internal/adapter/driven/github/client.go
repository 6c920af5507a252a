// Package github implements the GitHubClient port using go-github for REST
// calls and githubv4 for GraphQL.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/reviewdigest/internal/apperr"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// graphQLQuerier is the subset of *githubv4.Client used by the adapter.
type graphQLQuerier interface {
	Query(ctx context.Context, q any, variables map[string]any) error
}

// Client implements the driven.GitHubClient port. It holds no per-call state,
// so one Client may serve concurrent lookups for different PRs.
type Client struct {
	rest    *gh.Client
	graphql graphQLQuerier
	logger  *slog.Logger
}

// Options tunes the production transport stack.
type Options struct {
	// WaitOnRateLimit makes the transport sleep through GitHub secondary rate
	// limits instead of failing the request.
	WaitOnRateLimit bool
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. oauth2 (bearer token for both REST and GraphQL)
//  2. go-github-ratelimit (secondary rate limit wait, only with WaitOnRateLimit)
//  3. httpcache (ETag-based conditional request caching for REST GETs)
func NewClient(token string, opts Options, logger *slog.Logger) *Client {
	var base http.RoundTripper = httpcache.NewMemoryCacheTransport()
	if opts.WaitOnRateLimit {
		base = github_ratelimit.NewClient(base).Transport
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		},
		Timeout: 60 * time.Second,
	}

	return &Client{
		rest:    gh.NewClient(httpClient),
		graphql: githubv4.NewClient(httpClient),
		logger:  logger.With("module", "GitHubClient"),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// The GraphQL endpoint is derived as <baseURL>/graphql.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	rest := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	rest.BaseURL = u

	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		rest:    rest,
		graphql: githubv4.NewEnterpriseClient(graphqlU.String(), httpClient),
		logger:  logger.With("module", "GitHubClient"),
	}, nil
}

// GetPullRequestForBranch returns the open pull request whose head is
// "owner:branch". When GitHub lists several PRs for the same head, the first
// one in GitHub's order wins; the result is not re-sorted here.
func (c *Client) GetPullRequestForBranch(ctx context.Context, owner, repoName, branch string) (*model.PullRequest, error) {
	head := owner + ":" + branch
	errCtx := map[string]any{"owner": owner, "repoName": repoName, "branch": branch}

	c.logger.Debug("fetching pull requests for branch", "owner", owner, "repo", repoName, "head", head)

	prs, resp, err := c.rest.PullRequests.List(ctx, owner, repoName, &gh.PullRequestListOptions{
		Head:  head,
		State: "open",
	})
	if err != nil {
		appErr := apperr.Service("Failed to get pull request for branch", errCtx, err)
		c.logger.Error("pull request lookup failed", "error", appErr)
		return nil, appErr
	}

	logRateLimit(c.logger, resp, owner+"/"+repoName+"/pulls", len(prs))

	if len(prs) == 0 {
		appErr := apperr.Service("No PR found", errCtx, nil)
		c.logger.Error("no open pull request for branch", "error", appErr)
		return nil, appErr
	}

	pr := mapPullRequest(prs[0])
	c.logger.Debug("retrieved pull request",
		"pr_number", pr.Number,
		"title", pr.Title,
		"head_ref", pr.HeadRefName,
		"base_ref", pr.BaseRefName,
	)

	return &pr, nil
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPullRequest(pr *gh.PullRequest) model.PullRequest {
	return model.PullRequest{
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		HeadRefName: pr.GetHead().GetRef(),
		BaseRefName: pr.GetBase().GetRef(),
		URL:         pr.GetHTMLURL(),
	}
}

// logRateLimit logs the GitHub API rate limit status after each REST call.
func logRateLimit(logger *slog.Logger, resp *gh.Response, endpoint string, count int) {
	if resp == nil {
		return
	}

	logger.Debug("github api call",
		"endpoint", endpoint,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
