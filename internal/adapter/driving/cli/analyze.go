package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewdigest/internal/application"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/output"
)

// analyzeReport is the --json form of an analysis.
type analyzeReport struct {
	PullRequest   model.PullRequest         `json:"pullRequest"`
	SessionID     int64                     `json:"sessionId"`
	TotalComments int                       `json:"totalComments"`
	ParseFailures int                       `json:"parseFailures"`
	Comments      []model.CodeRabbitComment `json:"comments"`
}

// newAnalyzeCommand creates "analyze", which digests the review comments of a branch's open PR.
func newAnalyzeCommand(opts *Options) *cobra.Command {
	var (
		owner    string
		repoName string
		branch   string
		dir      string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch, parse and store the review comments of the current branch's pull request",
		Long: `Fetch every review comment of the open pull request for a branch, parse the
CodeRabbit ones and store the results locally.

Owner, repository and branch default to the origin remote and checked-out
branch of the git working tree in --dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFromContext(cmd.Context())

			if err := opts.Config.ValidateGitHubToken(); err != nil {
				return err
			}

			rb, err := resolveRepoBranch(cmd.Context(), opts, logger, dir, model.RepoBranch{
				Owner:    owner,
				RepoName: repoName,
				Branch:   branch,
			})
			if err != nil {
				return err
			}

			svc, db, err := openAnalysisService(opts, opts.newGitHubClient(opts.Config, logger), logger)
			if err != nil {
				return err
			}
			defer closeDB(db, logger)

			result, err := svc.AnalyzeBranch(cmd.Context(), rb)
			if err != nil {
				return err
			}

			ui := newUI(cmd)
			if jsonOut {
				return ui.JSON(analyzeReport{
					PullRequest:   result.PullRequest,
					SessionID:     result.SessionID,
					TotalComments: len(result.Comments),
					ParseFailures: result.ParseFailures,
					Comments:      result.Parsed,
				})
			}
			renderAnalysis(ui, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (default: from the origin remote)")
	cmd.Flags().StringVar(&repoName, "repo", "", "Repository name (default: from the origin remote)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name (default: the checked-out branch)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Git working tree used to detect defaults")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the parsed comments as JSON")

	return cmd
}

// resolveRepoBranch fills the fields missing from given with the values
// detected in the git working tree at dir. Git is not consulted when all
// fields are given.
func resolveRepoBranch(ctx context.Context, opts *Options, logger *slog.Logger, dir string, given model.RepoBranch) (model.RepoBranch, error) {
	if given.Owner != "" && given.RepoName != "" && given.Branch != "" {
		return given, nil
	}

	detected, err := opts.newDetector(dir, logger).CurrentRepoAndBranch(ctx)
	if err != nil {
		return model.RepoBranch{}, fmt.Errorf("detect repository and branch in %s: %w", dir, err)
	}

	if given.Owner == "" {
		given.Owner = detected.Owner
	}
	if given.RepoName == "" {
		given.RepoName = detected.RepoName
	}
	if given.Branch == "" {
		given.Branch = detected.Branch
	}
	return given, nil
}

func renderAnalysis(ui *output.UI, result *application.AnalysisResult) {
	pr := result.PullRequest
	ui.Info("PR #%d %s (%s into %s)", pr.Number, output.Cyan(pr.Title), pr.HeadRefName, pr.BaseRefName)

	if len(result.Parsed) == 0 {
		ui.Info("No CodeRabbit comments on this pull request.")
	} else {
		table := ui.Table([]string{"Comment", "Type", "File", "Summary", "State"})
		for _, c := range result.Parsed {
			table.Append([]string{
				strconv.FormatInt(c.CommentID, 10),
				output.CommentTypeColor(deref(c.Type)),
				output.Truncate(location(c.Comment), 40),
				output.Truncate(firstOf(c.Summary, c.Heading), 60),
				threadState(c.Comment),
			})
		}
		table.Render()
	}

	if result.ParseFailures > 0 {
		ui.Warning("%d CodeRabbit comments could not be parsed", result.ParseFailures)
	}
	ui.Success("Stored %d comments, %d parsed (session %d)", len(result.Comments), len(result.Parsed), result.SessionID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstOf(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func location(c model.Comment) string {
	if c.Position == nil {
		return c.Path
	}
	return fmt.Sprintf("%s:%d", c.Path, *c.Position)
}

func threadState(c model.Comment) string {
	switch {
	case c.IsResolved:
		return "resolved"
	case c.IsOutdated:
		return "outdated"
	default:
		return "open"
	}
}
