package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/output"
)

// newShowCommand creates "show", which prints the comments stored for a PR
// without calling GitHub.
func newShowCommand(opts *Options) *cobra.Command {
	var (
		owner    string
		repoName string
		number   int
		botsOnly bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored review comments of an analyzed pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFromContext(cmd.Context())

			if number <= 0 {
				return fmt.Errorf("show requires a positive --pr number")
			}

			svc, db, err := openAnalysisService(opts, nil, logger)
			if err != nil {
				return err
			}
			defer closeDB(db, logger)

			stored, err := svc.StoredComments(cmd.Context(), owner, repoName, number)
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("no stored comments for %s/%s#%d: run 'reviewdigest analyze' first", owner, repoName, number)
			}

			comments := stored.Comments
			if botsOnly {
				comments = comments[:0:0]
				for _, c := range stored.Comments {
					if c.Parsed != nil {
						comments = append(comments, c)
					}
				}
			}

			ui := newUI(cmd)
			if jsonOut {
				return ui.JSON(comments)
			}

			pr := stored.PullRequest
			ui.Info("PR #%d %s, %d comments, last fetched %s", pr.Number, output.Cyan(pr.Title), pr.TotalComments, pr.LastFetchedAt.Local().Format("2006-01-02 15:04"))

			table := ui.Table([]string{"Comment", "Author", "Type", "Summary", "Agreement", "Replied", "Done"})
			for _, c := range comments {
				table.Append([]string{
					strconv.FormatInt(c.CommentID, 10),
					c.Author.Login,
					output.CommentTypeColor(parsedType(c)),
					output.Truncate(summaryOf(c), 60),
					string(c.Agreement),
					yesNo(c.DidReply),
					yesNo(c.ChangesDone),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner")
	cmd.Flags().StringVar(&repoName, "repo", "", "Repository name")
	cmd.Flags().IntVar(&number, "pr", 0, "Pull request number")
	cmd.Flags().BoolVar(&botsOnly, "coderabbit", false, "Only show parsed CodeRabbit comments")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print comments as JSON")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func parsedType(c model.ReviewCommentRecord) string {
	if c.Parsed == nil {
		return ""
	}
	return deref(c.Parsed.Type)
}

func summaryOf(c model.ReviewCommentRecord) string {
	if c.Parsed != nil {
		if s := firstOf(c.Parsed.Summary, c.Parsed.Heading); s != "" {
			return s
		}
	}
	return c.Body
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
