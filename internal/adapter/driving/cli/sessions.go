package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewdigest/internal/output"
)

// newSessionsCommand creates "sessions", which lists recent analysis runs.
func newSessionsCommand(opts *Options) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent analysis sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFromContext(cmd.Context())

			svc, db, err := openAnalysisService(opts, nil, logger)
			if err != nil {
				return err
			}
			defer closeDB(db, logger)

			sessions, err := svc.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			ui := newUI(cmd)
			if jsonOut {
				return ui.JSON(sessions)
			}
			if len(sessions) == 0 {
				ui.Info("No analysis sessions recorded. Run 'reviewdigest analyze' first.")
				return nil
			}

			table := ui.Table([]string{"ID", "Type", "Status", "PR", "Comments", "Parsed", "Started", "Error"})
			for _, s := range sessions {
				pr := ""
				if s.PullRequestID != nil {
					pr = strconv.FormatInt(*s.PullRequestID, 10)
				}
				table.Append([]string{
					strconv.FormatInt(s.ID, 10),
					string(s.Type),
					output.StatusColor(string(s.Status)),
					pr,
					strconv.Itoa(s.CommentsProcessed),
					strconv.Itoa(s.CommentsParsed),
					s.StartedAt.Local().Format(time.DateTime),
					output.Truncate(s.ErrorMessage, 50),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print sessions as JSON")

	return cmd
}
