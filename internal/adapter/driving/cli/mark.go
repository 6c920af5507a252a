package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// newMarkCommand creates "mark", which records the follow-up on a stored comment.
func newMarkCommand(opts *Options) *cobra.Command {
	var (
		agreement   string
		reply       string
		didReply    bool
		changesDone bool
	)

	cmd := &cobra.Command{
		Use:   "mark <comment-id>",
		Short: "Record whether you agreed with, replied to or addressed a review comment",
		Long: `Record the follow-up on a stored review comment, identified by its GitHub
comment ID as printed by 'show'. Each call replaces the previously recorded
follow-up. Later analyses of the same pull request keep it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			commentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid comment id %q: %w", args[0], err)
			}

			svc, db, err := openAnalysisService(opts, nil, logger)
			if err != nil {
				return err
			}
			defer closeDB(db, logger)

			action := model.CommentAction{
				Agreement:    model.CommentAgreement(agreement),
				ReplyMessage: reply,
				DidReply:     didReply || reply != "",
				ChangesDone:  changesDone,
			}
			if err := svc.RecordCommentAction(cmd.Context(), commentID, action); err != nil {
				return err
			}

			newUI(cmd).Success("Recorded follow-up for comment %d", commentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&agreement, "agreement", "", "Whether you agree: true, false or partially")
	cmd.Flags().StringVar(&reply, "reply", "", "Reply message posted on the comment (implies --did-reply)")
	cmd.Flags().BoolVar(&didReply, "did-reply", false, "A reply was posted")
	cmd.Flags().BoolVar(&changesDone, "changes-done", false, "The requested changes were made")

	return cmd
}
