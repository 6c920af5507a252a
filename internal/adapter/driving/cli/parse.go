package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewdigest/internal/application"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
)

// newParseCommand creates "parse", which runs the CodeRabbit parser on one comment body.
func newParseCommand() *cobra.Command {
	var commentID int64

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a CodeRabbit comment body from a file or stdin and print it as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			var (
				body []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read comment body: %w", err)
			}

			comment := &model.Comment{
				CommentID: commentID,
				Body:      string(body),
				Author:    model.Author{Login: model.BotCodeRabbit + "[bot]"},
			}

			parsed, err := application.NewParserService(logger).Parse(comment)
			if err != nil {
				return err
			}
			return newUI(cmd).JSON(parsed)
		},
	}

	cmd.Flags().Int64Var(&commentID, "comment-id", 0, "Comment ID to put in the output")

	return cmd
}
