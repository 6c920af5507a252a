// Package cli defines the reviewdigest command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	gitadapter "github.com/ericfisherdev/reviewdigest/internal/adapter/driven/git"
	githubadapter "github.com/ericfisherdev/reviewdigest/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/reviewdigest/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewdigest/internal/application"
	"github.com/ericfisherdev/reviewdigest/internal/config"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewdigest/internal/logging"
	"github.com/ericfisherdev/reviewdigest/internal/output"
)

// Options stores state shared between commands.
type Options struct {
	Config *config.Config

	// newGitHubClient and newDetector are replaced in tests.
	newGitHubClient func(cfg *config.Config, logger *slog.Logger) driven.GitHubClient
	newDetector     func(dir string, logger *slog.Logger) driven.RepoBranchDetector
}

// Execute builds the root command, runs it with the provided args and returns any error.
func Execute(ctx context.Context, args []string, cfg *config.Config, logger *slog.Logger) error {
	rootCmd := newRootCommand(newOptions(cfg), logger)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newOptions(cfg *config.Config) *Options {
	return &Options{
		Config: cfg,
		newGitHubClient: func(cfg *config.Config, logger *slog.Logger) driven.GitHubClient {
			return githubadapter.NewClient(cfg.GitHubToken, githubadapter.Options{
				WaitOnRateLimit: cfg.GitHubWaitOnRateLimit,
			}, logger)
		},
		newDetector: func(dir string, logger *slog.Logger) driven.RepoBranchDetector {
			return gitadapter.NewDetector(dir, logger)
		},
	}
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewdigest",
		Short: "Collect and digest CodeRabbit review comments for the current branch",
		Long: `reviewdigest finds the open pull request of a branch, pulls every review
comment through the GitHub GraphQL API, extracts the structured parts of
CodeRabbit comments and keeps the results in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flag := cmd.Flag("log-level"); flag != nil && flag.Changed {
				value := strings.ToLower(flag.Value.String())
				switch value {
				case "debug", "info", "warn", "error":
				default:
					return fmt.Errorf("invalid --log-level %q: want debug, info, warn or error", value)
				}
				logger = logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(value), opts.Config.IsDevelopment())
			}
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "app_env", opts.Config.AppEnv)
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", opts.Config.LogLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCommand(opts),
		newParseCommand(),
		newSessionsCommand(opts),
		newShowCommand(opts),
		newMarkCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// loggerFromContext extracts the command logger, falling back to slog.Default.
func loggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// newUI binds output to the command's writers so tests can capture them.
func newUI(cmd *cobra.Command) *output.UI {
	return &output.UI{Out: cmd.OutOrStdout(), ErrOut: cmd.ErrOrStderr()}
}

// openAnalysisService opens the database and wires an AnalysisService on it.
// ghClient may be nil for commands that only read local state. The caller
// must Close the returned DB.
func openAnalysisService(opts *Options, ghClient driven.GitHubClient, logger *slog.Logger) (*application.AnalysisService, *sqliteadapter.DB, error) {
	db, err := sqliteadapter.Open(opts.Config.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", opts.Config.DBPath, err)
	}
	logger.Debug("database opened", "path", db.Path())

	svc := application.NewAnalysisService(
		ghClient,
		application.NewParserService(logger),
		sqliteadapter.NewRepoRepo(db),
		sqliteadapter.NewPRRepo(db),
		sqliteadapter.NewReviewRepo(db),
		sqliteadapter.NewSessionRepo(db),
		logger,
	)
	return svc, db, nil
}

// closeDB closes db and logs a failure.
func closeDB(db *sqliteadapter.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
