// Command prresolver gathers the review state of a GitHub pull request
// (review threads, check runs, unresolved and failing items) and resolves
// review threads.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prresolver/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/prresolver/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/prresolver/internal/application"
	"github.com/ericfisherdev/prresolver/internal/config"
	"github.com/ericfisherdev/prresolver/internal/domain/port/driven"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	repo      string
	output    string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "prresolver",
		Short: "Collect and act on the review state of GitHub pull requests",
		Long: `prresolver fetches a pull request's review threads and check runs from
GitHub, derives which threads are unresolved and which checks are failing,
and resolves review threads.

A pull request is named by its URL or, together with --repo or a configured
default repository, by its number.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			return validateOutput(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.repo, "repo", "R", "", "Repository (owner/repo) for bare pull request numbers")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatText, "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(
		newContextCmd(opts),
		newThreadsCmd(opts),
		newChecksCmd(opts),
		newSuitesCmd(opts),
		newRunsCmd(opts),
		newCommentsCmd(opts),
		newSuggestionsCmd(opts),
		newResolveCmd(opts),
		newReplyCmd(opts),
		newHistoryCmd(opts),
		newReportCmd(opts),
		newStatusCmd(opts),
		newFileCmd(opts),
		newServeCmd(),
	)

	return rootCmd
}

// setupLogger installs the default slog logger. Logs go to stderr so stdout
// carries only command output.
func setupLogger(w io.Writer, level, format string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}

// app holds the wired services for one command invocation.
type app struct {
	cfg        *config.Config
	contextSvc *application.ContextService
	threadSvc  *application.ThreadService
	db         *sqliteadapter.DB
}

// newApp loads configuration and wires the GitHub client, the optional
// snapshot store, and the application services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client, err := githubadapter.NewClient(githubadapter.Options{
		Token:     cfg.GitHubToken,
		BaseURL:   cfg.GitHubAPIURL,
		HTTPCache: cfg.HTTPCache,
		MaxPages:  cfg.MaxPages,
	})
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}

	a := &app{cfg: cfg}

	var snapshots driven.SnapshotStore
	if cfg.HasSnapshotStore() {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Debug("snapshot store opened", "path", cfg.DBPath)
		a.db = db
		snapshots = sqliteadapter.NewSnapshotRepo(db)
	}

	a.contextSvc = application.NewContextService(client, snapshots, cfg.GitHubRepo)
	a.threadSvc = application.NewThreadService(client, cfg.GitHubRepo)
	return a, nil
}

func (a *app) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// withApp wires an app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
