package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/prresolver/internal/adapter/driving/http"
	"github.com/ericfisherdev/prresolver/internal/adapter/driving/web"
	"github.com/ericfisherdev/prresolver/internal/application"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

func newContextCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "context <pr-url|number>",
		Short: "Show the full review context of a pull request",
		Long: `Fetch the pull request, all review threads, and the check runs of its
head commit, then list the unresolved threads and failing checks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				prCtx, err := a.contextSvc.GetContext(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				resp := httphandler.ToContextResponse(prCtx)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					return writeContextText(w, resp)
				})
			})
		},
	}
}

func newThreadsCmd(opts *globalOptions) *cobra.Command {
	var unresolved bool

	threadsCmd := &cobra.Command{
		Use:   "threads <pr-url|number>",
		Short: "List the review threads of a pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				threads, err := a.contextSvc.GetReviewThreads(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				if unresolved {
					threads = model.UnresolvedThreads(threads)
				}
				resp := httphandler.ToThreadResponses(threads)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					return writeThreadsText(w, resp)
				})
			})
		},
	}

	threadsCmd.Flags().BoolVarP(&unresolved, "unresolved", "u", false, "Only list unresolved threads")
	return threadsCmd
}

func newChecksCmd(opts *globalOptions) *cobra.Command {
	var failing bool

	checksCmd := &cobra.Command{
		Use:   "checks <pr-url|number>",
		Short: "List the check runs of a pull request's head commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				runs, err := a.contextSvc.GetCheckRuns(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				if failing {
					runs = model.FailingChecks(runs)
				}
				resp := httphandler.ToCheckRunResponses(runs)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					return writeChecksText(w, resp)
				})
			})
		},
	}

	checksCmd.Flags().BoolVarP(&failing, "failing", "f", false, "Only list failing checks")
	return checksCmd
}

func newSuitesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suites <pr-url|number>",
		Short: "List the check suites of a pull request's head commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				suites, err := a.contextSvc.GetCheckSuites(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				resp := httphandler.ToCheckSuiteResponses(suites)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					return writeSuitesText(w, resp)
				})
			})
		},
	}
}

func newRunsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <pr-url|number>",
		Short: "List recent Actions workflow runs on a pull request's head branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				runs, err := a.contextSvc.GetWorkflowRuns(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				resp := httphandler.ToWorkflowRunResponses(runs)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					return writeRunsText(w, resp)
				})
			})
		},
	}
}

func newCommentsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <pr-url|number>",
		Short: "List review comments grouped into reply chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				comments, err := a.contextSvc.GetReviewComments(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}

				chains := model.GroupReplyChains(comments)
				resp := make([][]httphandler.CommentResponse, 0, len(chains))
				for _, chain := range chains {
					resp = append(resp, httphandler.ToCommentResponses(chain))
				}

				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					for _, chain := range resp {
						for i, c := range chain {
							indent := ""
							if i > 0 {
								indent = "  "
							}
							fmt.Fprintf(w, "%s%d\t%s\t%s\t%s\n", indent, c.ID, c.Author, c.Path, firstLine(c.Body, 60))
						}
					}
					return nil
				})
			})
		},
	}
}

func newSuggestionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggestions <pr-url|number>",
		Short: "List suggested changes from unresolved review threads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				threads, err := a.contextSvc.GetReviewThreads(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				resp := httphandler.ToSuggestionResponses(application.ExtractSuggestions(threads))
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					for _, s := range resp {
						loc := s.Path
						if s.Line != nil {
							loc = fmt.Sprintf("%s:%d", s.Path, *s.Line)
						}
						fmt.Fprintf(w, "%s (%s, thread %s)\n%s\n\n", loc, s.Author, s.ThreadID, s.ProposedCode)
					}
					return nil
				})
			})
		},
	}
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <thread-id>...",
		Short: "Resolve review threads by their node IDs",
		Long: `Resolve one or more review threads. Thread IDs are the GraphQL node IDs
shown by "prresolver threads". Resolving an already resolved thread succeeds.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.cfg.RequireToken(); err != nil {
					return err
				}

				var errs []error
				results := make([]httphandler.ResolveResponse, 0, len(args))
				for _, id := range args {
					resolved, err := a.threadSvc.ResolveThread(cmd.Context(), id)
					if err != nil {
						errs = append(errs, fmt.Errorf("resolve %s: %w", id, err))
						continue
					}
					results = append(results, httphandler.ResolveResponse{ThreadID: id, IsResolved: resolved})
				}

				if err := render(cmd.OutOrStdout(), opts.output, results, func(w io.Writer) error {
					for _, r := range results {
						fmt.Fprintf(w, "%s\tresolved=%t\n", r.ThreadID, r.IsResolved)
					}
					return nil
				}); err != nil {
					return err
				}
				return errors.Join(errs...)
			})
		},
	}
}

func newReplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <pr-url|number> <comment-id> <body>",
		Short: "Reply to a review comment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			commentID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid comment id %q", model.ErrMalformedReference, args[1])
			}

			return withApp(cmd.Context(), func(a *app) error {
				if err := a.cfg.RequireToken(); err != nil {
					return err
				}
				reply, err := a.threadSvc.ReplyToComment(cmd.Context(), args[0], opts.repo, commentID, args[2])
				if err != nil {
					return err
				}
				resp := httphandler.ToCommentResponse(*reply)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "replied\t%d\n", resp.ID)
					return err
				})
			})
		},
	}
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history <pr-url|number>",
		Short: "Show recorded context snapshots of a pull request",
		Long: `Show the snapshots recorded by earlier "context" runs, newest first.
Requires PRRESOLVER_DB_PATH; without it no history is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				snapshots, err := a.contextSvc.ListSnapshots(cmd.Context(), args[0], opts.repo, limit)
				if err != nil {
					return err
				}
				resp := httphandler.ToSnapshotResponses(snapshots)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					fmt.Fprintln(w, "TAKEN\tHEAD\tUNRESOLVED\tFAILING")
					for _, s := range resp {
						fmt.Fprintf(w, "%s\t%.7s\t%d/%d\t%d/%d\n", s.TakenAt, s.HeadSHA, s.UnresolvedCount, s.ThreadCount, s.FailingCount, s.CheckCount)
					}
					return nil
				})
			})
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum snapshots to show (0 for all)")
	return historyCmd
}

func newReportCmd(opts *globalOptions) *cobra.Command {
	var outFile string

	reportCmd := &cobra.Command{
		Use:   "report <pr-url|number>",
		Short: "Write an HTML review report for a pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				prCtx, err := a.contextSvc.GetContext(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}

				if outFile == "" || outFile == "-" {
					return web.Render(cmd.Context(), cmd.OutOrStdout(), prCtx)
				}

				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("create report file: %w", err)
				}
				if err := web.Render(cmd.Context(), f, prCtx); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}

	reportCmd.Flags().StringVarP(&outFile, "file", "O", "", "Write the report to this file instead of stdout")
	return reportCmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <pr-url|number>",
		Short: "Show the combined commit status of a pull request's head commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				status, err := a.contextSvc.GetCombinedStatus(cmd.Context(), args[0], opts.repo)
				if err != nil {
					return err
				}
				resp := httphandler.ToCombinedStatusResponse(status)
				return render(cmd.OutOrStdout(), opts.output, resp, func(w io.Writer) error {
					fmt.Fprintf(w, "state\t%s\n", orDash(resp.State))
					for _, s := range resp.Statuses {
						fmt.Fprintf(w, "%s\t%s\t%s\n", s.Context, s.State, orDash(s.Description))
					}
					return nil
				})
			})
		},
	}
}

func newFileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "file <pr-url|number> <path>",
		Short: "Print a file as of the pull request's head commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				content, err := a.contextSvc.GetFileContent(cmd.Context(), args[0], opts.repo, args[1])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), content)
				return err
			})
		},
	}
}
