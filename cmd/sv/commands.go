package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/ibeckermayer/sentiview/internal/app"
	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/report"
	"github.com/ibeckermayer/sentiview/internal/selection"
	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/users"
)

var (
	refreshUser   string
	statsWindow   string
	statsMonth    int
	usersHidden   bool
	postsFilter   string
	postsRange    string
	exportIDs     []string
	exportFormat  string
	summarySave   bool
	summaryFormat string
)

func init() {
	refreshCmd.Flags().StringVar(&refreshUser, "user", "", "only fetch posts by this author")

	statsCmd.Flags().StringVar(&statsWindow, "window", "all", "today, week, month or all")
	statsCmd.Flags().IntVar(&statsMonth, "month", -1, "calendar month of this year, 0 = January (overrides --window)")

	usersCmd.Flags().BoolVar(&usersHidden, "hidden", false, "list hidden authors instead")

	postsCmd.Flags().StringVar(&postsFilter, "sentiment", "all", "all, positive, neutral or negative")
	postsCmd.Flags().StringVar(&postsRange, "range", "all", "today, week, month or all")

	exportCmd.Flags().StringSliceVar(&exportIDs, "select", nil, "post ids to include (default all of the author's posts)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "html or jpg (default report.format)")

	summaryCmd.Flags().BoolVar(&summarySave, "save", false, "write the summary to the report dir instead of emailing it")
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "", "html or jpg when saving (default report.format)")

	hideCmd.ValidArgsFunction = completeUsernames
	postsCmd.ValidArgsFunction = completeUsernames
	exportCmd.ValidArgsFunction = completeUsernames
	restoreCmd.ValidArgsFunction = completeHidden
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Copy posts from the configured source into the local database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			var (
				n   int
				err error
			)
			if refreshUser != "" {
				n, err = a.RefreshUser(cmd.Context(), refreshUser)
			} else {
				n, err = a.Refresh(cmd.Context())
			}
			if err != nil {
				return err
			}
			stored, err := a.StoredPosts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d posts (%d stored)\n", n, stored)
			return nil
		})
	},
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label unlabelled posts with the configured LLM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			n, err := a.Label(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Labelled %d posts\n", n)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the sentiment breakdown across all authors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := overviewOptions()
		if err != nil {
			return err
		}
		return withApp(func(a *app.App) error {
			ov, err := a.Overview(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), ov)
			}
			printOverview(cmd.OutOrStdout(), ov)
			return nil
		})
	},
}

func overviewOptions() (app.OverviewOptions, error) {
	var opts app.OverviewOptions
	if statsMonth >= 0 {
		m, ok := sentiment.MonthFromIndex(statsMonth)
		if !ok {
			return opts, fmt.Errorf("--month must be between 0 and 11, got %d", statsMonth)
		}
		opts.Month = m
		return opts, nil
	}

	w, err := sentiment.ParseWindow(statsWindow)
	if err != nil {
		return opts, err
	}
	opts.Window = w
	return opts, nil
}

func printOverview(w io.Writer, ov *app.Overview) {
	scope := string(ov.Window)
	if ov.Month != "" {
		scope = ov.Month
	}
	fmt.Fprintln(w, titleStyle.Render("Scope: "+scope))
	printResult(w, ov.Result)
	fmt.Fprintf(w, "Authors: %d visible, %d hidden\n", len(ov.Users), ov.Hidden)
}

func printResult(w io.Writer, r sentiment.Result) {
	fmt.Fprintf(w, "Posts:    %d\n", r.Total)
	fmt.Fprintf(w, "Positive: %3d%% %s\n", r.Positive, styled(sentiment.Positive, bar(r.Positive)))
	fmt.Fprintf(w, "Neutral:  %3d%% %s\n", r.Neutral, styled(sentiment.Neutral, bar(r.Neutral)))
	fmt.Fprintf(w, "Negative: %3d%% %s\n", r.Negative, styled(sentiment.Negative, bar(r.Negative)))
	fmt.Fprintln(w, styled(r.Dominant(), r.Summary()))
}

func bar(pct int) string {
	return strings.Repeat("#", pct/5)
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List authors with their recent sentiment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			ov, err := a.Overview(cmd.Context(), app.OverviewOptions{ShowHidden: usersHidden})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), ov.Users)
			}
			printUsers(cmd.OutOrStdout(), ov.Users)
			return nil
		})
	},
}

// completeUsernames offers the stored authors for a <user> argument.
func completeUsernames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(cmd, args, toComplete, func(ctx context.Context, a *app.App) ([]string, error) {
		return a.Usernames(ctx)
	})
}

// completeHidden offers the hidden authors for restore.
func completeHidden(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(cmd, args, toComplete, func(_ context.Context, a *app.App) ([]string, error) {
		return a.Hidden(), nil
	})
}

func completeFrom(cmd *cobra.Command, args []string, toComplete string, list func(context.Context, *app.App) ([]string, error)) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var names []string
	err := withApp(func(a *app.App) error {
		var err error
		names, err = list(ctx, a)
		return err
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return withPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func withPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

func printUsers(w io.Writer, summaries []users.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tPOSTS\t+24H\t-24H\tRECENT")
	for _, s := range summaries {
		recent := "-"
		if s.HasRecent() {
			recent = string(s.RecentSentiment)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Name, s.PostCount, s.PositiveCount, s.NegativeCount, recent)
	}
	tw.Flush()
}

var hideCmd = &cobra.Command{
	Use:   "hide <user>",
	Short: "Hide an author from the user list and summaries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Hide(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hidden %s\n", args[0])
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <user>",
	Short: "Unhide an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Restore(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		})
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts <user>",
	Short: "Show one author's breakdown and posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := sentiment.ParseSentimentFilter(postsFilter)
		if err != nil {
			return err
		}
		dr, err := sentiment.ParseWindow(postsRange)
		if err != nil {
			return err
		}

		return withApp(func(a *app.App) error {
			view, err := a.UserView(cmd.Context(), args[0], sentiment.Criteria{Sentiment: sf, DateRange: dr})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), view)
			}
			printUserView(cmd.OutOrStdout(), view)
			return nil
		})
	},
}

func printUserView(w io.Writer, view *app.UserView) {
	fmt.Fprintln(w, titleStyle.Render(view.Username))
	printResult(w, view.Result)
	fmt.Fprintln(w)

	if len(view.Posts) == 0 {
		if view.Criteria.HasActive() {
			fmt.Fprintln(w, "No posts match the current filters.")
		} else {
			fmt.Fprintln(w, "No posts.")
		}
		return
	}

	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Showing %d of %d posts", len(view.Posts), view.Total)))
	fmt.Fprintln(w)
	for _, p := range view.Posts {
		b := sentiment.Classify(p.Sentiment)
		fmt.Fprintf(w, "%s %s  %s\n", styled(b, "["+string(b)+"]"), report.FormatTime(p.Timestamp), dimStyle.Render(p.ID))
		fmt.Fprintf(w, "  %s\n\n", p.Content)
	}
}

var exportCmd = &cobra.Command{
	Use:   "export <user>",
	Short: "Save an author's posts as an HTML or JPEG report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sel *selection.Set
		if len(exportIDs) > 0 {
			sel = selection.NewSet(exportIDs...)
		}

		return withApp(func(a *app.App) error {
			path, err := a.Export(cmd.Context(), args[0], sel, exportFormat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Email (or save) the summary for schedule.summary_window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if summarySave {
				path, err := a.SaveSummary(cmd.Context(), summaryFormat)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			return a.SendSummary(cmd.Context())
		})
	},
}

var openCmd = &cobra.Command{
	Use:       "open [report|config|cache]",
	Short:     "Open the last report, the config file or the cache directory",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"report", "config", "cache"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "report"
		if len(args) == 1 {
			target = args[0]
		}
		return runOpen(target)
	},
}

func runOpen(target string) error {
	var (
		path string
		err  error
	)

	switch target {
	case "report":
		return withApp(func(a *app.App) error { return a.ViewLastReport() })
	case "config":
		path = configPath
		if path == "" {
			path, err = config.ConfigPath()
		}
	case "cache":
		path, err = config.CacheDir()
	default:
		return errors.New("unknown target: " + target)
	}
	if err != nil {
		return fmt.Errorf("failed to get path: %w", err)
	}

	return browser.OpenFile(path)
}
