package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"iganalytics/pkg/analytics"
)

var (
	concurrency    int
	allPages       bool
	maxPages       int
	commentPreview int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the analytics dashboard of the account",
	Long: `Fetch the account, its recent media and the insights and comments of
every post, then print a dashboard with per-post metrics and account totals.

Only the first page of media is read unless --all-pages is given. When more
media is available the header says so.`,
	Example: `  # Dashboard of the most recent posts
  iganalytics analyze

  # Every post, four at a time
  iganalytics analyze --all-pages --concurrency 4

  # At most three pages, no comment preview
  iganalytics analyze --all-pages --max-pages 3 --comment-preview 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := make(map[string]interface{})
		if cmd.Flags().Changed("concurrency") {
			flags["concurrency"] = concurrency
		}
		if cmd.Flags().Changed("all-pages") {
			flags["all-pages"] = allPages
		}
		if cmd.Flags().Changed("max-pages") {
			flags["max-pages"] = maxPages
		}
		if cmd.Flags().Changed("comment-preview") {
			flags["comment-preview"] = commentPreview
		}

		a, err := newApp(cmd, flags)
		if err != nil {
			return err
		}
		return runAnalyze(cmd.Context(), a)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of posts enriched in parallel (1-16)")
	analyzeCmd.Flags().BoolVar(&allPages, "all-pages", false, "follow pagination instead of reading the first page only")
	analyzeCmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages with --all-pages (0 = no limit)")
	analyzeCmd.Flags().IntVar(&commentPreview, "comment-preview", 3, "number of comments shown per post")
}

func runAnalyze(ctx context.Context, a *app) error {
	analyzer := analytics.NewAnalyzer(a.client, analytics.OptionsFromConfig(a.cfg.Analysis), a.log)

	rep, err := analyzer.Run(ctx)
	if err != nil {
		var fetchErr *analytics.FetchError
		if errors.As(err, &fetchErr) && !errors.Is(err, context.Canceled) {
			if perr := a.out.DashboardFailure(fetchErr); perr != nil {
				return perr
			}
			return errReported
		}
		return err
	}

	return a.out.Dashboard(rep)
}
