package main

import (
	"context"

	"github.com/spf13/cobra"

	"iganalytics/internal/enrich"
	"iganalytics/pkg/instagram"
	"iganalytics/pkg/report"
)

var (
	listAllPages bool
	listMaxPages int
)

// mediaCmd represents the media command
var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "List recent media of the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, listingFlags(cmd))
		if err != nil {
			return err
		}
		return runMedia(cmd.Context(), a)
	},
}

// commentsCmd represents the comments command
var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List recent media with their comments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, listingFlags(cmd))
		if err != nil {
			return err
		}
		return runComments(cmd.Context(), a, false)
	},
}

// postsCmd represents the posts command
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List recent posts with like counts and comments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, listingFlags(cmd))
		if err != nil {
			return err
		}
		return runComments(cmd.Context(), a, true)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{mediaCmd, commentsCmd, postsCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().BoolVar(&listAllPages, "all-pages", false, "follow pagination instead of reading the first page only")
		cmd.Flags().IntVar(&listMaxPages, "max-pages", 0, "stop after this many pages with --all-pages (0 = no limit)")
	}
}

func listingFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("all-pages") {
		flags["all-pages"] = listAllPages
	}
	if cmd.Flags().Changed("max-pages") {
		flags["max-pages"] = listMaxPages
	}
	return flags
}

// fetchMedia reads one page, or every page when follow_pagination is set
func fetchMedia(ctx context.Context, a *app) ([]instagram.Media, error) {
	opts := instagram.ListOptions{Limit: a.cfg.Analysis.PageSize}
	if a.cfg.Analysis.FollowPagination {
		listing, err := a.client.ListAllMedia(ctx, opts, a.cfg.Analysis.MaxPages)
		if err != nil {
			return nil, err
		}
		return listing.Items, nil
	}

	page, err := a.client.ListMedia(ctx, opts)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func runMedia(ctx context.Context, a *app) error {
	items, err := fetchMedia(ctx, a)
	if err != nil {
		return a.apiFailure("fetching media", err)
	}
	return a.out.MediaList(items)
}

// runComments lists media and the comments of each item. A failed comments
// call is shown in place of that item's comments.
func runComments(ctx context.Context, a *app, withCounts bool) error {
	items, err := fetchMedia(ctx, a)
	if err != nil {
		return a.apiFailure("fetching media", err)
	}

	pool := enrich.NewWorkerPool(a.cfg.Analysis.Concurrency, a.log)
	entries, err := enrich.Run(ctx, pool, items, func(ctx context.Context, _ int, m instagram.Media) (report.MediaComments, error) {
		comments, err := a.client.ListComments(ctx, m.ID)
		if err != nil && ctx.Err() != nil {
			return report.MediaComments{}, ctx.Err()
		}
		return report.MediaComments{Media: m, Comments: comments, Err: err}, nil
	})
	if err != nil {
		return err
	}

	return a.out.MediaWithComments(entries, withCounts)
}
