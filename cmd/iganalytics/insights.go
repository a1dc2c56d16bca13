package main

import (
	"context"

	"github.com/spf13/cobra"

	"iganalytics/pkg/instagram"
)

var metrics []string

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights MEDIA_ID",
	Short: "Show the insights of one media object",
	Long: `Show insight metrics of one media object as "name: value" lines.

Metrics the API does not return for the media type are left out.`,
	Example: `  # Default metrics
  iganalytics insights 17895695668004550

  # Reel watch time
  iganalytics insights 17895695668004550 --metric ig_reels_avg_watch_time --metric views`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		return runInsights(cmd.Context(), a, args[0], metrics)
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().StringSliceVarP(&metrics, "metric", "m", instagram.DefaultInsightMetrics, "metric to request (repeatable)")
}

func runInsights(ctx context.Context, a *app, mediaID string, requested []string) error {
	if len(requested) == 0 {
		requested = instagram.DefaultInsightMetrics
	}

	set, err := a.client.GetInsights(ctx, mediaID, requested)
	if err != nil {
		return a.apiFailure("fetching insights", err)
	}
	return a.out.Insights(set, requested)
}
