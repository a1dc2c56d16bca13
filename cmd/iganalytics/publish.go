package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"iganalytics/pkg/instagram"
)

var (
	imageURL string
	caption  string
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a photo post",
	Long: `Publish a photo post in two steps: a media container is created from
--image-url, then the container is published. The image must be reachable
by Instagram at a public URL.`,
	Example: `  iganalytics publish --image-url https://example.com/photo.jpg --caption "Hello"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		return runPublish(cmd.Context(), a, imageURL, caption)
	},
}

// commentCmd represents the comment command
var commentCmd = &cobra.Command{
	Use:     "comment MEDIA_ID TEXT",
	Short:   "Post a comment on a media object",
	Example: `  iganalytics comment 17895695668004550 "Thanks for watching!"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		return runComment(cmd.Context(), a, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(commentCmd)

	publishCmd.Flags().StringVar(&imageURL, "image-url", "", "public URL of the image (required)")
	publishCmd.Flags().StringVar(&caption, "caption", "", "post caption")
	_ = publishCmd.MarkFlagRequired("image-url")
}

func runPublish(ctx context.Context, a *app, imageURL, caption string) error {
	if imageURL == "" {
		return fmt.Errorf("an image URL is required")
	}

	container, published, err := a.client.Publish(ctx, imageURL, caption)
	if err != nil {
		if errors.Is(err, instagram.ErrContainerFailed) {
			return a.apiFailure("creating media container", err)
		}
		if perr := a.out.ContainerCreated(container); perr != nil {
			return perr
		}
		return a.apiFailure("publishing media", err)
	}

	return a.out.Published(container, published)
}

func runComment(ctx context.Context, a *app, mediaID, text string) error {
	if text == "" {
		return fmt.Errorf("comment text cannot be empty")
	}

	posted, err := a.client.PostComment(ctx, mediaID, text)
	if err != nil {
		return a.apiFailure("posting comment", err)
	}
	return a.out.CommentPosted(posted)
}
