package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/models"
)

var refreshFeed bool

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the social feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if refreshFeed {
			posts, err := bv.Feed.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(posts)
		}
		return printJSON(bv.Feed.Posts())
	},
}

var postType string

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a status or goal post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := bv.Feed.CreatePost(cmd.Context(), apiclient.NewPost{
			Type:    models.PostType(postType),
			Content: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		return printJSON(post)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, err := bv.Feed.AddComment(cmd.Context(), models.ID(args[0]), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printJSON(comment)
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := bv.Feed.ToggleLike(cmd.Context(), models.ID(args[0]))
		if err != nil {
			return err
		}
		return printJSON(post)
	},
}

func init() {
	feedCmd.Flags().BoolVar(&refreshFeed, "refresh", false, "fetch the server feed before printing")
	postCmd.Flags().StringVar(&postType, "type", string(models.PostTypeStatus), "post type: status or goal")
}
