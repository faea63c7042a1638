package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/cache"
	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/pager"
)

var feedPages int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "View the home feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showPosts(cache.FeedView, api.GetFeed)
	},
}

var feedMeCmd = &cobra.Command{
	Use:   "me",
	Short: "View your own posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showPosts(cache.MyPostsView, api.GetMyPosts)
	},
}

var feedUserCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "View an account's posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		return showPosts(cache.AuthorView(username), func(cursor string, pageSize int) (*api.Page[api.Post], error) {
			return api.GetPostsByUsername(username, cursor, pageSize)
		})
	},
}

// showPosts pages posts through the cache and renders them in order
func showPosts(view string, fetch pager.FetchFunc[api.Post]) error {
	state := cache.NewState()
	p := pager.New(state.Posts, view, config.GetInt("api.page_size"), fetch)

	for i := 0; i < feedPages; i++ {
		loaded, err := p.LoadMore()
		if err != nil {
			return err
		}
		if !loaded {
			break
		}
	}

	items := p.Items()
	if jsonOutput() {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No posts yet.")
		return nil
	}
	for i := range items {
		renderPost(&items[i])
		fmt.Println()
	}
	if p.HasMore() {
		faint.Println("More posts available, rerun with a larger --pages.")
	}
	return nil
}

func init() {
	feedCmd.PersistentFlags().IntVar(&feedPages, "pages", 1, "Number of pages to load")

	feedCmd.AddCommand(feedMeCmd)
	feedCmd.AddCommand(feedUserCmd)
}
