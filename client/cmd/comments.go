package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/cache"
	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/pager"
	"github.com/quillhub/quillhub/client/transport"
)

var (
	commentImages []string
	replyTo       string
	replyAccount  string
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment commands",
	Long:  "Read and write comments on posts",
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List a post's top-level comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID := args[0]
		return showComments(cache.CommentsView(postID), func(cursor string, pageSize int) (*api.Page[api.Comment], error) {
			return api.GetPostComments(postID, cursor, pageSize)
		})
	},
}

var commentRepliesCmd = &cobra.Command{
	Use:   "replies <comment-id>",
	Short: "List a comment's replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commentID := args[0]
		return showComments(cache.RepliesView(commentID), func(cursor string, pageSize int) (*api.Page[api.Comment], error) {
			return api.GetCommentReplies(commentID, cursor, pageSize)
		})
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> [content]",
	Short: "Comment on a post, or reply with --reply-to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args[1:], " ")
		if content == "" && len(commentImages) == 0 {
			var err error
			content, err = promptString("Comment: ")
			if err != nil {
				return err
			}
		}

		links, err := uploadImages(commentImages)
		if err != nil {
			return err
		}

		var mutation *api.CommentMutation
		if replyTo != "" {
			if replyAccount == "" {
				return errors.New("--reply-to requires --reply-account")
			}
			mutation, err = api.CreateReply(args[0], replyTo, replyAccount, content, links)
		} else {
			mutation, err = api.CreateComment(args[0], content, links)
		}
		if err != nil {
			if transport.IsMessage(err, "CommentAndPictureEmpty") {
				return errors.New("comment needs content or at least one image")
			}
			return err
		}

		printSuccess("Comment posted (%d comments on post)", mutation.PostCommentCount)
		return nil
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Edit one of your comments",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := uploadImages(commentImages)
		if err != nil {
			return err
		}
		comment, err := api.UpdateComment(args[0], strings.Join(args[1:], " "), links)
		if err != nil {
			if transport.IsMessage(err, "CommentDeleted") {
				return errors.New("that comment was deleted")
			}
			return err
		}
		printSuccess("Comment updated")
		if jsonOutput() {
			return printJSON(comment)
		}
		return nil
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mutation, err := api.DeleteComment(args[0])
		if err != nil {
			return err
		}
		printSuccess("Comment deleted (%d comments on post)", mutation.PostCommentCount)
		return nil
	},
}

var commentLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := api.LikeComment(args[0])
		if err != nil {
			return err
		}
		printSuccess("Liked (%d likes)", count)
		return nil
	},
}

var commentUnlikeCmd = &cobra.Command{
	Use:   "unlike <id>",
	Short: "Remove your like from a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := api.CancelLikeComment(args[0])
		if err != nil {
			return err
		}
		printSuccess("Unliked (%d likes)", count)
		return nil
	},
}

func showComments(view string, fetch pager.FetchFunc[api.Comment]) error {
	state := cache.NewState()
	p := pager.New(state.Comments, view, config.GetInt("api.page_size"), fetch)

	for i := 0; i < feedPages; i++ {
		loaded, err := p.LoadMore()
		if err != nil {
			if transport.IsMessage(err, "NoPost") || transport.IsMessage(err, "NoComment") {
				return errors.New("not found")
			}
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
		fmt.Println("No comments yet.")
		return nil
	}
	for i := range items {
		renderComment(&items[i])
		fmt.Println()
	}
	if p.HasMore() {
		faint.Println("More comments available, rerun with a larger --pages.")
	}
	return nil
}

func init() {
	commentAddCmd.Flags().StringVar(&replyTo, "reply-to", "", "Parent comment ID to reply to")
	commentAddCmd.Flags().StringVar(&replyAccount, "reply-account", "", "Account ID the reply addresses")
	commentAddCmd.Flags().StringSliceVar(&commentImages, "image", nil, "Image file to attach (repeatable)")
	commentEditCmd.Flags().StringSliceVar(&commentImages, "image", nil, "Image file to attach (repeatable)")
	commentListCmd.Flags().IntVar(&feedPages, "pages", 1, "Number of pages to load")
	commentRepliesCmd.Flags().IntVar(&feedPages, "pages", 1, "Number of pages to load")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentRepliesCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	commentCmd.AddCommand(commentLikeCmd)
	commentCmd.AddCommand(commentUnlikeCmd)
}
