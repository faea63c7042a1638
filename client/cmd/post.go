package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/transport"
)

var postImages []string

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post commands",
	Long:  "Create and manage posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create [content]",
	Short: "Create a new post",
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		if content == "" && len(postImages) == 0 {
			var err error
			content, err = promptString("Post content: ")
			if err != nil {
				return err
			}
		}

		links, err := uploadImages(postImages)
		if err != nil {
			return err
		}

		post, err := api.CreatePost(content, links)
		if err != nil {
			if transport.IsMessage(err, "PostAndPictureEmpty") {
				return errors.New("post needs content or at least one image")
			}
			return err
		}
		printSuccess("Posted: %s", post.Link)
		return nil
	},
}

var postViewCmd = &cobra.Command{
	Use:   "view <link>",
	Short: "Show a post by its link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := api.GetPostByLink(args[0])
		if err != nil {
			if transport.IsMessage(err, "NoPost") {
				return fmt.Errorf("no post at %q", args[0])
			}
			return err
		}
		if jsonOutput() {
			return printJSON(post)
		}
		renderPost(post)
		return nil
	},
}

var postUpdateCmd = &cobra.Command{
	Use:   "update <id> <content>",
	Short: "Edit one of your posts",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := uploadImages(postImages)
		if err != nil {
			return err
		}

		post, err := api.UpdatePost(args[0], strings.Join(args[1:], " "), links)
		if err != nil {
			return err
		}
		printSuccess("Post updated: %s", post.Link)
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.DeletePost(args[0]); err != nil {
			return err
		}
		printSuccess("Post deleted")
		return nil
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := api.LikePost(args[0])
		if err != nil {
			return err
		}
		printSuccess("Liked (%d likes)", count)
		return nil
	},
}

var postUnlikeCmd = &cobra.Command{
	Use:   "unlike <id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := api.CancelLikePost(args[0])
		if err != nil {
			return err
		}
		printSuccess("Unliked (%d likes)", count)
		return nil
	},
}

func uploadImages(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	links, err := api.UploadPictures(paths)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	return links, nil
}

func init() {
	postCreateCmd.Flags().StringSliceVar(&postImages, "image", nil, "Image file to attach (repeatable)")
	postUpdateCmd.Flags().StringSliceVar(&postImages, "image", nil, "Image file to attach (repeatable)")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postViewCmd)
	postCmd.AddCommand(postUpdateCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postLikeCmd)
	postCmd.AddCommand(postUnlikeCmd)
}
