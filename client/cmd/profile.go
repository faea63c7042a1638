package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/transport"
)

var (
	profileName     string
	profileBio      string
	profileUsername string
	profileLanguage string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile commands",
	Long:  "View and manage account profiles",
}

var profileMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your own profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := api.GetMyProfile()
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(profile)
		}
		renderProfile(profile)
		return nil
	},
}

var profileViewCmd = &cobra.Command{
	Use:   "view <username>",
	Short: "Show another account's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := api.GetProfileByUsername(args[0])
		if err != nil {
			if transport.IsMessage(err, "NoAccount") {
				return fmt.Errorf("no account named %q", args[0])
			}
			return err
		}
		if jsonOutput() {
			return printJSON(profile)
		}
		renderProfile(profile)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		updates := map[string]interface{}{}
		if cmd.Flags().Changed("name") {
			updates["name"] = profileName
		}
		if cmd.Flags().Changed("bio") {
			updates["bio"] = profileBio
		}
		if cmd.Flags().Changed("username") {
			updates["username"] = profileUsername
		}
		if cmd.Flags().Changed("language") {
			updates["language"] = profileLanguage
		}
		if len(updates) == 0 {
			return errors.New("nothing to update, pass --name, --bio, --username or --language")
		}

		profile, err := api.UpdateProfile(updates)
		if err != nil {
			if transport.IsMessage(err, "UsernameExists") {
				return fmt.Errorf("username %q is already taken", profileUsername)
			}
			return err
		}
		printSuccess("Profile updated")
		if jsonOutput() {
			return printJSON(profile)
		}
		renderProfile(profile)
		return nil
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar <image-file>",
	Short: "Upload and set a new avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := api.UploadPictures(args[:1])
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return errors.New("upload returned no link")
		}

		profile, err := api.ChangeAvatar(links[0])
		if err != nil {
			return err
		}
		printSuccess("Avatar updated: %s", profile.AvatarLink)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "self-remove",
	Short: "Schedule your account for removal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := promptConfirm("Schedule this account for removal? Logging in again cancels it.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := api.SelfRemove(); err != nil {
			return err
		}
		printSuccess("Account scheduled for removal. Login again to cancel.")
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := api.GetProfileByUsername(args[0])
		if err != nil {
			return err
		}
		count, err := api.Follow(profile.ID)
		if err != nil {
			return err
		}
		printSuccess("Following @%s (%d followers)", profile.Username, count)
		return nil
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <username>",
	Short: "Unfollow an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := api.GetProfileByUsername(args[0])
		if err != nil {
			return err
		}
		count, err := api.Unfollow(profile.ID)
		if err != nil {
			return err
		}
		printSuccess("Unfollowed @%s (%d followers)", profile.Username, count)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search accounts by name or username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := api.SearchAccounts(args[0], "", config.GetInt("api.page_size"))
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(page)
		}
		if len(page.Items) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}
		for i := range page.Items {
			renderProfile(&page.Items[i])
			fmt.Println()
		}
		if page.HasMore {
			faint.Println("More results available.")
		}
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileUpdateCmd.Flags().StringVar(&profileBio, "bio", "", "Profile bio")
	profileUpdateCmd.Flags().StringVar(&profileUsername, "username", "", "New username")
	profileUpdateCmd.Flags().StringVar(&profileLanguage, "language", "", "Preferred language")

	profileCmd.AddCommand(profileMeCmd)
	profileCmd.AddCommand(profileViewCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileAvatarCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}
