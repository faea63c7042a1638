package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/credentials"
	"github.com/quillhub/quillhub/client/logger"
	"github.com/quillhub/quillhub/client/transport"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill CLI - microblogging from the terminal",
	Long: `Quill CLI is a command-line interface for the Quill
microblogging platform. Post, follow, and keep up with your
feed directly from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Init(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(verbose)

		if outputFmt != "" {
			config.SetString("output.format", outputFmt)
		}

		transport.Init()

		// Carry the stored session into the transport, if any
		creds, err := credentials.Load()
		if err != nil {
			logger.Warn("failed to load credentials", "error", err)
		} else if creds != nil {
			transport.SetAuthToken(creds.AccessToken)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/quillhub/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
}
