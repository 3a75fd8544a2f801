// Package commands implements the Clanker CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clanker",
		Short: "Clanker - a chat-triggered AI assistant for Discord",
		Long: `Clanker listens for messages addressed to it ("hey clanker, ..."),
keeps a running conversation per user or per server, and answers through
an OpenAI-compatible completion API.

Examples:
  clanker serve
  clanker serve --config ./clanker.yaml
  clanker deploy`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newDeployCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
