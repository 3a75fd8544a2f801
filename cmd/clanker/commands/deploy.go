package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clankerlabs/clanker/pkg/clanker/config"
	"github.com/clankerlabs/clanker/pkg/clanker/discord"
)

// newDeployCmd creates the `clanker deploy` command that registers the
// /clear slash command on the configured guild.
func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Register the /clear slash command on a guild",
		Long: `Overwrite the configured guild's application commands with Clanker's
/clear command (subcommands: all, history). Run once per guild, or again
after a command definition changes.`,
		RunE: runDeploy,
	}

	cmd.Flags().String("guild", "", "guild ID to deploy to (overrides config)")
	return cmd
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if guild, _ := cmd.Flags().GetString("guild"); guild != "" {
		cfg.Discord.GuildID = guild
	}

	if err := discord.DeployCommands(cfg.Discord); err != nil {
		return err
	}

	fmt.Printf("Registered /clear on guild %s\n", cfg.Discord.GuildID)
	return nil
}
