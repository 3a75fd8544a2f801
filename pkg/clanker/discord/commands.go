package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// clearCommand is the slash command definition served by handleCommand.
func clearCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        clearCommandName,
		Description: "Commands for clearing chat histories",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "all",
				Description: "Clears every conversation's history",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "history",
				Description: "Clears this conversation's history",
			},
		},
	}
}

// DeployCommands overwrites the guild's application commands with the
// /clear command. It needs only REST access; the gateway stays closed.
func DeployCommands(cfg Config) error {
	if cfg.Token == "" {
		return fmt.Errorf("discord: bot token is required")
	}
	if cfg.ApplicationID == "" {
		return fmt.Errorf("discord: application_id is required for deployment")
	}
	if cfg.GuildID == "" {
		return fmt.Errorf("discord: guild_id is required for deployment")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: creating session: %w", err)
	}

	commands := []*discordgo.ApplicationCommand{clearCommand()}
	if _, err := session.ApplicationCommandBulkOverwrite(cfg.ApplicationID, cfg.GuildID, commands); err != nil {
		return fmt.Errorf("discord: registering commands: %w", err)
	}
	return nil
}
