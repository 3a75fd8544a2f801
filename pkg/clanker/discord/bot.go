// Package discord adapts the session engine to the Discord gateway using
// discordgo: it filters and converts inbound messages, publishes replies
// with a Delete button, and serves the /clear command and the button's
// interaction events.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/clankerlabs/clanker/pkg/clanker/engine"
)

// Config holds the Discord adapter configuration.
type Config struct {
	// Token is the bot token.
	Token string `yaml:"token"`

	// ApplicationID is the application ID, needed for command deployment.
	ApplicationID string `yaml:"application_id"`

	// GuildID is the guild the /clear command is deployed to.
	GuildID string `yaml:"guild_id"`

	// Activity is the custom status text shown under the bot's name.
	Activity string `yaml:"activity"`
}

// Bot is the Discord-facing side of the assistant.
type Bot struct {
	cfg     Config
	engine  *engine.Engine
	logger  *slog.Logger
	session *discordgo.Session
}

// New creates a Bot. Call Connect to open the gateway.
func New(cfg Config, eng *engine.Engine, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		cfg:    cfg,
		engine: eng,
		logger: logger.With("component", "discord"),
	}
}

// Connect opens the gateway WebSocket connection and registers handlers.
func (b *Bot) Connect() error {
	if b.cfg.Token == "" {
		return fmt.Errorf("discord: bot token is required")
	}

	session, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: creating session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: opening gateway: %w", err)
	}

	b.session = session
	return nil
}

// Close shuts the gateway connection down.
func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

// onReady logs the connected identity and sets the custom activity.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord: connected", "bot", r.User.Username, "id", r.User.ID)

	if b.cfg.Activity != "" {
		if err := s.UpdateCustomStatus(b.cfg.Activity); err != nil {
			b.logger.Warn("discord: setting activity failed", "error", err)
		}
	}
}

// OwnerID returns the application owner's user ID. Implements
// engine.OwnerLookup.
func (b *Bot) OwnerID(ctx context.Context) (string, error) {
	app, err := b.session.Application("@me")
	if err != nil {
		return "", fmt.Errorf("fetching application info: %w", err)
	}
	if app.Owner == nil {
		return "", errors.New("application has no owner")
	}
	return app.Owner.ID, nil
}

// ListEmojis returns the guild's custom emoji names. Implements
// engine.EmojiLister.
func (b *Bot) ListEmojis(ctx context.Context, guildID string) ([]string, error) {
	emojis, err := b.session.GuildEmojis(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing guild emojis: %w", err)
	}
	names := make([]string, 0, len(emojis))
	for _, e := range emojis {
		names = append(names, e.Name)
	}
	return names, nil
}
