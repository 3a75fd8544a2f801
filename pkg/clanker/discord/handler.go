package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/clankerlabs/clanker/pkg/clanker/engine"
)

// clearCommandName is the parent slash command serving the administrative
// history-clearing subcommands.
const clearCommandName = "clear"

// errNotYourReply rejects Delete button presses from anyone but the user
// the reply was addressed to.
var errNotYourReply = errors.New("Clanker did not reply to you")

// onMessageCreate converts a gateway message, gates it through the trigger
// detector, and runs a conversation turn. Failures are rendered back into
// the channel; nothing here may take the handler down.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	msg := convertMessage(s, m)
	if !b.engine.ShouldRespond(msg) {
		return
	}

	reply, err := b.engine.HandleMessage(context.Background(), msg)
	if err != nil {
		b.publishError(m, err)
		return
	}
	if err := b.publishReply(m, reply); err != nil {
		b.logger.Error("discord: sending reply failed", "msg_id", m.ID, "error", err)
	}
}

// onInteractionCreate serves the /clear command and the Delete button.
// Errors become ephemeral responses to the invoker.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		err = b.handleComponent(s, i)
	default:
		return
	}

	if err != nil {
		b.logger.Warn("discord: interaction failed", "error", err)
		if respErr := respondEphemeral(s, i, renderError(err)); respErr != nil {
			b.logger.Error("discord: interaction error response failed",
				"error", respErr, "cause", err)
		}
	}
}

// handleCommand dispatches the /clear subcommands.
func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	if data.Name != clearCommandName {
		return nil
	}
	if len(data.Options) == 0 {
		return errors.New("No subcommand present")
	}

	userID := interactionUserID(i)

	switch data.Options[0].Name {
	case "all":
		if _, err := b.engine.ClearAll(context.Background(), userID); err != nil {
			return err
		}
		return respond(s, i, "Cleared all chat histories!")
	case "history":
		if err := b.engine.ClearHistory(userID, i.GuildID); err != nil {
			return err
		}
		return respond(s, i, "Cleared your chat history!")
	}
	return nil
}

// handleComponent serves the Delete button. The button's custom ID is the
// ID of the user the reply was addressed to; only that user may retract
// the assistant's message.
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	data := i.MessageComponentData()
	if interactionUserID(i) != data.CustomID {
		return errNotYourReply
	}

	if err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID); err != nil {
		return errors.Join(errors.New("deleting reply failed"), err)
	}

	// The message is gone; a deferred update is the only ack that does
	// not try to render into it.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		b.logger.Debug("discord: ack after delete failed", "error", err)
	}
	return nil
}

// interactionUserID extracts the invoking user's ID from either a guild or
// a DM interaction.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// convertMessage maps a gateway message to the engine's inbound shape.
func convertMessage(s *discordgo.Session, m *discordgo.MessageCreate) *engine.Message {
	msg := convertBase(s, m.Message)
	if m.ReferencedMessage != nil {
		msg.Referenced = convertBase(s, m.ReferencedMessage)
	}
	return msg
}

// convertBase maps the fields shared by a message and its referenced
// message. References are not followed further than one level.
func convertBase(s *discordgo.Session, m *discordgo.Message) *engine.Message {
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}

	msg := &engine.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		GuildID:     m.GuildID,
		Content:     m.Content,
		Mentioned:   mentioned,
		FromWebhook: m.WebhookID != "",
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.String()
		msg.FromBot = m.Author.Bot
	}

	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, engine.Attachment{
			URL:    a.URL,
			Width:  a.Width,
			Height: a.Height,
		})
	}
	for _, e := range m.Embeds {
		embed := engine.Embed{}
		if e.Image != nil {
			embed.ImageURL = e.Image.URL
		}
		if e.Thumbnail != nil {
			embed.ThumbnailURL = e.Thumbnail.URL
		}
		msg.Embeds = append(msg.Embeds, embed)
	}

	return msg
}

// respond sends a plain interaction response.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// respondEphemeral sends a response visible only to the invoking user.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
