package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/clankerlabs/clanker/pkg/clanker/openai"
)

// messageLimit is Discord's per-message character cap.
const messageLimit = 2000

// emptyReplyPlaceholder stands in for a blank model reply; the messaging
// API rejects empty content.
const emptyReplyPlaceholder = "*static*"

// publishReply sends the assistant text as a threaded reply carrying the
// Delete button.
func (b *Bot) publishReply(m *discordgo.MessageCreate, text string) error {
	if strings.TrimSpace(text) == "" {
		text = emptyReplyPlaceholder
	}
	return b.sendThreaded(m, text)
}

// publishError renders a failure into the channel with the same threading
// and Delete button as a successful reply, so the user can dismiss it. If
// even that send fails, the failure is logged and swallowed; one broken
// message must not take the handler down.
func (b *Bot) publishError(m *discordgo.MessageCreate, cause error) {
	b.logger.Warn("discord: message handling failed", "msg_id", m.ID, "error", cause)
	if err := b.sendThreaded(m, renderError(cause)); err != nil {
		b.logger.Error("discord: sending failure reply failed",
			"msg_id", m.ID, "error", err, "cause", cause)
	}
}

// sendThreaded posts content as a reply to m, chunked to the message
// limit. Mentions never ping and link previews are suppressed; the Delete
// button rides on the final chunk.
func (b *Bot) sendThreaded(m *discordgo.MessageCreate, content string) error {
	chunks := splitMessage(content, messageLimit)
	for idx, chunk := range chunks {
		send := &discordgo.MessageSend{
			Content:         chunk,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
			Flags:           discordgo.MessageFlagsSuppressEmbeds,
		}
		if idx == 0 {
			send.Reference = m.Reference()
		}
		if idx == len(chunks)-1 {
			send.Components = []discordgo.MessageComponent{deleteButtonRow(m.Author.ID)}
		}
		if _, err := b.session.ChannelMessageSendComplex(m.ChannelID, send); err != nil {
			return fmt.Errorf("sending reply: %w", err)
		}
	}
	return nil
}

// deleteButtonRow builds the retraction control. The custom ID is the
// original author's user ID; the interaction handler compares it against
// whoever pressed the button.
func deleteButtonRow(authorID string) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: authorID,
				Label:    "Delete",
				Style:    discordgo.DangerButton,
			},
		},
	}
}

// renderError formats an error as a user-visible failure message. Remote
// API errors surface their own message; everything else surfaces the error
// chain text.
func renderError(err error) string {
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf(":no_entry_sign: %s!", apiErr.Message)
	case errors.Is(err, openai.ErrNoChoices):
		return ":no_entry_sign: The model returned no reply!"
	default:
		return fmt.Sprintf(":no_entry_sign: %s!", err.Error())
	}
}

// splitMessage splits text into chunks within maxLen, preferring to break
// at a newline past the halfway point.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}
		cutAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/2 {
			cutAt = idx + 1
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}
