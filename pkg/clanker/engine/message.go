// Package engine implements the conversational session engine: trigger
// detection, scope resolution, per-scope transcripts with exclusive access,
// multimodal content assembly, and completion dispatch.
//
// The engine is platform-neutral. The Discord adapter converts gateway
// events into Message values and publishes whatever the engine returns;
// the completion API is reached through the Completer interface.
package engine

// Message is a platform-neutral inbound chat message.
type Message struct {
	// ID is the platform message ID.
	ID string

	// ChannelID is the channel the message was posted in.
	ChannelID string

	// GuildID is the guild (server) ID, empty for direct messages.
	GuildID string

	// AuthorID is the platform ID of the message author.
	AuthorID string

	// AuthorName is the author's display tag, forwarded to the model
	// as the user turn's name.
	AuthorName string

	// Content is the message body text.
	Content string

	// Mentioned is true when the assistant was explicitly mentioned.
	Mentioned bool

	// FromBot is true when the author is a bot account.
	FromBot bool

	// FromWebhook is true when the message arrived via a webhook.
	FromWebhook bool

	// Attachments are the message's file attachments, in platform order.
	Attachments []Attachment

	// Embeds are the message's embeds, in platform order.
	Embeds []Embed

	// Referenced is the replied-to message when this message is a reply.
	// It is at most one level deep: a referenced message never carries
	// its own reference.
	Referenced *Message
}

// Attachment is a file attached to a message. Attachments with pixel
// dimensions are images; anything else is an arbitrary file.
type Attachment struct {
	URL    string
	Width  int
	Height int
}

// IsImage reports whether the attachment carries pixel dimensions.
func (a Attachment) IsImage() bool {
	return a.Width > 0 && a.Height > 0
}

// Embed holds the image-bearing fields of a message embed.
type Embed struct {
	ImageURL     string
	ThumbnailURL string
}
