package engine

// replyContextPrompt precedes the replied-to message so the model reads it
// as context rather than as a message to answer.
const replyContextPrompt = "Use the following message as context for the message after it."

// BuildUserTurn converts an inbound message into a user turn. Block order:
// the body text first when non-empty, then images from attachments that
// carry pixel dimensions, then images from embed image and thumbnail
// fields. A message with no text and no images yields an empty block list,
// which is a valid turn.
func BuildUserTurn(msg *Message) Turn {
	var blocks []ContentBlock

	if msg.Content != "" {
		blocks = append(blocks, TextBlock(msg.Content))
	}
	for _, a := range msg.Attachments {
		if a.IsImage() {
			blocks = append(blocks, ImageBlock(a.URL))
		}
	}
	for _, e := range msg.Embeds {
		if e.ImageURL != "" {
			blocks = append(blocks, ImageBlock(e.ImageURL))
		}
		if e.ThumbnailURL != "" {
			blocks = append(blocks, ImageBlock(e.ThumbnailURL))
		}
	}

	return UserTurn(msg.AuthorName, blocks)
}

// BuildReplyContext converts a replied-to message into a context pair: an
// instruction turn followed by the parsed content of the replied-to
// message. The pair is appended before the triggering message's own turn.
func BuildReplyContext(ref *Message) []Turn {
	return []Turn{DeveloperTurn(replyContextPrompt), BuildUserTurn(ref)}
}
