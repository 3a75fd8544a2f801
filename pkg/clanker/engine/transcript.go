package engine

// Role tags a transcript turn.
type Role string

const (
	// RoleDeveloper is the instruction role (persona prompt, reply context).
	RoleDeveloper Role = "developer"

	// RoleUser is a message authored by a human.
	RoleUser Role = "user"

	// RoleAssistant is a reply produced by the model.
	RoleAssistant Role = "assistant"
)

// ContentBlock is one atomic piece of a user turn: either text or an image
// reference. Exactly one field is set.
type ContentBlock struct {
	Text     string
	ImageURL string
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Text: text}
}

// ImageBlock builds an image-reference content block.
func ImageBlock(url string) ContentBlock {
	return ContentBlock{ImageURL: url}
}

// IsImage reports whether the block is an image reference.
func (b ContentBlock) IsImage() bool {
	return b.ImageURL != ""
}

// Turn is one role-tagged entry in a transcript. Developer and assistant
// turns carry plain text; user turns carry an ordered list of content
// blocks plus the author's display tag.
type Turn struct {
	Role   Role
	Text   string
	Blocks []ContentBlock
	Name   string
}

// DeveloperTurn builds an instruction turn.
func DeveloperTurn(text string) Turn {
	return Turn{Role: RoleDeveloper, Text: text}
}

// AssistantTurn builds a model-reply turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}

// UserTurn builds a user turn. An empty block list is valid: a message may
// consist solely of non-image attachments.
func UserTurn(name string, blocks []ContentBlock) Turn {
	return Turn{Role: RoleUser, Name: name, Blocks: blocks}
}

// Transcript is the ordered conversation history for one scope. The first
// turn is always the developer persona turn, installed at creation and
// never removed; turns are appended only and never reordered. Access is
// serialized by the Store's per-scope slot, so Transcript itself carries
// no lock.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates a transcript seeded with the persona instruction.
func NewTranscript(persona string) *Transcript {
	return &Transcript{turns: []Turn{DeveloperTurn(persona)}}
}

// Append adds turns to the end of the transcript.
func (t *Transcript) Append(turns ...Turn) {
	t.turns = append(t.turns, turns...)
}

// Turns returns a copy of the transcript's turns.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}
