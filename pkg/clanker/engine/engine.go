package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clankerlabs/clanker/pkg/clanker/openai"
)

// ErrNotAuthorized is returned when a non-owner invokes an owner-only
// operation.
var ErrNotAuthorized = errors.New("You are not the application owner")

// Completer dispatches a chat completion request and returns the assistant
// text. Implementations classify failures; see the openai package.
type Completer interface {
	ChatComplete(ctx context.Context, req *openai.ChatRequest) (string, error)
}

// OwnerLookup resolves the application owner's user ID from the platform.
type OwnerLookup interface {
	OwnerID(ctx context.Context) (string, error)
}

// EmojiLister lists the custom emoji names available in a guild.
type EmojiLister interface {
	ListEmojis(ctx context.Context, guildID string) ([]string, error)
}

// Config holds the engine-level settings.
type Config struct {
	// Persona is the instruction text installed as every transcript's
	// first turn.
	Persona string

	// Model is the completion model identifier.
	Model string

	// ScopeMode selects per-user or per-guild transcripts.
	ScopeMode ScopeMode

	// Trigger configures the greeting/name word sets.
	Trigger TriggerConfig
}

// Engine wires the trigger detector, the session store, and the completion
// client into one conversation loop.
type Engine struct {
	cfg     Config
	store   *Store
	trigger *TriggerDetector
	client  Completer
	emojis  EmojiLister
	owner   OwnerLookup
	logger  *slog.Logger
}

// New creates an engine. The emoji and owner collaborators are optional
// and attached later, once the platform session exists.
func New(cfg Config, client Completer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScopeMode == "" {
		cfg.ScopeMode = ScopeModeUser
	}
	return &Engine{
		cfg:     cfg,
		store:   NewStore(logger),
		trigger: NewTriggerDetector(cfg.Trigger),
		client:  client,
		logger:  logger.With("component", "engine"),
	}
}

// SetEmojiLister attaches the guild emoji collaborator used to enrich the
// persona turn at transcript creation.
func (e *Engine) SetEmojiLister(l EmojiLister) { e.emojis = l }

// SetOwnerLookup attaches the owner-lookup collaborator gating ClearAll.
func (e *Engine) SetOwnerLookup(l OwnerLookup) { e.owner = l }

// ShouldRespond reports whether the message addresses the assistant.
func (e *Engine) ShouldRespond(msg *Message) bool {
	return e.trigger.ShouldRespond(msg.Content, msg.Mentioned, msg.FromBot, msg.FromWebhook)
}

// HandleMessage runs one conversation turn: resolve the scope, take its
// slot, build the reply-context and user turns, dispatch the completion,
// and commit both sides of the exchange. On any failure the transcript is
// left exactly as it was, so a retry re-sends the same state.
func (e *Engine) HandleMessage(ctx context.Context, msg *Message) (string, error) {
	scope, err := ResolveScope(msg.AuthorID, msg.GuildID, e.cfg.ScopeMode)
	if err != nil {
		return "", err
	}

	log := e.logger.With("request_id", uuid.NewString(), "scope", scope.String())

	var reply string
	err = e.store.WithScope(ctx, scope,
		func() *Transcript { return e.newTranscript(ctx, scope) },
		func(t *Transcript) error {
			var newTurns []Turn
			if msg.Referenced != nil {
				newTurns = append(newTurns, BuildReplyContext(msg.Referenced)...)
			}
			newTurns = append(newTurns, BuildUserTurn(msg))

			req := buildRequest(e.cfg.Model, t.Turns(), newTurns)
			log.Debug("dispatching completion", "messages", len(req.Messages))

			start := time.Now()
			text, err := e.client.ChatComplete(ctx, req)
			if err != nil {
				log.Warn("completion failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds(),
				)
				return err
			}

			t.Append(newTurns...)
			t.Append(AssistantTurn(text))
			log.Info("completion done",
				"duration_ms", time.Since(start).Milliseconds(),
				"turns", t.Len(),
				"reply_len", len(text),
			)

			reply = text
			return nil
		})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// ClearHistory removes the transcript for the scope the caller is in.
func (e *Engine) ClearHistory(authorID, guildID string) error {
	scope, err := ResolveScope(authorID, guildID, e.cfg.ScopeMode)
	if err != nil {
		return err
	}
	e.store.Clear(scope)
	return nil
}

// ClearAll removes every transcript. Only the application owner may invoke
// it; everyone else gets ErrNotAuthorized.
func (e *Engine) ClearAll(ctx context.Context, callerID string) (int, error) {
	if e.owner == nil {
		return 0, ErrNotAuthorized
	}
	ownerID, err := e.owner.OwnerID(ctx)
	if err != nil {
		return 0, fmt.Errorf("looking up application owner: %w", err)
	}
	if callerID != ownerID {
		return 0, ErrNotAuthorized
	}
	return e.store.ClearAll(), nil
}

// newTranscript builds the initial transcript for a scope. Guild scopes
// get the persona extended with the guild's custom emoji names; a failed
// emoji lookup degrades to the plain persona.
func (e *Engine) newTranscript(ctx context.Context, scope Scope) *Transcript {
	persona := e.cfg.Persona
	if e.emojis != nil && scope.Kind == ScopeModeGuild {
		names, err := e.emojis.ListEmojis(ctx, scope.ID)
		if err != nil {
			e.logger.Warn("emoji warm-up failed", "scope", scope.String(), "error", err)
		} else if len(names) > 0 {
			persona += "\n\nCustom emoji available on this server: " +
				strings.Join(names, ", ") + ". Write them as :name: to use them."
		}
	}
	return NewTranscript(persona)
}

// buildRequest flattens the transcript snapshot plus the new turns into
// the wire shape. The transcript itself is not touched until the response
// is confirmed.
func buildRequest(model string, history, newTurns []Turn) *openai.ChatRequest {
	messages := make([]openai.Message, 0, len(history)+len(newTurns))
	for _, turn := range history {
		messages = append(messages, wireMessage(turn))
	}
	for _, turn := range newTurns {
		messages = append(messages, wireMessage(turn))
	}
	return &openai.ChatRequest{Model: model, Messages: messages}
}

// wireMessage converts one turn to the wire shape. User turns become a
// content-part list (empty is valid); other roles carry plain text.
func wireMessage(turn Turn) openai.Message {
	if turn.Role != RoleUser {
		return openai.Message{Role: string(turn.Role), Content: turn.Text}
	}

	parts := make([]openai.ContentPart, 0, len(turn.Blocks))
	for _, b := range turn.Blocks {
		if b.IsImage() {
			parts = append(parts, openai.ImagePart(b.ImageURL))
		} else {
			parts = append(parts, openai.TextPart(b.Text))
		}
	}
	return openai.Message{Role: string(turn.Role), Content: parts, Name: turn.Name}
}
