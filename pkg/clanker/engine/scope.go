package engine

import "errors"

// ScopeMode selects how conversation transcripts are keyed. It is a
// deployment-time choice, not a per-message one.
type ScopeMode string

const (
	// ScopeModeUser keeps one transcript per user, shared across channels.
	ScopeModeUser ScopeMode = "user"

	// ScopeModeGuild keeps one transcript per guild (server). Messages
	// and commands outside a guild cannot resolve a scope in this mode.
	ScopeModeGuild ScopeMode = "guild"
)

// Valid reports whether the mode is one of the recognized values.
func (m ScopeMode) Valid() bool {
	return m == ScopeModeUser || m == ScopeModeGuild
}

// ErrNotInGuild is returned when guild-scoped deployment receives a
// message or command without a guild.
var ErrNotInGuild = errors.New("This only works in a server")

// Scope identifies a transcript owner. It is immutable once derived and
// comparable, so it serves directly as the store's map key.
type Scope struct {
	Kind ScopeMode
	ID   string
}

// String returns "kind:id" for logging.
func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID
}

// ResolveScope derives the conversation scope from the author and guild of
// an event. In user mode every event resolves to the author; in guild mode
// an event without a guild fails with ErrNotInGuild.
func ResolveScope(authorID, guildID string, mode ScopeMode) (Scope, error) {
	if mode == ScopeModeGuild {
		if guildID == "" {
			return Scope{}, ErrNotInGuild
		}
		return Scope{Kind: ScopeModeGuild, ID: guildID}, nil
	}
	return Scope{Kind: ScopeModeUser, ID: authorID}, nil
}
