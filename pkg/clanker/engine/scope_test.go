package engine

import (
	"errors"
	"testing"
)

func TestResolveScope(t *testing.T) {
	tests := []struct {
		name     string
		authorID string
		guildID  string
		mode     ScopeMode
		expected Scope
		wantErr  error
	}{
		{
			name:     "user mode in guild",
			authorID: "u1", guildID: "g1", mode: ScopeModeUser,
			expected: Scope{Kind: ScopeModeUser, ID: "u1"},
		},
		{
			name:     "user mode in DM",
			authorID: "u1", mode: ScopeModeUser,
			expected: Scope{Kind: ScopeModeUser, ID: "u1"},
		},
		{
			name:     "guild mode in guild",
			authorID: "u1", guildID: "g1", mode: ScopeModeGuild,
			expected: Scope{Kind: ScopeModeGuild, ID: "g1"},
		},
		{
			name:     "guild mode in DM fails",
			authorID: "u1", mode: ScopeModeGuild,
			wantErr: ErrNotInGuild,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := ResolveScope(tt.authorID, tt.guildID, tt.mode)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveScope() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveScope() unexpected error: %v", err)
			}
			if scope != tt.expected {
				t.Errorf("ResolveScope() = %v, want %v", scope, tt.expected)
			}
		})
	}
}

func TestScopeModeValid(t *testing.T) {
	if !ScopeModeUser.Valid() || !ScopeModeGuild.Valid() {
		t.Error("expected built-in modes to be valid")
	}
	if ScopeMode("channel").Valid() {
		t.Error("expected unknown mode to be invalid")
	}
}
