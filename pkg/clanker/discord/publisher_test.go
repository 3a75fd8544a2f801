package discord

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/clankerlabs/clanker/pkg/clanker/openai"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		expected []string
	}{
		{
			name:     "short text untouched",
			text:     "hello",
			maxLen:   10,
			expected: []string{"hello"},
		},
		{
			name:     "exact limit untouched",
			text:     "0123456789",
			maxLen:   10,
			expected: []string{"0123456789"},
		},
		{
			name:     "hard split without newline",
			text:     "aaaaabbbbbcc",
			maxLen:   10,
			expected: []string{"aaaaabbbbb", "cc"},
		},
		{
			name:     "prefers newline past the midpoint",
			text:     "aaaaaaa\nbbbbbbbbbb",
			maxLen:   10,
			expected: []string{"aaaaaaa\n", "bbbbbbbbbb"},
		},
		{
			name:     "ignores newline before the midpoint",
			text:     "aa\nbbbbbbbcccccc",
			maxLen:   10,
			expected: []string{"aa\nbbbbbbb", "cccccc"},
		},
		{
			name:     "empty text",
			text:     "",
			maxLen:   10,
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.maxLen)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitMessage() = %q, want %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplitMessageReassembles(t *testing.T) {
	text := strings.Repeat("some words\nand a line break here ", 300)

	chunks := splitMessage(text, messageLimit)
	for i, chunk := range chunks {
		if len(chunk) > messageLimit {
			t.Errorf("chunk %d has %d characters, exceeds limit", i, len(chunk))
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("joined chunks differ from the original text")
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "remote API error surfaces its message",
			err:      &openai.APIError{StatusCode: 429, Message: "Rate limit reached"},
			expected: ":no_entry_sign: Rate limit reached!",
		},
		{
			name:     "wrapped API error still surfaces its message",
			err:      fmt.Errorf("running conversation: %w", &openai.APIError{Message: "Bad model"}),
			expected: ":no_entry_sign: Bad model!",
		},
		{
			name:     "empty choice list",
			err:      openai.ErrNoChoices,
			expected: ":no_entry_sign: The model returned no reply!",
		},
		{
			name:     "plain error",
			err:      errors.New("You are not the application owner"),
			expected: ":no_entry_sign: You are not the application owner!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderError(tt.err); got != tt.expected {
				t.Errorf("renderError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDeleteButtonRowCarriesAuthorID(t *testing.T) {
	row, ok := deleteButtonRow("user-123").(discordgo.ActionsRow)
	if !ok {
		t.Fatal("deleteButtonRow() did not return an actions row")
	}
	if len(row.Components) != 1 {
		t.Fatalf("actions row has %d components, want 1", len(row.Components))
	}
	button, ok := row.Components[0].(discordgo.Button)
	if !ok {
		t.Fatal("actions row component is not a button")
	}
	if button.CustomID != "user-123" {
		t.Errorf("button custom ID = %q, want the addressee's user ID", button.CustomID)
	}
	if button.Label != "Delete" || button.Style != discordgo.DangerButton {
		t.Errorf("button = %+v, want a danger-styled Delete button", button)
	}
}
