package engine

import (
	"strings"
	"unicode"
)

// TriggerConfig holds the word sets that make a plain message address the
// assistant. A message triggers a reply when its first token is a greeting
// word and its second token is a name word ("hey clanker, ...").
type TriggerConfig struct {
	// GreetingWords are accepted first tokens.
	GreetingWords []string `yaml:"greeting_words"`

	// NameWords are accepted second tokens.
	NameWords []string `yaml:"name_words"`
}

// DefaultTriggerConfig returns the shipped word sets.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		GreetingWords: []string{"btw", "hello", "hey", "hi", "oi", "ok", "okay", "so", "sup", "wtf"},
		NameWords:     []string{"bot", "clank", "clanka", "clanker", "google", "gpt", "grok", "siri"},
	}
}

// TriggerDetector decides whether an inbound message should start a
// conversation turn. It is pure: no network, no platform state.
type TriggerDetector struct {
	greetings map[string]struct{}
	names     map[string]struct{}
}

// NewTriggerDetector builds a detector from the configured word sets.
// Empty config falls back to the defaults.
func NewTriggerDetector(cfg TriggerConfig) *TriggerDetector {
	defaults := DefaultTriggerConfig()
	if len(cfg.GreetingWords) == 0 {
		cfg.GreetingWords = defaults.GreetingWords
	}
	if len(cfg.NameWords) == 0 {
		cfg.NameWords = defaults.NameWords
	}
	return &TriggerDetector{
		greetings: wordSet(cfg.GreetingWords),
		names:     wordSet(cfg.NameWords),
	}
}

// ShouldRespond reports whether a message addresses the assistant.
//
// Rules, in order: bot-authored messages without a webhook ID never
// trigger; an explicit mention always triggers; otherwise the first two
// non-empty whitespace/comma-separated tokens of the lower-cased text
// must be a greeting word followed by a name word.
func (d *TriggerDetector) ShouldRespond(text string, mentioned, fromBot, fromWebhook bool) bool {
	if fromBot && !fromWebhook {
		return false
	}
	if mentioned {
		return true
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(words) < 2 {
		return false
	}
	if _, ok := d.greetings[words[0]]; !ok {
		return false
	}
	_, ok := d.names[words[1]]
	return ok
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
