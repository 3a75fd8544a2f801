// Package config loads Clanker configuration from a YAML file, with .env
// loading and environment-variable fallbacks for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/clankerlabs/clanker/pkg/clanker/discord"
	"github.com/clankerlabs/clanker/pkg/clanker/engine"
	"github.com/clankerlabs/clanker/pkg/clanker/openai"
)

// defaultPersona is the instruction turn installed at the head of every
// transcript. Overridable via the persona key.
const defaultPersona = `You are Clanker, a helpful and friendly AI assistant.
You are used on a Discord server related to programming.

Always respond in a concise and clear manner.
If you don't know the answer, admit it honestly.`

// Config holds the full application configuration.
type Config struct {
	// Model is the completion model identifier.
	Model string `yaml:"model"`

	// Persona is the system instruction text.
	Persona string `yaml:"persona"`

	// ScopeMode keys conversation history per "user" or per "guild".
	ScopeMode string `yaml:"scope_mode"`

	// Trigger configures the greeting/name word sets.
	Trigger engine.TriggerConfig `yaml:"trigger"`

	// API configures the completion endpoint.
	API openai.Config `yaml:"api"`

	// Discord configures the gateway adapter.
	Discord discord.Config `yaml:"discord"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the configuration defaults. The completion parameters
// mirror the deployment this assistant grew up with: a small model, a
// short reply budget, and deterministic sampling.
func Default() *Config {
	temperature := 0.0
	return &Config{
		Model:     "gpt-4.1-nano",
		Persona:   defaultPersona,
		ScopeMode: string(engine.ScopeModeUser),
		Trigger:   engine.DefaultTriggerConfig(),
		API: openai.Config{
			MaxTokens:   500,
			Temperature: &temperature,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path, overlaying the defaults. An
// empty path or a missing file yields the defaults. A .env file in the
// working directory is loaded first; existing environment variables are
// not overwritten. Secrets absent from the file resolve from the
// environment.
func Load(path string) (*Config, error) {
	// Missing .env is fine; real deployments often use plain env vars.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	resolveSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if !engine.ScopeMode(c.ScopeMode).Valid() {
		return fmt.Errorf("config: scope_mode must be %q or %q, got %q",
			engine.ScopeModeUser, engine.ScopeModeGuild, c.ScopeMode)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}

// resolveSecrets fills credentials from the environment when the file did
// not provide them.
func resolveSecrets(cfg *Config) {
	if cfg.Discord.Token == "" {
		cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	}
	if cfg.Discord.ApplicationID == "" {
		cfg.Discord.ApplicationID = os.Getenv("DISCORD_APPLICATION_ID")
	}
	if cfg.Discord.GuildID == "" {
		cfg.Discord.GuildID = os.Getenv("DISCORD_GUILD_ID")
	}
	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
}
