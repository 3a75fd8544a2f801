package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clankerlabs/clanker/pkg/clanker/config"
	"github.com/clankerlabs/clanker/pkg/clanker/discord"
	"github.com/clankerlabs/clanker/pkg/clanker/engine"
	"github.com/clankerlabs/clanker/pkg/clanker/openai"
)

// newServeCmd creates the `clanker serve` command that runs the bot.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and serve conversations",
		Long: `Start Clanker as a daemon: connect to the Discord gateway, listen for
messages addressed to the assistant, and reply through the configured
completion API. Stops on SIGINT/SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logger := newLogger(cfg.Logging, verbose)

	client := openai.NewClient(cfg.API, logger)
	eng := engine.New(engine.Config{
		Persona:   cfg.Persona,
		Model:     cfg.Model,
		ScopeMode: engine.ScopeMode(cfg.ScopeMode),
		Trigger:   cfg.Trigger,
	}, client, logger)

	bot := discord.New(cfg.Discord, eng, logger)
	if err := bot.Connect(); err != nil {
		return err
	}
	defer bot.Close()

	// These need the open session, so they attach after Connect.
	eng.SetOwnerLookup(bot)
	eng.SetEmojiLister(bot)

	logger.Info("clanker is running",
		"model", cfg.Model,
		"scope_mode", cfg.ScopeMode,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	return nil
}

// newLogger builds the slog logger from config, with --verbose forcing
// debug level.
func newLogger(cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
