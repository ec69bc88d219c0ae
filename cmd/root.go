// Package cmd provides the CLI commands for parley.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/internal/config"
	"github.com/parley-ai/parley/internal/conversation"
	"github.com/parley-ai/parley/internal/db"
	"github.com/parley-ai/parley/internal/debug"
	"github.com/parley-ai/parley/internal/message"
	"github.com/parley-ai/parley/internal/project"
	"github.com/parley-ai/parley/internal/provider"
	"github.com/parley-ai/parley/internal/pubsub"
	"github.com/parley-ai/parley/internal/session"
	"github.com/parley-ai/parley/internal/transcribe"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parley",
		Short: "Chat with AI models from your terminal",
		Long: `Parley is a chat client for conversational AI models.

It streams replies from Gemini and OpenAI backends, keeps the full
conversation history on your machine, and can group chats into projects
that carry their own system instructions. Recorded audio can be turned
into prompts via cloud transcription.

Running parley without a subcommand opens an interactive chat.`,
		RunE: runChat,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.Flags().StringP("session", "s", "", "Resume an existing session by ID")
	cmd.Flags().StringP("project", "p", "", "Start the session under a project (ID or name)")
	cmd.Flags().StringP("model", "m", "", "Model to chat with (default from config)")

	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newTranscribeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// app holds the wired services behind every command.
type app struct {
	cfg      *config.Config
	database *db.DB
	hub      *pubsub.Hub
	sessions *session.Service
	projects *project.Service
	messages *message.Service
	orch     *conversation.Orchestrator
	view     *conversation.View
}

// buildApp loads configuration, opens the history database, and wires the
// services together.
func buildApp(cmd *cobra.Command) (*app, error) {
	if debugMode, err := cmd.Flags().GetBool("debug"); err == nil && debugMode {
		logPath := filepath.Join(xdg.DataHome, "parley", "debug.log")
		if debugErr := debug.Enable(logPath); debugErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to enable debug logging: %v\n", debugErr)
		} else {
			fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	hub := pubsub.NewHub()
	messages := message.NewService(message.NewSQLiteStore(database.Conn()), hub.Message)
	sessions := session.NewService(session.NewSQLiteStore(database.Conn()), hub.Session)
	projects := project.NewService(project.NewSQLiteStore(database.Conn()), hub.Project)
	registry := buildRegistry(cfg)

	return &app{
		cfg:      cfg,
		database: database,
		hub:      hub,
		sessions: sessions,
		projects: projects,
		messages: messages,
		orch:     conversation.NewOrchestrator(sessions, projects, messages, registry, hub),
		view:     conversation.NewView(messages, hub),
	}, nil
}

func (a *app) close() {
	a.hub.Shutdown()
	if err := a.database.Close(); err != nil {
		debug.Error("app", err, "closing database")
	}
	debug.Disable()
}

// buildRegistry routes model names to backends: "gpt" models go to OpenAI,
// everything else defaults to Gemini.
func buildRegistry(cfg *config.Config) *provider.Registry {
	openaiCfg := cfg.Provider("openai")
	geminiCfg := cfg.Provider("gemini")

	registry := provider.NewRegistry()
	registry.Register("gpt", func() provider.Client {
		var opts []provider.OpenAIOption
		if openaiCfg.BaseURL != "" {
			opts = append(opts, provider.WithOpenAIBaseURL(openaiCfg.BaseURL))
		}
		return provider.NewOpenAI(openaiCfg.APIKey, opts...)
	})
	registry.SetDefault(func() provider.Client {
		var opts []provider.GeminiOption
		if geminiCfg.BaseURL != "" {
			opts = append(opts, provider.WithGeminiBaseURL(geminiCfg.BaseURL))
		}
		return provider.NewGemini(geminiCfg.APIKey, opts...)
	})

	return registry
}

// newTranscriber builds the voice-to-text client from config. The OpenAI
// key covers transcription as well.
func newTranscriber(cfg *config.Config) *transcribe.Client {
	var opts []transcribe.Option
	openaiCfg := cfg.Provider("openai")
	if openaiCfg.BaseURL != "" {
		opts = append(opts, transcribe.WithBaseURL(openaiCfg.BaseURL))
	}
	if cfg.TranscriptionModel != "" {
		opts = append(opts, transcribe.WithModel(cfg.TranscriptionModel))
	}
	return transcribe.New(openaiCfg.APIKey, opts...)
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
