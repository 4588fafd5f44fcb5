package main

import (
	"context"
	"flag"
	"fmt"

	"roseglass/internal/backend"
	anthropicbackend "roseglass/internal/backend/anthropic"
	geminibackend "roseglass/internal/backend/gemini"
	openaibackend "roseglass/internal/backend/openai"
	"roseglass/internal/catalog"
	"roseglass/internal/config"
	"roseglass/internal/logger"
	"roseglass/internal/prompt"
	"roseglass/internal/shell"
	"roseglass/internal/stream"
	"roseglass/internal/theme"
	"roseglass/internal/tui"
	"roseglass/internal/voice"
)

const version = "0.1.0"

var log = logger.Named("main")

func main() {
	logger.Configure()

	var overrides stringSlice
	cfgPath := flag.String("config", "", "path to config.toml (default ~/.roseglass/config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Var(&overrides, "c", "override a config key, e.g. -c backend=openai (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Println("roseglass " + version)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Stderr belongs to the TUI; logs go to a file.
	if logFile, path, err := logger.SetupFile(cfg.LogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
		log.WithField("path", path).Info("logging to file")
	}

	themes := theme.NewSet()
	themeID := cfg.Theme
	if !themes.Has(themeID) {
		log.Warnf("unknown theme %q, using default", themeID)
		themeID = theme.Hacker
	}

	apps := catalog.Default()
	client := buildModelClient(cfg)
	recognizer := tui.NewTypedRecognizer()

	orch := shell.New(shell.Options{
		Catalog:          apps,
		Composer:         prompt.NewComposer(apps),
		Assembler:        stream.NewAssembler(client),
		Interpreter:      voice.NewInterpreter(client, apps),
		Recognizer:       recognizer,
		Themes:           themes,
		ThemeID:          themeID,
		MaxHistoryLength: cfg.MaxHistoryLength,
		Statefulness:     cfg.Statefulness,
		GlassIntensity:   cfg.GlassIntensity,
		Version:          version,
	})
	orch.Start(context.Background())
	defer orch.Close()

	if err := tui.Run(tui.Options{
		Shell:      orch,
		Recognizer: recognizer,
		Catalog:    apps,
		Version:    version,
	}); err != nil {
		log.Fatalf("program exit: %v", err)
	}
}

// buildModelClient constructs the configured backend. A missing credential
// is not fatal: the shell starts and renders the configuration notice on
// every generation instead.
func buildModelClient(cfg config.Config) backend.ModelClient {
	if cfg.Credential() == "" {
		log.Warnf("no credential for backend %q; generation disabled", cfg.Backend)
		return nil
	}
	switch cfg.Backend {
	case config.BackendOpenAI:
		client, err := openaibackend.New(openaibackend.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Warnf("openai backend unavailable: %v", err)
			return nil
		}
		return client
	case config.BackendAnthropic:
		client, err := anthropicbackend.New(anthropicbackend.Options{
			Token:   cfg.AnthropicToken,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Warnf("anthropic backend unavailable: %v", err)
			return nil
		}
		return client
	default:
		client, err := geminibackend.New(context.Background(), geminibackend.Options{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.Model,
		})
		if err != nil {
			log.Warnf("gemini backend unavailable: %v", err)
			return nil
		}
		return client
	}
}
