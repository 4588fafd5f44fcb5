// Package config loads the startup configuration. Runtime-adjustable
// settings (history bound, statefulness, theme, intensity) are seeded from
// here and then owned by the shell; they are not persisted back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"roseglass/internal/history"
	"roseglass/internal/theme"
)

// Supported backend providers.
const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

const (
	// GlassMin and GlassMax bound the glass-effect intensity setting.
	GlassMin = 0
	GlassMax = 20

	defaultGlassIntensity = 10
)

// Config is the only persisted config file schema.
type Config struct {
	Backend string `toml:"backend"`
	Model   string `toml:"model"`

	GeminiAPIKey     string `toml:"gemini_api_key"`
	OpenAIAPIKey     string `toml:"openai_api_key"`
	OpenAIBaseURL    string `toml:"openai_base_url"`
	AnthropicToken   string `toml:"anthropic_token"`
	AnthropicBaseURL string `toml:"anthropic_base_url"`

	Theme            string `toml:"theme"`
	MaxHistoryLength int    `toml:"max_history_length"`
	Statefulness     bool   `toml:"statefulness"`
	GlassIntensity   int    `toml:"glass_intensity"`

	LogPath string `toml:"log_path"`

	Source string `toml:"-"`
}

func Default() Config {
	return Config{
		Backend:          BackendGemini,
		Theme:            theme.Hacker,
		MaxHistoryLength: history.DefaultLength,
		Statefulness:     true,
		GlassIntensity:   defaultGlassIntensity,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".roseglass", "config.toml")
}

// Load reads path (or the default path), then applies environment
// overrides. A missing file is not an error; defaults plus environment
// apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	for _, e := range []struct {
		name string
		dst  *string
	}{
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"OPENAI_API_KEY", &cfg.OpenAIAPIKey},
		{"OPENAI_BASE_URL", &cfg.OpenAIBaseURL},
		{"ANTHROPIC_AUTH_TOKEN", &cfg.AnthropicToken},
		{"ANTHROPIC_BASE_URL", &cfg.AnthropicBaseURL},
	} {
		if val := strings.TrimSpace(os.Getenv(e.name)); val != "" {
			*e.dst = val
		}
	}
	return cfg
}

// Validate rejects values the shell could not start with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendGemini, BackendOpenAI, BackendAnthropic:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendGemini, BackendOpenAI, BackendAnthropic)
	}
	if c.MaxHistoryLength < history.MinLength || c.MaxHistoryLength > history.MaxLength {
		return fmt.Errorf("max_history_length must be between %d and %d", history.MinLength, history.MaxLength)
	}
	if c.GlassIntensity < GlassMin || c.GlassIntensity > GlassMax {
		return fmt.Errorf("glass_intensity must be between %d and %d", GlassMin, GlassMax)
	}
	return nil
}

// Credential returns the credential for the configured backend. An empty
// result is the recognized missing-credential configuration state.
func (c Config) Credential() string {
	switch c.Backend {
	case BackendOpenAI:
		return c.OpenAIAPIKey
	case BackendAnthropic:
		return c.AnthropicToken
	default:
		return c.GeminiAPIKey
	}
}
