package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	AI        AIConfig        `toml:"ai"`
	Server    ServerConfig    `toml:"server"`
	Poll      PollConfig      `toml:"poll"`
	Platforms PlatformsConfig `toml:"platforms"`
	Streams   []StreamConfig  `toml:"streams"`
}

// AIConfig holds AI provider settings. An empty APIKey disables AI
// summarization; the pipeline falls back to extractive formatting.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// PollConfig holds the scheduler settings shared by all streams.
type PollConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`

	// SafetyBuffer is the character margin held back from the platform
	// limit when budgeting post bodies. It absorbs the difference between
	// code-point counting and platform-side width counting for emoji.
	SafetyBuffer int `toml:"safety_buffer"`
}

// PlatformsConfig holds credentials for every publish target. A platform
// with empty credentials is simply skipped by the dispatcher.
type PlatformsConfig struct {
	X       XConfig       `toml:"x"`
	Bluesky BlueskyConfig `toml:"bluesky"`
	Discord DiscordConfig `toml:"discord"`
}

// XConfig holds X API v2 settings (OAuth2 user-context bearer token).
type XConfig struct {
	BearerToken string `toml:"bearer_token"`
}

// BlueskyConfig holds Bluesky (AT Protocol) app-password credentials.
type BlueskyConfig struct {
	Host       string `toml:"host"`
	Identifier string `toml:"identifier"`
	Password   string `toml:"password"`
}

// DiscordConfig holds a Discord channel webhook URL.
type DiscordConfig struct {
	WebhookURL string `toml:"webhook_url"`
}

// StreamConfig declares one independently-tracked feed+format pipeline.
type StreamConfig struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"` // "feed" or "document"
	FeedURL string `toml:"feed_url"`
	Product string `toml:"product"`
	Variant string `toml:"variant"` // "release", "sdk", "weekly", "digest"
	Filter  string `toml:"filter"`  // "stable" (default) or "submodule"
	Hashtag string `toml:"hashtag"`
	Link    string `toml:"link"` // canonical link for posts; defaults to the entry link

	Document DocumentConfig `toml:"document"`
}

// DocumentConfig holds the URL-resolution settings for document-mode
// streams whose page URL embeds a monthly version number.
type DocumentConfig struct {
	BaseURL          string `toml:"base_url"`
	RedirectorURL    string `toml:"redirector_url"`
	ReferenceVersion int    `toml:"reference_version"`
	ReferenceDate    string `toml:"reference_date"` // YYYY-MM-DD
	Edition          string `toml:"edition"`        // required front-matter edition
}

const defaultConfigContent = `[ai]
provider = "anthropic"      # "anthropic" or "openai"
api_key = ""                # or set AI_API_KEY (empty disables AI summaries)
model = "claude-haiku-4-5"

[server]
port = 8787

[poll]
interval_minutes = 30
safety_buffer = 6

[platforms.x]
bearer_token = ""           # or set X_BEARER_TOKEN

[platforms.bluesky]
host = "https://bsky.social"
identifier = ""
password = ""               # or set BLUESKY_PASSWORD

[platforms.discord]
webhook_url = ""            # or set DISCORD_WEBHOOK_URL

[[streams]]
name = "cli-releases"
kind = "feed"
feed_url = "https://github.com/example/cli/releases.atom"
product = "Example CLI"
variant = "release"
filter = "stable"
hashtag = "#ExampleCLI"
`

// Load reads and parses the TOML config from the given path. If the file
// does not exist, it creates a default config file at that path. Environment
// variables override credential values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "safety_buffer = 0" is an error rather than
	// silently being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "safety_buffer = 0" which would otherwise be
// silently replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("poll", "interval_minutes") {
		if cfg.Poll.IntervalMinutes < 1 {
			return fmt.Errorf("invalid poll.interval_minutes %d: must be >= 1", cfg.Poll.IntervalMinutes)
		}
	}
	if md.IsDefined("poll", "safety_buffer") {
		if cfg.Poll.SafetyBuffer < 4 || cfg.Poll.SafetyBuffer > 8 {
			return fmt.Errorf("invalid poll.safety_buffer %d: must be between 4 and 8", cfg.Poll.SafetyBuffer)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "anthropic"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "claude-haiku-4-5"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Poll.IntervalMinutes == 0 {
		cfg.Poll.IntervalMinutes = 30
	}
	if cfg.Poll.SafetyBuffer == 0 {
		cfg.Poll.SafetyBuffer = 6
	}
	if cfg.Platforms.Bluesky.Host == "" {
		cfg.Platforms.Bluesky.Host = "https://bsky.social"
	}
	for i := range cfg.Streams {
		s := &cfg.Streams[i]
		if s.Kind == "" {
			s.Kind = "feed"
		}
		if s.Variant == "" {
			s.Variant = "release"
		}
		if s.Filter == "" {
			s.Filter = "stable"
		}
		if s.Kind == "document" && s.Document.Edition == "" {
			s.Document.Edition = "Insiders"
		}
	}
}

// applyEnvOverrides overrides credential values from environment variables
// so deployments can keep secrets out of the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("X_BEARER_TOKEN"); v != "" {
		cfg.Platforms.X.BearerToken = v
	}
	if v := os.Getenv("BLUESKY_PASSWORD"); v != "" {
		cfg.Platforms.Bluesky.Password = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Platforms.Discord.WebhookURL = v
	}
}

// validate checks the fully-resolved configuration. Stream configuration
// mistakes must fail here rather than surface later as mysterious
// "zero entries" cycles.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"anthropic\" or \"openai\"", cfg.AI.Provider)
	}

	if len(cfg.Streams) == 0 {
		return errors.New("no streams configured")
	}

	seen := make(map[string]bool, len(cfg.Streams))
	for i := range cfg.Streams {
		s := &cfg.Streams[i]
		if s.Name == "" {
			return fmt.Errorf("streams[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stream name %q", s.Name)
		}
		seen[s.Name] = true

		switch s.Variant {
		case "release", "sdk", "weekly", "digest":
		default:
			return fmt.Errorf("stream %q: invalid variant %q", s.Name, s.Variant)
		}

		switch s.Filter {
		case "stable", "submodule":
		default:
			return fmt.Errorf("stream %q: invalid filter %q", s.Name, s.Filter)
		}

		switch s.Kind {
		case "feed":
			if s.FeedURL == "" {
				return fmt.Errorf("stream %q: feed_url is required for kind \"feed\"", s.Name)
			}
		case "document":
			// Digest posts have no per-entry link to fall back on; the
			// stream's canonical link is the only URL the post can carry.
			if s.Link == "" {
				return fmt.Errorf("stream %q: link is required for kind \"document\"", s.Name)
			}
			doc := &s.Document
			if doc.BaseURL == "" {
				return fmt.Errorf("stream %q: document.base_url is required for kind \"document\"", s.Name)
			}
			if doc.ReferenceVersion < 1 {
				return fmt.Errorf("stream %q: document.reference_version is required", s.Name)
			}
			if _, err := time.Parse("2006-01-02", doc.ReferenceDate); err != nil {
				return fmt.Errorf("stream %q: invalid document.reference_date %q: %w", s.Name, doc.ReferenceDate, err)
			}
		default:
			return fmt.Errorf("stream %q: invalid kind %q", s.Name, s.Kind)
		}
	}

	return nil
}
