package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig is a helper that writes a TOML config file to a temp
// directory and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

const validConfig = `
[ai]
provider = "openai"
api_key = "sk-test-key-123"
model = "gpt-4o"

[server]
port = 9090

[poll]
interval_minutes = 15
safety_buffer = 5

[platforms.x]
bearer_token = "xoxb-token"

[platforms.discord]
webhook_url = "https://discord.com/api/webhooks/1/abc"

[[streams]]
name = "cli-releases"
kind = "feed"
feed_url = "https://github.com/example/cli/releases.atom"
product = "Example CLI"
variant = "release"
hashtag = "#ExampleCLI"

[[streams]]
name = "editor-changelog"
kind = "document"
product = "Example Editor"
variant = "digest"
hashtag = "#ExampleEditor"
link = "https://example.com/updates"

[streams.document]
base_url = "https://example.com/updates/v1_"
redirector_url = "https://example.com/updates/latest"
reference_version = 107
reference_date = "2026-01-08"
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	if cfg.AI.Provider != "openai" {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, "openai")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Poll.SafetyBuffer != 5 {
		t.Errorf("Poll.SafetyBuffer = %d, want %d", cfg.Poll.SafetyBuffer, 5)
	}
	if len(cfg.Streams) != 2 {
		t.Fatalf("len(Streams) = %d, want 2", len(cfg.Streams))
	}

	feed := cfg.Streams[0]
	if feed.Filter != "stable" {
		t.Errorf("feed stream Filter default = %q, want %q", feed.Filter, "stable")
	}

	doc := cfg.Streams[1]
	if doc.Document.Edition != "Insiders" {
		t.Errorf("document stream Edition default = %q, want %q", doc.Document.Edition, "Insiders")
	}
	if doc.Document.ReferenceVersion != 107 {
		t.Errorf("document stream ReferenceVersion = %d, want 107", doc.Document.ReferenceVersion)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTestConfig(t, `
[[streams]]
name = "s"
feed_url = "https://example.com/feed.atom"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load unexpected error: %v", err)
	}

	if cfg.AI.Provider != "anthropic" {
		t.Errorf("AI.Provider default = %q, want anthropic", cfg.AI.Provider)
	}
	if cfg.Poll.IntervalMinutes != 30 {
		t.Errorf("Poll.IntervalMinutes default = %d, want 30", cfg.Poll.IntervalMinutes)
	}
	if cfg.Poll.SafetyBuffer != 6 {
		t.Errorf("Poll.SafetyBuffer default = %d, want 6", cfg.Poll.SafetyBuffer)
	}
	if cfg.Streams[0].Kind != "feed" {
		t.Errorf("stream Kind default = %q, want feed", cfg.Streams[0].Kind)
	}
	if cfg.Streams[0].Variant != "release" {
		t.Errorf("stream Variant default = %q, want release", cfg.Streams[0].Variant)
	}
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file was not created: %v", err)
	}
	if len(cfg.Streams) == 0 {
		t.Error("default config should declare an example stream")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "explicit zero safety buffer",
			content: `
[poll]
safety_buffer = 0

[[streams]]
name = "s"
feed_url = "https://example.com/feed.atom"
`,
			wantErr: "safety_buffer",
		},
		{
			name: "missing feed url",
			content: `
[[streams]]
name = "s"
kind = "feed"
`,
			wantErr: "feed_url is required",
		},
		{
			name: "duplicate stream names",
			content: `
[[streams]]
name = "s"
feed_url = "https://example.com/a.atom"

[[streams]]
name = "s"
feed_url = "https://example.com/b.atom"
`,
			wantErr: "duplicate stream name",
		},
		{
			name: "unknown variant",
			content: `
[[streams]]
name = "s"
feed_url = "https://example.com/feed.atom"
variant = "monthly"
`,
			wantErr: "invalid variant",
		},
		{
			name: "document stream without base url",
			content: `
[[streams]]
name = "s"
kind = "document"
variant = "digest"
link = "https://example.com/updates"
`,
			wantErr: "base_url is required",
		},
		{
			name: "document stream without link",
			content: `
[[streams]]
name = "s"
kind = "document"
variant = "digest"

[streams.document]
base_url = "https://example.com/updates/v1_"
reference_version = 107
reference_date = "2026-01-08"
`,
			wantErr: "link is required",
		},
		{
			name: "unknown ai provider",
			content: `
[ai]
provider = "gemini"

[[streams]]
name = "s"
feed_url = "https://example.com/feed.atom"
`,
			wantErr: "ai.provider",
		},
		{
			name:    "no streams",
			content: ``,
			wantErr: "no streams",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "env-key")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/9/env")

	path := writeTestConfig(t, `
[ai]
api_key = "file-key"

[[streams]]
name = "s"
feed_url = "https://example.com/feed.atom"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load unexpected error: %v", err)
	}
	if cfg.AI.APIKey != "env-key" {
		t.Errorf("AI.APIKey = %q, want env override", cfg.AI.APIKey)
	}
	if cfg.Platforms.Discord.WebhookURL != "https://discord.com/api/webhooks/9/env" {
		t.Errorf("Discord.WebhookURL = %q, want env override", cfg.Platforms.Discord.WebhookURL)
	}
}
