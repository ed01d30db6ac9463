package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ptkhanh/herald/internal/config"
)

// Compile-time interface check.
var _ Platform = (*DiscordWebhook)(nil)

// DiscordWebhook posts to a Discord channel via an incoming webhook.
type DiscordWebhook struct {
	url    string
	client *http.Client
}

// NewDiscordWebhook creates a DiscordWebhook from config.
func NewDiscordWebhook(cfg config.DiscordConfig) *DiscordWebhook {
	return &DiscordWebhook{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *DiscordWebhook) Name() string { return "discord" }

func (d *DiscordWebhook) Configured() bool { return d.url != "" }

// Post publishes the text as the webhook message content.
func (d *DiscordWebhook) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	// Webhooks return 204 on success; read a little of the body for error
	// detail on anything else.
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, detail)
	}
	return nil
}
