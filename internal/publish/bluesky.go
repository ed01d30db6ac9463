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
var _ Platform = (*BlueskyClient)(nil)

// BlueskyClient posts to Bluesky over the AT Protocol XRPC endpoints using
// an app password. A session is created per post; the token volume is tiny
// at release cadence, so no session caching is needed.
type BlueskyClient struct {
	host       string
	identifier string
	password   string
	client     *http.Client
}

// NewBlueskyClient creates a BlueskyClient from config.
func NewBlueskyClient(cfg config.BlueskyConfig) *BlueskyClient {
	return &BlueskyClient{
		host:       cfg.Host,
		identifier: cfg.Identifier,
		password:   cfg.Password,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *BlueskyClient) Name() string { return "bluesky" }

func (c *BlueskyClient) Configured() bool {
	return c.identifier != "" && c.password != ""
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
}

// Post publishes the text as an app.bsky.feed.post record.
func (c *BlueskyClient) Post(ctx context.Context, text string) error {
	session, err := c.createSession(ctx)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	record := map[string]any{
		"repo":       session.DID,
		"collection": "app.bsky.feed.post",
		"record": map[string]any{
			"$type":     "app.bsky.feed.post",
			"text":      text,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	}

	var out json.RawMessage
	if err := c.xrpc(ctx, "com.atproto.repo.createRecord", session.AccessJwt, record, &out); err != nil {
		return fmt.Errorf("creating record: %w", err)
	}
	return nil
}

func (c *BlueskyClient) createSession(ctx context.Context) (*blueskySession, error) {
	var session blueskySession
	err := c.xrpc(ctx, "com.atproto.server.createSession", "", map[string]string{
		"identifier": c.identifier,
		"password":   c.password,
	}, &session)
	if err != nil {
		return nil, err
	}
	if session.AccessJwt == "" || session.DID == "" {
		return nil, fmt.Errorf("incomplete session response")
	}
	return &session, nil
}

// xrpc performs one XRPC procedure call against the configured host.
func (c *BlueskyClient) xrpc(ctx context.Context, method, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := c.host + "/xrpc/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: API error (status %d): %s", method, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%s: unexpected status code: %d", method, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
