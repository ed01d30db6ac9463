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
var _ Platform = (*XClient)(nil)

const xAPIURL = "https://api.x.com/2/tweets"

// XClient posts via the X API v2 create-tweet endpoint using an OAuth2
// user-context bearer token.
type XClient struct {
	token  string
	client *http.Client

	// baseURL is overridable in tests.
	baseURL string
}

// NewXClient creates an XClient from config.
func NewXClient(cfg config.XConfig) *XClient {
	return &XClient{
		token:   cfg.BearerToken,
		baseURL: xAPIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *XClient) Name() string { return "x" }

func (c *XClient) Configured() bool { return c.token != "" }

type xCreateRequest struct {
	Text string `json:"text"`
}

type xCreateResponse struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
	Detail string `json:"detail"`
}

// Post publishes the text as a tweet.
func (c *XClient) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(xCreateRequest{Text: text})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var apiResp xCreateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if apiResp.Detail != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiResp.Detail)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
