package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Result is the generator response.
type Result struct {
	Image string // URI, a data: URI in mock mode
}

// Client calls the generator service. With an empty base URL it renders a
// local placeholder instead.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a generator client. When baseURL is empty, the client serves mock data.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
	}
}

// Mock reports whether the client renders placeholders locally.
func (c *Client) Mock() bool { return c == nil || c.baseURL == "" }

// Generate validates req and returns the generated page.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if c.Mock() {
		uri, err := Placeholder(req)
		if err != nil {
			return Result{}, err
		}
		return Result{Image: uri}, nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "generate")
	if err != nil {
		return Result{}, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("generate: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("generate: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var body struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("generate: decode response: %w", err)
	}
	if strings.TrimSpace(body.Image) == "" {
		return Result{}, fmt.Errorf("generate: response without image")
	}
	return Result{Image: strings.TrimSpace(body.Image)}, nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
