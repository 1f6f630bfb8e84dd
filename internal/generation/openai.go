package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client is an OpenAI-compatible chat completions client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// ClientConfig configures the chat client.
type ClientConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a chat client using the provided configuration.
// The API key is read from the environment variable named by APIKeyEnv.
func NewClient(cfg ClientConfig) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 120 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 2,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate renders the prompt and returns the model's answer text.
func (c *Client) Generate(ctx context.Context, prompt Prompt) (string, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt.Render()}},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	url := c.baseURL + "/chat/completions"
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt)) * 500 * time.Millisecond):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("chat request failed: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return "", fmt.Errorf("chat request failed: %s", resp.Status)
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		var out chatResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			return "", fmt.Errorf("decode chat response: %w", err)
		}
		if len(out.Choices) == 0 {
			return "", fmt.Errorf("chat response has no choices")
		}
		return out.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

// Close is a no-op for Client.
func (c *Client) Close() error {
	return nil
}
