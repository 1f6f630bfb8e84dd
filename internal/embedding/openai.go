package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
	maxRetries int
}

// ClientConfig configures the embeddings client.
type ClientConfig struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates an embeddings client using the provided configuration.
// The API key is read from the environment variable named by APIKeyEnv.
// Dimensions is required; the client is shared by ingest and query, so the
// expected dimension is fixed at construction rather than learned later.
func NewClient(cfg ClientConfig) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-ada-002"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}, nil
}

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns a unit-length embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request. Vectors are normalized to unit
// length so the index's inner product equals cosine similarity.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload, err := c.post(ctx, embedRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, err
	}
	var out embedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(out.Data), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		if len(d.Embedding) != c.dimensions {
			return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(d.Embedding), c.dimensions)
		}
		Normalize(d.Embedding)
		vecs[d.Index] = d.Embedding
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("embeddings response missing vector for input %d", i)
		}
	}
	return vecs, nil
}

// post sends the request with retries on 429 and 5xx responses.
func (c *Client) post(ctx context.Context, body embedRequest) ([]byte, error) {
	url := c.baseURL + "/embeddings"
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode embeddings request: %w", err)
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, convErr := strconv.Atoi(ra); convErr == nil {
					select {
					case <-ctx.Done():
						_ = resp.Body.Close()
						return nil, ctx.Err()
					case <-time.After(time.Duration(secs) * time.Second):
					}
				}
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embeddings request failed: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return payload, nil
	}
	return nil, lastErr
}

func retryDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Close is a no-op for Client.
func (c *Client) Close() error {
	return nil
}
