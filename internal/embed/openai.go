// Package embed converts text into embedding vectors via the OpenAI
// embeddings API.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// DefaultModel is used for both ingestion and queries; the two must match
// for the vector spaces to be comparable.
const DefaultModel = "text-embedding-ada-002"

// DefaultDimension is the output width of DefaultModel.
const DefaultDimension = 1536

const maxRetries = 3

// EmbeddingError reports a terminal embedding failure (transport error,
// rejected input, or exhausted retries).
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed with %s: %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Client calls the OpenAI embeddings endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config configures the embeddings client.
type Config struct {
	BaseURL string // Defaults to the hosted OpenAI API.
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Model returns the embedding model identifier in use.
func (c *Client) Model() string { return c.model }

type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Embed returns the embedding vector for one text. Rate limits and upstream
// 5xx responses are retried a bounded number of times with backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, &EmbeddingError{Model: c.model, Err: ctx.Err()}
			}
		}
		vec, retryable, err := c.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, &EmbeddingError{Model: c.model, Err: lastErr}
}

func (c *Client) embedOnce(ctx context.Context, text string) (vec []float32, retryable bool, err error) {
	body, err := json.Marshal(embeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("embeddings api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("embeddings api status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("embeddings api status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, false, fmt.Errorf("embeddings error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Data) == 0 || len(apiResp.Data[0].Embedding) == 0 {
		return nil, false, fmt.Errorf("empty embedding in response")
	}

	return apiResp.Data[0].Embedding, false, nil
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 500 * time.Millisecond
	if base > 8*time.Second {
		base = 8 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
