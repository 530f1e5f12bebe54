// Package chat calls the Together chat-completions API to generate answers.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel matches the model the bot was tuned against.
const DefaultModel = "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"

// GenerationError reports a chat model failure. It surfaces to the caller
// unchanged; there is no fallback answer.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Client calls the Together chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config configures the chat client.
type Config struct {
	BaseURL string // Defaults to the hosted Together API.
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.together.xyz"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
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

// Model returns the chat model identifier in use.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt as a single user message at temperature 0 and
// returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("chat api: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{
			Model: c.model,
			Err:   fmt.Errorf("chat api status %d: %s", resp.StatusCode, truncate(respBody, 200)),
		}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("decode response: %w", err)}
	}
	if apiResp.Error != nil {
		return "", &GenerationError{
			Model: c.model,
			Err:   fmt.Errorf("chat error: %s: %s", apiResp.Error.Type, apiResp.Error.Message),
		}
	}
	if len(apiResp.Choices) == 0 {
		return "", &GenerationError{Model: c.model, Err: fmt.Errorf("empty response from chat model")}
	}

	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
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
