// Package whatsapp delivers answers to one preconfigured WhatsApp recipient
// through the Twilio Messages API.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const addressScheme = "whatsapp:"

// Client sends messages from one number to one recipient.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	httpClient *http.Client
}

// Config configures the Twilio client. From and To are phone numbers with
// country code; the whatsapp: scheme is added if missing.
type Config struct {
	BaseURL    string // Defaults to the hosted Twilio API.
	AccountSID string
	AuthToken  string
	From       string
	To         string
	Timeout    time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       withAddressScheme(cfg.From),
		to:         withAddressScheme(cfg.To),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func withAddressScheme(number string) string {
	if number == "" || strings.HasPrefix(number, addressScheme) {
		return number
	}
	return addressScheme + number
}

// Send delivers body to the configured recipient.
func (c *Client) Send(ctx context.Context, body string) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", c.to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("twilio api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio api status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
