// Package payments creates hosted checkout sessions for subscription
// purchases.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com/v1"

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type Config struct {
	BaseURL   string
	SecretKey string
}

func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   config.BaseURL,
		secretKey: config.SecretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sessionResponse struct {
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateCheckoutSession opens a hosted checkout session for the price and
// returns the provider's redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, userID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", userID)
	form.Set("success_url", returnURL)
	form.Set("cancel_url", returnURL)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.secretKey))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if session.Error != nil {
		return "", fmt.Errorf("checkout API error: %s", session.Error.Message)
	}

	if session.URL == "" {
		return "", fmt.Errorf("checkout session has no redirect URL")
	}

	return session.URL, nil
}
