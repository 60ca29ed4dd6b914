package tailscale

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sullivan/internal/services"
)

// Config describes the control-plane API connection.
type Config struct {
	BaseURL          string
	Tailnet          string
	ClientID         string
	ClientSecret     string
	KeyExpirySeconds int
	Tags             []string
}

// Client talks to the Tailscale control-plane API. It exchanges OAuth client
// credentials for a short-lived access token, then mints a single-use
// enrollment key. Any non-200 response is a hard failure with the raw body
// surfaced for diagnosis.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokenFunc  func(ctx context.Context) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a control-plane client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("oauth client credentials required")
	}
	if strings.TrimSpace(cfg.Tailnet) == "" {
		cfg.Tailnet = "-"
	}
	if cfg.KeyExpirySeconds <= 0 {
		cfg.KeyExpirySeconds = 3600
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.tokenFunc == nil {
		client.tokenFunc = client.oauthToken
	}
	return client, nil
}

func (c *Client) oauthToken(ctx context.Context) (string, error) {
	conf := &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.BaseURL + "/api/v2/oauth/token",
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "oauth-token",
				fmt.Sprintf("status %d: %s", retrieveErr.Response.StatusCode, strings.TrimSpace(string(retrieveErr.Body))), nil)
		}
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "oauth-token", "", err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "oauth-token", "response contained no access token", nil)
	}
	return token.AccessToken, nil
}

type keyRequest struct {
	Capabilities  capabilities `json:"capabilities"`
	ExpirySeconds int          `json:"expirySeconds"`
	Description   string       `json:"description,omitempty"`
}

type capabilities struct {
	Devices struct {
		Create struct {
			Reusable      bool     `json:"reusable"`
			Ephemeral     bool     `json:"ephemeral"`
			Preauthorized bool     `json:"preauthorized"`
			Tags          []string `json:"tags,omitempty"`
		} `json:"create"`
	} `json:"devices"`
}

type keyResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// MintAuthKey requests a single-use, preauthorized enrollment key.
func (c *Client) MintAuthKey(ctx context.Context) (string, error) {
	accessToken, err := c.tokenFunc(ctx)
	if err != nil {
		return "", err
	}

	reqBody := keyRequest{
		ExpirySeconds: c.cfg.KeyExpirySeconds,
		Description:   "sullivan provisioning",
	}
	reqBody.Capabilities.Devices.Create.Preauthorized = true
	reqBody.Capabilities.Devices.Create.Tags = c.cfg.Tags

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode key request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/tailnet/%s/keys", c.cfg.BaseURL, c.cfg.Tailnet)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build key request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key", "", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if readErr != nil {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key", "read response", readErr)
	}

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded keyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key",
			fmt.Sprintf("malformed response: %s", strings.TrimSpace(string(body))), nil)
	}
	if strings.TrimSpace(decoded.Key) == "" {
		return "", services.Wrap(services.ErrCredentialExchange, "tailscale", "mint-key",
			fmt.Sprintf("response contained no key: %s", strings.TrimSpace(string(body))), nil)
	}
	return decoded.Key, nil
}
