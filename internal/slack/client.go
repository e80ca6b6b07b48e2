// Package slack provides the Slack Web API client, interactive-action payload
// types, request signature verification and message composition.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// API is the surface consumed by the approval service.
type API interface {
	FetchUser(ctx context.Context, id string) (models.User, error)
	PostMessage(ctx context.Context, msg Message) error
}

const apiBaseURL = "https://slack.com/api"

// Client calls the Slack Web API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Slack client.
func NewClient(token string, log *logger.Logger) *Client {
	return &Client{
		token:      token,
		baseURL:    apiBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (useful for testing).
func NewClientWithBaseURL(token, baseURL string, log *logger.Logger) *Client {
	c := NewClient(token, log)
	c.baseURL = baseURL
	return c
}

// APIError is Slack's structured error payload.
type APIError struct {
	Reason string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack API error: %s", e.Reason)
}

// FetchUser fetches a user profile by id.
func (c *Client) FetchUser(ctx context.Context, id string) (models.User, error) {
	endpoint := fmt.Sprintf("%s/users.info?user=%s", c.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	var payload struct {
		OK    bool        `json:"ok"`
		Error string      `json:"error"`
		User  models.User `json:"user"`
	}
	if err := c.do(req, &payload); err != nil {
		return models.User{}, err
	}
	if !payload.OK {
		return models.User{}, &APIError{Reason: payload.Error}
	}

	c.log.Debug().Str("user", id).Msg("Fetched Slack user")
	return payload.User, nil
}

// PostMessage posts a message to a channel.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	var payload struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := c.do(req, &payload); err != nil {
		return err
	}
	if !payload.OK {
		return &APIError{Reason: payload.Error}
	}

	c.log.Debug().Str("channel", msg.Channel).Msg("Posted message to Slack")
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Slack response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode Slack response: %w", err)
	}
	return nil
}
