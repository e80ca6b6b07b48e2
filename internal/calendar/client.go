package calendar

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/absencebot/absence-bot/internal/config"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// API is the surface consumed by the approval service and the report handler.
type API interface {
	FetchAuthToken(ctx context.Context) (AccessToken, error)
	CreateEvent(ctx context.Context, token AccessToken, event Event) (Event, error)
	ListEvents(ctx context.Context, token AccessToken, interval models.Interval) ([]Event, error)
}

const (
	tokenURL      = "https://www.googleapis.com/oauth2/v4/token"
	calendarScope = "https://www.googleapis.com/auth/calendar.events"
	eventsURL     = "https://www.googleapis.com/calendar/v3/calendars/%s/events"
	grantType     = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// AccessToken is a short-lived OAuth bearer token.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// OAuthError is the structured token-endpoint failure.
type OAuthError struct {
	Description string `json:"error_description"`
	Code        string `json:"error"`
}

func (e *OAuthError) Error() string {
	return fmt.Sprintf("google oauth error %s: %s", e.Code, e.Description)
}

// Client talks to the Google Calendar API with service-account credentials.
type Client struct {
	clientEmail string
	privateKey  *rsa.PrivateKey
	calendarID  string
	httpClient  *http.Client
	now         func() time.Time
	log         *logger.Logger

	tokenEndpoint string
	eventsBase    string
}

// NewClient parses the service-account key and creates a calendar client.
func NewClient(cfg *config.GoogleConfig, log *logger.Logger) (*Client, error) {
	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google private key: %w", err)
	}
	return &Client{
		clientEmail:   cfg.ClientEmail,
		privateKey:    key,
		calendarID:    cfg.CalendarID,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		now:           time.Now,
		log:           log,
		tokenEndpoint: tokenURL,
		eventsBase:    fmt.Sprintf(eventsURL, url.PathEscape(cfg.CalendarID)),
	}, nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is not RSA")
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// oauthClaims is the service-account JWT assertion payload.
type oauthClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// FetchAuthToken exchanges a signed JWT assertion for a bearer token.
func (c *Client) FetchAuthToken(ctx context.Context) (AccessToken, error) {
	now := c.now()
	claims := oauthClaims{
		Scope: calendarScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.clientEmail,
			Audience:  jwt.ClaimStrings{c.tokenEndpoint},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to sign oauth assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	raw, status, err := c.do(req)
	if err != nil {
		return AccessToken{}, err
	}
	if status != http.StatusOK {
		var oauthErr OAuthError
		if json.Unmarshal(raw, &oauthErr) == nil && oauthErr.Code != "" {
			return AccessToken{}, &oauthErr
		}
		return AccessToken{}, fmt.Errorf("google token endpoint returned status %d", status)
	}

	var token AccessToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return AccessToken{}, fmt.Errorf("failed to decode access token: %w", err)
	}

	c.log.Debug().Int("expires_in", token.ExpiresIn).Msg("Fetched Google auth token")
	return token, nil
}

// CreateEvent inserts an event into the absence calendar.
func (c *Client) CreateEvent(ctx context.Context, token AccessToken, event Event) (Event, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsBase, bytes.NewReader(body))
	if err != nil {
		return Event{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := c.do(req)
	if err != nil {
		return Event{}, err
	}
	if status != http.StatusOK {
		return Event{}, fmt.Errorf("google calendar returned status %d: %s", status, string(raw))
	}

	var created Event
	if err := json.Unmarshal(raw, &created); err != nil {
		return Event{}, fmt.Errorf("failed to decode created event: %w", err)
	}

	c.log.Info().Str("event", created.ID).Str("summary", created.Summary).Msg("Created calendar event")
	return created, nil
}

// ListEvents returns the events overlapping the interval, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, token AccessToken, interval models.Interval) ([]Event, error) {
	query := url.Values{}
	query.Set("timeMin", interval.Start.UTC().Format(time.RFC3339))
	query.Set("timeMax", interval.End.UTC().Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.eventsBase+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	raw, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("google calendar returned status %d: %s", status, string(raw))
	}

	var envelope struct {
		Items []Event `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode event list: %w", err)
	}
	return envelope.Items, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call Google Calendar: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read Google Calendar response: %w", err)
	}
	return raw, resp.StatusCode, nil
}
