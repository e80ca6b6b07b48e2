package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/config"
	"github.com/absencebot/absence-bot/internal/dialogflow"
	"github.com/absencebot/absence-bot/internal/pipeline"
	"github.com/absencebot/absence-bot/internal/slack"
	"github.com/absencebot/absence-bot/pkg/logger"
)

type consumerStub struct{}

func (consumerStub) HandleDialogflow(context.Context, dialogflow.Webhook) (dialogflow.Fulfillment, *pipeline.Terminal) {
	return dialogflow.Fulfillment{Text: "ok"}, nil
}

func (consumerStub) HandleInteraction(context.Context, slack.InteractiveMessageAction) (slack.Fallback, *pipeline.Terminal) {
	return slack.Fallback{}, nil
}

func (consumerStub) HandleReport(context.Context, int, time.Month) ([]calendar.ReportEntry, error) {
	return []calendar.ReportEntry{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: 8080, Environment: "test", ResponseTimeout: 25},
		BasicAuth: config.BasicAuthConfig{Username: "bot", Password: "secret"},
		Slack: config.SlackConfig{
			Token:               "xoxb-token",
			SigningSecret:       "signing-secret",
			AnnouncementChannel: "C-announce",
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func testRouter() http.Handler {
	stub := consumerStub{}
	return NewRouter(testRouterConfig(), Services{
		Dialogflow: stub,
		Slack:      stub,
		Report:     stub,
	}, logger.New("error", "json", "stdout"))
}

func TestHelloEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello world!", w.Body.String())
}

func TestProtectedEndpointsRequireBasicAuth(t *testing.T) {
	router := testRouter()

	t.Run("dialogflow without credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/dialogflow", strings.NewReader("{}"))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("report with wrong credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/report?year=2019&month=6", nil)
		req.SetBasicAuth("bot", "wrong")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("report with valid credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/report?year=2019&month=6", nil)
		req.SetBasicAuth("bot", "secret")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSlackEndpointSkipsBasicAuth(t *testing.T) {
	router := testRouter()

	// No basic auth; the signature check answers instead of a 401.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/slack", strings.NewReader("payload=x"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := testRouter()

	t.Run("generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})

	t.Run("propagated when present", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/hello", nil)
		req.Header.Set("X-Request-Id", "req-123")
		router.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	})
}
