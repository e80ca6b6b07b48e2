// Package api assembles the HTTP surface: routing, authentication and the
// shared request middleware.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/absencebot/absence-bot/internal/api/report"
	"github.com/absencebot/absence-bot/internal/api/webhook"
	"github.com/absencebot/absence-bot/internal/config"
	"github.com/absencebot/absence-bot/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Services groups the consumers the routes dispatch to.
type Services struct {
	Dialogflow webhook.DialogflowConsumer
	Slack      webhook.SlackConsumer
	Report     report.ReportService
}

// NewRouter builds the gin engine with all routes registered.
//
// The Slack callback is authenticated by its request signature, not basic
// auth, so it sits outside the protected group.
func NewRouter(cfg *config.Config, services Services, log *logger.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestID(), accessLog(log), gin.Recovery())

	router.GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello world!")
	})

	slackHandler := webhook.NewSlackHandler(services.Slack, cfg.Slack.SigningSecret, log)
	router.POST("/slack", slackHandler.Handle)

	authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
		cfg.BasicAuth.Username: cfg.BasicAuth.Password,
	}))

	dialogflowHandler := webhook.NewDialogflowHandler(services.Dialogflow, log)
	authorized.POST("/dialogflow", dialogflowHandler.Handle)

	reportHandler := report.NewHandler(services.Report, log)
	authorized.GET("/report", reportHandler.GetMonthlyReport)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	return router
}

// requestID tags every request so log lines of one call can be correlated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// accessLog writes one structured line per request.
func accessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Msg("Handled request")
	}
}
