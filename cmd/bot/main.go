// The absence bot ties a Dialogflow NLU agent, Slack approvals and a Google
// absence calendar together behind one small HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/absencebot/absence-bot/internal/api"
	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/config"
	"github.com/absencebot/absence-bot/internal/dedup"
	"github.com/absencebot/absence-bot/internal/service/absence"
	"github.com/absencebot/absence-bot/internal/slack"
	"github.com/absencebot/absence-bot/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Local development convenience; production supplies real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	source, err := cfg.Timezones.DialogflowLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Dialogflow timezone")
	}
	target, err := cfg.Timezones.HQLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid HQ timezone")
	}

	slackClient := slack.NewClient(cfg.Slack.Token, log)
	calendarClient, err := calendar.NewClient(&cfg.Google, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create calendar client")
	}

	var dedupStore dedup.Store
	if cfg.Redis.Enabled {
		redisStore, err := dedup.NewRedisStore(&cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect dedup store")
		}
		defer redisStore.Close()
		dedupStore = redisStore
	}

	service := absence.NewService(slackClient, calendarClient, dedupStore, absence.Options{
		AnnouncementChannel: cfg.Slack.AnnouncementChannel,
		SourceTimezone:      source,
		TargetTimezone:      target,
		ResponseBudget:      cfg.Server.ResponseBudget(),
	}, log)

	router := api.NewRouter(cfg, api.Services{
		Dialogflow: service,
		Slack:      service,
		Report:     service,
	}, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).
			Msg("Starting absence bot")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Stopped")
}
