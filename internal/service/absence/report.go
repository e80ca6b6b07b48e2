package absence

import (
	"context"
	"fmt"
	"time"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/metrics"
	"github.com/absencebot/absence-bot/internal/models"
)

// HandleReport lists the approved absences of one calendar month, reverse
// mapped from the events the bot created.
func (s *Service) HandleReport(ctx context.Context, year int, month time.Month) ([]calendar.ReportEntry, error) {
	token, err := s.calendar.FetchAuthToken(ctx)
	if err != nil {
		metrics.CollaboratorErrorsTotal.WithLabelValues("calendar").Inc()
		return nil, fmt.Errorf("failed to fetch google auth token: %w", err)
	}

	span := models.MonthInterval(year, month)
	events, err := s.calendar.ListEvents(ctx, token, span)
	if err != nil {
		metrics.CollaboratorErrorsTotal.WithLabelValues("calendar").Inc()
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	entries := make([]calendar.ReportEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, calendar.NewReportEntry(event))
	}

	s.log.Info().
		Int("year", year).
		Str("month", month.String()).
		Int("entries", len(entries)).
		Msg("Generated absence report")
	return entries, nil
}
