// Package report exposes the monthly absence report endpoint.
package report

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/pkg/logger"
)

// ReportService lists the approved absences of one calendar month.
type ReportService interface {
	HandleReport(ctx context.Context, year int, month time.Month) ([]calendar.ReportEntry, error)
}

// Handler handles report API requests.
type Handler struct {
	service ReportService
	log     *logger.Logger
}

// NewHandler creates a new report handler.
func NewHandler(service ReportService, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetMonthlyReport returns the absences recorded for one month.
// GET /report?year=2019&month=6 (basic auth).
func (h *Handler) GetMonthlyReport(c *gin.Context) {
	year, err := h.parseYear(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	month, err := h.parseMonth(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.service.HandleReport(c.Request.Context(), year, month)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Str("month", month.String()).
			Msg("Failed to generate report")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to generate absence report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":          year,
		"month":         int(month),
		"absences":      entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// parseYear extracts and validates the year query parameter.
func (h *Handler) parseYear(c *gin.Context) (int, error) {
	raw := c.Query("year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year: %s", raw)
	}
	if year < 1970 || year > 9999 {
		return 0, fmt.Errorf("year out of range: %d", year)
	}
	return year, nil
}

// parseMonth extracts and validates the month query parameter.
func (h *Handler) parseMonth(c *gin.Context) (time.Month, error) {
	raw := c.Query("month")
	month, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid month: %s", raw)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month out of range: %d", month)
	}
	return time.Month(month), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
