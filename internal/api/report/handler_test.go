package report

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absencebot/absence-bot/internal/calendar"
	"github.com/absencebot/absence-bot/internal/models"
	"github.com/absencebot/absence-bot/pkg/logger"
)

type reportServiceMock struct {
	handleFunc func(ctx context.Context, year int, month time.Month) ([]calendar.ReportEntry, error)
}

func (m *reportServiceMock) HandleReport(ctx context.Context, year int, month time.Month) ([]calendar.ReportEntry, error) {
	return m.handleFunc(ctx, year, month)
}

func reportRouter(service ReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(service, logger.New("error", "json", "stdout"))
	router.GET("/report", handler.GetMonthlyReport)
	return router
}

func getReport(router *gin.Engine, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/report"+query, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetMonthlyReport(t *testing.T) {
	service := &reportServiceMock{
		handleFunc: func(_ context.Context, year int, month time.Month) ([]calendar.ReportEntry, error) {
			assert.Equal(t, 2019, year)
			assert.Equal(t, time.June, month)
			return []calendar.ReportEntry{
				{Requester: "John Smith", Reviewer: "Jane Doe", Reason: models.ReasonHoliday},
			}, nil
		},
	}
	router := reportRouter(service)

	w := getReport(router, "?year=2019&month=6")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "John Smith")
	assert.Contains(t, w.Body.String(), `"total_entries":1`)
}

func TestGetMonthlyReportValidation(t *testing.T) {
	service := &reportServiceMock{
		handleFunc: func(_ context.Context, _ int, _ time.Month) ([]calendar.ReportEntry, error) {
			t.Fatal("service must not be called for invalid parameters")
			return nil, nil
		},
	}
	router := reportRouter(service)

	for _, query := range []string{
		"",
		"?year=2019",
		"?year=abcd&month=6",
		"?year=2019&month=13",
		"?year=2019&month=0",
		"?year=123456&month=6",
	} {
		w := getReport(router, query)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestGetMonthlyReportServiceFailure(t *testing.T) {
	service := &reportServiceMock{
		handleFunc: func(_ context.Context, _ int, _ time.Month) ([]calendar.ReportEntry, error) {
			return nil, fmt.Errorf("calendar unavailable")
		},
	}
	router := reportRouter(service)

	w := getReport(router, "?year=2019&month=6")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
