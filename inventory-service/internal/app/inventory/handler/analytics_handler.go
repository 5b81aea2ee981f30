package handler

import (
	"net/http"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
)

// defaultDashboardPeriod - период отчёта, если from не указан
const defaultDashboardPeriod = 30 * 24 * time.Hour

type AnalyticsHandler struct {
	analytics service.AnalyticsServiceInterface
	now       func() time.Time
}

func NewAnalyticsHandler(analytics service.AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, now: time.Now}
}

// Dashboard обрабатывает GET /analytics/dashboard?from=&to=
// to без времени (YYYY-MM-DD) включает весь день.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	to := h.now().UTC()
	if raw := c.Query("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			respondBadRequest(c, "Invalid to: expected RFC3339 or YYYY-MM-DD")
			return
		}
		if len(raw) == len(time.DateOnly) {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}

	from := to.Add(-defaultDashboardPeriod)
	if raw := c.Query("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			respondBadRequest(c, "Invalid from: expected RFC3339 or YYYY-MM-DD")
			return
		}
		from = t
	}

	dashboard, err := h.analytics.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
