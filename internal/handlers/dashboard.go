package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"library_console_echo/internal/services"
)

// DashboardHandler serves the derived analytics the admin dashboard renders
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Dashboard returns the full dashboard snapshot: enrollment stats, revenue
// rollups, the trailing revenue series, financial-year earnings and the
// due / upcoming-due lists. `months` and `window` tune the series length and
// the upcoming window.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	months := parseIntQuery(c, "months", "12")
	window := parseIntQuery(c, "window", "7")

	snapshot, err := h.dashboard.Snapshot(c.Request().Context(), months, window, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build dashboard")
	}
	return c.JSON(http.StatusOK, snapshot)
}
