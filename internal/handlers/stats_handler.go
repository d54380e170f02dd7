package handlers

import (
	"net/http"

	"github.com/arafat31/wavely/backend/internal/models"
	"github.com/arafat31/wavely/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StatsHandler exposes the usage counters
type StatsHandler struct {
	counterRepository repositories.CounterRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(counterRepo repositories.CounterRepository) *StatsHandler {
	return &StatsHandler{counterRepository: counterRepo}
}

// RegisterStatsRoutes registers stats routes
func (h *StatsHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
}

// GetStats reports the usage counters. A counter that was never incremented
// reads as zero.
func (h *StatsHandler) GetStats(c echo.Context) error {
	logins, err := h.counterRepository.Read(models.CounterLogin)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resets, err := h.counterRepository.Read(models.CounterPasswordReset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"login_count":          logins,
		"password_reset_count": resets,
	})
}
