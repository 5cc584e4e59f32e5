package handlers

import (
	"log/slog"
	"net/http"

	"simple-bank-api/internal/dto"
	"simple-bank-api/internal/errors"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck() error
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db     HealthChecker
	driver string
	logger *slog.Logger
}

// NewHealthCheckHandler creates a new health check handler.
// db may be nil when accounts are kept in memory.
func NewHealthCheckHandler(db HealthChecker, driver string, logger *slog.Logger) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, driver: driver, logger: logger}
}

// HealthCheck reports API and store availability
// @Summary Health check
// @Description Check API and database connectivity status
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Service unavailable (database connection failed)"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			h.logger.ErrorContext(c.Request().Context(), "health check failed", "driver", h.driver, "error", err)
			return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Database connection failed"))
		}
	}

	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "healthy",
		Checks:   map[string]string{"database": "up"},
		Database: h.driver,
	})
}
