package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness. Check, when set, is run on every request.
type HealthHandler struct {
	Check func(ctx context.Context) error
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce  json
// @Success 200 {object} map[string]string
// @Failure 503 {object} dto.ErrorResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	if h.Check != nil {
		if err := h.Check(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
