package http

import (
	"net/http"
	"strconv"

	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler handles HTTP requests for the dashboard view.
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// RegisterRoutes registers the dashboard and record routes to the Echo group.
func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.GetDashboard)
	g.POST("/dashboard/summary", h.Summarize)
	g.GET("/records/:id", h.GetRecord)
}

// GetDashboard godoc
// @Summary Get the dashboard
// @Description Returns the newest records (at most 200) with confidence values and stats over the records that match the filter
// @Tags dashboard
// @Produce  json
// @Param   sentiment  query  string false "positive, neutral or negative"
// @Param   status     query  string false "analyzed or pending"
// @Param   q          query  string false "Case-insensitive text search over content and summary"
// @Param   sort       query  string false "newest (default), oldest or confidence"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	var filter dto.DashboardFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query parameters"})
	}

	resp, err := h.dashboardService.GetDashboard(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Summarize godoc
// @Summary Recompute dashboard stats with user ratings
// @Description Ratings are keyed by record id, range 1 to 5, and are never stored
// @Tags dashboard
// @Accept  json
// @Produce  json
// @Param   request  body  dto.SummaryRequest true "Ephemeral ratings"
// @Success 200 {object} dto.DashboardStats
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/summary [post]
func (h *DashboardHandler) Summarize(c echo.Context) error {
	var req dto.SummaryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	var filter dto.DashboardFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query parameters"})
	}

	stats, err := h.dashboardService.Summarize(c.Request().Context(), filter, req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetRecord godoc
// @Summary Get a record by ID
// @Tags dashboard
// @Produce  json
// @Param   id  path    int true    "Record ID"
// @Success 200 {object} dto.DisplayRecord
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /records/{id} [get]
func (h *DashboardHandler) GetRecord(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid record ID"})
	}

	record, err := h.dashboardService.GetRecord(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, record)
}
