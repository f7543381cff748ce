package http

import (
	"net/http"
	"strconv"

	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PipelineRunHandler handles HTTP requests for pipeline run history.
type PipelineRunHandler struct {
	runService service.PipelineRunService
	logger     *logger.Logger
}

// NewPipelineRunHandler creates a new PipelineRunHandler.
func NewPipelineRunHandler(runService service.PipelineRunService, logger *logger.Logger) *PipelineRunHandler {
	return &PipelineRunHandler{runService: runService, logger: logger}
}

// RegisterRoutes registers the pipeline run routes to the Echo group.
func (h *PipelineRunHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRecentRuns)
	g.GET("/:id", h.GetRunByID)
}

// GetRecentRuns godoc
// @Summary List recent pipeline runs
// @Tags runs
// @Produce  json
// @Param   kind   query  string false "ingest or analysis"
// @Param   limit  query  int    false "Maximum number of runs (default 20)"
// @Success 200 {array} dto.PipelineRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *PipelineRunHandler) GetRecentRuns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	runs, err := h.runService.GetRecentRuns(c.Request().Context(), c.QueryParam("kind"), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get pipeline runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRunByID godoc
// @Summary Get a pipeline run by ID
// @Tags runs
// @Produce  json
// @Param   id  path    int true    "Pipeline run ID"
// @Success 200 {object} dto.PipelineRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs/{id} [get]
func (h *PipelineRunHandler) GetRunByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid run ID"})
	}

	run, err := h.runService.GetRunByID(c.Request().Context(), uint(id))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, run)
}
