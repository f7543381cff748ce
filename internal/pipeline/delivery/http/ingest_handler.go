package http

import (
	"net/http"
	"strconv"

	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IngestHandler handles HTTP requests that trigger an ingest.
type IngestHandler struct {
	ingestService service.IngestService
	logger        *logger.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestService service.IngestService, logger *logger.Logger) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, logger: logger}
}

// RegisterRoutes registers the ingest routes to the Echo group.
func (h *IngestHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/ingest", h.Ingest)
}

// Ingest godoc
// @Summary Ingest scraped items
// @Description Fetches items from the scraping source, normalizes them and upserts them as records. The request body is ignored.
// @Tags pipeline
// @Produce  json
// @Param   limit  query    int false    "Maximum number of items to fetch"
// @Success 200 {object} dto.IngestResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /ingest [post]
func (h *IngestHandler) Ingest(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	result, err := h.ingestService.Ingest(c.Request().Context(), limit, common.TriggerHTTP)
	if err != nil {
		h.logger.Error("Ingest failed", logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
