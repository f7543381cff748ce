package http

import (
	"net/http"
	"strconv"
	"strings"

	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisPath is the analysis trigger path under the API prefix.
const AnalysisPath = "/analyze"

// AnalysisHandler handles HTTP requests that trigger analysis batches.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, logger: logger}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST(AnalysisPath, h.Analyze)
	g.OPTIONS(AnalysisPath, preflight)
}

// Analyze godoc
// @Summary Run an analysis batch
// @Description Analyzes the oldest pending records. With header X-Self-Test: true the batch is skipped and the analyzer is pinged instead.
// @Tags pipeline
// @Produce  json
// @Param   batchSize    query   int    false "Number of pending records to analyze"
// @Param   X-Self-Test  header  string false "Set to true to ping the analyzer only"
// @Success 200 {object} dto.BatchResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	ctx := c.Request().Context()

	if strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(common.HeaderSelfTest)), "true") {
		result, err := h.analysisService.SelfTest(ctx)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	batchSize := 0
	if raw := c.QueryParam("batchSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid batchSize"})
		}
		batchSize = n
	}

	result, err := h.analysisService.RunBatch(ctx, batchSize, common.TriggerHTTP)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("Analysis batch failed", logger.ErrorField(err))
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
