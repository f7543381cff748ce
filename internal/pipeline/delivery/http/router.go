package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// APIPrefix is the version prefix of every API route.
const APIPrefix = "/api/v1"

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Ingest      *IngestHandler
	Analysis    *AnalysisHandler
	Dashboard   *DashboardHandler
	PipelineRun *PipelineRunHandler
	Health      *HealthHandler
}

// RegisterRoutes installs middleware and mounts every handler on e.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.Use(middleware.Recover())
	e.Use(TriggerCORS(APIPrefix + AnalysisPath))

	apiV1 := e.Group(APIPrefix)
	h.Ingest.RegisterRoutes(apiV1)
	h.Analysis.RegisterRoutes(apiV1)
	h.Dashboard.RegisterRoutes(apiV1)
	h.PipelineRun.RegisterRoutes(apiV1.Group("/runs"))
	apiV1.GET("/healthz", h.Health.Health)
}
