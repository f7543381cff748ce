package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-news-insight/internal/pipeline/app"
	"golang-news-insight/internal/pipeline/config"
	delivery "golang-news-insight/internal/pipeline/delivery/http"
	_ "golang-news-insight/internal/pipeline/docs"
	"golang-news-insight/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the insight API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Insight API", logger.StringField("name", cfg.App.Name), logger.StringField("env", cfg.App.Env))

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", logger.ErrorField(err))
	}
	defer application.Close()

	e := echo.New()
	e.HideBanner = true

	delivery.RegisterRoutes(e, delivery.Handlers{
		Ingest:      delivery.NewIngestHandler(application.IngestService, appLogger),
		Analysis:    delivery.NewAnalysisHandler(application.AnalysisService, appLogger),
		Dashboard:   delivery.NewDashboardHandler(application.DashboardService, appLogger),
		PipelineRun: delivery.NewPipelineRunHandler(application.PipelineRunService, appLogger),
		Health:      &delivery.HealthHandler{Check: application.Ping},
	})

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title News Insight API
// @version 1.0
// @description Ingests scraped news items, analyzes their sentiment and serves dashboard aggregates.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "insight-api"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing insight-api CLI: %s\n", err)
		os.Exit(1)
	}
}
