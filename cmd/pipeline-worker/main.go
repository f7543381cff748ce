package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-news-insight/internal/pipeline/app"
	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/delivery/scheduler"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	limit      int
	batchSize  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs ingest and analysis on their cron schedules",
	Run:   runServe,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Runs a single ingest and prints the result",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app.App) (interface{}, error) {
			return a.IngestService.Ingest(ctx, limit, common.TriggerCLI)
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Runs a single analysis batch and prints the result",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app.App) (interface{}, error) {
			return a.AnalysisService.RunBatch(ctx, batchSize, common.TriggerCLI)
		})
	},
}

func setup(ctx context.Context) (*config.Config, *logger.Logger, *app.App) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", logger.ErrorField(err))
	}
	return cfg, appLogger, application
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, application := setup(ctx)
	defer func() { _ = appLogger.Sync() }()
	defer application.Close()

	appLogger.Info("Starting Pipeline Worker", logger.StringField("name", cfg.App.Name))

	sched := scheduler.NewScheduler(cfg.Schedule, application.IngestService, application.AnalysisService, appLogger)
	if err := sched.Register(); err != nil {
		appLogger.Fatal("Failed to register schedules", logger.ErrorField(err))
	}
	if sched.Len() == 0 {
		appLogger.Warn("No schedules configured, worker will idle")
	}
	sched.Start(ctx)

	<-ctx.Done()

	appLogger.Info("Shutting down pipeline worker...")
	select {
	case <-sched.Stop().Done():
	case <-time.After(30 * time.Second):
		appLogger.Warn("Timed out waiting for running jobs")
	}
	appLogger.Info("Pipeline worker stopped.")
}

func runOnce(fn func(ctx context.Context, a *app.App) (interface{}, error)) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, appLogger, application := setup(ctx)
	defer func() { _ = appLogger.Sync() }()
	defer application.Close()

	result, err := fn(ctx, application)
	if err != nil {
		appLogger.Error("Run failed", logger.ErrorField(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		appLogger.Error("Failed to print result", logger.ErrorField(err))
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline-worker"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	ingestCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items to fetch (0 uses the configured default)")
	analyzeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Number of pending records to analyze (0 uses the configured default)")

	rootCmd.AddCommand(serveCmd, ingestCmd, analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-worker CLI: %s\n", err)
		os.Exit(1)
	}
}
