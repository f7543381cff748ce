package app

import (
	"context"
	"fmt"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/postgres"
	"golang-news-insight/pkg/redis"
	"golang-news-insight/pkg/telegram"
)

// App holds the wired services shared by the API and the worker.
type App struct {
	DB    *postgres.DB
	Redis *redis.Client

	IngestService      service.IngestService
	AnalysisService    service.AnalysisService
	DashboardService   service.DashboardService
	PipelineRunService service.PipelineRunService

	logger  *logger.Logger
	closers []func() error
}

// New connects to the stores and wires every repository and service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{logger: log}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	if sqlDB, err := db.DB.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	var locks repository.RunLockRepository
	if cfg.RedisEnabled() {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.Redis = redisClient
		a.closers = append(a.closers, redisClient.Close)
		locks = repository.NewRedisRunLockRepository(redisClient.Client, log)
	} else {
		log.Warn("Redis not configured, analysis lock is local to this process")
		locks = repository.NewLocalRunLockRepository()
	}

	source, err := newItemSource(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	aiRepo, err := newAIRepository(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
	}

	recordRepo := repository.NewCachedRecordRepository(repository.NewRecordRepository(db.DB), cfg.Dashboard.CacheTTL)
	runRepo := repository.NewPipelineRunRepository(db.DB)

	a.PipelineRunService = service.NewPipelineRunService(runRepo, log)
	a.IngestService = service.NewIngestService(cfg, source, recordRepo, a.PipelineRunService, notifier, log)
	a.AnalysisService = service.NewAnalysisService(cfg, recordRepo, aiRepo, locks, a.PipelineRunService, notifier, log)
	a.DashboardService = service.NewDashboardService(recordRepo, log)

	log.Info("Pipeline wired",
		logger.StringField("source", source.Name()),
		logger.StringField("ai_provider", aiRepo.Provider()),
		logger.StringField("ai_model", aiRepo.Model()),
	)
	return a, nil
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close resource", logger.ErrorField(err))
		}
	}
	a.closers = nil
}

func newItemSource(cfg *config.Config, log *logger.Logger) (repository.ItemSource, error) {
	switch cfg.Scraper.Provider {
	case "dataset":
		return repository.NewDatasetSourceRepository(cfg.Scraper, log), nil
	case "rss":
		return repository.NewFeedSourceRepository(cfg.Scraper, log), nil
	default:
		return nil, fmt.Errorf("unknown scraper provider %q", cfg.Scraper.Provider)
	}
}

func newAIRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.AIRepository, error) {
	switch cfg.AI.Provider {
	case "openai":
		return repository.NewOpenAIRepository(cfg.AI, log), nil
	case "gemini":
		client, err := repository.NewGeminiClient(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		return repository.NewGeminiAIRepository(cfg.AI, log, client), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}
