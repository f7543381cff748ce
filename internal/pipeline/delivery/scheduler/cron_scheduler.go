package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs ingest and analysis on cron schedules.
type Scheduler struct {
	cfg             config.Schedule
	ingestService   service.IngestService
	analysisService service.AnalysisService
	logger          *logger.Logger
	cron            *cron.Cron
	ctx             context.Context
}

// NewScheduler creates a new scheduler. Jobs are added by Register.
func NewScheduler(cfg config.Schedule, ingestService service.IngestService, analysisService service.AnalysisService, log *logger.Logger) *Scheduler {
	cl := cronLogger{log: log}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cfg:             cfg,
		ingestService:   ingestService,
		analysisService: analysisService,
		logger:          log,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx: context.Background(),
	}
}

// Register adds a job for every non-empty cron expression.
func (s *Scheduler) Register() error {
	jobs := []struct {
		name string
		expr string
		run  func()
	}{
		{common.RunKindIngest, s.cfg.IngestCron, s.runIngest},
		{common.RunKindAnalysis, s.cfg.AnalysisCron, s.runAnalysis},
	}
	for _, job := range jobs {
		if job.expr == "" {
			s.logger.Info("Schedule disabled", logger.StringField("job", job.name))
			continue
		}
		if _, err := s.cron.AddFunc(job.expr, job.run); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", job.name, job.expr, err)
		}
		s.logger.Info("Schedule registered", logger.StringField("job", job.name), logger.StringField("cron", job.expr))
	}
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in the background. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("Scheduler started", logger.IntField("jobs", s.Len()))
}

// Stop stops the cron loop and returns a context that is done when
// running jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runIngest() {
	result, err := s.ingestService.Ingest(s.ctx, 0, common.TriggerSchedule)
	if err != nil {
		s.logger.Error("Scheduled ingest failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled ingest finished",
		logger.IntField("inserted", result.InsertedCount),
		logger.IntField("fetched", result.FetchedCount),
	)
}

func (s *Scheduler) runAnalysis() {
	result, err := s.analysisService.RunBatch(s.ctx, 0, common.TriggerSchedule)
	if errors.Is(err, service.ErrBatchInProgress) {
		s.logger.Info("Scheduled analysis skipped, another batch is running")
		return
	}
	if err != nil {
		s.logger.Error("Scheduled analysis failed", logger.ErrorField(err))
		return
	}
	s.logger.Info("Scheduled analysis finished",
		logger.IntField("processed", result.Processed),
		logger.IntField("failed", result.Failed),
		logger.StringField("stopped", result.Stopped),
	)
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
