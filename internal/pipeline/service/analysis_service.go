package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/internal/pipeline/retry"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/telegram"
	"golang-news-insight/pkg/utils"
)

const (
	// MaxAnalysisContent is the content length, in characters, sent to the analyzer.
	MaxAnalysisContent = 4000

	noteNoPending = "no pending rows"

	StoppedQuotaExhausted = "quota_exhausted"
	StoppedRateLimited    = "rate_limited"
	StoppedCancelled      = "cancelled"
	StoppedLeaseExpired   = "lease_expired"
)

// ErrBatchInProgress is returned when another analysis batch holds the run lease.
var ErrBatchInProgress = errors.New("an analysis batch is already running")

// AnalysisService runs analysis batches over pending records.
type AnalysisService interface {
	RunBatch(ctx context.Context, batchSize int, trigger string) (*dto.BatchResult, error)
	SelfTest(ctx context.Context) (*dto.SelfTestResult, error)
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	cfg *config.Config,
	recordRepo repository.RecordRepository,
	aiRepo repository.AIRepository,
	locks repository.RunLockRepository,
	runService PipelineRunService,
	notifier telegram.Notifier,
	log *logger.Logger,
) AnalysisService {
	return newAnalysisService(cfg, recordRepo, aiRepo, locks, runService, notifier, log)
}

func newAnalysisService(
	cfg *config.Config,
	recordRepo repository.RecordRepository,
	aiRepo repository.AIRepository,
	locks repository.RunLockRepository,
	runService PipelineRunService,
	notifier telegram.Notifier,
	log *logger.Logger,
) *analysisService {
	return &analysisService{
		cfg:        cfg,
		recordRepo: recordRepo,
		aiRepo:     aiRepo,
		locks:      locks,
		runService: runService,
		notifier:   notifier,
		logger:     log,
		policy: retry.Policy{
			MaxAttempts: cfg.Analysis.MaxAttempts,
			BaseDelay:   cfg.Analysis.BaseBackoff,
			MaxJitter:   cfg.Analysis.MaxJitter,
		},
		sleep: sleepContext,
		now:   utils.TimeNowUTC,
	}
}

type analysisService struct {
	cfg        *config.Config
	recordRepo repository.RecordRepository
	aiRepo     repository.AIRepository
	locks      repository.RunLockRepository
	runService PipelineRunService
	notifier   telegram.Notifier
	logger     *logger.Logger
	policy     retry.Policy
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// RunBatch analyzes up to batchSize pending records, oldest first. Per-row
// failures are counted in the result. Only a failure to read the pending rows
// is returned as an error.
func (s *analysisService) RunBatch(ctx context.Context, batchSize int, trigger string) (result *dto.BatchResult, err error) {
	lease, ok, err := s.locks.TryAcquire(ctx, common.AnalysisLockKey, s.cfg.Analysis.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire analysis lock: %w", err)
	}
	if !ok {
		return nil, ErrBatchInProgress
	}
	defer lease.Release()
	leaseLost, stopKeepAlive := s.keepAlive(ctx, lease)
	defer stopKeepAlive()

	batchSize = s.resolveBatchSize(batchSize)
	started := time.Now()

	run := s.runService.Start(ctx, common.RunKindAnalysis, trigger)
	defer func() {
		var output interface{}
		if result != nil {
			output = result
		}
		s.runService.Finish(ctx, run, output, err)
	}()

	pending, err := s.recordRepo.FindPending(ctx, batchSize)
	if err != nil {
		s.logger.Error("Failed to fetch pending records", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to fetch pending records: %w", err)
	}

	result = &dto.BatchResult{}
	if len(pending) == 0 {
		result.Note = noteNoPending
		return result, nil
	}

	for i := range pending {
		if leaseLost.Load() {
			result.Stopped = StoppedLeaseExpired
			break
		}
		if ctx.Err() != nil {
			result.Stopped = StoppedCancelled
			break
		}

		rec := &pending[i]
		rowErr := s.analyzeRecord(ctx, rec)
		if rowErr == nil {
			result.Processed++
			if i < len(pending)-1 {
				if sErr := s.sleep(ctx, s.cfg.Analysis.Pacing); sErr != nil {
					result.Stopped = StoppedCancelled
					break
				}
			}
			continue
		}

		result.Failed++
		if result.FirstError == "" {
			result.FirstError = rowErr.Error()
		}
		s.logger.Warn("Failed to analyze record",
			logger.Field("record_id", rec.ID),
			logger.StringField("class", retry.Classify(rowErr).String()),
			logger.ErrorField(rowErr))

		if apperror.IsQuota(rowErr) {
			result.Stopped = StoppedQuotaExhausted
			break
		}
		if apperror.IsRateLimited(rowErr) {
			result.Stopped = StoppedRateLimited
			break
		}
	}

	elapsed := time.Since(started)
	s.logger.Info("Analysis batch completed",
		logger.IntField("pending", len(pending)),
		logger.IntField("processed", result.Processed),
		logger.IntField("failed", result.Failed),
		logger.StringField("stopped", result.Stopped),
		logger.DurationField("elapsed", elapsed))

	if result.Failed > 0 || result.Stopped != "" {
		if nErr := s.notifier.SendMessage(telegram.FormatBatchReport(result, s.aiRepo.Provider(), s.aiRepo.Model(), elapsed)); nErr != nil {
			s.logger.Warn("Failed to send telegram notification", logger.ErrorField(nErr))
		}
	}

	return result, nil
}

// keepAlive refreshes the lease every third of its ttl until stop is called.
// The returned flag is set once the lease can no longer be refreshed, after
// which another batch may already hold it.
func (s *analysisService) keepAlive(ctx context.Context, lease repository.Lease) (*atomic.Bool, func()) {
	lost := &atomic.Bool{}
	ttl := s.cfg.Analysis.LockTTL
	if ttl <= 0 {
		return lost, func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				ok, err := lease.Refresh(ctx)
				if err != nil {
					s.logger.Warn("Failed to refresh analysis lock", logger.ErrorField(err))
					continue
				}
				if !ok {
					s.logger.Error("Analysis lock expired while the batch was running")
					lost.Store(true)
					return
				}
			}
		}
	}()

	var once sync.Once
	return lost, func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// SelfTest pings the configured analyzer directly.
func (s *analysisService) SelfTest(ctx context.Context) (*dto.SelfTestResult, error) {
	result, err := s.aiRepo.SelfTest(ctx)
	if err != nil {
		s.logger.Error("Analyzer self-test failed", logger.ErrorField(err), logger.StringField("provider", s.aiRepo.Provider()))
		return nil, fmt.Errorf("analyzer self-test failed: %w", err)
	}
	return result, nil
}

func (s *analysisService) analyzeRecord(ctx context.Context, rec *entity.Record) error {
	content := utils.Truncate(rec.Content, MaxAnalysisContent)

	analysis, err := s.analyzeWithRetry(ctx, rec.ID, content)
	if err != nil {
		return err
	}

	return s.recordRepo.UpdateAnalysis(ctx, rec.ID, repository.RecordAnalysis{
		Summary:        analysis.Summary,
		Keywords:       analysis.Keywords,
		Sentiment:      analysis.Sentiment,
		SentimentScore: analysis.SentimentScore,
		AnalyzedAt:     s.now(),
	})
}

func (s *analysisService) analyzeWithRetry(ctx context.Context, recordID uint, content string) (*dto.AnalysisResult, error) {
	for attempt := 1; ; attempt++ {
		analysis, err := s.aiRepo.Analyze(ctx, content)
		if err == nil {
			return analysis, nil
		}

		class := retry.Classify(err)
		decision := s.policy.Next(attempt, class)
		if !decision.Retry {
			return nil, err
		}

		s.logger.Debug("Retrying analyzer call",
			logger.Field("record_id", recordID),
			logger.IntField("attempt", attempt),
			logger.StringField("class", class.String()),
			logger.DurationField("delay", decision.Delay))

		if sErr := s.sleep(ctx, decision.Delay); sErr != nil {
			return nil, err
		}
	}
}

func (s *analysisService) resolveBatchSize(batchSize int) int {
	if batchSize <= 0 {
		batchSize = s.cfg.Analysis.BatchSize
	}
	if s.cfg.Analysis.MaxBatchSize > 0 && batchSize > s.cfg.Analysis.MaxBatchSize {
		batchSize = s.cfg.Analysis.MaxBatchSize
	}
	return batchSize
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
