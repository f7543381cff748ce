package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var analyzedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testAnalysisConfig() *config.Config {
	return &config.Config{
		Analysis: config.Analysis{
			BatchSize:    20,
			MaxBatchSize: 100,
			Pacing:       120 * time.Millisecond,
			LockTTL:      time.Minute,
			MaxAttempts:  3,
			BaseBackoff:  300 * time.Millisecond,
		},
	}
}

type analysisFixture struct {
	svc      *analysisService
	records  *mockRecordRepository
	ai       *mockAIRepository
	sleeper  *recordingSleeper
	notifier *recordingNotifier
}

func newAnalysisFixture() *analysisFixture {
	f := &analysisFixture{
		records:  &mockRecordRepository{},
		ai:       &mockAIRepository{},
		sleeper:  &recordingSleeper{},
		notifier: &recordingNotifier{},
	}
	f.svc = newAnalysisService(testAnalysisConfig(), f.records, f.ai, repository.NewLocalRunLockRepository(), nopRunService{}, f.notifier, logger.NewNop())
	f.svc.sleep = f.sleeper.sleep
	f.svc.now = func() time.Time { return analyzedAt }
	return f
}

func pendingRecords(n int) []entity.Record {
	records := make([]entity.Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, entity.Record{ID: uint(i), Content: fmt.Sprintf("c%d", i)})
	}
	return records
}

func goodAnalysis() *dto.AnalysisResult {
	return &dto.AnalysisResult{
		Summary:        "summary",
		Keywords:       []string{"a", "b", "c"},
		Sentiment:      entity.SentimentPositive,
		SentimentScore: 0.4,
	}
}

func TestRunBatch_QuotaStopsBatch(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 5).Return(pendingRecords(5), nil)
	f.ai.On("Analyze", ctx, "c1").Return(goodAnalysis(), nil).Once()
	f.ai.On("Analyze", ctx, "c2").Return(goodAnalysis(), nil).Once()
	f.ai.On("Analyze", ctx, "c3").Return(nil, &apperror.QuotaError{Provider: "mock", Body: "insufficient_quota"}).Once()
	f.records.On("UpdateAnalysis", ctx, uint(1), mock.Anything).Return(nil).Once()
	f.records.On("UpdateAnalysis", ctx, uint(2), mock.Anything).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 5, "test")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, StoppedQuotaExhausted, result.Stopped)
	assert.Contains(t, result.FirstError, "quota exhausted")

	f.ai.AssertNotCalled(t, "Analyze", ctx, "c4")
	f.ai.AssertNotCalled(t, "Analyze", ctx, "c5")
	f.ai.AssertNumberOfCalls(t, "Analyze", 3)
	f.records.AssertExpectations(t)

	assert.Equal(t, []time.Duration{120 * time.Millisecond, 120 * time.Millisecond}, f.sleeper.delays,
		"pacing after each success, no retry sleep for quota errors")
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "Stopped early")
}

func TestRunBatch_ShapeErrorIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(2), nil)
	f.ai.On("Analyze", ctx, "c1").Return(nil, &apperror.ShapeError{Reason: "keywords must be an array"}).Once()
	f.ai.On("Analyze", ctx, "c2").Return(goodAnalysis(), nil).Once()
	f.records.On("UpdateAnalysis", ctx, uint(2), mock.Anything).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, result.Stopped)
	assert.Contains(t, result.FirstError, "keywords")
	f.ai.AssertNumberOfCalls(t, "Analyze", 2)
	f.records.AssertNotCalled(t, "UpdateAnalysis", ctx, uint(1), mock.Anything)
	assert.Empty(t, f.sleeper.delays, "no retry sleep and no pacing after the last row")
}

func TestRunBatch_RetriesServerErrors(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(1), nil)
	f.ai.On("Analyze", ctx, "c1").Return(nil, &apperror.ProviderError{Provider: "mock", StatusCode: http.StatusServiceUnavailable}).Twice()
	f.ai.On("Analyze", ctx, "c1").Return(goodAnalysis(), nil).Once()
	f.records.On("UpdateAnalysis", ctx, uint(1), repository.RecordAnalysis{
		Summary:        "summary",
		Keywords:       []string{"a", "b", "c"},
		Sentiment:      entity.SentimentPositive,
		SentimentScore: 0.4,
		AnalyzedAt:     analyzedAt,
	}).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 600 * time.Millisecond}, f.sleeper.delays)
	f.ai.AssertNumberOfCalls(t, "Analyze", 3)
	f.records.AssertExpectations(t)
	assert.Empty(t, f.notifier.messages)
}

func TestRunBatch_PropagatedRateLimitStopsBatch(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(3), nil)
	f.ai.On("Analyze", ctx, "c1").Return(nil, &apperror.ProviderError{Provider: "mock", StatusCode: http.StatusTooManyRequests}).Times(3)

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, StoppedRateLimited, result.Stopped)
	f.ai.AssertNumberOfCalls(t, "Analyze", 3)
	f.ai.AssertNotCalled(t, "Analyze", ctx, "c2")
}

func TestRunBatch_StorageFailureCountsAsFailedRow(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(2), nil)
	f.ai.On("Analyze", ctx, mock.Anything).Return(goodAnalysis(), nil)
	f.records.On("UpdateAnalysis", ctx, uint(1), mock.Anything).Return(&apperror.StorageError{Op: "update analysis", Err: errors.New("connection reset")}).Once()
	f.records.On("UpdateAnalysis", ctx, uint(2), mock.Anything).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, strings.HasPrefix(result.FirstError, "storage update analysis failed"), result.FirstError)
}

func TestRunBatch_TruncatesContent(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	long := strings.Repeat("x", MaxAnalysisContent+500)
	f.records.On("FindPending", ctx, 20).Return([]entity.Record{{ID: 1, Content: long}}, nil)
	f.ai.On("Analyze", ctx, strings.Repeat("x", MaxAnalysisContent)).Return(goodAnalysis(), nil).Once()
	f.records.On("UpdateAnalysis", ctx, uint(1), mock.Anything).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	f.ai.AssertExpectations(t)
}

func TestRunBatch_NoPendingRows(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return([]entity.Record{}, nil)

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)
	assert.Equal(t, &dto.BatchResult{Note: "no pending rows"}, result)
	f.ai.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestRunBatch_FetchFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 20).Return(nil, &apperror.StorageError{Op: "find pending records", Err: errors.New("down")})

	_, err := f.svc.RunBatch(ctx, 0, "test")
	var storageErr *apperror.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestRunBatch_BatchSizeIsCapped(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.records.On("FindPending", ctx, 100).Return([]entity.Record{}, nil).Once()

	_, err := f.svc.RunBatch(ctx, 5000, "test")
	require.NoError(t, err)
	f.records.AssertExpectations(t)
}

func TestRunBatch_ConcurrentBatchRejected(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()

	lease, ok, err := f.svc.locks.TryAcquire(ctx, "news-insight:lock:analysis", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer lease.Release()

	_, err = f.svc.RunBatch(ctx, 0, "test")
	assert.ErrorIs(t, err, ErrBatchInProgress)
	f.records.AssertNotCalled(t, "FindPending", mock.Anything, mock.Anything)
}

func TestRunBatch_LeaseOutlivesTTLWhileRunning(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.svc.cfg.Analysis.LockTTL = 60 * time.Millisecond
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(2), nil).Once()
	f.ai.On("Analyze", ctx, "c1").Return(goodAnalysis(), nil).After(100 * time.Millisecond).Once()
	f.ai.On("Analyze", ctx, "c2").Return(goodAnalysis(), nil).After(100 * time.Millisecond).Once()
	f.records.On("UpdateAnalysis", ctx, mock.Anything, mock.Anything).Return(nil).Twice()

	type outcome struct {
		result *dto.BatchResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		result, err := f.svc.RunBatch(ctx, 0, "test")
		first <- outcome{result, err}
	}()

	time.Sleep(120 * time.Millisecond)
	_, err := f.svc.RunBatch(ctx, 0, "test")
	assert.ErrorIs(t, err, ErrBatchInProgress, "the running batch keeps its lease past the ttl")

	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, 2, got.result.Processed)
	assert.Empty(t, got.result.Stopped)
	f.ai.AssertNumberOfCalls(t, "Analyze", 2)
	f.records.AssertExpectations(t)
}

func TestRunBatch_StopsWhenLeaseIsLost(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.svc.cfg.Analysis.LockTTL = 30 * time.Millisecond
	f.svc.locks = lostLeaseLocks{}
	f.records.On("FindPending", ctx, 20).Return(pendingRecords(3), nil).Once()
	f.ai.On("Analyze", ctx, "c1").Return(goodAnalysis(), nil).After(60 * time.Millisecond).Once()
	f.records.On("UpdateAnalysis", ctx, uint(1), mock.Anything).Return(nil).Once()

	result, err := f.svc.RunBatch(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, StoppedLeaseExpired, result.Stopped)
	f.ai.AssertNotCalled(t, "Analyze", ctx, "c2")
	f.ai.AssertNotCalled(t, "Analyze", ctx, "c3")
	require.Len(t, f.notifier.messages, 1)
}

func TestSelfTest(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture()
	f.ai.On("SelfTest", ctx).Return(&dto.SelfTestResult{OK: true, Status: 200, Provider: "mock"}, nil).Once()

	result, err := f.svc.SelfTest(ctx)
	require.NoError(t, err)
	assert.True(t, result.OK)
}
