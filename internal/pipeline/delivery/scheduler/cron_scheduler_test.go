package scheduler

import (
	"context"
	"errors"
	"testing"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/service"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIngestService struct {
	mock.Mock
}

func (m *mockIngestService) Ingest(ctx context.Context, limit int, trigger string) (*dto.IngestResult, error) {
	args := m.Called(ctx, limit, trigger)
	result, _ := args.Get(0).(*dto.IngestResult)
	return result, args.Error(1)
}

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) RunBatch(ctx context.Context, batchSize int, trigger string) (*dto.BatchResult, error) {
	args := m.Called(ctx, batchSize, trigger)
	result, _ := args.Get(0).(*dto.BatchResult)
	return result, args.Error(1)
}

func (m *mockAnalysisService) SelfTest(ctx context.Context) (*dto.SelfTestResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.SelfTestResult)
	return result, args.Error(1)
}

func TestRegister(t *testing.T) {
	t.Run("both jobs", func(t *testing.T) {
		s := NewScheduler(config.Schedule{IngestCron: "*/15 * * * *", AnalysisCron: "@every 10m"}, nil, nil, logger.NewNop())
		require.NoError(t, s.Register())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("empty expressions are skipped", func(t *testing.T) {
		s := NewScheduler(config.Schedule{AnalysisCron: "0 * * * *"}, nil, nil, logger.NewNop())
		require.NoError(t, s.Register())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("invalid expression", func(t *testing.T) {
		s := NewScheduler(config.Schedule{IngestCron: "every tuesday"}, nil, nil, logger.NewNop())
		err := s.Register()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid ingest schedule")
	})

	t.Run("seconds field is rejected", func(t *testing.T) {
		s := NewScheduler(config.Schedule{IngestCron: "0 */5 * * * *"}, nil, nil, logger.NewNop())
		assert.Error(t, s.Register())
	})
}

func TestRunIngestUsesScheduleTrigger(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("Ingest", mock.Anything, 0, common.TriggerSchedule).
		Return(&dto.IngestResult{InsertedCount: 3, FetchedCount: 4}, nil).Once()

	s := NewScheduler(config.Schedule{}, ingest, nil, logger.NewNop())
	s.runIngest()

	ingest.AssertExpectations(t)
}

func TestRunIngestFailure(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("Ingest", mock.Anything, 0, common.TriggerSchedule).Return(nil, errors.New("boom")).Once()

	s := NewScheduler(config.Schedule{}, ingest, nil, logger.NewNop())
	assert.NotPanics(t, s.runIngest)
	ingest.AssertExpectations(t)
}

func TestRunAnalysis(t *testing.T) {
	tests := []struct {
		name   string
		result *dto.BatchResult
		err    error
	}{
		{name: "success", result: &dto.BatchResult{Processed: 5}},
		{name: "batch in progress", err: service.ErrBatchInProgress},
		{name: "failure", err: errors.New("storage down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := new(mockAnalysisService)
			analysis.On("RunBatch", mock.Anything, 0, common.TriggerSchedule).Return(tt.result, tt.err).Once()

			s := NewScheduler(config.Schedule{}, nil, analysis, logger.NewNop())
			assert.NotPanics(t, s.runAnalysis)
			analysis.AssertExpectations(t)
		})
	}
}

func TestStartUsesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(config.Schedule{}, nil, nil, logger.NewNop())
	s.Start(ctx)
	assert.Equal(t, ctx, s.ctx)
	<-s.Stop().Done()
}
