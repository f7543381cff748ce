package service

import (
	"context"
	"sync"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/normalizer"
	"golang-news-insight/internal/pipeline/repository"

	"github.com/stretchr/testify/mock"
)

type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) UpsertBatch(ctx context.Context, records []entity.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepository) FindPending(ctx context.Context, limit int) ([]entity.Record, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]entity.Record)
	return records, args.Error(1)
}

func (m *mockRecordRepository) UpdateAnalysis(ctx context.Context, id uint, analysis repository.RecordAnalysis) error {
	return m.Called(ctx, id, analysis).Error(0)
}

func (m *mockRecordRepository) FindRecent(ctx context.Context, limit int) ([]entity.Record, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]entity.Record)
	return records, args.Error(1)
}

func (m *mockRecordRepository) FindByID(ctx context.Context, id uint) (*entity.Record, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*entity.Record)
	return record, args.Error(1)
}

type mockAIRepository struct {
	mock.Mock
}

func (m *mockAIRepository) Analyze(ctx context.Context, content string) (*dto.AnalysisResult, error) {
	args := m.Called(ctx, content)
	result, _ := args.Get(0).(*dto.AnalysisResult)
	return result, args.Error(1)
}

func (m *mockAIRepository) SelfTest(ctx context.Context) (*dto.SelfTestResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*dto.SelfTestResult)
	return result, args.Error(1)
}

func (m *mockAIRepository) Provider() string { return "mock" }

func (m *mockAIRepository) Model() string { return "mock-model" }

type mockItemSource struct {
	mock.Mock
}

func (m *mockItemSource) FetchItems(ctx context.Context, limit int) ([]normalizer.RawItem, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]normalizer.RawItem)
	return items, args.Error(1)
}

func (m *mockItemSource) Name() string { return "mock source" }

type mockPipelineRunRepository struct {
	mock.Mock
}

func (m *mockPipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockPipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockPipelineRunRepository) FindByID(ctx context.Context, id uint) (*entity.PipelineRun, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*entity.PipelineRun)
	return run, args.Error(1)
}

func (m *mockPipelineRunRepository) FindRecent(ctx context.Context, kind string, limit int) ([]entity.PipelineRun, error) {
	args := m.Called(ctx, kind, limit)
	runs, _ := args.Get(0).([]entity.PipelineRun)
	return runs, args.Error(1)
}

// nopRunService discards run bookkeeping.
type nopRunService struct{}

func (nopRunService) Start(context.Context, string, string) *entity.PipelineRun { return nil }

func (nopRunService) Finish(context.Context, *entity.PipelineRun, interface{}, error) {}

func (nopRunService) GetRunByID(context.Context, uint) (*dto.PipelineRunResponse, error) {
	return nil, repository.ErrRunNotFound
}

func (nopRunService) GetRecentRuns(context.Context, string, int) ([]*dto.PipelineRunResponse, error) {
	return nil, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

// recordingSleeper captures requested delays without sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

// lostLeaseLocks grants a lease that can never be refreshed.
type lostLeaseLocks struct{}

func (lostLeaseLocks) TryAcquire(context.Context, string, time.Duration) (repository.Lease, bool, error) {
	return lostLease{}, true, nil
}

type lostLease struct{}

func (lostLease) Refresh(context.Context) (bool, error) { return false, nil }

func (lostLease) Release() {}
