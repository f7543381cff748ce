package repository

import (
	"context"
	"testing"
	"time"

	"golang-news-insight/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPrepareUpsert_DedupeAndPartition(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []entity.Record{
		{ExternalItemID: strPtr("a"), Content: "first a"},
		{Content: "no id 1"},
		{ExternalItemID: strPtr("b"), Content: "b", Summary: strPtr("done"), AnalyzedAt: &now},
		{ExternalItemID: strPtr("a"), Content: "second a"},
		{Content: "no id 2"},
	}

	plain, withAnalysis := PrepareUpsert(records)

	require.Len(t, plain, 3)
	assert.Equal(t, "second a", plain[0].Content, "last duplicate wins in first position")
	assert.Equal(t, "no id 1", plain[1].Content)
	assert.Equal(t, "no id 2", plain[2].Content)

	require.Len(t, withAnalysis, 1)
	assert.Equal(t, "b", withAnalysis[0].Content)
}

func TestPrepareUpsert_Empty(t *testing.T) {
	plain, withAnalysis := PrepareUpsert(nil)
	assert.Empty(t, plain)
	assert.Empty(t, withAnalysis)
}

type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) UpsertBatch(ctx context.Context, records []entity.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepository) FindPending(ctx context.Context, limit int) ([]entity.Record, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.Record), args.Error(1)
}

func (m *mockRecordRepository) UpdateAnalysis(ctx context.Context, id uint, analysis RecordAnalysis) error {
	return m.Called(ctx, id, analysis).Error(0)
}

func (m *mockRecordRepository) FindRecent(ctx context.Context, limit int) ([]entity.Record, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.Record), args.Error(1)
}

func (m *mockRecordRepository) FindByID(ctx context.Context, id uint) (*entity.Record, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*entity.Record)
	return rec, args.Error(1)
}

func TestCachedRecordRepository_FlushesOnWrite(t *testing.T) {
	ctx := context.Background()
	next := &mockRecordRepository{}
	next.On("FindRecent", ctx, 200).Return([]entity.Record{{ID: 1}}, nil).Twice()
	next.On("UpdateAnalysis", ctx, uint(1), mock.Anything).Return(nil).Once()

	repo := NewCachedRecordRepository(next, time.Minute)

	_, err := repo.FindRecent(ctx, 200)
	require.NoError(t, err)
	_, err = repo.FindRecent(ctx, 200)
	require.NoError(t, err)
	next.AssertNumberOfCalls(t, "FindRecent", 1)

	require.NoError(t, repo.UpdateAnalysis(ctx, 1, RecordAnalysis{}))

	records, err := repo.FindRecent(ctx, 200)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	next.AssertNumberOfCalls(t, "FindRecent", 2)
	next.AssertExpectations(t)
}

func TestCachedRecordRepository_ZeroTTLPassesThrough(t *testing.T) {
	next := &mockRecordRepository{}
	assert.Same(t, next, NewCachedRecordRepository(next, 0))
}
