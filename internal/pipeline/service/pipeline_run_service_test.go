package service

import (
	"context"
	"errors"
	"testing"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPipelineRun_StartAndFinish(t *testing.T) {
	ctx := context.Background()
	repo := &mockPipelineRunRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*entity.PipelineRun")).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.PipelineRun")).Return(nil).Once()
	svc := NewPipelineRunService(repo, logger.NewNop())

	run := svc.Start(ctx, "analysis", "http")
	require.NotNil(t, run)
	assert.Equal(t, entity.RunStatusRunning, run.Status)

	svc.Finish(ctx, run, &dto.BatchResult{Processed: 3}, errors.New("boom"))

	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.True(t, run.CompletedAt.Valid)
	assert.Equal(t, "boom", run.ErrorMessage.String)
	assert.JSONEq(t, `{"processed":3,"failed":0}`, string(run.Output))
	repo.AssertExpectations(t)
}

func TestPipelineRun_StartFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := &mockPipelineRunRepository{}
	repo.On("Create", ctx, mock.Anything).Return(errors.New("table missing")).Once()
	svc := NewPipelineRunService(repo, logger.NewNop())

	run := svc.Start(ctx, "ingest", "cli")
	assert.Nil(t, run)

	svc.Finish(ctx, run, nil, nil)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPipelineRun_GetRecentRunsClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mockPipelineRunRepository{}
	repo.On("FindRecent", ctx, "ingest", 200).Return([]entity.PipelineRun{
		{ID: 4, Kind: "ingest", Status: entity.RunStatusCompleted, Output: []byte(`{"insertedCount":2}`)},
	}, nil).Once()
	svc := NewPipelineRunService(repo, logger.NewNop())

	runs, err := svc.GetRecentRuns(ctx, "ingest", 10000)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, float64(2), runs[0].Output["insertedCount"])
	assert.Nil(t, runs[0].CompletedAt)
}
