package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/utils"

	"gorm.io/datatypes"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// PipelineRunService records and serves the history of ingest and analysis runs.
type PipelineRunService interface {
	// Start records a running pipeline run. Failures are logged and a nil run
	// is returned, so bookkeeping never blocks the pipeline.
	Start(ctx context.Context, kind, trigger string) *entity.PipelineRun
	// Finish stores the outcome of a run started with Start.
	Finish(ctx context.Context, run *entity.PipelineRun, output interface{}, runErr error)
	GetRunByID(ctx context.Context, id uint) (*dto.PipelineRunResponse, error)
	GetRecentRuns(ctx context.Context, kind string, limit int) ([]*dto.PipelineRunResponse, error)
}

// NewPipelineRunService creates a new pipeline run service.
func NewPipelineRunService(runRepo repository.PipelineRunRepository, log *logger.Logger) PipelineRunService {
	return &pipelineRunService{
		runRepo: runRepo,
		logger:  log,
	}
}

type pipelineRunService struct {
	runRepo repository.PipelineRunRepository
	logger  *logger.Logger
}

func (s *pipelineRunService) Start(ctx context.Context, kind, trigger string) *entity.PipelineRun {
	run := &entity.PipelineRun{
		Kind:      kind,
		Trigger:   trigger,
		Status:    entity.RunStatusRunning,
		StartedAt: utils.TimeNowUTC(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Warn("Failed to record pipeline run start", logger.ErrorField(err), logger.StringField("kind", kind))
		return nil
	}
	return run
}

func (s *pipelineRunService) Finish(ctx context.Context, run *entity.PipelineRun, output interface{}, runErr error) {
	if run == nil {
		return
	}

	completedAt := utils.TimeNowUTC()
	run.CompletedAt = sql.NullTime{Time: completedAt, Valid: true}
	run.DurationMs = completedAt.Sub(run.StartedAt).Milliseconds()
	run.Status = entity.RunStatusCompleted

	if output != nil {
		if b, err := json.Marshal(output); err == nil {
			run.Output = datatypes.JSON(b)
		}
	}
	if runErr != nil {
		run.Status = entity.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}

	// the request context may be cancelled by now
	if err := s.runRepo.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to record pipeline run result", logger.ErrorField(err), logger.Field("run_id", run.ID))
	}
}

// GetRunByID retrieves a pipeline run by its ID.
func (s *pipelineRunService) GetRunByID(ctx context.Context, id uint) (*dto.PipelineRunResponse, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find pipeline run", logger.ErrorField(err), logger.Field("run_id", id))
		return nil, err
	}
	return mapToPipelineRunResponse(run), nil
}

// GetRecentRuns retrieves the latest runs, newest first.
func (s *pipelineRunService) GetRecentRuns(ctx context.Context, kind string, limit int) ([]*dto.PipelineRunResponse, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := s.runRepo.FindRecent(ctx, kind, limit)
	if err != nil {
		s.logger.Error("Failed to get pipeline runs", logger.ErrorField(err))
		return nil, err
	}

	responses := make([]*dto.PipelineRunResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, mapToPipelineRunResponse(&runs[i]))
	}
	return responses, nil
}

func mapToPipelineRunResponse(run *entity.PipelineRun) *dto.PipelineRunResponse {
	resp := &dto.PipelineRunResponse{
		ID:         run.ID,
		Kind:       run.Kind,
		Trigger:    run.Trigger,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		DurationMs: run.DurationMs,
	}
	if run.CompletedAt.Valid {
		completedAt := run.CompletedAt.Time
		resp.CompletedAt = &completedAt
	}
	if run.ErrorMessage.Valid {
		resp.ErrorMessage = run.ErrorMessage.String
	}
	if len(run.Output) > 0 {
		var output map[string]interface{}
		if err := json.Unmarshal(run.Output, &output); err == nil {
			resp.Output = output
		}
	}
	return resp
}
