package repository

import (
	"context"
	"errors"

	"golang-news-insight/internal/entity"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned when a pipeline run id does not exist.
var ErrRunNotFound = errors.New("pipeline run not found")

// PipelineRunRepository defines the interface for pipeline run history data operations.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entity.PipelineRun) error
	Update(ctx context.Context, run *entity.PipelineRun) error
	FindByID(ctx context.Context, id uint) (*entity.PipelineRun, error)
	FindRecent(ctx context.Context, kind string, limit int) ([]entity.PipelineRun, error)
}

// NewPipelineRunRepository creates a new GORM-based pipeline run repository.
func NewPipelineRunRepository(db *gorm.DB) PipelineRunRepository {
	return &pipelineRunRepository{db: db}
}

type pipelineRunRepository struct {
	db *gorm.DB
}

// Create creates a new pipeline run record.
func (r *pipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves the final state of a run.
func (r *pipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindByID retrieves a pipeline run by its ID.
func (r *pipelineRunRepository) FindByID(ctx context.Context, id uint) (*entity.PipelineRun, error) {
	var run entity.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRecent returns the latest runs, optionally filtered by kind.
func (r *pipelineRunRepository) FindRecent(ctx context.Context, kind string, limit int) ([]entity.PipelineRun, error) {
	query := r.db.WithContext(ctx).Order("started_at desc").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var runs []entity.PipelineRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
