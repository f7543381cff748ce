package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun records one ingest or analysis invocation.
type PipelineRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Kind         string         `gorm:"type:varchar(16);not null;index" json:"kind"`
	Trigger      string         `gorm:"type:varchar(16);not null" json:"trigger"`
	Status       RunStatus      `gorm:"type:varchar(16);not null" json:"status"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	DurationMs   int64          `json:"duration_ms"`
	Output       datatypes.JSON `json:"output"`
	ErrorMessage sql.NullString `json:"error_message"`
}

// TableName specifies the table name for the PipelineRun model.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
