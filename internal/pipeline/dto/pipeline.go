package dto

import (
	"time"
)

// IngestResult is the response of an ingest call. The diagnostic fields are
// only set when no fetched item survived normalization.
type IngestResult struct {
	InsertedCount   int                    `json:"insertedCount"`
	FetchedCount    int                    `json:"fetchedCount"`
	NormalizedCount int                    `json:"normalizedCount"`
	Note            string                 `json:"note,omitempty"`
	SampleKeys      []string               `json:"sampleKeys,omitempty"`
	SampleItem      map[string]interface{} `json:"sampleItem,omitempty"`
}

// BatchResult is the response of an analysis batch call.
type BatchResult struct {
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
	FirstError string `json:"firstError,omitempty"`
	Note       string `json:"note,omitempty"`
	// Stopped names why the batch ended early, if it did.
	Stopped string `json:"stopped,omitempty"`
}

// PipelineRunResponse is a pipeline run as returned by the API.
type PipelineRunResponse struct {
	ID           uint                   `json:"id"`
	Kind         string                 `json:"kind"`
	Trigger      string                 `json:"trigger"`
	Status       string                 `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	DurationMs   int64                  `json:"duration_ms"`
	Output       map[string]interface{} `json:"output,omitempty" swaggertype:"object"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
