package dto

import (
	"time"
)

// Dashboard health states.
const (
	StatusNoData   = "no data"
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// DisplayRecord is a canonical record prepared for the dashboard.
type DisplayRecord struct {
	ID             uint       `json:"id"`
	ExternalItemID *string    `json:"external_item_id"`
	Source         string     `json:"source"`
	URL            *string    `json:"url"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	Summary        *string    `json:"summary"`
	Keywords       []string   `json:"keywords"`
	Sentiment      *string    `json:"sentiment"`
	SentimentScore *float64   `json:"sentiment_score"`
	AnalyzedAt     *time.Time `json:"analyzed_at"`
	Confidence     float64    `json:"confidence"`
	// UserRating is supplied by the caller and never persisted.
	UserRating *float64 `json:"user_rating,omitempty"`
}

// SentimentBreakdown counts records per sentiment.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// DashboardStats are fleet-level statistics derived from display records.
type DashboardStats struct {
	TotalRecords       int                `json:"totalRecords"`
	AnalyzedRecords    int                `json:"analyzedRecords"`
	CompletionRate     float64            `json:"completionRate"`
	AvgConfidence      float64            `json:"avgConfidence"`
	SentimentBreakdown SentimentBreakdown `json:"sentimentBreakdown"`
	AvgUserRating      float64            `json:"avgUserRating"`
	// LastAnalysis is the newest created_at among the records.
	LastAnalysis *time.Time `json:"lastAnalysis"`
	// LastAnalyzedAt is the newest analyzed_at among the records.
	LastAnalyzedAt *time.Time `json:"lastAnalyzedAt"`
	Status         string     `json:"status"`
}

// DashboardFilter narrows and orders the dashboard records.
type DashboardFilter struct {
	Sentiment string `query:"sentiment"`
	Status    string `query:"status"`
	Query     string `query:"q"`
	Sort      string `query:"sort"`
}

// DashboardResponse is the dashboard payload. Stats are computed over the
// records that match the filter.
type DashboardResponse struct {
	Stats   DashboardStats  `json:"stats"`
	Records []DisplayRecord `json:"records"`
}

// SummaryRequest carries ephemeral user ratings keyed by record id.
type SummaryRequest struct {
	Ratings map[string]float64 `json:"ratings"`
}
