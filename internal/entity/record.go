package entity

import (
	"time"

	"github.com/lib/pq"
)

// Sentiment values produced by the analyzer.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Record is the canonical, storage-ready representation of one scraped item.
type Record struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ExternalItemID *string        `gorm:"uniqueIndex" json:"external_item_id"`
	Source         string         `gorm:"not null;default:unknown" json:"source"`
	URL            *string        `json:"url"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	Summary        *string        `gorm:"type:text" json:"summary"`
	Keywords       pq.StringArray `gorm:"type:text[]" json:"keywords"`
	Sentiment      *string        `gorm:"type:varchar(16)" json:"sentiment"`
	SentimentScore *float64       `json:"sentiment_score"`
	AnalyzedAt     *time.Time     `gorm:"index" json:"analyzed_at"`
}

// TableName specifies the table name for the Record model.
func (Record) TableName() string {
	return "records"
}

// IsAnalyzed reports whether analysis has completed for the record.
func (r Record) IsAnalyzed() bool {
	return r.AnalyzedAt != nil
}

// HasAnalysis reports whether the record carries analysis fields of its own,
// e.g. a draft that arrives already analyzed.
func (r Record) HasAnalysis() bool {
	return r.Summary != nil || r.Sentiment != nil || r.SentimentScore != nil || r.Keywords != nil || r.AnalyzedAt != nil
}

// IsValidSentiment reports whether s is one of the three sentiment values.
func IsValidSentiment(s string) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}
