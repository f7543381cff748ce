// Package aggregate derives dashboard values from fetched records. Nothing here
// performs I/O or keeps state between calls.
package aggregate

import (
	"sort"
	"strings"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/dto"
)

const (
	defaultConfidence = 0.5
	healthyConfidence = 0.85
)

// Sort orders accepted by Sort.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortConfidence = "confidence"
)

// Confidence maps a signed sentiment score in [-1, 1] to [0, 1]. A missing
// score yields 0.5.
func Confidence(score *float64) float64 {
	if score == nil {
		return defaultConfidence
	}
	c := (*score + 1) / 2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ToDisplay converts a stored record into a display record.
func ToDisplay(r entity.Record) dto.DisplayRecord {
	var keywords []string
	if r.Keywords != nil {
		keywords = []string(r.Keywords)
	}
	return dto.DisplayRecord{
		ID:             r.ID,
		ExternalItemID: r.ExternalItemID,
		Source:         r.Source,
		URL:            r.URL,
		Content:        r.Content,
		CreatedAt:      r.CreatedAt,
		Summary:        r.Summary,
		Keywords:       keywords,
		Sentiment:      r.Sentiment,
		SentimentScore: r.SentimentScore,
		AnalyzedAt:     r.AnalyzedAt,
		Confidence:     Confidence(r.SentimentScore),
	}
}

// Summarize computes fleet statistics over records.
func Summarize(records []dto.DisplayRecord) dto.DashboardStats {
	stats := dto.DashboardStats{TotalRecords: len(records)}
	if len(records) == 0 {
		stats.Status = dto.StatusNoData
		return stats
	}

	var (
		confidenceSum float64
		ratingSum     float64
		ratingCount   int
	)
	for i := range records {
		r := &records[i]
		confidenceSum += r.Confidence

		if r.AnalyzedAt != nil {
			stats.AnalyzedRecords++
			if stats.LastAnalyzedAt == nil || r.AnalyzedAt.After(*stats.LastAnalyzedAt) {
				t := *r.AnalyzedAt
				stats.LastAnalyzedAt = &t
			}
		}

		if stats.LastAnalysis == nil || r.CreatedAt.After(*stats.LastAnalysis) {
			t := r.CreatedAt
			stats.LastAnalysis = &t
		}

		if r.Sentiment != nil {
			switch *r.Sentiment {
			case entity.SentimentPositive:
				stats.SentimentBreakdown.Positive++
			case entity.SentimentNeutral:
				stats.SentimentBreakdown.Neutral++
			case entity.SentimentNegative:
				stats.SentimentBreakdown.Negative++
			}
		}

		if r.UserRating != nil {
			ratingSum += *r.UserRating
			ratingCount++
		}
	}

	stats.AvgConfidence = confidenceSum / float64(len(records))
	stats.CompletionRate = float64(stats.AnalyzedRecords) / float64(len(records))
	if ratingCount > 0 {
		stats.AvgUserRating = ratingSum / float64(ratingCount)
	}
	stats.Status = classify(stats)
	return stats
}

func classify(stats dto.DashboardStats) string {
	switch {
	case stats.TotalRecords == 0:
		return dto.StatusNoData
	case stats.AnalyzedRecords == stats.TotalRecords && stats.AvgConfidence > healthyConfidence:
		return dto.StatusHealthy
	default:
		return dto.StatusDegraded
	}
}

// Filter returns the records matching filter, preserving order.
func Filter(records []dto.DisplayRecord, filter dto.DashboardFilter) []dto.DisplayRecord {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]dto.DisplayRecord, 0, len(records))
	for _, r := range records {
		if filter.Sentiment != "" && (r.Sentiment == nil || *r.Sentiment != filter.Sentiment) {
			continue
		}
		switch filter.Status {
		case "analyzed":
			if r.AnalyzedAt == nil {
				continue
			}
		case "pending":
			if r.AnalyzedAt != nil {
				continue
			}
		}
		if query != "" && !matches(r, query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r dto.DisplayRecord, query string) bool {
	if strings.Contains(strings.ToLower(r.Content), query) {
		return true
	}
	if r.Summary != nil && strings.Contains(strings.ToLower(*r.Summary), query) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Source), query)
}

// Sort orders records in place. Confidence order is descending and stable,
// with ties broken by newest created_at first.
func Sort(records []dto.DisplayRecord, order string) {
	switch order {
	case SortOldest:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		})
	case SortConfidence:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Confidence != records[j].Confidence {
				return records[i].Confidence > records[j].Confidence
			}
			return records[i].CreatedAt.After(records[j].CreatedAt)
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		})
	}
}

// ApplyRatings attaches ephemeral ratings keyed by record id. Ratings outside
// 1..5 are ignored.
func ApplyRatings(records []dto.DisplayRecord, ratings map[uint]float64) {
	for i := range records {
		rating, ok := ratings[records[i].ID]
		if !ok || rating < 1 || rating > 5 {
			continue
		}
		r := rating
		records[i].UserRating = &r
	}
}
