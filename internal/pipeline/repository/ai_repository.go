package repository

import (
	"context"
	"time"

	"golang-news-insight/internal/pipeline/dto"

	"golang.org/x/time/rate"
)

// AIRepository is a hosted language model able to annotate record content.
type AIRepository interface {
	Analyze(ctx context.Context, content string) (*dto.AnalysisResult, error)
	SelfTest(ctx context.Context) (*dto.SelfTestResult, error)
	Provider() string
	Model() string
}

func newRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxRequestPerMinute)), 1)
}
