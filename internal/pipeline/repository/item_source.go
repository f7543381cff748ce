package repository

import (
	"context"

	"golang-news-insight/internal/pipeline/normalizer"
)

// ItemSource fetches raw scraped items from an upstream provider.
type ItemSource interface {
	FetchItems(ctx context.Context, limit int) ([]normalizer.RawItem, error)
	Name() string
}
