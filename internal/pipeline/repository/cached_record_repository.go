package repository

import (
	"context"
	"fmt"
	"time"

	"golang-news-insight/internal/entity"

	"github.com/patrickmn/go-cache"
)

// cachedRecordRepository keeps dashboard reads in an in-memory cache. Any write
// flushes it so the dashboard never shows data older than the last write.
type cachedRecordRepository struct {
	RecordRepository
	cache *cache.Cache
}

// NewCachedRecordRepository wraps next with a read cache for FindRecent. A
// non-positive ttl disables caching.
func NewCachedRecordRepository(next RecordRepository, ttl time.Duration) RecordRepository {
	if ttl <= 0 {
		return next
	}
	return &cachedRecordRepository{
		RecordRepository: next,
		cache:            cache.New(ttl, 2*ttl),
	}
}

func (r *cachedRecordRepository) FindRecent(ctx context.Context, limit int) ([]entity.Record, error) {
	key := fmt.Sprintf("recent:%d", limit)
	if cached, ok := r.cache.Get(key); ok {
		return cloneRecords(cached.([]entity.Record)), nil
	}

	records, err := r.RecordRepository.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, cloneRecords(records))
	return records, nil
}

func (r *cachedRecordRepository) UpsertBatch(ctx context.Context, records []entity.Record) (int64, error) {
	defer r.cache.Flush()
	return r.RecordRepository.UpsertBatch(ctx, records)
}

func (r *cachedRecordRepository) UpdateAnalysis(ctx context.Context, id uint, analysis RecordAnalysis) error {
	defer r.cache.Flush()
	return r.RecordRepository.UpdateAnalysis(ctx, id, analysis)
}

func cloneRecords(in []entity.Record) []entity.Record {
	out := make([]entity.Record, len(in))
	copy(out, in)
	return out
}
