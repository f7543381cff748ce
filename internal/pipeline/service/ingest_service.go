package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/normalizer"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/telegram"
	"golang-news-insight/pkg/utils"
)

const (
	sampleValueLimit = 200
	omittedValue     = "[omitted]"

	noteNoItems      = "source returned no items"
	noteNoNormalized = "no fetched item had usable text content"
)

// IngestService pulls raw items from the configured source and upserts them as records.
type IngestService interface {
	Ingest(ctx context.Context, limit int, trigger string) (*dto.IngestResult, error)
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	cfg *config.Config,
	source repository.ItemSource,
	recordRepo repository.RecordRepository,
	runService PipelineRunService,
	notifier telegram.Notifier,
	log *logger.Logger,
) IngestService {
	return &ingestService{
		cfg:        cfg,
		source:     source,
		normalizer: normalizer.New(nil),
		recordRepo: recordRepo,
		runService: runService,
		notifier:   notifier,
		logger:     log,
	}
}

type ingestService struct {
	cfg        *config.Config
	source     repository.ItemSource
	normalizer *normalizer.Normalizer
	recordRepo repository.RecordRepository
	runService PipelineRunService
	notifier   telegram.Notifier
	logger     *logger.Logger
}

// Ingest fetches up to limit items. A non-positive limit uses the configured default.
func (s *ingestService) Ingest(ctx context.Context, limit int, trigger string) (result *dto.IngestResult, err error) {
	limit = s.resolveLimit(limit)
	started := time.Now()

	run := s.runService.Start(ctx, common.RunKindIngest, trigger)
	defer func() {
		var output interface{}
		if result != nil {
			output = result
		}
		s.runService.Finish(ctx, run, output, err)
		if err != nil {
			s.notify(telegram.FormatIngestFailure(s.source.Name(), err))
		}
	}()

	items, err := s.source.FetchItems(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to fetch items", logger.ErrorField(err), logger.StringField("source", s.source.Name()))
		return nil, fmt.Errorf("failed to fetch items from %s: %w", s.source.Name(), err)
	}

	records := make([]entity.Record, 0, len(items))
	var rejected normalizer.RawItem
	fallbacks := 0
	for _, item := range items {
		draft, nErr := s.normalizer.Normalize(item)
		if nErr != nil {
			if errors.Is(nErr, normalizer.ErrNoContent) && rejected == nil {
				rejected = item
			}
			continue
		}
		if draft.CreatedAtFallback {
			fallbacks++
		}
		records = append(records, draft.Record)
	}

	result = &dto.IngestResult{
		FetchedCount:    len(items),
		NormalizedCount: len(records),
	}

	if len(records) == 0 {
		result.Note = noteNoNormalized
		if len(items) == 0 {
			result.Note = noteNoItems
		}
		if rejected != nil {
			result.SampleKeys = rejected.Keys()
			result.SampleItem = sampleItem(rejected)
		}
		s.logger.Warn("Ingest produced no records",
			logger.IntField("fetched", len(items)),
			logger.StringField("note", result.Note))
		return result, nil
	}

	inserted, err := s.recordRepo.UpsertBatch(ctx, records)
	if err != nil {
		s.logger.Error("Failed to upsert records", logger.ErrorField(err), logger.IntField("records", len(records)))
		return nil, fmt.Errorf("failed to upsert records: %w", err)
	}
	result.InsertedCount = int(inserted)

	s.logger.Info("Ingest completed",
		logger.IntField("fetched", result.FetchedCount),
		logger.IntField("normalized", result.NormalizedCount),
		logger.IntField("inserted", result.InsertedCount),
		logger.IntField("created_at_fallbacks", fallbacks),
		logger.DurationField("elapsed", time.Since(started)))

	return result, nil
}

func (s *ingestService) resolveLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.Ingest.DefaultLimit
	}
	if s.cfg.Ingest.MaxLimit > 0 && limit > s.cfg.Ingest.MaxLimit {
		limit = s.cfg.Ingest.MaxLimit
	}
	return limit
}

func (s *ingestService) notify(text string) {
	if err := s.notifier.SendMessage(text); err != nil {
		s.logger.Warn("Failed to send telegram notification", logger.ErrorField(err))
	}
}

// sampleItem returns a copy of item that is safe to echo back: long strings
// are truncated and image payloads are replaced.
func sampleItem(item normalizer.RawItem) map[string]interface{} {
	out := make(map[string]interface{}, len(item))
	for key, value := range item {
		str, ok := value.(string)
		switch {
		case isImagePayload(key, value):
			out[key] = omittedValue
		case ok:
			out[key] = utils.Truncate(str, sampleValueLimit)
		case value == nil:
			out[key] = nil
		default:
			out[key] = utils.Truncate(fmt.Sprint(value), sampleValueLimit)
		}
	}
	return out
}

func isImagePayload(key string, value interface{}) bool {
	lower := strings.ToLower(key)
	for _, marker := range []string{"image", "thumbnail", "photo", "base64"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	str, ok := value.(string)
	return ok && strings.HasPrefix(strings.ToLower(strings.TrimSpace(str)), "data:")
}
