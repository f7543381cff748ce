package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/normalizer"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ingestFixture struct {
	svc      IngestService
	source   *mockItemSource
	records  *mockRecordRepository
	notifier *recordingNotifier
}

func newIngestFixture() *ingestFixture {
	cfg := &config.Config{Ingest: config.Ingest{DefaultLimit: 50, MaxLimit: 1000}}
	f := &ingestFixture{
		source:   &mockItemSource{},
		records:  &mockRecordRepository{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewIngestService(cfg, f.source, f.records, nopRunService{}, f.notifier, logger.NewNop())
	return f
}

func TestIngest_UpsertsNormalizedRecords(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	items := []normalizer.RawItem{
		{"title": "Port reopens", "description": "<p>Workers return</p>", "id": "a-1", "url": "https://example.com/port"},
		{"headline": "Storm warning", "source": "Weather Desk"},
		{"thumbnail": "data:image/png;base64,AAAA"},
	}
	f.source.On("FetchItems", ctx, 50).Return(items, nil).Once()
	f.records.On("UpsertBatch", ctx, mock.MatchedBy(func(records []entity.Record) bool {
		return len(records) == 2 &&
			records[0].Content == "Port reopens\nWorkers return" &&
			records[0].ExternalItemID != nil && *records[0].ExternalItemID == "a-1" &&
			records[1].Source == "Weather Desk"
	})).Return(int64(2), nil).Once()

	result, err := f.svc.Ingest(ctx, 0, "test")
	require.NoError(t, err)

	assert.Equal(t, 3, result.FetchedCount)
	assert.Equal(t, 2, result.NormalizedCount)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Empty(t, result.Note)
	assert.Nil(t, result.SampleItem)
	f.records.AssertExpectations(t)
}

func TestIngest_DiagnosticWhenNothingNormalizes(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	items := []normalizer.RawItem{
		{"thumbnail": "data:image/png;base64,AAAA", "views": json.Number("31")},
	}
	f.source.On("FetchItems", ctx, 10).Return(items, nil).Once()

	result, err := f.svc.Ingest(ctx, 10, "test")
	require.NoError(t, err)

	assert.Equal(t, 0, result.InsertedCount)
	assert.Equal(t, 1, result.FetchedCount)
	assert.Equal(t, 0, result.NormalizedCount)
	assert.Equal(t, "no fetched item had usable text content", result.Note)
	assert.Equal(t, []string{"thumbnail", "views"}, result.SampleKeys)
	assert.Equal(t, map[string]interface{}{"thumbnail": "[omitted]", "views": "31"}, result.SampleItem)
	f.records.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestIngest_EmptySource(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.source.On("FetchItems", ctx, 1000).Return([]normalizer.RawItem{}, nil).Once()

	result, err := f.svc.Ingest(ctx, 5000, "test")
	require.NoError(t, err)
	assert.Equal(t, "source returned no items", result.Note)
	f.source.AssertExpectations(t)
}

func TestIngest_ProviderFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.source.On("FetchItems", ctx, 50).Return(nil, &apperror.ProviderError{Provider: "scraper dataset", StatusCode: 401, Body: "unauthorized"}).Once()

	_, err := f.svc.Ingest(ctx, 0, "test")
	var providerErr *apperror.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 401, providerErr.StatusCode)
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "Ingest failed")
}

func TestIngest_StorageFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.source.On("FetchItems", ctx, 50).Return([]normalizer.RawItem{{"title": "A", "description": "B"}}, nil).Once()
	f.records.On("UpsertBatch", ctx, mock.Anything).Return(int64(0), &apperror.StorageError{Op: "upsert records", Err: errors.New("deadlock")}).Once()

	_, err := f.svc.Ingest(ctx, 0, "test")
	var storageErr *apperror.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
