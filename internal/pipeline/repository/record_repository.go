package repository

import (
	"context"
	"errors"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/pkg/apperror"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ingestColumns are overwritten when a re-ingested item hits an existing external_item_id.
var ingestColumns = []string{"source", "url", "content", "created_at"}

// analysisColumns are only overwritten when the incoming draft carries analysis data.
var analysisColumns = []string{"summary", "keywords", "sentiment", "sentiment_score", "analyzed_at"}

// dashboardColumns is the projection used for dashboard reads.
var dashboardColumns = []string{
	"id", "external_item_id", "source", "url", "content", "created_at",
	"summary", "keywords", "sentiment", "sentiment_score", "analyzed_at",
}

// ErrRecordNotFound is returned when a record id does not exist.
var ErrRecordNotFound = errors.New("record not found")

// RecordAnalysis holds the analysis fields written back by the batch runner.
type RecordAnalysis struct {
	Summary        string
	Keywords       []string
	Sentiment      string
	SentimentScore float64
	AnalyzedAt     time.Time
}

// RecordRepository defines the storage operations on canonical records.
type RecordRepository interface {
	UpsertBatch(ctx context.Context, records []entity.Record) (int64, error)
	FindPending(ctx context.Context, limit int) ([]entity.Record, error)
	UpdateAnalysis(ctx context.Context, id uint, analysis RecordAnalysis) error
	FindRecent(ctx context.Context, limit int) ([]entity.Record, error)
	FindByID(ctx context.Context, id uint) (*entity.Record, error)
}

// NewRecordRepository creates a new GORM-based record repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

type recordRepository struct {
	db *gorm.DB
}

// UpsertBatch inserts records, merging on external_item_id. Rows without an
// external id are always inserted as new rows.
func (r *recordRepository) UpsertBatch(ctx context.Context, records []entity.Record) (int64, error) {
	plain, withAnalysis := PrepareUpsert(records)
	if len(plain) == 0 && len(withAnalysis) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plain) > 0 {
			res := insertPlain(tx, plain)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}

		if len(withAnalysis) > 0 {
			res := insertWithAnalysis(tx, withAnalysis)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, &apperror.StorageError{Op: "upsert records", Err: err}
	}
	return affected, nil
}

// insertPlain merges on external_item_id and keeps stored analysis columns.
func insertPlain(tx *gorm.DB, records []entity.Record) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_item_id"}},
		DoUpdates: clause.AssignmentColumns(ingestColumns),
	}).Create(&records)
}

// insertWithAnalysis merges on external_item_id and overwrites the analysis
// columns with the incoming values.
func insertWithAnalysis(tx *gorm.DB, records []entity.Record) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_item_id"}},
		DoUpdates: clause.AssignmentColumns(append(append([]string{}, ingestColumns...), analysisColumns...)),
	}).Create(&records)
}

// PrepareUpsert collapses duplicate external ids (the last occurrence wins,
// keeping the position of the first) and splits the batch into drafts without
// and with their own analysis data.
func PrepareUpsert(records []entity.Record) (plain, withAnalysis []entity.Record) {
	deduped := make([]entity.Record, 0, len(records))
	positions := make(map[string]int, len(records))
	for _, rec := range records {
		if rec.ExternalItemID != nil {
			if idx, ok := positions[*rec.ExternalItemID]; ok {
				deduped[idx] = rec
				continue
			}
			positions[*rec.ExternalItemID] = len(deduped)
		}
		deduped = append(deduped, rec)
	}

	for _, rec := range deduped {
		if rec.HasAnalysis() {
			withAnalysis = append(withAnalysis, rec)
		} else {
			plain = append(plain, rec)
		}
	}
	return plain, withAnalysis
}

// FindPending returns up to limit unanalyzed records, oldest first.
func (r *recordRepository) FindPending(ctx context.Context, limit int) ([]entity.Record, error) {
	var records []entity.Record
	err := r.db.WithContext(ctx).
		Where("analyzed_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, &apperror.StorageError{Op: "find pending records", Err: err}
	}
	return records, nil
}

// UpdateAnalysis patches the analysis fields of one record.
func (r *recordRepository) UpdateAnalysis(ctx context.Context, id uint, analysis RecordAnalysis) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Record{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":         analysis.Summary,
			"keywords":        pq.StringArray(analysis.Keywords),
			"sentiment":       analysis.Sentiment,
			"sentiment_score": analysis.SentimentScore,
			"analyzed_at":     analysis.AnalyzedAt,
		})
	if res.Error != nil {
		return &apperror.StorageError{Op: "update analysis", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &apperror.StorageError{Op: "update analysis", Err: ErrRecordNotFound}
	}
	return nil
}

// FindRecent returns the newest records with the dashboard projection.
func (r *recordRepository) FindRecent(ctx context.Context, limit int) ([]entity.Record, error) {
	var records []entity.Record
	err := r.db.WithContext(ctx).
		Select(dashboardColumns).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, &apperror.StorageError{Op: "find recent records", Err: err}
	}
	return records, nil
}

// FindByID retrieves a record by its ID.
func (r *recordRepository) FindByID(ctx context.Context, id uint) (*entity.Record, error) {
	var record entity.Record
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, &apperror.StorageError{Op: "find record", Err: err}
	}
	return &record, nil
}
