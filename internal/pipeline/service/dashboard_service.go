package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang-news-insight/internal/entity"
	"golang-news-insight/internal/pipeline/aggregate"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/repository"
	"golang-news-insight/pkg/common"
	"golang-news-insight/pkg/logger"
)

// ErrInvalidFilter is returned for unknown filter or sort values.
var ErrInvalidFilter = errors.New("invalid dashboard filter")

// DashboardService serves the dashboard view over the newest records.
type DashboardService interface {
	GetDashboard(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error)
	Summarize(ctx context.Context, filter dto.DashboardFilter, req dto.SummaryRequest) (*dto.DashboardStats, error)
	GetRecord(ctx context.Context, id uint) (*dto.DisplayRecord, error)
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(recordRepo repository.RecordRepository, log *logger.Logger) DashboardService {
	return &dashboardService{
		recordRepo: recordRepo,
		logger:     log,
	}
}

type dashboardService struct {
	recordRepo repository.RecordRepository
	logger     *logger.Logger
}

func (s *dashboardService) GetDashboard(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error) {
	records, err := s.visibleRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		Stats:   aggregate.Summarize(records),
		Records: records,
	}, nil
}

// Summarize recomputes the stats with caller-held ratings. Ratings are never stored.
func (s *dashboardService) Summarize(ctx context.Context, filter dto.DashboardFilter, req dto.SummaryRequest) (*dto.DashboardStats, error) {
	records, err := s.visibleRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	ratings := make(map[uint]float64, len(req.Ratings))
	for key, rating := range req.Ratings {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		ratings[uint(id)] = rating
	}
	aggregate.ApplyRatings(records, ratings)

	stats := aggregate.Summarize(records)
	return &stats, nil
}

func (s *dashboardService) GetRecord(ctx context.Context, id uint) (*dto.DisplayRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			s.logger.Error("Failed to find record", logger.ErrorField(err), logger.Field("record_id", id))
		}
		return nil, err
	}
	display := aggregate.ToDisplay(*record)
	return &display, nil
}

func (s *dashboardService) visibleRecords(ctx context.Context, filter dto.DashboardFilter) ([]dto.DisplayRecord, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	rows, err := s.recordRepo.FindRecent(ctx, common.DashboardRecordLimit)
	if err != nil {
		s.logger.Error("Failed to fetch dashboard records", logger.ErrorField(err))
		return nil, err
	}

	records := make([]dto.DisplayRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, aggregate.ToDisplay(row))
	}
	records = aggregate.Filter(records, filter)
	aggregate.Sort(records, filter.Sort)
	return records, nil
}

func validateFilter(filter dto.DashboardFilter) error {
	if filter.Sentiment != "" && !entity.IsValidSentiment(filter.Sentiment) {
		return fmt.Errorf("%w: sentiment %q", ErrInvalidFilter, filter.Sentiment)
	}
	switch filter.Status {
	case "", "analyzed", "pending":
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, filter.Status)
	}
	switch filter.Sort {
	case "", aggregate.SortNewest, aggregate.SortOldest, aggregate.SortConfidence:
	default:
		return fmt.Errorf("%w: sort %q", ErrInvalidFilter, filter.Sort)
	}
	return nil
}
