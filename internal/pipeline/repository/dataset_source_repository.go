package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/dto"
	"golang-news-insight/internal/pipeline/normalizer"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"
	"golang-news-insight/pkg/utils"
)

const datasetProvider = "scraper dataset"

type datasetSourceRepository struct {
	client *http.Client
	cfg    config.Scraper
	logger *logger.Logger
}

// NewDatasetSourceRepository reads items from a scraping provider dataset
// (GET {base}/v2/datasets/{id}/items).
func NewDatasetSourceRepository(cfg config.Scraper, log *logger.Logger) ItemSource {
	return &datasetSourceRepository{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: log,
	}
}

func (r *datasetSourceRepository) Name() string { return datasetProvider }

func (r *datasetSourceRepository) FetchItems(ctx context.Context, limit int) ([]normalizer.RawItem, error) {
	return r.fetch(ctx, dto.DatasetItemsQuery{DatasetID: r.cfg.DatasetID, Limit: limit})
}

func (r *datasetSourceRepository) fetch(ctx context.Context, query dto.DatasetItemsQuery) ([]normalizer.RawItem, error) {
	params := url.Values{}
	params.Set("clean", "true")
	params.Set("format", "json")
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}

	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?%s",
		strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(query.DatasetID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.Token))

	r.logger.Debug("Fetching dataset items", logger.StringField("dataset_id", query.DatasetID), logger.IntField("limit", query.Limit))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.Error("Received non-OK response from dataset API", logger.IntField("status_code", resp.StatusCode))
		return nil, &apperror.ProviderError{
			Provider:   datasetProvider,
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxErrorBody),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var items []normalizer.RawItem
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}
	return items, nil
}
