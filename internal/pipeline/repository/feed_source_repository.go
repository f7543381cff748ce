package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang-news-insight/internal/pipeline/config"
	"golang-news-insight/internal/pipeline/normalizer"
	"golang-news-insight/pkg/apperror"
	"golang-news-insight/pkg/logger"

	"github.com/mmcdole/gofeed"
)

const feedProvider = "rss feed"

type feedSourceRepository struct {
	parser *gofeed.Parser
	urls   []string
	logger *logger.Logger
}

// NewFeedSourceRepository reads items from RSS/Atom feeds. Feeds are read in
// order until limit items are collected.
func NewFeedSourceRepository(cfg config.Scraper, log *logger.Logger) ItemSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	return &feedSourceRepository{
		parser: parser,
		urls:   cfg.FeedURLs,
		logger: log,
	}
}

func (r *feedSourceRepository) Name() string { return feedProvider }

func (r *feedSourceRepository) FetchItems(ctx context.Context, limit int) ([]normalizer.RawItem, error) {
	var items []normalizer.RawItem
	for _, feedURL := range r.urls {
		if limit > 0 && len(items) >= limit {
			break
		}

		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			var httpErr gofeed.HTTPError
			if errors.As(err, &httpErr) {
				return nil, &apperror.ProviderError{Provider: feedProvider, StatusCode: httpErr.StatusCode, Body: httpErr.Status}
			}
			return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
		}

		r.logger.Debug("Fetched feed", logger.StringField("url", feedURL), logger.IntField("items", len(feed.Items)))

		for _, item := range feed.Items {
			if limit > 0 && len(items) >= limit {
				break
			}
			items = append(items, feedItemToRaw(feed, item))
		}
	}
	return items, nil
}

// feedItemToRaw exposes a feed entry with the key names the normalizer maps.
func feedItemToRaw(feed *gofeed.Feed, item *gofeed.Item) normalizer.RawItem {
	raw := normalizer.RawItem{
		"title":       item.Title,
		"description": item.Description,
		"link":        item.Link,
		"source":      feed.Title,
	}
	if item.Content != "" {
		raw["content"] = item.Content
	}
	if item.GUID != "" {
		raw["guid"] = item.GUID
	}
	if item.Published != "" {
		raw["published"] = item.Published
	} else if item.Updated != "" {
		raw["published"] = item.Updated
	}
	if item.Image != nil && item.Image.URL != "" {
		raw["image"] = item.Image.URL
	}
	return raw
}
