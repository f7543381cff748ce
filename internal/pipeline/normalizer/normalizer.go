// Package normalizer turns heterogeneous scraped items into canonical records.
package normalizer

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"golang-news-insight/internal/entity"
	"golang-news-insight/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxContentLength caps the normalized content, in characters.
	MaxContentLength = 20000

	scanValueCeiling = 2000
	scanMaxFields    = 5
	defaultSource    = "unknown"
)

// ErrNoContent is returned when no usable text can be extracted from an item.
var ErrNoContent = errors.New("item has no usable text content")

// Prioritized candidate keys for each logical field.
var (
	titleKeys        = []string{"title", "headline", "name"}
	descriptionKeys  = []string{"description", "snippet", "summary", "text", "content", "body"}
	sourceKeys       = []string{"source", "sourceName", "source_name", "publisher", "site", "siteName"}
	publishedKeys    = []string{"publishedAt", "published_at", "published", "date", "pubDate", "datetime"}
	relativeTimeKeys = []string{"relativeTime", "timeAgo", "ago"}
	urlKeys          = []string{"url", "link", "articleUrl", "article_url", "sourceUrl", "href"}
	idKeys           = []string{"id", "itemId", "item_id", "guid", "articleId", "externalId", "external_id"}

	imageKeyMarkers = []string{"image", "thumbnail", "photo", "base64", "favicon"}
)

// Draft is a canonical record ready for upsert.
type Draft struct {
	entity.Record
	// CreatedAtFallback is set when no source timestamp could be parsed and
	// the capture time was used instead.
	CreatedAtFallback bool
}

// Normalizer maps raw items to drafts. The clock is injected so capture time is testable.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer. A nil clock defaults to utils.TimeNowUTC.
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = utils.TimeNowUTC
	}
	return &Normalizer{now: now}
}

// Normalize applies the field rules in order. It returns ErrNoContent when the
// item must be rejected.
func (n *Normalizer) Normalize(item RawItem) (*Draft, error) {
	content := buildContent(item)
	if content == "" {
		return nil, ErrNoContent
	}

	draft := &Draft{}
	draft.Content = content

	if link, ok := item.FirstMatching(isHTTPURL, urlKeys...); ok {
		draft.URL = &link
	}

	draft.Source = deriveSource(item, draft.URL)

	if published, ok := item.FirstString(publishedKeys...); ok {
		if ts, ok := ParseTimestamp(published); ok {
			draft.CreatedAt = ts
		}
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = n.now().UTC()
		draft.CreatedAtFallback = true
	}

	if id, ok := item.FirstID(idKeys...); ok {
		draft.ExternalItemID = &id
	}

	return draft, nil
}

func buildContent(item RawItem) string {
	title := cleanText(firstString(item, titleKeys))
	description := cleanText(firstString(item, descriptionKeys))
	if description == title {
		description = ""
	}

	var parts []string
	switch {
	case title != "" && description != "":
		parts = []string{title, description}
	case title != "":
		parts = append([]string{title}, contextLines(item)...)
	case description != "":
		parts = append([]string{description}, contextLines(item)...)
	default:
		scanned := scanStringFields(item)
		if len(scanned) == 0 {
			return ""
		}
		parts = append(scanned, contextLines(item)...)
	}

	return utils.Truncate(strings.Join(parts, "\n"), MaxContentLength)
}

func contextLines(item RawItem) []string {
	var lines []string
	if source := cleanText(firstString(item, sourceKeys)); source != "" {
		lines = append(lines, "Source: "+source)
	}
	published := firstString(item, publishedKeys)
	if published == "" {
		published = firstString(item, relativeTimeKeys)
	}
	if published = cleanText(published); published != "" {
		lines = append(lines, "Published: "+published)
	}
	return lines
}

// scanStringFields is the last resort: short string values from fields that
// are not otherwise mapped, in sorted key order.
func scanStringFields(item RawItem) []string {
	var found []string
	for _, key := range item.Keys() {
		if len(found) == scanMaxFields {
			break
		}
		if isMappedKey(key) || isImageKey(key) {
			continue
		}
		raw, ok := item[key].(string)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || len([]rune(raw)) > scanValueCeiling {
			continue
		}
		if strings.HasPrefix(strings.ToLower(raw), "data:") || isHTTPURL(raw) {
			continue
		}
		if text := cleanText(raw); text != "" {
			found = append(found, text)
		}
	}
	return found
}

func deriveSource(item RawItem, link *string) string {
	if source := cleanText(firstString(item, sourceKeys)); source != "" {
		return source
	}
	if link != nil {
		if parsed, err := url.Parse(*link); err == nil && parsed.Hostname() != "" {
			return parsed.Hostname()
		}
	}
	return defaultSource
}

// cleanText strips markup and collapses whitespace.
func cleanText(s string) string {
	s = utils.CleanToValidUTF8(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return utils.CollapseWhitespace(s)
	}

	// pad tags so text of adjacent block elements does not fuse
	padded := strings.ReplaceAll(s, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(padded))
	if err != nil {
		return utils.CollapseWhitespace(s)
	}
	doc.Find("script, style, noscript").Remove()
	return utils.CollapseWhitespace(doc.Text())
}

func firstString(item RawItem, keys []string) string {
	s, _ := item.FirstString(keys...)
	return s
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isImageKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range imageKeyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isMappedKey(key string) bool {
	for _, group := range [][]string{titleKeys, descriptionKeys, sourceKeys, publishedKeys, relativeTimeKeys, urlKeys, idKeys} {
		if utils.ContainsString(group, key) {
			return true
		}
	}
	return false
}
