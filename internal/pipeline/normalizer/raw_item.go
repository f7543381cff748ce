package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawItem is one scraped item as delivered by the item source. Keys and value
// types vary between providers, so every access goes through the helpers below.
type RawItem map[string]interface{}

// String returns the trimmed string value stored under key. Nested objects
// contribute their "name" or "title" member.
func (r RawItem) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case map[string]interface{}:
		nested := RawItem(val)
		if s, ok := nested.String("name"); ok {
			return s, true
		}
		return nested.String("title")
	}
	return "", false
}

// FirstString walks keys in priority order and returns the first non-empty string.
func (r RawItem) FirstString(keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := r.String(key); ok {
			return s, true
		}
	}
	return "", false
}

// FirstMatching returns the first string value under keys accepted by match.
func (r RawItem) FirstMatching(match func(string) bool, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := r.String(key); ok && match(s) {
			return s, true
		}
	}
	return "", false
}

// FirstID returns the first non-null id-like value under keys, rendered as a string.
func (r RawItem) FirstID(keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := idString(v); ok {
			return s, true
		}
	}
	return "", false
}

// Keys returns the item's keys in sorted order.
func (r RawItem) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func idString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case json.Number:
		return val.String(), true
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool, map[string]interface{}, []interface{}:
		return "", false
	}
	return fmt.Sprint(v), true
}
