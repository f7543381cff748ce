// Package apperror holds the error taxonomy shared by the ingest and analysis pipeline.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigError reports a missing or invalid required setting.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required configuration: %s", e.Key)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

// ProviderError is a non-success answer from an upstream (scraping provider or analyzer).
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StorageError wraps a failed read or write against the records store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ShapeError means the analyzer answered but the payload does not match the expected schema.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("analyzer response has invalid shape: %s", e.Reason)
}

// QuotaError means the analyzer account has no quota left. It is never retried
// and stops the running batch.
type QuotaError struct {
	Provider string
	Body     string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s quota exhausted: %s", e.Provider, e.Body)
}

// NewUpstreamError classifies a non-success upstream answer. Quota exhaustion is
// signalled by OpenAI-compatible providers with the "insufficient_quota" code.
func NewUpstreamError(provider string, statusCode int, body string) error {
	if IsQuotaBody(body) {
		return &QuotaError{Provider: provider, Body: body}
	}
	return &ProviderError{Provider: provider, StatusCode: statusCode, Body: body}
}

// IsQuotaBody reports whether an upstream error body describes exhausted quota.
func IsQuotaBody(body string) bool {
	return strings.Contains(strings.ToLower(body), "insufficient_quota")
}

// IsQuota reports whether err is, or wraps, a QuotaError.
func IsQuota(err error) bool {
	var quotaErr *QuotaError
	return errors.As(err, &quotaErr)
}

// IsRateLimited reports whether err is a 429 ProviderError.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// StatusCode returns the upstream status code carried by err, or 0.
func StatusCode(err error) int {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.StatusCode
	}
	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		return http.StatusTooManyRequests
	}
	return 0
}
