// Package retry decides whether a failed analyzer call is attempted again.
package retry

import (
	"math/rand"
	"net/http"
	"time"

	"golang-news-insight/pkg/apperror"
)

// Class is the retry-relevant classification of an error.
type Class int

const (
	// ClassPermanent covers every error that must not be retried: 4xx other
	// than 429, transport failures, shape mismatches.
	ClassPermanent Class = iota
	ClassRateLimited
	ClassServerError
	ClassQuotaExhausted
)

func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassServerError:
		return "server_error"
	case ClassQuotaExhausted:
		return "quota_exhausted"
	}
	return "permanent"
}

// Classify maps an analyzer error to its Class.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}
	if apperror.IsQuota(err) {
		return ClassQuotaExhausted
	}
	status := apperror.StatusCode(err)
	switch {
	case status == http.StatusTooManyRequests:
		return ClassRateLimited
	case status >= 500 && status <= 599:
		return ClassServerError
	}
	return ClassPermanent
}

// Decision is the outcome of Policy.Next.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Abort is the decision to stop retrying.
var Abort = Decision{}

// Policy is an exponential backoff with additive jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
	// Jitter returns a value in [0, max). Defaults to math/rand.
	Jitter func(max time.Duration) time.Duration
}

// Default returns the analyzer policy: 3 attempts, 300ms doubling, up to 200ms jitter.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   300 * time.Millisecond,
		MaxJitter:   200 * time.Millisecond,
	}
}

// Next decides what happens after attempt (1-based) failed with an error of class.
func (p Policy) Next(attempt int, class Class) Decision {
	if attempt < 1 {
		attempt = 1
	}
	if attempt >= p.MaxAttempts {
		return Abort
	}
	if class != ClassRateLimited && class != ClassServerError {
		return Abort
	}
	delay := p.BaseDelay << uint(attempt-1)
	return Decision{Retry: true, Delay: delay + p.jitter()}
}

func (p Policy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(p.MaxJitter)
	}
	return time.Duration(rand.Int63n(int64(p.MaxJitter)))
}
