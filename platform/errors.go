package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jonwraymond/analyticsresolve/resilience"
)

// UpstreamError describes a failed call to a platform API. Message is a
// short summary; response bodies are never included.
type UpstreamError struct {
	Platform   Platform
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Platform, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Classify tags upstream failures for the retry executor.
//
// Retryable: deadline or attempt timeouts, a rate limiter that could not
// grant a token in time, 408, 429, any 5xx, and network errors without a
// status. Permanent: cancellation and every other status,
// notably 400, 401, 403 and 404.
func Classify(err error) resilience.Class {
	if err == nil {
		return resilience.ClassPermanent
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ClassPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, resilience.ErrAttemptTimeout) ||
		errors.Is(err, resilience.ErrRateLimitExceeded) {
		return resilience.ClassRetryable
	}

	var ue *UpstreamError
	if errors.As(err, &ue) && ue.StatusCode != 0 {
		return classifyStatus(ue.StatusCode)
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return resilience.ClassRetryable
	}
	return resilience.ClassPermanent
}

func classifyStatus(code int) resilience.Class {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return resilience.ClassRetryable
	case code >= 500:
		return resilience.ClassRetryable
	default:
		return resilience.ClassPermanent
	}
}
