package google

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// upstreamError wraps a client error with the platform, the operation and
// the HTTP status when one is known. Response bodies are dropped.
func upstreamError(p platform.Platform, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	ue := &platform.UpstreamError{Platform: p, Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		ue.StatusCode = gerr.Code
		ue.Message = gerr.Message
		if ue.Message == "" {
			ue.Message = http.StatusText(gerr.Code)
		}
		// Keep the status, not the body.
		ue.Err = nil
	}
	return ue
}

// statusIs reports whether err is an upstream error with one of codes.
func statusIs(err error, codes ...int) bool {
	var ue *platform.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	for _, c := range codes {
		if ue.StatusCode == c {
			return true
		}
	}
	return false
}
