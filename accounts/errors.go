package accounts

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// Sentinel errors for the account index.
var (
	ErrNilStore              = errors.New("accounts: cache store is nil")
	ErrNoListers             = errors.New("accounts: no listers configured")
	ErrDuplicateLister       = errors.New("accounts: duplicate lister for platform")
	ErrPlatformNotRegistered = errors.New("accounts: platform not registered")
)

// DiscoveryError reports a failed inventory discovery for one platform.
// Err is usually a *resilience.Error wrapping a *platform.UpstreamError.
type DiscoveryError struct {
	Platform platform.Platform
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("accounts: discover %s: %v", e.Platform, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
