package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Platform identifies one upstream analytics platform.
type Platform string

const (
	// WebAnalytics is Google Analytics 4.
	WebAnalytics Platform = "web-analytics"
	// SearchConsole is Google Search Console.
	SearchConsole Platform = "search-console"
	// MerchantCenter is Google Merchant Center.
	MerchantCenter Platform = "merchant-center"
	// All selects every platform. It never appears on a record.
	All Platform = "all"
)

// ErrUnknownPlatform is returned by ParsePlatform for unrecognized input.
var ErrUnknownPlatform = errors.New("platform: unknown platform")

// Platforms returns every concrete platform in fixed order.
func Platforms() []Platform {
	return []Platform{WebAnalytics, SearchConsole, MerchantCenter}
}

// Valid reports whether p is a concrete platform.
func (p Platform) Valid() bool {
	switch p {
	case WebAnalytics, SearchConsole, MerchantCenter:
		return true
	}
	return false
}

// Expand returns the concrete platforms p stands for.
func (p Platform) Expand() []Platform {
	if p == All {
		return Platforms()
	}
	return []Platform{p}
}

func (p Platform) String() string { return string(p) }

// ParsePlatform accepts canonical names and the short aliases ga4, gsc and
// gmc. Empty input means All.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return All, nil
	case "web-analytics", "ga4", "analytics":
		return WebAnalytics, nil
	case "search-console", "gsc", "searchconsole":
		return SearchConsole, nil
	case "merchant-center", "gmc", "merchant":
		return MerchantCenter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// Kind is the role a record plays in its platform hierarchy.
type Kind string

const (
	KindAccount    Kind = "account"
	KindProperty   Kind = "property"
	KindStream     Kind = "stream"
	KindSite       Kind = "site"
	KindMerchant   Kind = "merchant"
	KindSubAccount Kind = "sub-account"
)

// AccountRecord is one resolvable account, property, stream or site.
// Records are immutable once built.
type AccountRecord struct {
	Platform    Platform `json:"platform"`
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Kind        Kind     `json:"kind"`
	ParentID    string   `json:"parent_id,omitempty"`
	Hints       []string `json:"hints,omitempty"`
}

// RawAccount is a node of an upstream hierarchy as returned by a Lister.
type RawAccount struct {
	ID          string
	DisplayName string
	Kind        Kind
	URLs        []string
	Children    []RawAccount
}

// Doer runs one upstream call under the caller's retry and rate limit
// policy. op names the call for errors and telemetry.
type Doer func(ctx context.Context, op string, call func(context.Context) error) error

// Lister enumerates the account hierarchy of one platform.
//
// Contract:
// - Concurrency: ListAccounts may be called concurrently.
// - Every network call must go through do so that it is retried, rate
// limited and bounded by the caller's deadline.
// - Errors should wrap *UpstreamError so they can be classified.
type Lister interface {
	Platform() Platform
	ListAccounts(ctx context.Context, do Doer) ([]RawAccount, error)
}
