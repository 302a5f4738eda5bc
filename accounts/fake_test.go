package accounts

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/analyticsresolve/cache"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/resilience"
)

// fakeLister serves a fixed hierarchy through one upstream call. The first
// failFirst calls fail with err.
type fakeLister struct {
	platform  platform.Platform
	raws      []platform.RawAccount
	err       error
	failFirst int32
	release   chan struct{}

	calls    atomic.Int32
	listings atomic.Int32
}

func (f *fakeLister) Platform() platform.Platform { return f.platform }

func (f *fakeLister) ListAccounts(ctx context.Context, do platform.Doer) ([]platform.RawAccount, error) {
	f.listings.Add(1)
	var out []platform.RawAccount
	err := do(ctx, "accounts.list", func(ctx context.Context) error {
		n := f.calls.Add(1)
		if f.release != nil {
			select {
			case <-f.release:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if n <= f.failFirst {
			return f.err
		}
		out = f.raws
		return nil
	})
	return out, err
}

func upstreamErr(p platform.Platform, status int) error {
	return &platform.UpstreamError{
		Platform:   p,
		Op:         "accounts.list",
		StatusCode: status,
		Message:    http.StatusText(status),
	}
}

func ga4Tree() []platform.RawAccount {
	return []platform.RawAccount{{
		ID:          "accounts/1001",
		DisplayName: "GateDepot Inc",
		Kind:        platform.KindAccount,
		Children: []platform.RawAccount{{
			ID:          "properties/341922028",
			DisplayName: "GateDepot Inc",
			Kind:        platform.KindProperty,
			URLs:        []string{"https://www.gatedepot.com/"},
		}},
	}}
}

func gscSites() []platform.RawAccount {
	return []platform.RawAccount{
		{ID: "sc-domain:gatedepot.com", DisplayName: "sc-domain:gatedepot.com", Kind: platform.KindSite, URLs: []string{"sc-domain:gatedepot.com"}},
		{ID: "https://shop.gatedepot.com/", DisplayName: "https://shop.gatedepot.com/", Kind: platform.KindSite, URLs: []string{"https://shop.gatedepot.com/"}},
	}
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}
}

func newTestIndex(t testing.TB, listers ...platform.Lister) (*Index, *cache.Store[*Snapshot]) {
	t.Helper()
	store := cache.NewStore[*Snapshot](cache.DefaultPolicy())
	ix, err := New(store, listers, WithRetryPolicy(fastPolicy()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ix, store
}
