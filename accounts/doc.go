// Package accounts discovers and caches the account inventory of every
// analytics platform.
//
// An Index owns one Lister per platform. Get returns the platform's
// Snapshot from the cache, or runs a discovery on a miss: the lister walks
// the upstream hierarchy, each upstream call goes through a retry executor
// with a per-platform rate limiter, and the raw tree is flattened into
// immutable AccountRecords. Concurrent misses for one platform share a
// single discovery.
//
// # Basic Usage
//
//	store := cache.NewStore[*accounts.Snapshot](cache.DefaultPolicy())
//	idx, err := accounts.New(store, listers,
//	    accounts.WithTTL(10*time.Minute),
//	    accounts.WithLogger(logger),
//	)
//	snap, err := idx.Get(ctx, platform.WebAnalytics)
//	rec, ok := snap.Lookup("properties/341922028")
//
// Failed discoveries are never cached; the next Get tries again.
package accounts
