package accounts

import (
	"context"
	"fmt"

	"github.com/jonwraymond/analyticsresolve/health"
)

// Checkers returns one health checker per registered platform, named
// accounts.<platform>, plus the snapshot cache checker.
func (ix *Index) Checkers() []health.Checker {
	out := make([]health.Checker, 0, len(ix.order)+1)
	for _, p := range ix.order {
		out = append(out, ix.trackers[p])
	}
	return append(out, health.NewCheckerFunc("accounts.cache", ix.checkCache))
}

// RegisterHealth registers every checker from Checkers with agg.
func (ix *Index) RegisterHealth(agg *health.Aggregator) {
	agg.Register(ix.Checkers()...)
}

func (ix *Index) checkCache(ctx context.Context) health.Result {
	st := ix.store.Stats()
	details := map[string]any{
		"size":      st.Size,
		"capacity":  st.Capacity,
		"hits":      st.Hits,
		"misses":    st.Misses,
		"evictions": st.Evictions,
		"hit_rate":  st.HitRate,
	}
	if st.Capacity > 0 && st.Size >= st.Capacity {
		return health.Degraded(fmt.Sprintf("cache full (%d entries)", st.Size)).WithDetails(details)
	}
	return health.Healthy("cache operational").WithDetails(details)
}
