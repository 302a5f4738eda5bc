// Package health reports whether the resolver's moving parts are usable.
//
// A Checker is any named component that can report a Status: healthy,
// degraded or unhealthy. Tracker is the checker used for background work:
// it is degraded until the first recorded run, unhealthy while the most
// recent run failed, and degraded once the last success is older than
// MaxAge.
//
//	tracker := health.NewTracker("accounts.web-analytics", health.TrackerConfig{
//	    MaxAge: time.Hour,
//	})
//	tracker.RecordSuccess(map[string]any{"records": 12})
//
// An Aggregator runs its checkers concurrently, each under a timeout, and
// folds them into a Report whose status is the worst of its checks:
//
//	agg := health.NewAggregator()
//	agg.Register(ga4Tracker, gscTracker, cacheChecker)
//	report := agg.Run(ctx)
//
// RegisterHandlers mounts /healthz, /readyz, /health and /health/{name}.
package health
