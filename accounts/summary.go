package accounts

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// PlatformSummary describes the inventory of one platform.
type PlatformSummary struct {
	Platform platform.Platform     `json:"platform"`
	Records  int                   `json:"records"`
	Kinds    map[platform.Kind]int `json:"kinds,omitempty"`
	BuiltAt  *time.Time            `json:"built_at,omitempty"`
	Cached   bool                  `json:"cached"`
	Error    string                `json:"error,omitempty"`
}

// Summary describes the inventory of every registered platform.
type Summary struct {
	Platforms []PlatformSummary `json:"platforms"`
	Total     int               `json:"total"`
	HasErrors bool              `json:"has_errors"`
}

// Summary fetches every platform concurrently and summarizes the result.
// A failing platform is reported in its entry and does not fail the
// summary; only ctx cancellation does.
func (ix *Index) Summary(ctx context.Context) (Summary, error) {
	entries := make([]PlatformSummary, len(ix.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range ix.order {
		g.Go(func() error {
			entry := PlatformSummary{Platform: p}
			snap, cached, err := ix.Fetch(gctx, p)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				entry.Error = err.Error()
			} else {
				built := snap.BuiltAt()
				entry.Records = snap.Len()
				entry.Kinds = snap.CountByKind()
				entry.BuiltAt = &built
				entry.Cached = cached
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{Platforms: entries}
	for _, e := range entries {
		s.Total += e.Records
		if e.Error != "" {
			s.HasErrors = true
		}
	}
	return s, nil
}
