package google

import (
	"context"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// maxPages guards against an API that never stops returning page tokens.
const maxPages = 100

// paginate calls fetch through do until it returns an empty page token and
// collects every page's items.
func paginate[T any](ctx context.Context, do platform.Doer, op string, fetch func(ctx context.Context, token string) ([]T, string, error)) ([]T, error) {
	var (
		all   []T
		token string
	)
	for page := 0; page < maxPages; page++ {
		var (
			items []T
			next  string
		)
		err := do(ctx, op, func(ctx context.Context) error {
			var err error
			items, next, err = fetch(ctx, token)
			return err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if next == "" {
			break
		}
		token = next
	}
	return all, nil
}
