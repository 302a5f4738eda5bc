package google

import (
	"context"
	"fmt"

	webmasters "google.golang.org/api/webmasters/v3"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// unverifiedPermission marks sites the caller cannot read data for.
const unverifiedPermission = "siteUnverifiedUser"

// SearchConsoleLister enumerates Search Console properties.
type SearchConsoleLister struct {
	svc *webmasters.Service
}

// NewSearchConsoleLister creates a lister backed by the webmasters v3 API.
func NewSearchConsoleLister(ctx context.Context, cfg Config) (*SearchConsoleLister, error) {
	svc, err := webmasters.NewService(ctx, cfg.clientOptions(webmasters.WebmastersReadonlyScope)...)
	if err != nil {
		return nil, fmt.Errorf("google: search console client: %w", err)
	}
	return &SearchConsoleLister{svc: svc}, nil
}

// Platform returns platform.SearchConsole.
func (l *SearchConsoleLister) Platform() platform.Platform { return platform.SearchConsole }

// ListAccounts returns one flat node per verified site. The site URL, which
// may be an "sc-domain:" property, is its id.
func (l *SearchConsoleLister) ListAccounts(ctx context.Context, do platform.Doer) ([]platform.RawAccount, error) {
	var sites []*webmasters.WmxSite
	err := do(ctx, "sites.list", func(ctx context.Context) error {
		resp, err := l.svc.Sites.List().Context(ctx).Do()
		if err != nil {
			return upstreamError(platform.SearchConsole, "sites.list", err)
		}
		sites = resp.SiteEntry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return siteNodes(sites), nil
}

func siteNodes(sites []*webmasters.WmxSite) []platform.RawAccount {
	out := make([]platform.RawAccount, 0, len(sites))
	for _, s := range sites {
		if s == nil || s.SiteUrl == "" || s.PermissionLevel == unverifiedPermission {
			continue
		}
		out = append(out, platform.RawAccount{
			ID:          s.SiteUrl,
			DisplayName: s.SiteUrl,
			Kind:        platform.KindSite,
			URLs:        []string{s.SiteUrl},
		})
	}
	return out
}

var _ platform.Lister = (*SearchConsoleLister)(nil)
