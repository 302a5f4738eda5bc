package google

import (
	"context"
	"fmt"
	"net/http"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"

	"github.com/jonwraymond/analyticsresolve/platform"
)

type (
	accountSummary  = analyticsadmin.GoogleAnalyticsAdminV1betaAccountSummary
	propertySummary = analyticsadmin.GoogleAnalyticsAdminV1betaPropertySummary
	dataStream      = analyticsadmin.GoogleAnalyticsAdminV1betaDataStream
)

// AnalyticsLister enumerates GA4 accounts, properties and data streams.
type AnalyticsLister struct {
	svc         *analyticsadmin.Service
	skipStreams bool
	pageSize    int64
}

// NewAnalyticsLister creates a lister backed by the Analytics Admin API.
func NewAnalyticsLister(ctx context.Context, cfg Config) (*AnalyticsLister, error) {
	svc, err := analyticsadmin.NewService(ctx, cfg.clientOptions(analyticsadmin.AnalyticsReadonlyScope)...)
	if err != nil {
		return nil, fmt.Errorf("google: analytics admin client: %w", err)
	}
	return &AnalyticsLister{svc: svc, skipStreams: cfg.SkipStreams, pageSize: cfg.pageSize()}, nil
}

// Platform returns platform.WebAnalytics.
func (l *AnalyticsLister) Platform() platform.Platform { return platform.WebAnalytics }

// ListAccounts returns one tree per account: account, its properties and
// each property's data streams. A property whose streams are not readable
// is kept without them.
func (l *AnalyticsLister) ListAccounts(ctx context.Context, do platform.Doer) ([]platform.RawAccount, error) {
	summaries, err := paginate(ctx, do, "accountSummaries.list", func(ctx context.Context, token string) ([]*accountSummary, string, error) {
		resp, err := l.svc.AccountSummaries.List().PageSize(l.pageSize).PageToken(token).Context(ctx).Do()
		if err != nil {
			return nil, "", upstreamError(platform.WebAnalytics, "accountSummaries.list", err)
		}
		return resp.AccountSummaries, resp.NextPageToken, nil
	})
	if err != nil {
		return nil, err
	}

	tree := analyticsTree(summaries)
	if l.skipStreams {
		return tree, nil
	}

	for i := range tree {
		for j := range tree[i].Children {
			prop := &tree[i].Children[j]
			streams, err := l.listStreams(ctx, do, prop.ID)
			if err != nil {
				if statusIs(err, http.StatusForbidden, http.StatusNotFound) {
					continue
				}
				return nil, err
			}
			attachStreams(prop, streams)
		}
	}
	return tree, nil
}

func (l *AnalyticsLister) listStreams(ctx context.Context, do platform.Doer, property string) ([]*dataStream, error) {
	return paginate(ctx, do, "dataStreams.list", func(ctx context.Context, token string) ([]*dataStream, string, error) {
		resp, err := l.svc.Properties.DataStreams.List(property).PageSize(l.pageSize).PageToken(token).Context(ctx).Do()
		if err != nil {
			return nil, "", upstreamError(platform.WebAnalytics, "dataStreams.list", err)
		}
		return resp.DataStreams, resp.NextPageToken, nil
	})
}

func analyticsTree(summaries []*accountSummary) []platform.RawAccount {
	out := make([]platform.RawAccount, 0, len(summaries))
	for _, s := range summaries {
		if s == nil {
			continue
		}
		acct := platform.RawAccount{
			ID:          s.Account,
			DisplayName: s.DisplayName,
			Kind:        platform.KindAccount,
		}
		for _, p := range s.PropertySummaries {
			if p == nil {
				continue
			}
			acct.Children = append(acct.Children, platform.RawAccount{
				ID:          p.Property,
				DisplayName: p.DisplayName,
				Kind:        platform.KindProperty,
			})
		}
		out = append(out, acct)
	}
	return out
}

// attachStreams adds streams as children of prop and lifts web stream URLs
// onto the property.
func attachStreams(prop *platform.RawAccount, streams []*dataStream) {
	for _, s := range streams {
		if s == nil {
			continue
		}
		child := platform.RawAccount{
			ID:          s.Name,
			DisplayName: s.DisplayName,
			Kind:        platform.KindStream,
		}
		if s.WebStreamData != nil && s.WebStreamData.DefaultUri != "" {
			child.URLs = []string{s.WebStreamData.DefaultUri}
			prop.URLs = append(prop.URLs, s.WebStreamData.DefaultUri)
		}
		prop.Children = append(prop.Children, child)
	}
}

var _ platform.Lister = (*AnalyticsLister)(nil)
