package google

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	content "google.golang.org/api/content/v2.1"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// MerchantLister enumerates Merchant Center accounts and, for multi-client
// accounts, their sub-accounts.
type MerchantLister struct {
	svc         *content.APIService
	merchantIDs []uint64
	pageSize    int64
}

// NewMerchantLister creates a lister backed by the Content API v2.1.
func NewMerchantLister(ctx context.Context, cfg Config) (*MerchantLister, error) {
	svc, err := content.NewService(ctx, cfg.clientOptions(content.ContentScope)...)
	if err != nil {
		return nil, fmt.Errorf("google: content api client: %w", err)
	}
	ids := make([]uint64, len(cfg.MerchantIDs))
	copy(ids, cfg.MerchantIDs)
	return &MerchantLister{svc: svc, merchantIDs: ids, pageSize: min(cfg.pageSize(), 250)}, nil
}

// Platform returns platform.MerchantCenter.
func (l *MerchantLister) Platform() platform.Platform { return platform.MerchantCenter }

// ListAccounts returns one tree per merchant. Sub-accounts are listed for
// every merchant; a standalone account answers that call with 403 and is
// kept without children.
func (l *MerchantLister) ListAccounts(ctx context.Context, do platform.Doer) ([]platform.RawAccount, error) {
	ids := l.merchantIDs
	if len(ids) == 0 {
		var err error
		if ids, err = l.accessibleMerchants(ctx, do); err != nil {
			return nil, err
		}
	}

	out := make([]platform.RawAccount, 0, len(ids))
	for _, id := range ids {
		var acct *content.Account
		err := do(ctx, "accounts.get", func(ctx context.Context) error {
			a, err := l.svc.Accounts.Get(id, id).Context(ctx).Do()
			if err != nil {
				return upstreamError(platform.MerchantCenter, "accounts.get", err)
			}
			acct = a
			return nil
		})
		if err != nil {
			return nil, err
		}

		node := merchantNode(acct, platform.KindMerchant)
		subs, err := paginate(ctx, do, "accounts.list", func(ctx context.Context, token string) ([]*content.Account, string, error) {
			resp, err := l.svc.Accounts.List(id).MaxResults(l.pageSize).PageToken(token).Context(ctx).Do()
			if err != nil {
				return nil, "", upstreamError(platform.MerchantCenter, "accounts.list", err)
			}
			return resp.Resources, resp.NextPageToken, nil
		})
		switch {
		case err == nil:
			for _, sub := range subs {
				if sub != nil && sub.Id != id {
					node.Children = append(node.Children, merchantNode(sub, platform.KindSubAccount))
				}
			}
		case statusIs(err, http.StatusForbidden):
		default:
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// accessibleMerchants asks authinfo which accounts the credentials reach.
func (l *MerchantLister) accessibleMerchants(ctx context.Context, do platform.Doer) ([]uint64, error) {
	var idents []*content.AccountIdentifier
	err := do(ctx, "accounts.authinfo", func(ctx context.Context) error {
		resp, err := l.svc.Accounts.Authinfo().Context(ctx).Do()
		if err != nil {
			return upstreamError(platform.MerchantCenter, "accounts.authinfo", err)
		}
		idents = resp.AccountIdentifiers
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merchantIDs(idents), nil
}

// merchantIDs picks the top-level id of each identifier: the merchant id,
// or the aggregator id for a multi-client account. Order is preserved and
// duplicates dropped.
func merchantIDs(idents []*content.AccountIdentifier) []uint64 {
	seen := make(map[uint64]struct{}, len(idents))
	var out []uint64
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		id := ident.MerchantId
		if id == 0 {
			id = ident.AggregatorId
		}
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func merchantNode(a *content.Account, kind platform.Kind) platform.RawAccount {
	if a == nil {
		return platform.RawAccount{Kind: kind}
	}
	node := platform.RawAccount{
		ID:          strconv.FormatUint(a.Id, 10),
		DisplayName: a.Name,
		Kind:        kind,
	}
	if a.WebsiteUrl != "" {
		node.URLs = []string{a.WebsiteUrl}
	}
	return node
}

var _ platform.Lister = (*MerchantLister)(nil)
