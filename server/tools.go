package server

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/analyticsresolve/accounts"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/resolve"
)

// ResolveAccountInput is the input of resolve_account.
type ResolveAccountInput struct {
	Query    string `json:"query" jsonschema:"domain, URL, account id or business name to resolve"`
	Platform string `json:"platform,omitempty" jsonschema:"web-analytics, search-console, merchant-center or all (default all)"`
}

// FindInput is the input of the per-platform find tools.
type FindInput struct {
	Query string `json:"query" jsonschema:"domain, URL, id or name to resolve"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// InvalidateInput is the input of invalidate_accounts.
type InvalidateInput struct {
	Platform string `json:"platform,omitempty" jsonschema:"platform to invalidate (default all)"`
}

// MatchView is one ranked match.
type MatchView struct {
	Platform    string  `json:"platform" jsonschema:"platform of the record"`
	ID          string  `json:"id" jsonschema:"canonical platform identifier"`
	DisplayName string  `json:"display_name" jsonschema:"human-readable name"`
	Kind        string  `json:"kind" jsonschema:"record kind"`
	ParentID    string  `json:"parent_id,omitempty" jsonschema:"identifier of the parent record"`
	Score       float64 `json:"score" jsonschema:"match score between 0 and 1"`
	MatchType   string  `json:"match_type" jsonschema:"tier that produced the match"`
}

// ResolveAccountResult is the output of resolve_account.
type ResolveAccountResult struct {
	Query      string            `json:"query"`
	Normalized string            `json:"normalized"`
	Platforms  []string          `json:"platforms"`
	Matches    []MatchView       `json:"matches"`
	Ambiguous  bool              `json:"ambiguous" jsonschema:"true when the two best matches tie"`
	Cached     bool              `json:"cached" jsonschema:"true when every snapshot came from the cache"`
	Errors     map[string]string `json:"errors,omitempty" jsonschema:"per-platform discovery failures"`
}

// FindResult is the output of the per-platform find tools.
type FindResult struct {
	Query        string      `json:"query"`
	Resolved     *MatchView  `json:"resolved,omitempty" jsonschema:"best match, absent when nothing matched"`
	Alternatives []MatchView `json:"alternatives" jsonschema:"remaining matches in rank order"`
	Ambiguous    bool        `json:"ambiguous"`
	Cached       bool        `json:"cached"`
	Available    int         `json:"available" jsonschema:"records of the searched kinds in the inventory"`
}

// PlatformSummaryView summarizes one platform's inventory.
type PlatformSummaryView struct {
	Platform string         `json:"platform"`
	Records  int            `json:"records"`
	Kinds    map[string]int `json:"kinds,omitempty"`
	BuiltAt  string         `json:"built_at,omitempty" jsonschema:"RFC3339 time the snapshot was built"`
	Cached   bool           `json:"cached"`
	Error    string         `json:"error,omitempty"`
}

// SummaryResult is the output of accounts_summary.
type SummaryResult struct {
	Platforms []PlatformSummaryView `json:"platforms"`
	Total     int                   `json:"total"`
	HasErrors bool                  `json:"has_errors"`
}

// InvalidateResult is the output of invalidate_accounts.
type InvalidateResult struct {
	Invalidated []string `json:"invalidated"`
}

// CacheStatsResult is the output of cache_stats.
type CacheStatsResult struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// finder narrows resolution to one platform and the record kinds a caller
// of that tool wants back.
type finder struct {
	platform platform.Platform
	kinds    []platform.Kind
}

var (
	ga4Finder = finder{platform.WebAnalytics, []platform.Kind{platform.KindProperty}}
	gscFinder = finder{platform.SearchConsole, []platform.Kind{platform.KindSite}}
	gmcFinder = finder{platform.MerchantCenter, []platform.Kind{platform.KindMerchant, platform.KindSubAccount}}
)

// tools is the static tool table.
func (s *Server) tools() []registration {
	return []registration{
		bind(s, &mcp.Tool{
			Name:        "resolve_account",
			Description: "Resolve a domain, URL, id or business name to ranked account records across analytics platforms.",
		}, s.resolveAccount),
		bind(s, &mcp.Tool{
			Name:        "find_ga4_property",
			Description: "Find the GA4 property for a domain, URL or property name.",
		}, s.find(ga4Finder)),
		bind(s, &mcp.Tool{
			Name:        "find_gsc_site",
			Description: "Find the Search Console site for a domain or URL, including sc-domain properties.",
		}, s.find(gscFinder)),
		bind(s, &mcp.Tool{
			Name:        "find_gmc_account",
			Description: "Find the Merchant Center account or sub-account for a store name, domain or id.",
		}, s.find(gmcFinder)),
		bind(s, &mcp.Tool{
			Name:        "accounts_summary",
			Description: "Summarize the discovered inventory of every platform.",
		}, s.accountsSummary),
		bind(s, &mcp.Tool{
			Name:        "invalidate_accounts",
			Description: "Drop cached inventory so the next call rediscovers it.",
		}, s.invalidateAccounts),
		bind(s, &mcp.Tool{
			Name:        "cache_stats",
			Description: "Report inventory cache size and hit rate.",
		}, s.cacheStats),
	}
}

func (s *Server) resolveAccount(ctx context.Context, in ResolveAccountInput) (ResolveAccountResult, error) {
	p, err := platform.ParsePlatform(in.Platform)
	if err != nil {
		return ResolveAccountResult{}, err
	}
	res, err := s.engine.ResolveDetailed(ctx, in.Query, p)
	if err != nil {
		return ResolveAccountResult{}, err
	}

	out := ResolveAccountResult{
		Query:      res.Query,
		Normalized: res.Normalized,
		Platforms:  platformNames(res.Platforms),
		Matches:    matchViews(res.Matches),
		Ambiguous:  res.Ambiguous(),
		Cached:     res.Cached,
	}
	if len(res.Errors) > 0 {
		out.Errors = make(map[string]string, len(res.Errors))
		for p, msg := range res.Errors {
			out.Errors[string(p)] = msg
		}
	}
	return out, nil
}

func (s *Server) find(f finder) func(context.Context, FindInput) (FindResult, error) {
	return func(ctx context.Context, in FindInput) (FindResult, error) {
		res, err := s.engine.ResolveDetailed(ctx, in.Query, f.platform, f.kinds...)
		if err != nil {
			return FindResult{}, err
		}

		out := FindResult{
			Query:        in.Query,
			Alternatives: []MatchView{},
			Cached:       res.Cached,
			Available:    res.Candidates,
		}
		if top, ok := res.Top(); ok {
			view := matchView(top)
			out.Resolved = &view
			out.Alternatives = matchViews(res.Matches[1:])
			out.Ambiguous = res.Ambiguous()
		}
		return out, nil
	}
}

func (s *Server) accountsSummary(ctx context.Context, _ EmptyInput) (SummaryResult, error) {
	sum, err := s.index.Summary(ctx)
	if err != nil {
		return SummaryResult{}, err
	}
	out := SummaryResult{
		Platforms: make([]PlatformSummaryView, 0, len(sum.Platforms)),
		Total:     sum.Total,
		HasErrors: sum.HasErrors,
	}
	for _, ps := range sum.Platforms {
		out.Platforms = append(out.Platforms, summaryView(ps))
	}
	return out, nil
}

func (s *Server) invalidateAccounts(_ context.Context, in InvalidateInput) (InvalidateResult, error) {
	p, err := platform.ParsePlatform(in.Platform)
	if err != nil {
		return InvalidateResult{}, err
	}
	done, err := s.engine.Invalidate(p)
	if err != nil {
		return InvalidateResult{}, err
	}
	return InvalidateResult{Invalidated: platformNames(done)}, nil
}

func (s *Server) cacheStats(context.Context, EmptyInput) (CacheStatsResult, error) {
	st := s.engine.CacheStats()
	return CacheStatsResult{
		Size:      st.Size,
		Capacity:  st.Capacity,
		Hits:      st.Hits,
		Misses:    st.Misses,
		Evictions: st.Evictions,
		HitRate:   st.HitRate,
	}, nil
}

func matchView(m resolve.Match) MatchView {
	return MatchView{
		Platform:    string(m.Record.Platform),
		ID:          m.Record.ID,
		DisplayName: m.Record.DisplayName,
		Kind:        string(m.Record.Kind),
		ParentID:    m.Record.ParentID,
		Score:       m.Score,
		MatchType:   m.Type.String(),
	}
}

func matchViews(ms []resolve.Match) []MatchView {
	out := make([]MatchView, 0, len(ms))
	for _, m := range ms {
		out = append(out, matchView(m))
	}
	return out
}

func summaryView(ps accounts.PlatformSummary) PlatformSummaryView {
	v := PlatformSummaryView{
		Platform: string(ps.Platform),
		Records:  ps.Records,
		Cached:   ps.Cached,
		Error:    ps.Error,
	}
	if len(ps.Kinds) > 0 {
		v.Kinds = make(map[string]int, len(ps.Kinds))
		for k, n := range ps.Kinds {
			v.Kinds[string(k)] = n
		}
	}
	if ps.BuiltAt != nil {
		v.BuiltAt = ps.BuiltAt.UTC().Format(time.RFC3339)
	}
	return v
}

func platformNames(ps []platform.Platform) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, string(p))
	}
	return out
}
