package resolve

import (
	"strings"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// Default thresholds.
const (
	DefaultTokenThreshold = 0.3
	DefaultFuzzyThreshold = 0.75
)

// Config tunes the matcher.
type Config struct {
	// TokenThreshold is the minimum Jaccard overlap for a token-overlap match.
	// Default: 0.3
	TokenThreshold float64

	// FuzzyThreshold is the minimum normalized edit-distance similarity for
	// a fuzzy match.
	// Default: 0.75
	FuzzyThreshold float64

	// KeepWeakerTiers returns weaker matches alongside exact ones instead of
	// suppressing them.
	KeepWeakerTiers bool
}

func (c Config) withDefaults() Config {
	if c.TokenThreshold <= 0 {
		c.TokenThreshold = DefaultTokenThreshold
	}
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	c.TokenThreshold = min(c.TokenThreshold, 1)
	c.FuzzyThreshold = min(c.FuzzyThreshold, 1)
	return c
}

// MatchRecords ranks records against q. It returns at most one match per
// record, the one from the highest tier it reaches. The result is sorted.
func MatchRecords(q Query, records []platform.AccountRecord, cfg Config) []Match {
	if q.Empty() || len(records) == 0 {
		return nil
	}
	cfg = cfg.withDefaults()

	cands := make([]candidate, len(records))
	for i, r := range records {
		cands[i] = newCandidate(r)
	}

	var found []Match
	hasExact := false
	for _, c := range cands {
		m, ok := c.matchExact(q)
		if !ok {
			m, ok = c.matchSuffix(q)
		}
		if !ok {
			m, ok = c.matchTokens(q, cfg.TokenThreshold)
		}
		if !ok {
			continue
		}
		hasExact = hasExact || m.Type.Exact()
		found = append(found, m)
	}

	if hasExact && !cfg.KeepWeakerTiers {
		exact := found[:0]
		for _, m := range found {
			if m.Type.Exact() {
				exact = append(exact, m)
			}
		}
		found = exact
	}

	if len(found) == 0 {
		for _, c := range cands {
			if m, ok := c.matchFuzzy(q, cfg.FuzzyThreshold); ok {
				found = append(found, m)
			}
		}
	}

	SortMatches(found)
	return found
}

// candidate is a record with its hints normalized once per call.
type candidate struct {
	record platform.AccountRecord
	id     string
	hints  []hint
}

type hint struct {
	text   string
	host   string
	tokens map[string]struct{}
}

func newCandidate(r platform.AccountRecord) candidate {
	c := candidate{
		record: r,
		id:     strings.ToLower(strings.TrimSpace(r.ID)),
		hints:  make([]hint, 0, len(r.Hints)),
	}
	for _, h := range r.Hints {
		text := platform.NormalizeURL(strings.Join(strings.Fields(strings.ToLower(h)), " "))
		if text == "" {
			continue
		}
		hh := hint{text: text, tokens: tokenSet(text)}
		if looksLikeDomain(text) {
			hh.host = platform.Host(text)
		}
		c.hints = append(c.hints, hh)
	}
	return c
}

func (c candidate) match(t MatchType, score float64) Match {
	return Match{Record: c.record, Score: score, Type: t}
}

func (c candidate) matchExact(q Query) (Match, bool) {
	if c.id != "" {
		if q.Text == c.id || q.Normalized == c.id {
			return c.match(MatchExactID, 1), true
		}
		if i := strings.LastIndexByte(c.id, '/'); i >= 0 && i < len(c.id)-1 && q.Normalized == c.id[i+1:] {
			return c.match(MatchExactID, 1), true
		}
	}
	for _, h := range c.hints {
		if h.text == q.Normalized || h.text == q.Text {
			return c.match(MatchExactDomain, 1), true
		}
	}
	return Match{}, false
}

// matchSuffix matches when the query host is the hint host or ends it on a
// label boundary: "gatedepot.com" matches "shop.gatedepot.com" but
// "depot.com" does not match "gatedepot.com".
func (c candidate) matchSuffix(q Query) (Match, bool) {
	if q.Host == "" {
		return Match{}, false
	}
	qLabels := strings.Count(q.Host, ".") + 1

	best, ok := Match{}, false
	for _, h := range c.hints {
		if h.host == "" {
			continue
		}
		if h.host != q.Host && !strings.HasSuffix(h.host, "."+q.Host) {
			continue
		}
		m := c.match(MatchDomainSuffix, float64(qLabels)/float64(strings.Count(h.host, ".")+1))
		if !ok || m.better(best) {
			best, ok = m, true
		}
	}
	return best, ok
}

func (c candidate) matchTokens(q Query, threshold float64) (Match, bool) {
	best, ok := Match{}, false
	for _, h := range c.hints {
		score := jaccard(q.Tokens, h.tokens)
		if score < threshold || score == 0 {
			continue
		}
		m := c.match(MatchTokenOverlap, score)
		if !ok || m.better(best) {
			best, ok = m, true
		}
	}
	return best, ok
}

func (c candidate) matchFuzzy(q Query, threshold float64) (Match, bool) {
	best, ok := Match{}, false
	for _, h := range c.hints {
		score := similarity(q.Normalized, h.text)
		if score < threshold {
			continue
		}
		m := c.match(MatchFuzzy, score)
		if !ok || m.better(best) {
			best, ok = m, true
		}
	}
	return best, ok
}
