package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// MatchType is a matching tier. Lower values take precedence.
type MatchType int

const (
	MatchExactID MatchType = iota
	MatchExactDomain
	MatchDomainSuffix
	MatchTokenOverlap
	MatchFuzzy
)

var matchTypeNames = [...]string{
	MatchExactID:      "exact-id",
	MatchExactDomain:  "exact-domain",
	MatchDomainSuffix: "domain-suffix",
	MatchTokenOverlap: "token-overlap",
	MatchFuzzy:        "fuzzy-edit-distance",
}

func (t MatchType) String() string {
	if t < 0 || int(t) >= len(matchTypeNames) {
		return fmt.Sprintf("MatchType(%d)", int(t))
	}
	return matchTypeNames[t]
}

// Exact reports whether t is one of the exact tiers.
func (t MatchType) Exact() bool {
	return t == MatchExactID || t == MatchExactDomain
}

// MarshalText encodes t by name.
func (t MatchType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *MatchType) UnmarshalText(b []byte) error {
	for i, name := range matchTypeNames {
		if name == string(b) {
			*t = MatchType(i)
			return nil
		}
	}
	return fmt.Errorf("resolve: unknown match type %q", b)
}

// Match is one ranked candidate. Score is in [0, 1].
type Match struct {
	Record platform.AccountRecord `json:"record"`
	Score  float64                `json:"score"`
	Type   MatchType              `json:"match_type"`
}

// better reports whether m outranks o for the same record.
func (m Match) better(o Match) bool {
	if m.Type != o.Type {
		return m.Type < o.Type
	}
	return m.Score > o.Score
}

// compareMatches orders by tier, score descending, display name, then
// platform and id so the order is total.
func compareMatches(a, b Match) int {
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Record.DisplayName), strings.ToLower(b.Record.DisplayName)); c != 0 {
		return c
	}
	if c := platformRank(a.Record.Platform) - platformRank(b.Record.Platform); c != 0 {
		return c
	}
	return strings.Compare(a.Record.ID, b.Record.ID)
}

// SortMatches sorts matches into their global order in place.
func SortMatches(matches []Match) {
	slices.SortStableFunc(matches, compareMatches)
}

func platformRank(p platform.Platform) int {
	for i, q := range platform.Platforms() {
		if p == q {
			return i
		}
	}
	return len(platform.Platforms())
}
