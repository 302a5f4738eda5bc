package resolve

import (
	"strings"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// stopTokens carry no identifying signal and are dropped from token sets.
var stopTokens = map[string]struct{}{
	"www":    {},
	"http":   {},
	"https":  {},
	"com":    {},
	"net":    {},
	"org":    {},
	"sc":     {},
	"domain": {},
}

// Query is a normalized query.
type Query struct {
	// Raw is the input with surrounding whitespace removed.
	Raw string
	// Text is lower-cased with runs of whitespace collapsed.
	Text string
	// Normalized additionally strips the scheme, "www.", "sc-domain:" and
	// trailing slashes.
	Normalized string
	// Host is the host part of Normalized when the query looks like a
	// domain or URL, else empty.
	Host string
	// Tokens is the set of alphanumeric tokens, stop tokens removed.
	Tokens map[string]struct{}
}

// Normalize prepares a query for matching.
func Normalize(raw string) Query {
	raw = strings.TrimSpace(raw)
	text := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	q := Query{
		Raw:        raw,
		Text:       text,
		Normalized: platform.NormalizeURL(text),
		Tokens:     tokenSet(text),
	}
	if looksLikeDomain(q.Normalized) {
		q.Host = platform.Host(q.Normalized)
	}
	return q
}

// Empty reports whether nothing is left to match.
func (q Query) Empty() bool {
	return q.Normalized == ""
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range platform.Tokenize(s) {
		if _, stop := stopTokens[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// looksLikeDomain reports whether s has a dotted host and no spaces.
func looksLikeDomain(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	host := platform.Host(s)
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
