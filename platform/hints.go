package platform

import (
	"strings"
	"unicode"
)

// NormalizeURL lower-cases a URL or domain and strips the parts people leave
// off when typing it: the Search Console "sc-domain:" prefix, the scheme, a
// leading "www." and trailing slashes.
func NormalizeURL(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "sc-domain:")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimRight(s, "/")
}

// Host returns the host part of a URL or domain, normalized and without a
// port, path, query or fragment.
func Host(s string) string {
	s = NormalizeURL(s)
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 && !strings.Contains(s[i:], "]") {
		s = s[:i]
	}
	return s
}

// Tokenize lower-cases s and splits it on every non-alphanumeric rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// BuildHints derives the identifier hints for a record: the lower-cased
// display name, each URL normalized plus its bare host, and the id.
// Duplicates and empty values are dropped; order is stable.
func BuildHints(id, displayName string, urls []string) []string {
	seen := make(map[string]struct{}, 2+2*len(urls))
	hints := make([]string, 0, 2+2*len(urls))
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		hints = append(hints, h)
	}

	add(strings.Join(strings.Fields(strings.ToLower(displayName)), " "))
	for _, u := range urls {
		add(NormalizeURL(u))
		add(Host(u))
	}
	add(strings.ToLower(strings.TrimSpace(id)))
	return hints
}
