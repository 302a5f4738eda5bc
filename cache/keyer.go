package cache

import (
	"fmt"
	"strings"
)

// Key joins a namespace and key parts into a cache key.
// Format: <namespace>:<part>[:<part>...]
//
// Parts are trimmed and lower-cased so that "Web-Analytics" and
// "web-analytics" address the same entry.
func Key(namespace string, parts ...string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" || strings.Contains(namespace, ":") {
		return "", fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	var b strings.Builder
	b.WriteString(namespace)
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			return "", fmt.Errorf("%w: empty part in namespace %q", ErrInvalidKey, namespace)
		}
		b.WriteByte(':')
		b.WriteString(part)
	}

	key := b.String()
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Prefix returns the key prefix shared by every key in namespace.
func Prefix(namespace string) string {
	return strings.TrimSpace(namespace) + ":"
}
