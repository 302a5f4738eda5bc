package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

// refPattern finds secretref:<provider>:<ref> anywhere in a value.
var refPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver expands configuration values that may hold secret references.
// It is safe for concurrent use once constructed.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver over providers, or over the env and file
// providers when none are given. In strict mode a reference that resolves
// to "" is an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	if len(providers) == 0 {
		providers = []Provider{NewEnvProvider(), NewFileProvider("")}
	}
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// IsRef reports whether value contains a secret reference.
func IsRef(value string) bool {
	return strings.Contains(value, refPrefix)
}

// ParseRef splits a value that is exactly one reference into its provider
// and ref.
func ParseRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

// ResolveValue expands environment variables in value, then replaces
// every secret reference with its resolved secret. A nil Resolver only
// expands the environment.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil || r == nil {
		return expanded, err
	}
	if provider, ref, ok := ParseRef(expanded); ok {
		return r.lookup(ctx, provider, ref)
	}

	var firstErr error
	out := refPattern.ReplaceAllStringFunc(expanded, func(m string) string {
		if firstErr != nil {
			return m
		}
		sub := refPattern.FindStringSubmatch(m)
		v, err := r.lookup(ctx, sub[1], sub[2])
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, name, ref string) (string, error) {
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret: %s: %w", name, err)
	}
	if v == "" && r.strict {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptyValue, name, ref)
	}
	return v, nil
}

// Close closes every provider and joins their errors.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
