package cache

import (
	"errors"
	"strings"
	"testing"
)

// TestCacheKey_Validation tests key validation rules.
func TestCacheKey_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", ErrInvalidKey},
		{"valid key", "accounts:web-analytics", nil},
		{"too long", strings.Repeat("x", MaxKeyLength+1), ErrKeyTooLong},
		{"contains newline", "key\nwith\nnewlines", ErrInvalidKey},
		{"contains carriage return", "key\rwith\rreturns", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"max length exactly", strings.Repeat("x", MaxKeyLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		parts     []string
		want      string
		wantErr   bool
	}{
		{"single part", "accounts", []string{"web-analytics"}, "accounts:web-analytics", false},
		{"parts are normalized", "accounts", []string{"  Search-Console "}, "accounts:search-console", false},
		{"multiple parts", "resolve", []string{"all", "gatedepot.com"}, "resolve:all:gatedepot.com", false},
		{"namespace only", "accounts", nil, "accounts", false},
		{"empty namespace", "", []string{"x"}, "", true},
		{"namespace with colon", "a:b", []string{"x"}, "", true},
		{"empty part", "accounts", []string{" "}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Key(tt.namespace, tt.parts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Key() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Key() error = %v, want ErrInvalidKey", err)
			}
			if got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	key, err := Key("accounts", "merchant-center")
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if !strings.HasPrefix(key, Prefix("accounts")) {
		t.Errorf("key %q does not start with %q", key, Prefix("accounts"))
	}
}
