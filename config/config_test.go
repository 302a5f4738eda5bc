package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/secret"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.CacheTTL() != 10*time.Minute {
		t.Errorf("CacheTTL() = %v, want 10m", cfg.CacheTTL())
	}
	if p := cfg.CachePolicy(); p.MaxEntries != 2048 || p.DefaultTTL != 10*time.Minute {
		t.Errorf("CachePolicy() = %+v", p)
	}

	rp := cfg.RetryPolicy()
	if rp.MaxAttempts != 5 || rp.BaseDelay != 500*time.Millisecond || rp.MaxDelay != 20*time.Second || rp.JitterFraction != 0.25 {
		t.Errorf("RetryPolicy() = %+v", rp)
	}

	rc := cfg.ResolveConfig()
	if rc.TokenThreshold != 0.3 || rc.FuzzyThreshold != 0.75 || rc.KeepWeakerTiers {
		t.Errorf("ResolveConfig() = %+v", rc)
	}

	if cfg.Transport != TransportStdio || cfg.Port != 8080 {
		t.Errorf("Transport/Port = %q/%d", cfg.Transport, cfg.Port)
	}
	if cfg.DiscoveryTimeout != time.Minute || cfg.DiscoveryRPS != 5 {
		t.Errorf("discovery = %v/%v", cfg.DiscoveryTimeout, cfg.DiscoveryRPS)
	}

	ps, err := cfg.PlatformList()
	if err != nil || len(ps) != 3 {
		t.Errorf("PlatformList() = %v, %v; want all three", ps, err)
	}

	oc := cfg.ObserveConfig("v1")
	if oc.ServiceName != ServiceName || oc.Tracing.Enabled || oc.Metrics.Enabled || !oc.Logging.Enabled {
		t.Errorf("ObserveConfig() = %+v", oc)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MCP_CACHE_TTL_SEC":             "30",
		"MCP_CACHE_MAXSIZE":             "16",
		"MCP_RETRY_MAX_ATTEMPTS":        "2",
		"MCP_RETRY_BASE_DELAY":          "10ms",
		"MCP_RETRY_MAX_DELAY":           "1s",
		"MCP_RESOLVE_FUZZY_THRESHOLD":   "0.9",
		"MCP_RESOLVE_KEEP_WEAKER_TIERS": "true",
		"GMC_MERCHANT_IDS":              "100,200",
		"MCP_PLATFORMS":                 "gsc,ga4,gsc",
		"MCP_TRANSPORT":                 "HTTP",
		"PORT":                          "9090",
		"MCP_METRICS_EXPORTER":          "prometheus",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.CacheTTL() != 30*time.Second || cfg.CacheMaxSize != 16 {
		t.Errorf("cache = %v/%d", cfg.CacheTTL(), cfg.CacheMaxSize)
	}
	if rp := cfg.RetryPolicy(); rp.MaxAttempts != 2 || rp.BaseDelay != 10*time.Millisecond {
		t.Errorf("RetryPolicy() = %+v", rp)
	}
	if rc := cfg.ResolveConfig(); rc.FuzzyThreshold != 0.9 || !rc.KeepWeakerTiers {
		t.Errorf("ResolveConfig() = %+v", rc)
	}
	if gc := cfg.GoogleConfig(); len(gc.MerchantIDs) != 2 || gc.MerchantIDs[1] != 200 {
		t.Errorf("MerchantIDs = %v", gc.MerchantIDs)
	}
	ps, _ := cfg.PlatformList()
	if len(ps) != 2 || ps[0] != platform.SearchConsole || ps[1] != platform.WebAnalytics {
		t.Errorf("PlatformList() = %v, want [search-console web-analytics]", ps)
	}
	if cfg.Transport != TransportHTTP || cfg.Port != 9090 {
		t.Errorf("Transport/Port = %q/%d", cfg.Transport, cfg.Port)
	}
	if oc := cfg.ObserveConfig(""); !oc.Metrics.Enabled || oc.Metrics.Exporter != "prometheus" {
		t.Errorf("metrics = %+v", oc.Metrics)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr error
	}{
		{name: "zero attempts", vars: map[string]string{"MCP_RETRY_MAX_ATTEMPTS": "0"}, wantErr: ErrInvalidValue},
		{name: "jitter above one", vars: map[string]string{"MCP_RETRY_JITTER": "1.5"}, wantErr: ErrInvalidValue},
		{name: "max below base", vars: map[string]string{"MCP_RETRY_BASE_DELAY": "2s", "MCP_RETRY_MAX_DELAY": "1s"}, wantErr: ErrInvalidValue},
		{name: "zero threshold", vars: map[string]string{"MCP_RESOLVE_TOKEN_THRESHOLD": "0"}, wantErr: ErrInvalidValue},
		{name: "bad port", vars: map[string]string{"PORT": "70000"}, wantErr: ErrInvalidValue},
		{name: "bad transport", vars: map[string]string{"MCP_TRANSPORT": "grpc"}, wantErr: ErrInvalidTransport},
		{name: "bad platform", vars: map[string]string{"MCP_PLATFORMS": "ads"}, wantErr: platform.ErrUnknownPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadFrom error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFrom_ParseError(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"MCP_CACHE_MAXSIZE": "lots"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CREDS_DIR", dir)

	tests := []struct {
		name     string
		value    string
		wantFile string
		wantJSON string
	}{
		{name: "empty", value: ""},
		{name: "plain path", value: "/etc/sa.json", wantFile: "/etc/sa.json"},
		{name: "expanded path", value: "${CREDS_DIR}/sa.json", wantFile: path},
		{name: "file ref", value: "secretref:file:" + path, wantJSON: `{"type":"service_account"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Credentials: tt.value}
			if err := cfg.ResolveSecrets(context.Background(), secret.NewResolver(true)); err != nil {
				t.Fatalf("ResolveSecrets: %v", err)
			}
			gc := cfg.GoogleConfig()
			if gc.CredentialsFile != tt.wantFile {
				t.Errorf("CredentialsFile = %q, want %q", gc.CredentialsFile, tt.wantFile)
			}
			if string(gc.CredentialsJSON) != tt.wantJSON {
				t.Errorf("CredentialsJSON = %q, want %q", gc.CredentialsJSON, tt.wantJSON)
			}
		})
	}
}

func TestResolveSecrets_Missing(t *testing.T) {
	cfg := Config{Credentials: "secretref:file:" + filepath.Join(t.TempDir(), "absent.json")}
	err := cfg.ResolveSecrets(context.Background(), secret.NewResolver(true))
	if !errors.Is(err, secret.ErrNotFound) {
		t.Errorf("error = %v, want secret.ErrNotFound", err)
	}
}
