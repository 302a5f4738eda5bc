package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/analyticsresolve/cache"
	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/platform/google"
	"github.com/jonwraymond/analyticsresolve/resilience"
	"github.com/jonwraymond/analyticsresolve/resolve"
	"github.com/jonwraymond/analyticsresolve/secret"
)

// ServiceName identifies the process in telemetry.
const ServiceName = "analyticsresolve"

// Transports accepted by MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Errors returned by Validate.
var (
	ErrInvalidTransport = errors.New("config: invalid transport")
	ErrInvalidValue     = errors.New("config: invalid value")
)

// Config is the flat environment configuration.
type Config struct {
	CacheTTLSeconds int `env:"MCP_CACHE_TTL_SEC" envDefault:"600"`
	CacheMaxSize    int `env:"MCP_CACHE_MAXSIZE" envDefault:"2048"`

	RetryMaxAttempts int           `env:"MCP_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseDelay   time.Duration `env:"MCP_RETRY_BASE_DELAY" envDefault:"500ms"`
	RetryMaxDelay    time.Duration `env:"MCP_RETRY_MAX_DELAY" envDefault:"20s"`
	RetryJitter      float64       `env:"MCP_RETRY_JITTER" envDefault:"0.25"`
	AttemptTimeout   time.Duration `env:"MCP_RETRY_ATTEMPT_TIMEOUT" envDefault:"30s"`

	DiscoveryTimeout time.Duration `env:"MCP_DISCOVERY_TIMEOUT" envDefault:"60s"`
	DiscoveryRPS     float64       `env:"MCP_DISCOVERY_RPS" envDefault:"5"`
	DiscoveryBurst   int           `env:"MCP_DISCOVERY_BURST" envDefault:"5"`

	TokenThreshold  float64 `env:"MCP_RESOLVE_TOKEN_THRESHOLD" envDefault:"0.3"`
	FuzzyThreshold  float64 `env:"MCP_RESOLVE_FUZZY_THRESHOLD" envDefault:"0.75"`
	KeepWeakerTiers bool    `env:"MCP_RESOLVE_KEEP_WEAKER_TIERS"`

	Credentials string   `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	MerchantIDs []uint64 `env:"GMC_MERCHANT_IDS" envSeparator:","`
	SkipStreams bool     `env:"GA4_SKIP_STREAMS"`
	Platforms   []string `env:"MCP_PLATFORMS" envSeparator:","`

	Transport string `env:"MCP_TRANSPORT" envDefault:"stdio"`
	Port      int    `env:"PORT" envDefault:"8080"`

	LogLevel        string  `env:"MCP_LOG_LEVEL" envDefault:"info"`
	TracingExporter string  `env:"MCP_TRACING_EXPORTER" envDefault:"none"`
	TracingSample   float64 `env:"MCP_TRACING_SAMPLE" envDefault:"1"`
	MetricsExporter string  `env:"MCP_METRICS_EXPORTER" envDefault:"none"`

	// credentialsJSON is set by ResolveSecrets when Credentials was a
	// secret reference.
	credentialsJSON []byte
}

// Load parses the process environment and validates it.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, name string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, v))
		}
	}

	check(c.CacheTTLSeconds >= 0, "MCP_CACHE_TTL_SEC", c.CacheTTLSeconds)
	check(c.CacheMaxSize > 0, "MCP_CACHE_MAXSIZE", c.CacheMaxSize)
	check(c.RetryMaxAttempts >= 1, "MCP_RETRY_MAX_ATTEMPTS", c.RetryMaxAttempts)
	check(c.RetryBaseDelay > 0, "MCP_RETRY_BASE_DELAY", c.RetryBaseDelay)
	check(c.RetryMaxDelay >= c.RetryBaseDelay, "MCP_RETRY_MAX_DELAY", c.RetryMaxDelay)
	check(c.RetryJitter >= 0 && c.RetryJitter <= 1, "MCP_RETRY_JITTER", c.RetryJitter)
	check(c.AttemptTimeout >= 0, "MCP_RETRY_ATTEMPT_TIMEOUT", c.AttemptTimeout)
	check(c.DiscoveryTimeout >= 0, "MCP_DISCOVERY_TIMEOUT", c.DiscoveryTimeout)
	check(c.DiscoveryRPS >= 0, "MCP_DISCOVERY_RPS", c.DiscoveryRPS)
	check(c.TokenThreshold > 0 && c.TokenThreshold <= 1, "MCP_RESOLVE_TOKEN_THRESHOLD", c.TokenThreshold)
	check(c.FuzzyThreshold > 0 && c.FuzzyThreshold <= 1, "MCP_RESOLVE_FUZZY_THRESHOLD", c.FuzzyThreshold)
	check(c.Port > 0 && c.Port < 65536, "PORT", c.Port)

	if _, err := c.PlatformList(); err != nil {
		errs = append(errs, err)
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTransport, c.Transport))
	}

	obs := c.ObserveConfig("")
	if err := obs.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PlatformList returns the platforms to serve. Empty means all of them.
func (c Config) PlatformList() ([]platform.Platform, error) {
	var out []platform.Platform
	for _, s := range c.Platforms {
		if strings.TrimSpace(s) == "" {
			continue
		}
		p, err := platform.ParsePlatform(s)
		if err != nil {
			return nil, fmt.Errorf("config: MCP_PLATFORMS: %w", err)
		}
		if p == platform.All {
			return platform.Platforms(), nil
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return platform.Platforms(), nil
	}
	return out, nil
}

// CacheTTL returns the snapshot TTL.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CachePolicy returns the cache policy for the snapshot store.
func (c Config) CachePolicy() cache.Policy {
	p := cache.DefaultPolicy()
	p.DefaultTTL = c.CacheTTL()
	p.MaxEntries = c.CacheMaxSize
	return p
}

// RetryPolicy returns the retry policy for discovery calls.
func (c Config) RetryPolicy() resilience.Policy {
	return resilience.Policy{
		MaxAttempts:    c.RetryMaxAttempts,
		BaseDelay:      c.RetryBaseDelay,
		MaxDelay:       c.RetryMaxDelay,
		JitterFraction: c.RetryJitter,
	}
}

// ResolveConfig returns the matcher thresholds.
func (c Config) ResolveConfig() resolve.Config {
	return resolve.Config{
		TokenThreshold:  c.TokenThreshold,
		FuzzyThreshold:  c.FuzzyThreshold,
		KeepWeakerTiers: c.KeepWeakerTiers,
	}
}

// ObserveConfig returns the telemetry configuration.
func (c Config) ObserveConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSample,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LogLevel != "",
			Level:   strings.ToLower(c.LogLevel),
		},
	}
}

// GoogleConfig returns the API client configuration. Call ResolveSecrets
// first when Credentials may be a secret reference.
func (c Config) GoogleConfig() google.Config {
	gc := google.Config{
		MerchantIDs: append([]uint64(nil), c.MerchantIDs...),
		SkipStreams: c.SkipStreams,
	}
	if len(c.credentialsJSON) > 0 {
		gc.CredentialsJSON = c.credentialsJSON
	} else {
		gc.CredentialsFile = c.Credentials
	}
	return gc
}

// ResolveSecrets expands Credentials through r. A value containing a
// secret reference resolves to credentials JSON; anything else is a path
// after ${VAR} expansion.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	if c.Credentials == "" {
		return nil
	}
	resolved, err := r.ResolveValue(ctx, c.Credentials)
	if err != nil {
		return fmt.Errorf("config: GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}
	if secret.IsRef(c.Credentials) {
		c.credentialsJSON = []byte(resolved)
		return nil
	}
	c.Credentials = resolved
	return nil
}
