// Package config loads process configuration from the environment.
//
// Load parses variables with caarlos0/env and validates the result. The
// typed accessors (CachePolicy, RetryPolicy, ResolveConfig, ObserveConfig,
// GoogleConfig) translate the flat environment into the structs the other
// packages take, so wiring code never reads the environment itself.
//
// GOOGLE_APPLICATION_CREDENTIALS may hold a path or a secret reference such
// as "secretref:file:/run/secrets/sa.json". ResolveSecrets resolves it; a
// resolved reference is treated as inline credentials JSON.
package config
