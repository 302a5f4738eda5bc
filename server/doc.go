// Package server exposes account resolution as MCP tools.
//
// The tool set is a static table (see tools.go). Every handler runs through
// observe.Middleware with a fresh invocation id, and every failure reaches
// the client as a tool error carrying the platform, the upstream operation,
// the attempt count and the failure class, never a raw response body.
//
// Run serves the tools over stdio or streamable HTTP. In HTTP mode the same
// mux also serves /healthz, /readyz, /health and /metrics.
package server
