// Package observe provides observability primitives for the resolver and
// its tool handlers.
//
// An Observer owns the OpenTelemetry tracer and meter providers and a JSON
// structured Logger. Metrics and Tracer wrap them with the instruments the
// rest of the module records: tool executions, inventory rebuilds,
// resolutions and snapshot cache lookups. Middleware wraps a tool handler
// with a span, metrics and a completion log line.
package observe
