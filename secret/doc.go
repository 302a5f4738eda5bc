// Package secret resolves credential references in configuration values.
//
// A value may name a secret instead of holding it:
//
//	secretref:file:/var/run/secrets/google/sa.json
//	secretref:env:GOOGLE_SA_JSON
//
// Resolver expands ${VAR} references strictly, then asks the named Provider
// for each reference. References may also appear inline inside a larger
// value.
package secret
