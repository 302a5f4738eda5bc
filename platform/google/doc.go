// Package google implements platform.Lister for Google Analytics 4 (Admin
// API v1beta), Search Console (webmasters v3) and Merchant Center (Content
// API v2.1).
//
// Listers only enumerate hierarchies; they never fetch report data. Every
// network call goes through the platform.Doer handed to ListAccounts and
// fails with a *platform.UpstreamError carrying the HTTP status, so the
// caller's retry policy can classify it.
//
//	listers, err := google.NewListers(ctx, google.Config{
//	    CredentialsFile: "/var/run/secrets/google/sa.json",
//	}, platform.Platforms()...)
package google
