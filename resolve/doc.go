// Package resolve ranks free-text queries against account inventories.
//
// A query such as "gatedepot.com", "https://www.GateDepot.com/" or
// "Gate Depot" is normalized and matched against every record's identifier
// hints in five tiers of strictly decreasing precedence:
//
//	exact-id             the query is the record id, or its last path segment
//	exact-domain         the query equals a hint
//	domain-suffix        the query is a label-boundary suffix of a hint host
//	token-overlap        Jaccard overlap of token sets >= TokenThreshold
//	fuzzy-edit-distance  1 - lev/max(len) >= FuzzyThreshold, only when no
//	                     suffix or token candidate exists
//
// Exact matches suppress every weaker tier for that platform unless
// Config.KeepWeakerTiers is set. Results are ordered by tier, then score
// descending, then display name; ambiguity is left to the caller.
//
// Engine wires the matcher to an accounts index:
//
//	engine := resolve.New(idx, resolve.Config{})
//	matches, err := engine.Resolve(ctx, "gatedepot.com", platform.WebAnalytics)
package resolve
