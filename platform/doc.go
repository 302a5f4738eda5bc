// Package platform defines the shared vocabulary of the resolver: the
// platform enumeration, the flat AccountRecord shape, the raw hierarchical
// records returned by platform listers, and the classification of upstream
// failures into retryable and permanent.
package platform
