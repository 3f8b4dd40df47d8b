// Package resources implements the resource block algebra that backs a
// ResourceSet's three legs (AS numbers, IPv4, IPv6): containment, overclaim
// detection, and canonical (de)serialization.
//
// A leg is either concrete (a BlockSet of some kind) or the "inherit"
// sentinel, represented throughout this package and internal/limiter as a
// nil pointer — Go's idiomatic substitute for the original's
// Option<BlockSet>.
package resources
