// Package rolecache caches the set of role names attributed to an
// authenticated subject. The cache is populated on login with a TTL
// matching the session token lifetime and invalidated when roles or tenant
// domains are deleted.
//
// The guard treats an empty or absent set as a denial (fail-closed); a
// cache that cannot be reached is an infrastructure error, which is a
// different thing from "no roles".
package rolecache

import (
	"context"
	"time"
)

// Cache maps a subject identifier to its current role names.
type Cache interface {
	// Get returns the roles for subject. A missing key yields an empty set
	// and no error; an unreachable cache yields an error.
	Get(ctx context.Context, subject string) ([]string, error)

	// Set stores the role set for subject with the given TTL.
	Set(ctx context.Context, subject string, roles []string, ttl time.Duration) error

	// Invalidate drops the cached role set for subject.
	Invalidate(ctx context.Context, subject string) error

	// Close releases cache resources.
	Close() error
}
