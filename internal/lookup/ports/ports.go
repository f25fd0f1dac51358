// Package ports defines the collaborator interfaces the validation pipeline
// depends on. Implementations live in the cache and providers packages.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks LookupClient,CacheStore

import (
	"context"

	"phoneverify/internal/lookup/params"
)

// LookupClient performs a single remote lookup for a phone number.
type LookupClient interface {
	// Lookup reports whether the lookup service considers phoneNumber valid.
	// Any error means the lookup did not complete; callers must not retry.
	Lookup(ctx context.Context, phoneNumber string, queryParameters params.Set) (bool, error)
}

// CacheStore keeps the outcome of completed checks keyed by plain strings.
// It imposes no eviction policy; stores may expire entries on their own.
type CacheStore interface {
	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the value stored for key.
	Get(ctx context.Context, key string) (bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value bool) error
}
