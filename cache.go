package rowguard

import "context"

// CacheProvider is the shared cache surface the engine and its providers
// persist built artifacts to: ownership metadata, the owner tree snapshot,
// permission maps, and entry lookups. The cache package has an in-memory
// implementation; the subpackages accept it through their own narrower
// interfaces.
type CacheProvider interface {
	// Fetch returns a cached value, if available.
	Fetch(ctx context.Context, key string) (any, bool)

	// Save stores a value under a key.
	Save(ctx context.Context, key string, value any)

	// Delete removes a single key.
	Delete(ctx context.Context, key string)

	// DeleteAll removes every key.
	DeleteAll(ctx context.Context)
}
