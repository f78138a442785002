// Package cache is the Local Cache: a durable key/value store on the client
// holding the session token and the Pending Write queue.
package cache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/filex"
)

// Cache is a flat key/value store. Keys lists keys in a stable order.
// Get reports ok=false for absent keys. Failures wrap common.ErrCache.
// There are no cross-key transactions.
type Cache interface {
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Open returns the cache for backend stored at path.
func Open(ctx context.Context, backend, path string) (Cache, error) {
	switch backend {
	case "", BackendSQLite:
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCache, err)
		}
		return OpenSQLite(ctx, path)
	case BackendBolt:
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCache, err)
		}
		return OpenBolt(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
