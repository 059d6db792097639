package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches the value for a key from upstream
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Loader is a read-through view over a TTL cache
//
// Concurrent misses for the same key share one in-flight load: the first caller
// runs load and everyone waiting on that key receives its result. A failed load
// is returned to all of them and nothing is cached, so the next call tries again.
type Loader[V any] struct {
	cache  *TTL[V]
	flight singleflight.Group
}

// NewLoader wraps c with single-flight population
func NewLoader[V any](c *TTL[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Cache exposes the underlying TTL cache
func (l *Loader[V]) Cache() *TTL[V] { return l.cache }

// GetOrLoad returns the cached value for key or populates it with load
// hit reports whether the value came from the cache without calling load
func (l *Loader[V]) GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (v V, hit bool, err error) {
	if v, ok := l.cache.Get(key); ok {
		return v, true, nil
	}
	res, err, _ := l.flight.Do(key, func() (any, error) {
		// a flight that finished between our Get and Do already filled the cache
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		// the load is shared, so one caller going away must not fail the rest
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		l.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Forget drops key from the cache and detaches any in-flight load from future callers
func (l *Loader[V]) Forget(key string) {
	l.flight.Forget(key)
	l.cache.Delete(key)
}
