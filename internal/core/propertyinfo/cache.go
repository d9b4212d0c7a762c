package propertyinfo

import (
	"encoding/json"
	"slices"
	"sync/atomic"

	"propinfo/internal/shared/observability"
	"propinfo/internal/shared/util"
)

// DefaultCacheEntries bounds the memo when no capacity is given.
const DefaultCacheEntries = 1024

type cacheKey struct {
	operation string
	class     string
	property  string
	context   string
}

type cacheEntry struct {
	value any
	ok    bool
}

// CacheExtractor memoises the answers of an inner PropertyInfo. "No opinion"
// results are cached as well; errors never are. Calls whose context cannot be
// JSON encoded bypass the cache. Slice answers are copied on the way in and
// out, so callers may modify what they receive.
type CacheExtractor struct {
	inner   PropertyInfo
	entries *util.LRUCache[cacheKey, cacheEntry]
	// generation is bumped by Reset; an answer loaded across a Reset is
	// returned but not stored.
	generation atomic.Uint64
}

var _ PropertyInfo = (*CacheExtractor)(nil)

// NewCacheExtractor memoises inner in an LRU of capacity entries.
func NewCacheExtractor(inner PropertyInfo, capacity int) *CacheExtractor {
	if capacity <= 0 {
		capacity = DefaultCacheEntries
	}
	return &CacheExtractor{
		inner:   inner,
		entries: util.NewLRUCache[cacheKey, cacheEntry](capacity),
	}
}

// Reset drops every cached answer.
func (c *CacheExtractor) Reset() {
	c.generation.Add(1)
	c.entries.Clear()
}

// Len returns the number of cached answers.
func (c *CacheExtractor) Len() int {
	return c.entries.Len()
}

func (c *CacheExtractor) Properties(class string, ctx Context) ([]string, bool, error) {
	return cached(c, "properties", class, "", ctx, cloneStrings, func() ([]string, bool, error) {
		return c.inner.Properties(class, ctx)
	})
}

func (c *CacheExtractor) ShortDescription(class, property string, ctx Context) (string, bool, error) {
	return cached(c, "short_description", class, property, ctx, same[string], func() (string, bool, error) {
		return c.inner.ShortDescription(class, property, ctx)
	})
}

func (c *CacheExtractor) LongDescription(class, property string, ctx Context) (string, bool, error) {
	return cached(c, "long_description", class, property, ctx, same[string], func() (string, bool, error) {
		return c.inner.LongDescription(class, property, ctx)
	})
}

func (c *CacheExtractor) Types(class, property string, ctx Context) ([]Type, bool, error) {
	return cached(c, "types", class, property, ctx, cloneTypes, func() ([]Type, bool, error) {
		return c.inner.Types(class, property, ctx)
	})
}

func (c *CacheExtractor) IsReadable(class, property string, ctx Context) (bool, bool, error) {
	return cached(c, "readable", class, property, ctx, same[bool], func() (bool, bool, error) {
		return c.inner.IsReadable(class, property, ctx)
	})
}

func (c *CacheExtractor) IsWritable(class, property string, ctx Context) (bool, bool, error) {
	return cached(c, "writable", class, property, ctx, same[bool], func() (bool, bool, error) {
		return c.inner.IsWritable(class, property, ctx)
	})
}

func (c *CacheExtractor) IsInitializable(class, property string, ctx Context) (bool, bool, error) {
	return cached(c, "initializable", class, property, ctx, same[bool], func() (bool, bool, error) {
		return c.inner.IsInitializable(class, property, ctx)
	})
}

func cached[T any](c *CacheExtractor, operation, class, property string, ctx Context, clone func(T) T, load func() (T, bool, error)) (T, bool, error) {
	encoded, err := json.Marshal(ctx)
	if err != nil {
		return load()
	}
	key := cacheKey{operation: operation, class: class, property: property, context: string(encoded)}

	if entry, ok := c.entries.Get(key); ok {
		observability.CacheHitsTotal.Inc()
		value, _ := entry.value.(T)
		return clone(value), entry.ok, nil
	}
	observability.CacheMissesTotal.Inc()

	generation := c.generation.Load()
	value, ok, err := load()
	if err != nil {
		return value, ok, err
	}
	if c.generation.Load() == generation {
		c.entries.Put(key, cacheEntry{value: clone(value), ok: ok})
	}
	return value, ok, nil
}

func same[T any](v T) T { return v }

func cloneStrings(values []string) []string { return slices.Clone(values) }

func cloneTypes(types []Type) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		t.KeyTypes = cloneTypes(t.KeyTypes)
		t.ValueTypes = cloneTypes(t.ValueTypes)
		out[i] = t
	}
	return out
}
