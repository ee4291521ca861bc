package rdmap

import (
	"hash/maphash"
	"iter"
)

// TypedMap is a type-safe layer on top of Map. Every operation forwards
// directly to the underlying untyped engine; the wrapper adds no state and
// no synchronization.
//
// By default keys are hashed with hash/maphash using a per-map seed and
// compared with ==. Both can be overridden with WithHash and WithCompare,
// which is required when == is not the intended key equality.
type TypedMap[K comparable, V any] struct {
	rmap Map
}

type typedConfig[K comparable, V any] struct {
	hash         func(K) uint64
	cmp          func(a, b K) bool
	destroyKey   func(K)
	destroyValue func(V)
}

// TypedOption configures a TypedMap during construction.
type TypedOption[K comparable, V any] func(c *typedConfig[K, V])

// WithHash overrides the default key hash function.
func WithHash[K comparable, V any](fn func(K) uint64) TypedOption[K, V] {
	return func(c *typedConfig[K, V]) {
		c.hash = fn
	}
}

// WithCompare overrides the default == key comparison. The hash function
// must agree with it: keys equal under fn must hash equal.
func WithCompare[K comparable, V any](fn func(a, b K) bool) TypedOption[K, V] {
	return func(c *typedConfig[K, V]) {
		c.cmp = fn
	}
}

// WithTypedDestroyKey registers a typed key destructor.
func WithTypedDestroyKey[K comparable, V any](fn func(K)) TypedOption[K, V] {
	return func(c *typedConfig[K, V]) {
		c.destroyKey = fn
	}
}

// WithTypedDestroyValue registers a typed value destructor. It is not
// invoked for elements created by GetElem that were never populated.
func WithTypedDestroyValue[K comparable, V any](fn func(V)) TypedOption[K, V] {
	return func(c *typedConfig[K, V]) {
		c.destroyValue = fn
	}
}

// NewTyped allocates and initializes a typed map expected to hold
// expectedCnt elements. The capacity hint behaves as in Init.
func NewTyped[K comparable, V any](expectedCnt int, opts ...TypedOption[K, V]) *TypedMap[K, V] {
	var cfg typedConfig[K, V]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hash == nil {
		cfg.hash = makeDefaultHash[K](maphash.MakeSeed())
	}
	if cfg.cmp == nil {
		cfg.cmp = func(a, b K) bool { return a == b }
	}

	var engineOpts []Option
	if fn := cfg.destroyKey; fn != nil {
		engineOpts = append(engineOpts, WithDestroyKey(func(k any) {
			fn(k.(K))
		}))
	}
	if fn := cfg.destroyValue; fn != nil {
		engineOpts = append(engineOpts, WithDestroyValue(func(v any) {
			// Unpopulated GetElem placeholders hold nil.
			if v != nil {
				fn(v.(V))
			}
		}))
	}

	tm := &TypedMap[K, V]{}
	tm.rmap.Init(expectedCnt,
		func(a, b any) bool { return cfg.cmp(a.(K), b.(K)) },
		func(key any) uint64 { return cfg.hash(key.(K)) },
		engineOpts...)

	return tm
}

func typedValue[V any](v any) V {
	if v == nil {
		var zero V
		return zero
	}

	return v.(V)
}

// Set associates key with value, overwriting any existing association.
func (tm *TypedMap[K, V]) Set(key K, value V) {
	tm.rmap.Set(key, value)
}

// Get returns the value associated with key and whether the key is present.
func (tm *TypedMap[K, V]) Get(key K) (V, bool) {
	v, ok := tm.rmap.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	return typedValue[V](v), true
}

// GetElem returns the element holding key, creating it if absent. See
// Map.GetElem.
func (tm *TypedMap[K, V]) GetElem(key K) *Elem {
	return tm.rmap.GetElem(key)
}

// Delete removes key from the map if it exists.
func (tm *TypedMap[K, V]) Delete(key K) {
	tm.rmap.Delete(key)
}

// Cnt returns the current number of elements.
func (tm *TypedMap[K, V]) Cnt() int {
	return tm.rmap.Cnt()
}

// Foreach calls fn for every key/value pair in the map.
//
// The map must not be modified from within fn.
func (tm *TypedMap[K, V]) Foreach(fn func(key K, value V)) {
	for e := tm.rmap.First(); e != nil; e = e.Next() {
		fn(e.Key.(K), typedValue[V](e.Value))
	}
}

// All returns an iterator over all key/value pairs, for use with range.
//
// The map must not be modified during the traversal.
func (tm *TypedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := tm.rmap.First(); e != nil; e = e.Next() {
			if !yield(e.Key.(K), typedValue[V](e.Value)) {
				return
			}
		}
	}
}

// Stats returns an occupancy snapshot of the underlying engine.
func (tm *TypedMap[K, V]) Stats() Stats {
	return tm.rmap.Stats()
}

// Destroy releases every element through the registered destructors. The
// map is unusable afterwards.
func (tm *TypedMap[K, V]) Destroy() {
	tm.rmap.Destroy()
}
