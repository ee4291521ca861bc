// Package rdmap provides a separate-chaining hash map with caller-supplied
// key semantics and caller-controlled memory ownership, plus a generically
// typed layer on top of it (see TypedMap).
//
// Key and value payloads handed to Set are owned by the map until they are
// overwritten, deleted or the map is destroyed, at which point the optional
// destructor callbacks registered at Init are invoked on them. Without a
// registered destructor the map never touches the payload's lifecycle.
//
// The bucket array is sized once, at Init, from the expected element count.
// The map never rehashes: chains simply grow past the capacity hint and
// lookups degrade gracefully. Not thread safe.
package rdmap

// Elem is one stored association. It is exposed to the caller for iterating
// over the map and for populating lazily created elements (see GetElem).
type Elem struct {
	Key   any
	Value any

	// hash is the precomputed key hash, reused to locate the bucket
	// when the element is unlinked.
	hash uint64

	hnext, hprev *Elem // bucket chain
	lnext, lprev *Elem // iteration list
}

// Next advances the iteration cursor. Returns nil when exhausted.
func (e *Elem) Next() *Elem {
	return e.lnext
}

// Map is an untyped hash map. The zero value is not usable; the handle is
// owned by the caller and must be initialized with Init (or allocated via
// New) before use, and again after Destroy.
type Map struct {
	buckets []*Elem
	cnt     int
	iter    *Elem // head of the iteration list

	cmp          CmpFunc
	hash         HashFunc
	destroyKey   DestroyFunc
	destroyValue DestroyFunc
}

// bucketSizes are the candidate bucket counts, all prime.
var bucketSizes = [...]int{
	7, 13, 31, 61, 127, 251, 509, 1021, 2039, 4093, 8191,
	16381, 32749, 65521, 131071, 262139, 524287, 1048573,
}

// defaultBuckets is used when the capacity hint is zero.
const defaultBuckets = 31

// bucketCount selects the smallest candidate bucket count that is at least
// expectedCnt, falling back to the largest candidate for huge hints.
func bucketCount(expectedCnt int) int {
	if expectedCnt <= 0 {
		return defaultBuckets
	}
	for _, cnt := range bucketSizes {
		if cnt >= expectedCnt {
			return cnt
		}
	}
	return bucketSizes[len(bucketSizes)-1]
}

// Init initializes a map expected to hold expectedCnt elements. The hint is
// used once, to size the bucket array; a hint of zero selects a small prime
// default. cmp must report whether two keys are equal and hash must map a
// key to an integer such that keys equal under cmp hash equal. Optional
// key/value destructors are registered with WithDestroyKey and
// WithDestroyValue.
//
// Destroy the map with Destroy; the same handle can then be re-initialized.
func (m *Map) Init(expectedCnt int, cmp CmpFunc, hash HashFunc, opts ...Option) {
	*m = Map{
		buckets: make([]*Elem, bucketCount(expectedCnt)),
		cmp:     cmp,
		hash:    hash,
	}
	for _, opt := range opts {
		opt(m)
	}
}

// New allocates and initializes a map. See Init.
func New(expectedCnt int, cmp CmpFunc, hash HashFunc, opts ...Option) *Map {
	var m Map
	m.Init(expectedCnt, cmp, hash, opts...)

	return &m
}

// Option configures a map during Init.
type Option func(m *Map)

// WithDestroyKey registers a destructor invoked on a key when its element
// is deleted or overwritten, or when the map is destroyed.
func WithDestroyKey(fn DestroyFunc) Option {
	return func(m *Map) {
		m.destroyKey = fn
	}
}

// WithDestroyValue registers a destructor invoked on a value when its
// element is deleted or overwritten, or when the map is destroyed.
func WithDestroyValue(fn DestroyFunc) Option {
	return func(m *Map) {
		m.destroyValue = fn
	}
}

func (m *Map) find(key any, hash uint64) *Elem {
	for e := m.buckets[hash%uint64(len(m.buckets))]; e != nil; e = e.hnext {
		if e.hash == hash && m.cmp(e.Key, key) {
			return e
		}
	}

	return nil
}

// link prepends e to its bucket chain and to the iteration list.
func (m *Map) link(e *Elem) {
	idx := e.hash % uint64(len(m.buckets))
	if head := m.buckets[idx]; head != nil {
		head.hprev = e
	}
	e.hnext = m.buckets[idx]
	m.buckets[idx] = e

	if m.iter != nil {
		m.iter.lprev = e
	}
	e.lnext = m.iter
	m.iter = e

	m.cnt++
}

func (m *Map) unlink(e *Elem) {
	if e.hprev != nil {
		e.hprev.hnext = e.hnext
	} else {
		m.buckets[e.hash%uint64(len(m.buckets))] = e.hnext
	}
	if e.hnext != nil {
		e.hnext.hprev = e.hprev
	}

	if e.lprev != nil {
		e.lprev.lnext = e.lnext
	} else {
		m.iter = e.lnext
	}
	if e.lnext != nil {
		e.lnext.lprev = e.lprev
	}

	m.cnt--
}

// Set associates key with value, overwriting any existing association.
//
// The map assumes ownership of both key and value: an overwritten element
// has its old key and value released through the registered destructors
// before the new payload is installed in place. The element keeps its
// bucket and iteration position on overwrite.
func (m *Map) Set(key, value any) {
	hash := m.hash(key)
	if e := m.find(key, hash); e != nil {
		if m.destroyKey != nil {
			m.destroyKey(e.Key)
		}
		if m.destroyValue != nil {
			m.destroyValue(e.Value)
		}
		e.Key, e.Value = key, value

		return
	}

	m.link(&Elem{Key: key, Value: value, hash: hash})
}

// Get returns the value associated with key, or (nil, false) if the key is
// absent. The returned value remains owned by the map.
func (m *Map) Get(key any) (any, bool) {
	e := m.find(key, m.hash(key))
	if e == nil {
		return nil, false
	}

	return e.Value, true
}

// GetElem returns the element holding key, creating it with a nil value if
// it does not exist. The caller can populate Value directly, which avoids a
// second lookup when implementing something akin to Python's defaultdict.
// A freshly created element counts toward Cnt and iteration immediately,
// populated or not.
func (m *Map) GetElem(key any) *Elem {
	hash := m.hash(key)
	if e := m.find(key, hash); e != nil {
		return e
	}

	e := &Elem{Key: key, hash: hash}
	m.link(e)

	return e
}

// Delete removes key from the map if it exists, releasing the key and value
// through the registered destructors. Deleting an absent key is a no-op.
func (m *Map) Delete(key any) {
	e := m.find(key, m.hash(key))
	if e == nil {
		return
	}

	m.unlink(e)
	if m.destroyKey != nil {
		m.destroyKey(e.Key)
	}
	if m.destroyValue != nil {
		m.destroyValue(e.Value)
	}
	*e = Elem{}
}

// Cnt returns the current number of elements.
func (m *Map) Cnt() int {
	return m.cnt
}

// First begins an iteration, returning the first element or nil if the map
// is empty. Advance with Elem.Next. The order is derived from insertions
// but is not insertion order; it is stable only across a traversal that
// performs no mutation.
//
// The map must not be modified during the traversal.
func (m *Map) First() *Elem {
	return m.iter
}

// Foreach calls fn for every element in the map.
//
// The map must not be modified from within fn.
func (m *Map) Foreach(fn func(key, value any)) {
	for e := m.First(); e != nil; e = e.Next() {
		fn(e.Key, e.Value)
	}
}

// Destroy releases every element, invoking the registered destructors once
// per surviving key and value, and frees the bucket array. The handle is
// unusable afterwards but can be re-initialized with Init.
func (m *Map) Destroy() {
	for e := m.iter; e != nil; {
		next := e.lnext
		if m.destroyKey != nil {
			m.destroyKey(e.Key)
		}
		if m.destroyValue != nil {
			m.destroyValue(e.Value)
		}
		*e = Elem{}
		e = next
	}

	m.buckets = nil
	m.iter = nil
	m.cnt = 0
}
