package rdmap

import (
	"hash/maphash"

	"github.com/zeebo/xxh3"
)

// HashFunc maps a key to a bucket. Keys that are equal under the map's
// CmpFunc must produce equal hashes; the engine does not detect violations
// of this contract, they only cause lookups to miss.
type HashFunc func(key any) uint64

// CmpFunc reports whether two keys are equal.
type CmpFunc func(a, b any) bool

// DestroyFunc releases a key or value payload owned by the map.
type DestroyFunc func(v any)

// StrCmp is a ready-made comparator for string keys.
func StrCmp(a, b any) bool {
	return a.(string) == b.(string)
}

// StrHash is a ready-made djb2 hash function for string keys.
func StrHash(key any) uint64 {
	hash := uint64(5381)
	for _, c := range []byte(key.(string)) {
		hash = hash*33 + uint64(c)
	}

	return hash
}

// StrHashXXH3 is an XXH3-based hash function for string keys, for callers
// who want a stronger distribution than djb2.
func StrHashXXH3(key any) uint64 {
	return xxh3.HashString(key.(string))
}

// makeDefaultHash returns the hash function a TypedMap falls back to when
// none is configured.
func makeDefaultHash[K comparable](seed maphash.Seed) func(K) uint64 {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}
