// Package encoding implements the fixed-size term encoding that the storage
// indexes sort on: small values (booleans, integers, short canonical
// literals, 128-bit blank-node ids) are inlined directly into the encoded
// term; everything else is interned into a string dictionary and referenced
// by a 64-bit seeded hash.
package encoding

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// hashSeed is mixed into every dictionary hash so that ids are not the
// values of xxh3's default seed. It is one package-wide constant, so every
// Store hashes a given string to the same value; dictionaries stay scoped
// per store (not process-global) because each one writes through its own
// backend.
const hashSeed uint64 = 0x5bd1e995a4093822

// missingHash is never produced by hashString: it marks "no such entry" in
// code that threads a hash value through a lookup miss, mirroring the
// dictionary's sentinel-value convention in its origin design (an
// impossible hash value rather than a second boolean return everywhere).
const missingHash uint64 = ^uint64(1)

func hashString(s string) uint64 {
	h := xxh3.HashSeed([]byte(s), hashSeed)
	if h == missingHash {
		// Astronomically unlikely; perturb deterministically so the
		// sentinel value stays reserved for "absent".
		h++
	}
	return h
}

// Dictionary is an append-only hash -> lexical-form table, scoped to a
// single Store. It never forgets an entry (terms are never physically
// removed from the dictionary even when the last quad referencing them is
// deleted), so a snapshot holding only encoded ids from an older dictionary
// state can still resolve them: growth is monotonic.
//
// Dictionary is safe only for the access pattern the store gives it: a
// single writer calling Insert, and readers (including concurrent readers
// against older snapshots) calling Lookup. It does not lock internally;
// callers serialize writes through the storage backend's single-writer
// discipline.
type Dictionary struct {
	backend DictionaryBackend
}

// DictionaryBackend is the persistence seam a Dictionary writes through. The
// badger-backed storage package implements it directly against a column
// family; tests can substitute an in-memory map.
type DictionaryBackend interface {
	// GetString returns the lexical form stored under hash, or ok=false if
	// absent.
	GetString(hash uint64) (value string, ok bool)
	// PutString records value under hash. Overwriting an existing hash with
	// a different value is the collision case; callers resolve it with
	// linear probing before calling PutString.
	PutString(hash uint64, value string) error
}

func NewDictionary(backend DictionaryBackend) *Dictionary {
	return &Dictionary{backend: backend}
}

// MaxProbe bounds the linear-probing collision search. A dictionary this
// dense is pathological; exceeding the bound is reported rather than
// looping forever.
const MaxProbe = 1 << 16

// Insert interns value and returns the 64-bit id other encoded terms
// reference it by. If value is already present (under the same hash, not a
// colliding one), its existing id is returned unchanged.
func (d *Dictionary) Insert(value string) (uint64, error) {
	h := hashString(value)
	for probe := uint64(0); probe < MaxProbe; probe++ {
		id := h + probe
		if id == missingHash {
			id++
		}
		existing, ok := d.backend.GetString(id)
		if !ok {
			if err := d.backend.PutString(id, value); err != nil {
				return 0, err
			}
			return id, nil
		}
		if existing == value {
			return id, nil
		}
		// Collision: probe the next slot.
	}
	return 0, &CollisionError{Value: value}
}

// Lookup resolves id back to its interned string.
func (d *Dictionary) Lookup(id uint64) (string, bool) {
	return d.backend.GetString(id)
}

// Probe re-derives the id value would hash to without inserting it,
// resolving collisions the same way Insert does. Used by the encoder to
// build a query-side encoded term for a bound variable without mutating the
// dictionary.
func (d *Dictionary) Probe(value string) (uint64, bool) {
	h := hashString(value)
	for probe := uint64(0); probe < MaxProbe; probe++ {
		id := h + probe
		if id == missingHash {
			id++
		}
		existing, ok := d.backend.GetString(id)
		if !ok {
			return 0, false
		}
		if existing == value {
			return id, true
		}
	}
	return 0, false
}

// CollisionError reports that the linear probe exhausted MaxProbe slots
// without finding a free one or a match, the dictionary's "impossibly
// dense" failure mode.
type CollisionError struct {
	Value string
}

func (e *CollisionError) Error() string {
	return "encoding: dictionary probe exhausted without resolving a slot for " + quoteShort(e.Value)
}

func quoteShort(s string) string {
	const max = 64
	if len(s) > max {
		s = s[:max] + "..."
	}
	return `"` + s + `"`
}

// putUint64 and getUint64 are the big-endian helpers EncodedTerm uses to
// place/retrieve the inline 64-bit payloads (integers, timestamps, hash
// ids). Kept here rather than in pkg/rdf: they are an encoding-layer
// concern, not part of the term data model.
func putUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.BigEndian.Uint64(b) }

// EncodeInt64BigEndian renders v as 8 big-endian bytes.
func EncodeInt64BigEndian(v int64) []byte {
	b := make([]byte, 8)
	putUint64(b, uint64(v))
	return b
}

// DecodeInt64BigEndian reads an int64 from its 8 big-endian byte encoding.
func DecodeInt64BigEndian(b []byte) int64 {
	return int64(getUint64(b))
}

// EncodeFloat64BigEndian renders v as 8 big-endian bytes, bit-for-bit.
func EncodeFloat64BigEndian(v float64) []byte {
	b := make([]byte, 8)
	putUint64(b, math.Float64bits(v))
	return b
}

// DecodeFloat64BigEndian reads a float64 from its 8 big-endian byte
// encoding.
func DecodeFloat64BigEndian(b []byte) float64 {
	return math.Float64frombits(getUint64(b))
}
