// Package storage implements the ordered-keyspace backend the dataset and
// update packages build on: six sorted quad indexes (SPOG, POSG, OSPG, GSPO,
// GPOS, GOSP), a string dictionary, a named-graphs set, and a small
// metadata column family recording format version and feature flags. The
// default graph is not a seventh special case; it is the graph whose
// encoded term is encoding.DefaultGraphEncoded, stored in the same six
// indexes as every named graph.
package storage

import (
	"errors"

	"github.com/quadcore/quadcore/pkg/encoding"
)

// ErrNotFound is returned by Snapshot.Get and Dictionary lookups when the
// requested key is absent.
var ErrNotFound = errors.New("storage: key not found")

// ErrReadOnlyWriter is returned when a caller tries to mutate through a
// transaction opened read-only.
var ErrReadOnlyWriter = errors.New("storage: writer is read-only")

// ErrUnsupportedOperation is returned by Backup on a store opened with an
// in-memory backend, and (wrapped) by Restore when the destination
// directory is non-empty.
var ErrUnsupportedOperation = errors.New("storage: unsupported operation")

// Index names one of the six sorted quad orderings a bound pattern can be
// answered from. The order of fields matches the encoded key's byte layout.
type Index byte

const (
	IndexSPOG Index = iota
	IndexPOSG
	IndexOSPG
	IndexGSPO
	IndexGPOS
	IndexGOSP
	indexCount
)

func (i Index) String() string {
	switch i {
	case IndexSPOG:
		return "spog"
	case IndexPOSG:
		return "posg"
	case IndexOSPG:
		return "ospg"
	case IndexGSPO:
		return "gspo"
	case IndexGPOS:
		return "gpos"
	case IndexGOSP:
		return "gosp"
	default:
		return "unknown"
	}
}

// columnFamily namespaces keys within the single underlying badger keyspace,
// the same byte-prefix scheme the teacher's Table type uses, generalized to
// cover the six quad indexes plus dictionary, graphs and metadata.
type columnFamily byte

const (
	cfDictionary columnFamily = iota
	cfGraphs
	cfMetadata
	cfIndexSPOG
	cfIndexPOSG
	cfIndexOSPG
	cfIndexGSPO
	cfIndexGPOS
	cfIndexGOSP
)

func indexColumnFamily(idx Index) columnFamily {
	return cfIndexSPOG + columnFamily(idx)
}

func prefixKey(cf columnFamily, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(cf)
	copy(out[1:], key)
	return out
}

// Quad is the four already-encoded terms of one stored quad, in subject,
// predicate, object, graph order regardless of which index they came from:
// every Iterator normalizes back to this order before handing a row to a
// caller.
type Quad = [4]encoding.EncodedTerm

// EncodedQuadFromIndexKey reorders the four terms found in idx's key layout
// back into (subject, predicate, object, graph) order.
func EncodedQuadFromIndexKey(idx Index, terms [4]encoding.EncodedTerm) Quad {
	switch idx {
	case IndexSPOG:
		return Quad{terms[0], terms[1], terms[2], terms[3]}
	case IndexPOSG:
		return Quad{terms[2], terms[0], terms[1], terms[3]}
	case IndexOSPG:
		return Quad{terms[1], terms[2], terms[0], terms[3]}
	case IndexGSPO:
		return Quad{terms[1], terms[2], terms[3], terms[0]}
	case IndexGPOS:
		return Quad{terms[3], terms[1], terms[2], terms[0]}
	case IndexGOSP:
		return Quad{terms[2], terms[3], terms[1], terms[0]}
	default:
		return terms
	}
}

// indexKeyTerms reorders (subject, predicate, object, graph) into idx's key
// layout, the inverse of EncodedQuadFromIndexKey.
func indexKeyTerms(idx Index, q Quad) [4]encoding.EncodedTerm {
	s, p, o, g := q[0], q[1], q[2], q[3]
	switch idx {
	case IndexSPOG:
		return [4]encoding.EncodedTerm{s, p, o, g}
	case IndexPOSG:
		return [4]encoding.EncodedTerm{p, o, s, g}
	case IndexOSPG:
		return [4]encoding.EncodedTerm{o, s, p, g}
	case IndexGSPO:
		return [4]encoding.EncodedTerm{g, s, p, o}
	case IndexGPOS:
		return [4]encoding.EncodedTerm{g, p, o, s}
	case IndexGOSP:
		return [4]encoding.EncodedTerm{g, o, s, p}
	default:
		return [4]encoding.EncodedTerm{s, p, o, g}
	}
}

// Backend is the ordered-keyspace contract a concrete engine (badger) must
// satisfy. The storage package's Store type is the only thing that talks to
// Backend directly; everything above it (dataset, update) talks to Store.
type Backend interface {
	// NewSnapshot opens a read-only, point-in-time view.
	NewSnapshot() Snapshot
	// NewWriter opens the single writable transaction. The backend is
	// responsible for serializing concurrent NewWriter calls (or rejecting
	// overlap); Store never assumes more than one writer is ever open.
	NewWriter() (Writer, error)
	Close() error
	// IsInMemory reports whether Backup/Restore must fail with
	// ErrUnsupportedOperation.
	IsInMemory() bool
}

// Snapshot is a read-only, point-in-time view over the keyspace. Reads
// against a Snapshot never observe writes committed after it was opened.
type Snapshot interface {
	Get(key []byte) ([]byte, bool, error)
	// Scan iterates keys in [start, end) in ascending order; end == nil
	// means "to the end of the prefix implied by start's first byte".
	Scan(start, end []byte) (Cursor, error)
	Discard()
}

// Cursor iterates key/value pairs in ascending key order.
type Cursor interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Close()
}

// Writer is the single active read-write transaction. All writes through
// one Writer commit or roll back atomically together.
type Writer interface {
	Snapshot
	Set(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Rollback()
}
