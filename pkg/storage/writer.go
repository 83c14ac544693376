package storage

import (
	"github.com/quadcore/quadcore/pkg/encoding"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// WriteTx is the single active writable transaction a Store hands out at a
// time. Neither Store nor the badger backend enforces single-writer
// exclusion (badger allows several writable transactions at once and
// reports conflicts at Commit); callers (the update package) serialize
// BeginWrite calls.
type WriteTx struct {
	rtx *ReadTx // reuses ReadTx's decode/scan helpers against the writer's own view
	w   Writer
}

// BeginWrite opens the store's single writable transaction. All inserts,
// removes and named-graph changes made through it become visible together
// on Commit, or not at all on Rollback.
func (s *Store) BeginWrite() (*WriteTx, error) {
	w, err := s.backend.NewWriter()
	if err != nil {
		return nil, err
	}
	return &WriteTx{rtx: &ReadTx{store: s, snap: w}, w: w}, nil
}

func (t *WriteTx) Commit() error { return t.w.Commit() }
func (t *WriteTx) Rollback()     { t.w.Rollback() }

// Reader exposes the writer's own snapshot view so pkg/update can evaluate a
// DELETE/INSERT WHERE clause against the transaction's own pending state
// rather than a separately-committed one. The returned ReadTx is owned by t:
// callers must never call its Close, since that would discard the writer's
// underlying badger transaction out from under it; t.Commit/t.Rollback is
// what ends its lifetime.
func (t *WriteTx) Reader() *ReadTx { return t.rtx }

// ScanIndex and DecodeQuad are available on the writer's own snapshot view
// so DELETE/INSERT WHERE can read the very data it is about to mutate.
func (t *WriteTx) ScanIndex(idx Index, prefixTerms ...encoding.EncodedTerm) (Cursor, error) {
	return t.rtx.ScanIndex(idx, prefixTerms...)
}
func (t *WriteTx) DecodeQuad(idx Index, key []byte) (*rdf.Quad, error) {
	return t.rtx.DecodeQuad(idx, key)
}
func (t *WriteTx) ContainsGraph(graph encoding.EncodedTerm) (bool, error) {
	return t.rtx.ContainsGraph(graph)
}

// Encode interns term through the write transaction's codec, growing the
// dictionary if needed.
func (t *WriteTx) Encode(term rdf.Term) (encoding.EncodedTerm, error) {
	return t.rtx.store.codec.Encode(term)
}

// Insert writes q into all six indexes and records its graph (if not the
// default graph) as a known named graph. A quad already present is a no-op
// write (same bytes rewritten).
func (t *WriteTx) Insert(q Quad) error {
	for idx := Index(0); idx < indexCount; idx++ {
		key := prefixKey(indexColumnFamily(idx), encoding.EncodeKey(indexKeyTerms(idx, q)[:]...))
		if err := t.w.Set(key, []byte{1}); err != nil {
			return err
		}
	}
	if !q[3].IsDefaultGraph() {
		if err := t.w.Set(prefixKey(cfGraphs, q[3][:]), []byte{1}); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes q from all six indexes. It does not remove the graph entry
// even if q was the last quad in that graph: named graphs persist until an
// explicit DROP, matching the distinction between "graph has no quads" and
// "graph does not exist" that CREATE/DROP operate on.
func (t *WriteTx) Remove(q Quad) error {
	for idx := Index(0); idx < indexCount; idx++ {
		key := prefixKey(indexColumnFamily(idx), encoding.EncodeKey(indexKeyTerms(idx, q)[:]...))
		if err := t.w.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// InsertNamedGraph records graph as known even if it holds no quads yet
// (CREATE GRAPH).
func (t *WriteTx) InsertNamedGraph(graph encoding.EncodedTerm) error {
	return t.w.Set(prefixKey(cfGraphs, graph[:]), []byte{1})
}

// RemoveNamedGraph drops graph from the known-graphs set (DROP GRAPH). It
// does not itself remove the graph's quads; callers clear them first.
func (t *WriteTx) RemoveNamedGraph(graph encoding.EncodedTerm) error {
	return t.w.Delete(prefixKey(cfGraphs, graph[:]))
}

// PutString writes a dictionary entry directly through this transaction's
// Writer. Nothing in this module calls it: Encode's dictionary inserts go
// through the store's dictionary backend, one short-lived transaction each.
func (t *WriteTx) PutString(hash uint64, value string) error {
	return t.w.Set(dictKey(hash), []byte(value))
}
