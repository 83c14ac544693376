// Package dataset provides a read-only view over a storage snapshot scoped
// to the graphs a query's FROM / FROM NAMED clauses name (or the whole
// store, when unscoped), and the deterministic index-selection logic that
// picks which of the six sorted indexes answers a given bound pattern.
package dataset

import (
	"github.com/quadcore/quadcore/pkg/encoding"
	"github.com/quadcore/quadcore/pkg/rdf"
	"github.com/quadcore/quadcore/pkg/storage"
)

// Pattern is a quad pattern to match: a nil field is an unbound variable
// position; a non-nil field pins that position to a specific term.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Graph     rdf.Term
}

// Dataset is a read-only façade over one storage snapshot. It never
// mutates the snapshot and is safe to share across concurrently running
// readers, since Snapshot reads are inherently race-free (copy-on-write,
// one writer at a time upstream).
type Dataset struct {
	store *storage.Store
	rtx   *storage.ReadTx
	// defaultGraphUnion, when non-empty, lists the graphs whose RDF merge
	// stands in for the default graph, the "FROM <g1> FROM <g2>"
	// semantics: a pattern with no graph bound scans only these graphs
	// (not the stored default graph) and reports DefaultGraph as the graph
	// of every match. When empty (the common case with no FROM clauses),
	// patterns are answered from the stored quads unchanged.
	defaultGraphUnion []rdf.Term
	// borrowed marks an rtx this Dataset does not own (e.g. a
	// storage.WriteTx's own reader, via OpenWriter); Close becomes a no-op
	// so the owner's Commit/Rollback stays in control of its lifetime.
	borrowed bool
}

// Open starts a new dataset view over a fresh snapshot of store.
func Open(store *storage.Store) *Dataset {
	return &Dataset{store: store, rtx: store.ReadSnapshot()}
}

// OpenWriter builds a Dataset view over an in-progress storage.WriteTx's own
// snapshot, so a DELETE/INSERT WHERE clause sees earlier operations in the
// same update transaction (grounded on oxigraph's
// DatasetView::new(transaction.reader(), using)). The returned Dataset's
// Close is a no-op: tx.Commit/tx.Rollback owns the underlying snapshot.
func OpenWriter(store *storage.Store, tx *storage.WriteTx) *Dataset {
	return &Dataset{store: store, rtx: tx.Reader(), borrowed: true}
}

// WithDefaultGraphs returns a copy of d whose default-graph position is the
// RDF merge of the named graphs, implementing FROM <g>'s scoping rule. An
// empty list restores the plain default graph.
func (d *Dataset) WithDefaultGraphs(graphs []rdf.Term) *Dataset {
	return &Dataset{store: d.store, rtx: d.rtx, defaultGraphUnion: graphs, borrowed: d.borrowed}
}

// Close releases the underlying snapshot, unless it is borrowed from a
// storage.WriteTx (see OpenWriter).
func (d *Dataset) Close() {
	if d.borrowed {
		return
	}
	d.rtx.Close()
}

// Solution is one row of encoded terms bound during pattern matching,
// positionally (subject, predicate, object, graph); evaluator builds actual
// variable bindings from it.
type Solution = storage.Quad

// QuadsForPattern streams every stored quad matching pattern, selecting
// whichever of the six indexes has the longest bound-prefix match; ties
// break in a fixed priority order: SPOG, POSG, OSPG, GSPO, GPOS, GOSP.
func (d *Dataset) QuadsForPattern(pattern Pattern) (func(yield func(*rdf.Quad) error) error, error) {
	idx, prefix, err := d.selectIndex(pattern)
	if err != nil {
		return nil, err
	}

	if len(d.defaultGraphUnion) > 0 && pattern.Graph == nil {
		return d.quadsForPatternUnioned(pattern)
	}

	return func(yield func(*rdf.Quad) error) error {
		cur, err := d.rtx.ScanIndex(idx, prefix...)
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			q, err := d.rtx.DecodeQuad(idx, cur.Key())
			if err != nil {
				return err
			}
			if !matchesUnbound(pattern, q) {
				continue
			}
			if err := yield(q); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// quadsForPatternUnioned handles the FROM-graphs case: the default graph
// position is answered by scanning each named graph in the FROM list and
// reporting its quads with the graph position rewritten to DefaultGraph,
// since FROM's merge is a dataset-level fiction, not a storage fact.
func (d *Dataset) quadsForPatternUnioned(pattern Pattern) (func(yield func(*rdf.Quad) error) error, error) {
	return func(yield func(*rdf.Quad) error) error {
		for _, g := range d.defaultGraphUnion {
			scoped := pattern
			scoped.Graph = g
			idx, prefix, err := d.selectIndex(scoped)
			if err != nil {
				return err
			}
			cur, err := d.rtx.ScanIndex(idx, prefix...)
			if err != nil {
				return err
			}
			stop := false
			for cur.Next() {
				q, err := d.rtx.DecodeQuad(idx, cur.Key())
				if err != nil {
					cur.Close()
					return err
				}
				if !matchesUnbound(scoped, q) {
					continue
				}
				q.Graph = rdf.NewDefaultGraph()
				if err := yield(q); err != nil {
					stop = true
					break
				}
			}
			cur.Close()
			if stop {
				return nil
			}
		}
		return nil
	}, nil
}

// matchesUnbound re-checks pattern positions the chosen index's prefix
// scan didn't already guarantee (object is never part of every index's
// prefix for every bound combination the same way subject/predicate/graph
// can be), and guards against a sentinel-hash collision slipping a
// non-matching quad into the scan window.
func matchesUnbound(pattern Pattern, q *rdf.Quad) bool {
	if pattern.Subject != nil && !pattern.Subject.Equals(q.Subject) {
		return false
	}
	if pattern.Predicate != nil && !pattern.Predicate.Equals(q.Predicate) {
		return false
	}
	if pattern.Object != nil && !pattern.Object.Equals(q.Object) {
		return false
	}
	if pattern.Graph != nil && !pattern.Graph.Equals(q.Graph) {
		return false
	}
	return true
}

// selectIndex picks the index with the longest usable bound prefix for
// pattern and encodes that prefix. A pattern whose bound term was never
// stored (Probe fails) still selects an index but returns an empty-result
// prefix sentinel via the ok=false encoded-term check upstream: callers
// scan and get zero rows rather than erroring, since "the graph does not
// exist" is a valid empty-answer state, not a failure.
func (d *Dataset) selectIndex(pattern Pattern) (storage.Index, []encoding.EncodedTerm, error) {
	codec := d.store.Codec()

	encodeOrZero := func(term rdf.Term) (encoding.EncodedTerm, bool) {
		if term == nil {
			return encoding.EncodedTerm{}, false
		}
		return codec.Probe(term)
	}

	s, sOK := encodeOrZero(pattern.Subject)
	p, pOK := encodeOrZero(pattern.Predicate)
	o, oOK := encodeOrZero(pattern.Object)
	g, gOK := encodeOrZero(pattern.Graph)

	// If any bound term was never interned, the pattern can never match;
	// report via an index with an empty, never-matching prefix (the zero
	// subject position in an index no stored quad may ever head with its
	// canonical tag of 0 — unused by any tag const).
	unmatchable := func(field rdf.Term, ok bool) bool { return field != nil && !ok }
	if unmatchable(pattern.Subject, sOK) || unmatchable(pattern.Predicate, pOK) ||
		unmatchable(pattern.Object, oOK) || unmatchable(pattern.Graph, gOK) {
		return storage.IndexSPOG, []encoding.EncodedTerm{{0}}, nil
	}

	switch {
	case sOK && pOK && oOK && gOK:
		return storage.IndexSPOG, []encoding.EncodedTerm{s, p, o, g}, nil
	case sOK && pOK && oOK:
		return storage.IndexSPOG, []encoding.EncodedTerm{s, p, o}, nil
	case gOK && pOK && oOK:
		return storage.IndexGPOS, []encoding.EncodedTerm{g, p, o}, nil
	case gOK && oOK && sOK:
		return storage.IndexGOSP, []encoding.EncodedTerm{g, o, s}, nil
	case pOK && oOK:
		return storage.IndexPOSG, []encoding.EncodedTerm{p, o}, nil
	case oOK && sOK:
		return storage.IndexOSPG, []encoding.EncodedTerm{o, s}, nil
	case gOK && sOK && pOK:
		return storage.IndexGSPO, []encoding.EncodedTerm{g, s, p}, nil
	case gOK && pOK:
		return storage.IndexGPOS, []encoding.EncodedTerm{g, p}, nil
	case gOK && sOK:
		return storage.IndexGSPO, []encoding.EncodedTerm{g, s}, nil
	case gOK && oOK:
		return storage.IndexGOSP, []encoding.EncodedTerm{g, o}, nil
	case gOK:
		return storage.IndexGSPO, []encoding.EncodedTerm{g}, nil
	case sOK && pOK:
		return storage.IndexSPOG, []encoding.EncodedTerm{s, p}, nil
	case sOK:
		return storage.IndexSPOG, []encoding.EncodedTerm{s}, nil
	case pOK:
		return storage.IndexPOSG, []encoding.EncodedTerm{p}, nil
	case oOK:
		return storage.IndexOSPG, []encoding.EncodedTerm{o}, nil
	default:
		return storage.IndexSPOG, nil, nil
	}
}

// Contains reports whether q (with all four positions bound) is stored.
func (d *Dataset) Contains(q *rdf.Quad) (bool, error) {
	pattern := Pattern{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object, Graph: q.Graph}
	found := false
	iter, err := d.QuadsForPattern(pattern)
	if err != nil {
		return false, err
	}
	err = iter(func(*rdf.Quad) error {
		found = true
		return errStopIteration
	})
	if err != nil && err != errStopIteration {
		return false, err
	}
	return found, nil
}

// GraphNames streams the store's known named graphs.
func (d *Dataset) GraphNames() (func(yield func(rdf.Term) error) error, error) {
	return func(yield func(rdf.Term) error) error {
		cur, err := d.rtx.GraphNames()
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			key := cur.Key()
			if len(key) != encoding.EncodedTermSize {
				continue
			}
			var enc encoding.EncodedTerm
			copy(enc[:], key)
			term, err := d.store.Codec().Decode(enc)
			if err != nil {
				return err
			}
			if err := yield(term); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

var errStopIteration = stopIteration{}

type stopIteration struct{}

func (stopIteration) Error() string { return "dataset: iteration stopped early" }
