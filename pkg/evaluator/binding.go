// Package evaluator walks an optimized algebra.Plan against a
// dataset.Dataset and produces a lazy sequence of variable bindings:
// pull-based, one solution at a time, matching the teacher's
// internal/sparql/evaluator and internal/sparql/executor split between
// scalar-expression evaluation and graph-pattern execution, generalized
// from the teacher's triple-only executor to quads and from its
// not-yet-implemented EXISTS/aggregate/property-path gaps to full SPARQL
// 1.1 coverage.
package evaluator

import "github.com/quadcore/quadcore/pkg/rdf"

// Binding is one solution: a partial function from variable name to
// term. A variable absent from the map is unbound for this solution,
// distinct from being bound to a term equal to some sentinel, matching
// the teacher's store.Binding{Vars map[string]rdf.Term}.
type Binding map[string]rdf.Term

// Clone returns a shallow copy, used whenever an operator must extend a
// binding without mutating the one a sibling branch is still reading
// (e.g. both sides of a Union reading the same input row).
func (b Binding) Clone() Binding {
	out := make(Binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Compatible reports whether b and other agree on every variable they
// both bind, the join-compatibility test SPARQL's algebra defines joins
// and left-joins in terms of.
func (b Binding) Compatible(other Binding) bool {
	for k, v := range b {
		if ov, ok := other[k]; ok && !v.Equals(ov) {
			return false
		}
	}
	return true
}

// Merge returns a new Binding containing every binding from b and other;
// callers must check Compatible first, since Merge does not itself
// detect conflicting bindings (it just lets other win, which is only
// correct once compatibility is established).
func (b Binding) Merge(other Binding) Binding {
	out := b.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
