package evaluator

import (
	"fmt"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// evalPropertyPathPattern evaluates a property path by walking outward
// from whichever endpoint is bound, rather than unfolding the path into
// quad patterns — ZeroOrMore and OneOrMore have no finite unfolding.
// Grounded on the PropertyPath shapes in pkg/algebra/path.go, which in
// turn follow oxigraph's spargebra::algebra::PropertyPathExpression (the
// teacher's own parser has no property-path support at all).
//
// Both endpoints unbound is rejected: walking every subject in the
// dataset to seed the traversal is possible but is an expensive,
// unindexed cross product this engine chooses not to run implicitly.
func (e *Evaluator) evalPropertyPathPattern(n *algebra.PropertyPathPattern, ctx Binding) (RowIter, error) {
	s := resolve(n.Subject, ctx)
	o := resolve(n.Object, ctx)
	g := resolve(n.Graph, ctx)

	switch {
	case s.Term != nil:
		ends, err := e.pathNeighbors(s.Term, n.Path, g.Term, true)
		if err != nil {
			return nil, err
		}
		return pathRows(ctx, s, o, g, s.Term, ends), nil
	case o.Term != nil:
		starts, err := e.pathNeighbors(o.Term, n.Path, g.Term, false)
		if err != nil {
			return nil, err
		}
		return pathRows(ctx, o, s, g, o.Term, starts), nil
	default:
		return nil, fmt.Errorf("%w: property path pattern needs at least one bound endpoint", ErrNotImplemented)
	}
}

// pathRows turns the set of reached terms into solution rows, binding
// the free endpoint (and the bound one, for consistency checking with a
// repeated variable) via the same extendBinding rule QuadPattern uses.
func pathRows(ctx Binding, bound, free resolved, g resolved, boundTerm rdf.Term, reached map[string]rdf.Term) RowIter {
	return func(yield func(Binding) error) error {
		for _, t := range reached {
			row, ok := extendBinding(ctx, []resolved{bound, free}, []rdf.Term{boundTerm, t})
			if !ok {
				continue
			}
			// Path traversal does not track which graph each hop
			// used once more than one step is involved; an unbound
			// GRAPH variable on a path pattern is left unbound here.
			if err := yield(row); err != nil {
				return err
			}
		}
		return nil
	}
}

func (e *Evaluator) pathNeighbors(start rdf.Term, path algebra.PropertyPath, graph rdf.Term, forward bool) (map[string]rdf.Term, error) {
	switch p := path.(type) {
	case *algebra.PathPredicate:
		return e.predicateStep(start, p.IRI, graph, forward)
	case *algebra.PathInverse:
		return e.pathNeighbors(start, p.Path, graph, !forward)
	case *algebra.PathSequence:
		return e.sequenceStep(start, p, graph, forward)
	case *algebra.PathAlternative:
		a, err := e.pathNeighbors(start, p.Left, graph, forward)
		if err != nil {
			return nil, err
		}
		b, err := e.pathNeighbors(start, p.Right, graph, forward)
		if err != nil {
			return nil, err
		}
		return mergeTermSets(a, b), nil
	case *algebra.PathZeroOrMore:
		return e.closure(start, p.Path, graph, forward, true)
	case *algebra.PathOneOrMore:
		return e.closure(start, p.Path, graph, forward, false)
	case *algebra.PathZeroOrOne:
		one, err := e.pathNeighbors(start, p.Path, graph, forward)
		if err != nil {
			return nil, err
		}
		one = mergeTermSets(one, map[string]rdf.Term{termKey(start): start})
		return one, nil
	case *algebra.PathNegatedPropertySet:
		return e.negatedStep(start, p, graph, forward)
	default:
		return nil, fmt.Errorf("%w: property path node %T", ErrNotImplemented, path)
	}
}

func (e *Evaluator) predicateStep(start rdf.Term, iri *rdf.NamedNode, graph rdf.Term, forward bool) (map[string]rdf.Term, error) {
	var pattern dataset.Pattern
	if forward {
		pattern = dataset.Pattern{Subject: start, Predicate: iri, Graph: graph}
	} else {
		pattern = dataset.Pattern{Predicate: iri, Object: start, Graph: graph}
	}
	quads, err := e.ds.QuadsForPattern(pattern)
	if err != nil {
		return nil, err
	}
	result := map[string]rdf.Term{}
	err = quads(func(q *rdf.Quad) error {
		t := q.Object
		if !forward {
			t = q.Subject
		}
		result[termKey(t)] = t
		return nil
	})
	return result, err
}

func (e *Evaluator) sequenceStep(start rdf.Term, seq *algebra.PathSequence, graph rdf.Term, forward bool) (map[string]rdf.Term, error) {
	first, second := seq.Left, seq.Right
	if !forward {
		first, second = seq.Right, seq.Left
	}
	mids, err := e.pathNeighbors(start, first, graph, forward)
	if err != nil {
		return nil, err
	}
	result := map[string]rdf.Term{}
	for _, mid := range mids {
		ends, err := e.pathNeighbors(mid, second, graph, forward)
		if err != nil {
			return nil, err
		}
		for k, v := range ends {
			result[k] = v
		}
	}
	return result, nil
}

func (e *Evaluator) negatedStep(start rdf.Term, nps *algebra.PathNegatedPropertySet, graph rdf.Term, forward bool) (map[string]rdf.Term, error) {
	excluded := map[string]bool{}
	for _, iri := range nps.Forward {
		excluded[iri.IRI] = true
	}
	var pattern dataset.Pattern
	if forward {
		pattern = dataset.Pattern{Subject: start, Graph: graph}
	} else {
		pattern = dataset.Pattern{Object: start, Graph: graph}
	}
	quads, err := e.ds.QuadsForPattern(pattern)
	if err != nil {
		return nil, err
	}
	result := map[string]rdf.Term{}
	err = quads(func(q *rdf.Quad) error {
		pred, ok := q.Predicate.(*rdf.NamedNode)
		if ok && excluded[pred.IRI] {
			return nil
		}
		t := q.Object
		if !forward {
			t = q.Subject
		}
		result[termKey(t)] = t
		return nil
	})
	return result, err
}

// closure computes the reflexive-transitive (ZeroOrMore) or transitive
// (OneOrMore) closure of path from start via breadth-first expansion,
// guarding against cycles with a visited set.
func (e *Evaluator) closure(start rdf.Term, path algebra.PropertyPath, graph rdf.Term, forward, includeStart bool) (map[string]rdf.Term, error) {
	visited := map[string]rdf.Term{}
	if includeStart {
		visited[termKey(start)] = start
	}
	frontier := []rdf.Term{start}
	seenFrontier := map[string]bool{termKey(start): true}
	result := map[string]rdf.Term{}
	for len(frontier) > 0 {
		var next []rdf.Term
		for _, term := range frontier {
			step, err := e.pathNeighbors(term, path, graph, forward)
			if err != nil {
				return nil, err
			}
			for k, v := range step {
				result[k] = v
				if !seenFrontier[k] {
					seenFrontier[k] = true
					next = append(next, v)
				}
			}
		}
		frontier = next
	}
	for k, v := range result {
		visited[k] = v
	}
	return visited, nil
}

func mergeTermSets(a, b map[string]rdf.Term) map[string]rdf.Term {
	out := map[string]rdf.Term{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func termKey(t rdf.Term) string { return t.String() }
