package update

import (
	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
	"github.com/google/uuid"
)

// fillTemplate substitutes tmpl's variable positions from binding, minting
// a fresh blank node (via bnodes, cleared once per solution by the caller)
// the first time a given blank-node label appears in an INSERT template,
// grounded on oxigraph's fill_quad_pattern / bnodes map in eval_delete_insert.
// ok is false when a Variable position is unbound in this solution (e.g. an
// OPTIONAL-introduced variable that didn't match): such a solution
// contributes no quad for this template, matching oxigraph's behavior.
func fillTemplate(tmpl algebra.QuadPatternTemplate, binding evaluator.Binding, bnodes map[string]*rdf.BlankNode) (*rdf.Quad, bool) {
	s, ok := resolveTemplateTerm(tmpl.Subject, binding, bnodes)
	if !ok {
		return nil, false
	}
	p, ok := resolveTemplateTerm(tmpl.Predicate, binding, bnodes)
	if !ok {
		return nil, false
	}
	o, ok := resolveTemplateTerm(tmpl.Object, binding, bnodes)
	if !ok {
		return nil, false
	}
	g, ok := resolveTemplateTerm(tmpl.Graph, binding, bnodes)
	if !ok {
		return nil, false
	}
	if g == nil {
		g = rdf.NewDefaultGraph()
	}
	return rdf.NewQuad(s, p, o, g), true
}

func resolveTemplateTerm(pos algebra.TermOrVariable, binding evaluator.Binding, bnodes map[string]*rdf.BlankNode) (rdf.Term, bool) {
	if pos.Variable != nil {
		v, bound := binding[pos.Variable.Name]
		return v, bound
	}
	if bn, isBlank := pos.Term.(*rdf.BlankNode); isBlank && bnodes != nil {
		if fresh, seen := bnodes[bn.ID]; seen {
			return fresh, true
		}
		fresh := rdf.NewBlankNode(uuid.NewString())
		bnodes[bn.ID] = fresh
		return fresh, true
	}
	return pos.Term, true
}
