// Package optimizer rewrites an algebra.Plan produced straight from a
// parsed query into one cheaper to evaluate: constant folding, filter
// push-down, greedy join reordering by estimated selectivity, and
// projection pruning. Grounded on the teacher's internal/sparql/optimizer,
// generalized from its parser.Query-shaped input to operate directly on
// algebra.Plan (this core has no parser of its own; optimizer.Optimize is
// the boundary a parser plugs into) and from triple-only reordering to
// quad-aware reordering refined by live storage.Statistics instead of a
// fixed heuristic constant table.
package optimizer

import (
	"sort"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/storage"
)

// Optimizer rewrites algebra.Plan trees. Stats, when non-nil, scales
// cardinality estimates to the store's actual size; a nil Stats falls
// back to the teacher's fixed selectivity constants.
type Optimizer struct {
	stats *storage.Statistics
}

// New builds an Optimizer. stats may be nil (size-agnostic heuristics).
func New(stats *storage.Statistics) *Optimizer {
	return &Optimizer{stats: stats}
}

// Optimize applies every rewrite pass to plan and returns the result. It
// never mutates plan's nodes in place; every pass returns a new tree.
func (o *Optimizer) Optimize(plan algebra.Plan) algebra.Plan {
	plan = RewriteBound(plan)
	plan = o.foldConstants(plan)
	plan = o.pushDownFilters(plan)
	plan = o.reorderJoins(plan)
	plan = o.pruneProjections(plan, map[string]bool{})
	return plan
}

// estimateCardinality assigns a rough row-count estimate to a leaf
// QuadPattern, scaled by how many positions are bound. Grounded on the
// teacher's estimateSelectivity, generalized from a unitless "selectivity"
// product to an absolute row estimate derived from o.stats.TotalQuads,
// so the optimizer can compare a bound-subject scan against a
// bound-subject-and-predicate scan in the same units a join-cost
// comparison needs.
func (o *Optimizer) estimateCardinality(p *algebra.QuadPattern) float64 {
	total := 1_000_000.0
	if o.stats != nil && o.stats.TotalQuads > 0 {
		total = float64(o.stats.TotalQuads)
	}

	selectivity := 1.0
	if !p.Subject.IsVariable() {
		selectivity *= 0.01
	}
	if !p.Predicate.IsVariable() {
		selectivity *= 0.05
	}
	if !p.Object.IsVariable() {
		selectivity *= 0.1
	}
	if !p.Graph.IsVariable() {
		selectivity *= 0.5
	}

	estimate := total * selectivity
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

// leafPatterns flattens a left-deep chain of algebra.Join nodes back into
// its constituent QuadPattern/PropertyPathPattern leaves, the inverse of
// reorderJoins' tree-building step, so reordering can work over a flat
// slice the way the teacher's reorderBySelectivity does.
func leafPatterns(plan algebra.Plan) ([]algebra.Plan, bool) {
	switch n := plan.(type) {
	case *algebra.QuadPattern, *algebra.PropertyPathPattern:
		return []algebra.Plan{n.(algebra.Plan)}, true
	case *algebra.Join:
		left, ok := leafPatterns(n.Left)
		if !ok {
			return nil, false
		}
		right, ok := leafPatterns(n.Right)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	default:
		return nil, false
	}
}

// reorderJoins rewrites every maximal chain of plain inner Joins into a
// left-deep chain ordered by ascending estimated cardinality: the most
// selective pattern runs first, narrowing the join's working set as
// early as possible. Grounded on the teacher's reorderBySelectivity, kept
// as the same greedy single-pass sort (not a full dynamic-programming
// join planner) since the teacher never attempted cost-based DP either.
func (o *Optimizer) reorderJoins(plan algebra.Plan) algebra.Plan {
	plan = o.rewriteChildren(plan, o.reorderJoins)

	join, ok := plan.(*algebra.Join)
	if !ok {
		return plan
	}
	leaves, ok := leafPatterns(join)
	if !ok {
		return plan
	}

	type scored struct {
		plan algebra.Plan
		cost float64
	}
	s := make([]scored, len(leaves))
	for i, leaf := range leaves {
		cost := 1_000.0
		if qp, ok := leaf.(*algebra.QuadPattern); ok {
			cost = o.estimateCardinality(qp)
		}
		s[i] = scored{plan: leaf, cost: cost}
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].cost < s[j].cost })

	result := s[0].plan
	for i := 1; i < len(s); i++ {
		result = &algebra.Join{Left: result, Right: s[i].plan}
	}
	return result
}

// rewriteChildren applies rewrite to every direct Plan child of node and
// returns a new node of the same kind with the rewritten children,
// leaving leaves (QuadPattern, PropertyPathPattern, Values) untouched.
func (o *Optimizer) rewriteChildren(node algebra.Plan, rewrite func(algebra.Plan) algebra.Plan) algebra.Plan {
	switch n := node.(type) {
	case *algebra.Join:
		return &algebra.Join{Left: rewrite(n.Left), Right: rewrite(n.Right)}
	case *algebra.LeftJoin:
		return &algebra.LeftJoin{Left: rewrite(n.Left), Right: rewrite(n.Right), Filter: n.Filter}
	case *algebra.Union:
		return &algebra.Union{Left: rewrite(n.Left), Right: rewrite(n.Right)}
	case *algebra.Minus:
		return &algebra.Minus{Left: rewrite(n.Left), Right: rewrite(n.Right)}
	case *algebra.Filter:
		return &algebra.Filter{Input: rewrite(n.Input), Condition: n.Condition}
	case *algebra.Extend:
		return &algebra.Extend{Input: rewrite(n.Input), Variable: n.Variable, Expression: n.Expression}
	case *algebra.Graph:
		return &algebra.Graph{Name: n.Name, Input: rewrite(n.Input)}
	case *algebra.Service:
		return &algebra.Service{Endpoint: n.Endpoint, Input: rewrite(n.Input), Silent: n.Silent}
	case *algebra.Group:
		return &algebra.Group{Input: rewrite(n.Input), GroupBy: n.GroupBy, Aggregates: n.Aggregates}
	case *algebra.OrderBy:
		return &algebra.OrderBy{Input: rewrite(n.Input), Conditions: n.Conditions}
	case *algebra.Project:
		return &algebra.Project{Input: rewrite(n.Input), Variables: n.Variables}
	case *algebra.Distinct:
		return &algebra.Distinct{Input: rewrite(n.Input)}
	case *algebra.Reduced:
		return &algebra.Reduced{Input: rewrite(n.Input)}
	case *algebra.Slice:
		return &algebra.Slice{Input: rewrite(n.Input), Offset: n.Offset, Limit: n.Limit}
	default:
		return node
	}
}
