package optimizer

import "github.com/quadcore/quadcore/pkg/algebra"

// pruneProjections drops Extend (BIND) computations whose bound variable
// is never referenced by anything above them in the tree: a BIND feeding
// only a dropped intermediate is wasted evaluator work, common once
// filter push-down and join reordering have moved things around.
func (o *Optimizer) pruneProjections(plan algebra.Plan, used map[string]bool) algebra.Plan {
	switch n := plan.(type) {
	case *algebra.Project:
		innerUsed := map[string]bool{}
		for _, v := range n.Variables {
			innerUsed[v.Name] = true
		}
		return &algebra.Project{Input: o.pruneProjections(n.Input, innerUsed), Variables: n.Variables}
	case *algebra.Extend:
		if n.Variable != nil && !used[n.Variable.Name] {
			// Nothing above needs this binding; drop the Extend but keep
			// evaluating Input, since its own side effects (matching
			// quads) still contribute rows.
			return o.pruneProjections(n.Input, used)
		}
		inner := mergeVars(used, variablesIn(n.Expression))
		return &algebra.Extend{Input: o.pruneProjections(n.Input, inner), Variable: n.Variable, Expression: n.Expression}
	case *algebra.Filter:
		inner := mergeVars(used, variablesIn(n.Condition))
		return &algebra.Filter{Input: o.pruneProjections(n.Input, inner), Condition: n.Condition}
	case *algebra.Join:
		return &algebra.Join{Left: o.pruneProjections(n.Left, used), Right: o.pruneProjections(n.Right, used)}
	case *algebra.LeftJoin:
		return &algebra.LeftJoin{
			Left:   o.pruneProjections(n.Left, used),
			Right:  o.pruneProjections(n.Right, used),
			Filter: n.Filter,
		}
	case *algebra.Union:
		return &algebra.Union{Left: o.pruneProjections(n.Left, used), Right: o.pruneProjections(n.Right, used)}
	case *algebra.Minus:
		return &algebra.Minus{Left: o.pruneProjections(n.Left, used), Right: n.Right}
	case *algebra.Graph:
		return &algebra.Graph{Name: n.Name, Input: o.pruneProjections(n.Input, used)}
	case *algebra.Distinct:
		return &algebra.Distinct{Input: o.pruneProjections(n.Input, used)}
	case *algebra.Reduced:
		return &algebra.Reduced{Input: o.pruneProjections(n.Input, used)}
	case *algebra.Slice:
		return &algebra.Slice{Input: o.pruneProjections(n.Input, used), Offset: n.Offset, Limit: n.Limit}
	case *algebra.OrderBy:
		inner := used
		for _, c := range n.Conditions {
			inner = mergeVars(inner, variablesIn(c.Expression))
		}
		return &algebra.OrderBy{Input: o.pruneProjections(n.Input, inner), Conditions: n.Conditions}
	default:
		return plan
	}
}

func mergeVars(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
