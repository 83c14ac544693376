package optimizer

import "github.com/quadcore/quadcore/pkg/algebra"

// Scope records, per variable, where in a Plan tree it was first bound
// and whether evaluation can reach that binding site without crossing an
// OPTIONAL (LeftJoin) boundary. The evaluator needs this because
// BOUND(?v) on a variable only ever bound inside an OPTIONAL's right side
// must stay a real runtime test (the binding may or may not be present
// for a given left row); BOUND(?v) on a variable bound unconditionally on
// every path can be folded to the constant `true` at optimization time.
type Scope struct {
	// CrossesOptional is the set of variable names for which at least one
	// binding site lies inside a LeftJoin's Right subtree, a Union arm or
	// a Service input.
	CrossesOptional map[string]bool
	// Unconditional is the set of variable names bound on every path that
	// reaches the current node (Join/Extend/QuadPattern, never inside a
	// LeftJoin.Right or a Union arm).
	Unconditional map[string]bool
}

// AnalyzeScope walks plan once and builds its Scope.
func AnalyzeScope(plan algebra.Plan) *Scope {
	s := &Scope{CrossesOptional: map[string]bool{}, Unconditional: map[string]bool{}}
	s.walk(plan, true)
	return s
}

func (s *Scope) walk(plan algebra.Plan, unconditionalContext bool) {
	switch n := plan.(type) {
	case *algebra.QuadPattern:
		s.bind(n.Subject, unconditionalContext)
		s.bind(n.Predicate, unconditionalContext)
		s.bind(n.Object, unconditionalContext)
		s.bind(n.Graph, unconditionalContext)
	case *algebra.PropertyPathPattern:
		s.bind(n.Subject, unconditionalContext)
		s.bind(n.Object, unconditionalContext)
		s.bind(n.Graph, unconditionalContext)
	case *algebra.Join:
		s.walk(n.Left, unconditionalContext)
		s.walk(n.Right, unconditionalContext)
	case *algebra.LeftJoin:
		s.walk(n.Left, unconditionalContext)
		// Every binding reachable only via the OPTIONAL side is
		// conditional: it may be absent from a given solution.
		s.walk(n.Right, false)
	case *algebra.Union:
		// Neither union arm runs unconditionally relative to the other.
		s.walk(n.Left, false)
		s.walk(n.Right, false)
	case *algebra.Minus:
		s.walk(n.Left, unconditionalContext)
	case *algebra.Filter:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Extend:
		s.walk(n.Input, unconditionalContext)
		if n.Variable != nil {
			s.markBound(n.Variable.Name, unconditionalContext)
		}
	case *algebra.Graph:
		s.walk(n.Input, unconditionalContext)
		s.bind(n.Name, unconditionalContext)
	case *algebra.Group:
		s.walk(n.Input, unconditionalContext)
		for _, agg := range n.Aggregates {
			if agg.Output != nil {
				// An aggregate always produces a row for every group, so
				// its output is bound unconditionally relative to the
				// group's own scope.
				s.markBound(agg.Output.Name, unconditionalContext)
			}
		}
	case *algebra.OrderBy:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Project:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Distinct:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Reduced:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Slice:
		s.walk(n.Input, unconditionalContext)
	case *algebra.Service:
		s.walk(n.Input, false)
	}
}

func (s *Scope) bind(t algebra.TermOrVariable, unconditionalContext bool) {
	if t.Variable != nil {
		s.markBound(t.Variable.Name, unconditionalContext)
	}
}

func (s *Scope) markBound(name string, unconditionalContext bool) {
	if unconditionalContext {
		s.Unconditional[name] = true
	} else {
		s.CrossesOptional[name] = true
	}
}

// IsAlwaysBound reports whether name is bound on every path through the
// plan this Scope was built from and never solely via an OPTIONAL or
// UNION branch — the condition under which BOUND(?name) can be folded to
// the literal true rather than evaluated per-solution.
func (s *Scope) IsAlwaysBound(name string) bool {
	return s.Unconditional[name]
}

// rewriteBound folds BOUND(?v) to the constant true wherever Scope proves
// v is always bound, implementing the CLARIFIED OPEN QUESTION decision
// that BOUND's rewrite is gated by OPTIONAL-boundary tracking: a variable
// only ever bound inside an OPTIONAL keeps a real runtime BOUND() check.
func rewriteBound(e algebra.Expression, scope *Scope) algebra.Expression {
	switch n := e.(type) {
	case *algebra.FunctionCall:
		if n.Builtin == algebra.BuiltinBound && len(n.Arguments) == 1 {
			if ref, ok := n.Arguments[0].(*algebra.VariableRef); ok && ref.Variable != nil {
				if scope.IsAlwaysBound(ref.Variable.Name) {
					return boolLiteral(true)
				}
			}
		}
		args := make([]algebra.Expression, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = rewriteBound(a, scope)
		}
		return &algebra.FunctionCall{Builtin: n.Builtin, Name: n.Name, Arguments: args}
	case *algebra.BinaryOp:
		return &algebra.BinaryOp{Op: n.Op, Left: rewriteBound(n.Left, scope), Right: rewriteBound(n.Right, scope)}
	case *algebra.UnaryOp:
		return &algebra.UnaryOp{Op: n.Op, Operand: rewriteBound(n.Operand, scope)}
	default:
		return e
	}
}

// RewriteBound applies rewriteBound to every Filter condition in plan,
// using a fresh Scope analysis of the whole tree.
func RewriteBound(plan algebra.Plan) algebra.Plan {
	scope := AnalyzeScope(plan)
	return rewriteBoundPlan(plan, scope)
}

func rewriteBoundPlan(plan algebra.Plan, scope *Scope) algebra.Plan {
	o := &Optimizer{}
	rewritten := o.rewriteChildren(plan, func(p algebra.Plan) algebra.Plan { return rewriteBoundPlan(p, scope) })
	if f, ok := rewritten.(*algebra.Filter); ok {
		return &algebra.Filter{Input: f.Input, Condition: rewriteBound(f.Condition, scope)}
	}
	return rewritten
}
