package optimizer

import "github.com/quadcore/quadcore/pkg/algebra"

// pushDownFilters moves each Filter as close to the leaf patterns that
// bind its variables as it can go, so a restrictive FILTER discards rows
// before a join multiplies them instead of after. Grounded on the
// teacher's optimizeBasicGraphPattern, which applies filters only after
// building the whole join tree (no push-down at all); this pass adds the
// push-down the teacher's comment concedes it skips ("Apply filters
// (filter push-down)" — the comment names the technique, the code never
// implements it).
func (o *Optimizer) pushDownFilters(plan algebra.Plan) algebra.Plan {
	plan = o.rewriteChildren(plan, o.pushDownFilters)

	f, ok := plan.(*algebra.Filter)
	if !ok {
		return plan
	}

	needed := variablesIn(f.Condition)
	return pushInto(f.Input, f.Condition, needed)
}

// pushInto inserts a Filter for condition as deep into plan's Join tree
// as every variable condition needs remains bound, stopping at the first
// node that doesn't offer all of them (a LeftJoin's Right side, a Union
// branch, or a leaf) since pushing past a variable's binding site would
// reference an unbound variable.
func pushInto(plan algebra.Plan, condition algebra.Expression, needed map[string]bool) algebra.Plan {
	join, ok := plan.(*algebra.Join)
	if !ok {
		return &algebra.Filter{Input: plan, Condition: condition}
	}

	leftVars := boundVariables(join.Left)
	rightVars := boundVariables(join.Right)

	if subsetOf(needed, leftVars) {
		return &algebra.Join{Left: pushInto(join.Left, condition, needed), Right: join.Right}
	}
	if subsetOf(needed, rightVars) {
		return &algebra.Join{Left: join.Left, Right: pushInto(join.Right, condition, needed)}
	}
	return &algebra.Filter{Input: join, Condition: condition}
}

func subsetOf(needed, have map[string]bool) bool {
	for v := range needed {
		if !have[v] {
			return false
		}
	}
	return true
}

// boundVariables returns every variable name plan's pattern leaves can
// bind, used to decide whether a filter can be pushed past a join side
// without referencing a variable that side never produces.
func boundVariables(plan algebra.Plan) map[string]bool {
	vars := map[string]bool{}
	var walk func(algebra.Plan)
	walk = func(p algebra.Plan) {
		switch n := p.(type) {
		case *algebra.QuadPattern:
			addVar(vars, n.Subject)
			addVar(vars, n.Predicate)
			addVar(vars, n.Object)
			addVar(vars, n.Graph)
		case *algebra.PropertyPathPattern:
			addVar(vars, n.Subject)
			addVar(vars, n.Object)
			addVar(vars, n.Graph)
		case *algebra.Join:
			walk(n.Left)
			walk(n.Right)
		case *algebra.LeftJoin:
			walk(n.Left)
			walk(n.Right)
		case *algebra.Union:
			walk(n.Left)
			walk(n.Right)
		case *algebra.Filter:
			walk(n.Input)
		case *algebra.Extend:
			walk(n.Input)
			if n.Variable != nil {
				vars[n.Variable.Name] = true
			}
		case *algebra.Graph:
			walk(n.Input)
			addVar(vars, n.Name)
		case *algebra.Group:
			for _, agg := range n.Aggregates {
				if agg.Output != nil {
					vars[agg.Output.Name] = true
				}
			}
		}
	}
	walk(plan)
	return vars
}

func addVar(vars map[string]bool, t algebra.TermOrVariable) {
	if t.Variable != nil {
		vars[t.Variable.Name] = true
	}
}

// variablesIn collects every VariableRef a scalar expression mentions.
func variablesIn(e algebra.Expression) map[string]bool {
	vars := map[string]bool{}
	var walk func(algebra.Expression)
	walk = func(expr algebra.Expression) {
		switch n := expr.(type) {
		case *algebra.VariableRef:
			if n.Variable != nil {
				vars[n.Variable.Name] = true
			}
		case *algebra.BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *algebra.UnaryOp:
			walk(n.Operand)
		case *algebra.FunctionCall:
			for _, a := range n.Arguments {
				walk(a)
			}
		case *algebra.Exists:
			for v := range boundVariables(n.Pattern) {
				vars[v] = true
			}
		}
	}
	walk(e)
	return vars
}
