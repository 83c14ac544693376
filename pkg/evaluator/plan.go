package evaluator

import (
	"fmt"
	"sort"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// RowIter lazily produces Binding rows; iteration stops either when the
// source is exhausted or when yield returns a non-nil error (the same
// pull-based iterator shape pkg/dataset and pkg/storage already use for
// quad streams, carried up to the solution-sequence level).
type RowIter func(yield func(Binding) error) error

// EvalPlan evaluates plan with no incoming context bindings — the
// entry point for a top-level query's WHERE clause.
func (e *Evaluator) EvalPlan(plan algebra.Plan) (RowIter, error) {
	return e.evalWithContext(plan, Binding{})
}

// evalWithContext evaluates plan as if ctx's bindings were already fixed
// constants: every QuadPattern leaf substitutes ctx's bindings into its
// variable positions before scanning, and every row this returns already
// contains ctx's bindings merged in. This single recursive contract is
// what lets Join implement a pull-based nested-loop join: it evaluates
// Right once per Left row, using that row as Right's ctx.
func (e *Evaluator) evalWithContext(plan algebra.Plan, ctx Binding) (RowIter, error) {
	switch n := plan.(type) {
	case *algebra.QuadPattern:
		return e.evalQuadPattern(n, ctx)
	case *algebra.PropertyPathPattern:
		return e.evalPropertyPathPattern(n, ctx)
	case *algebra.Join:
		return e.evalJoin(n, ctx)
	case *algebra.LeftJoin:
		return e.evalLeftJoin(n, ctx)
	case *algebra.Union:
		return e.evalUnion(n, ctx)
	case *algebra.Minus:
		return e.evalMinus(n, ctx)
	case *algebra.Filter:
		return e.evalFilter(n, ctx)
	case *algebra.Extend:
		return e.evalExtend(n, ctx)
	case *algebra.Graph:
		// Graph scoping is already embedded in every nested pattern's own
		// Graph field by the time the algebra tree reaches here; this
		// node exists for a query builder's convenience in grouping the
		// GRAPH clause's children, not as a separate runtime operator.
		return e.evalWithContext(n.Input, ctx)
	case *algebra.Values:
		return e.evalValues(n, ctx)
	case *algebra.Project:
		return e.evalProject(n, ctx)
	case *algebra.Distinct:
		return e.evalDistinctOrReduced(n.Input, ctx)
	case *algebra.Reduced:
		return e.evalDistinctOrReduced(n.Input, ctx)
	case *algebra.Slice:
		return e.evalSlice(n, ctx)
	case *algebra.OrderBy:
		return e.evalOrderBy(n, ctx)
	case *algebra.Group:
		return e.evalGroup(n, ctx)
	case *algebra.Service:
		return e.evalService(n, ctx)
	default:
		return nil, fmt.Errorf("%w: plan node %T", ErrNotImplemented, plan)
	}
}

// resolved is one pattern position after substituting ctx: Term is
// non-nil when the position is bound (either a literal constant in the
// pattern or a variable already bound in ctx); Variable names an unbound
// position whose match must be recorded in the output binding.
type resolved struct {
	Term     rdf.Term
	Variable string
}

func resolve(t algebra.TermOrVariable, ctx Binding) resolved {
	if t.Term != nil {
		return resolved{Term: t.Term}
	}
	if t.Variable == nil {
		return resolved{}
	}
	if bound, ok := ctx[t.Variable.Name]; ok {
		return resolved{Term: bound}
	}
	return resolved{Variable: t.Variable.Name}
}

func (e *Evaluator) evalQuadPattern(n *algebra.QuadPattern, ctx Binding) (RowIter, error) {
	s, p, o, g := resolve(n.Subject, ctx), resolve(n.Predicate, ctx), resolve(n.Object, ctx), resolve(n.Graph, ctx)
	pattern := dataset.Pattern{Subject: s.Term, Predicate: p.Term, Object: o.Term, Graph: g.Term}
	quads, err := e.ds.QuadsForPattern(pattern)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return quads(func(q *rdf.Quad) error {
			row, ok := extendBinding(ctx, []resolved{s, p, o, g}, []rdf.Term{q.Subject, q.Predicate, q.Object, q.Graph})
			if !ok {
				return nil
			}
			return yield(row)
		})
	}, nil
}

// extendBinding binds every unbound resolved position to its matched
// term, rejecting the match if the same variable appears at two
// positions with different matched terms (e.g. ?x :knows ?x against a
// quad where subject and object differ).
func extendBinding(ctx Binding, positions []resolved, terms []rdf.Term) (Binding, bool) {
	row := ctx.Clone()
	for i, pos := range positions {
		if pos.Variable == "" {
			continue
		}
		if existing, ok := row[pos.Variable]; ok {
			if !existing.Equals(terms[i]) {
				return nil, false
			}
			continue
		}
		row[pos.Variable] = terms[i]
	}
	return row, true
}

func (e *Evaluator) evalJoin(n *algebra.Join, ctx Binding) (RowIter, error) {
	left, err := e.evalWithContext(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return left(func(leftRow Binding) error {
			right, err := e.evalWithContext(n.Right, leftRow)
			if err != nil {
				return err
			}
			return right(yield)
		})
	}, nil
}

func (e *Evaluator) evalLeftJoin(n *algebra.LeftJoin, ctx Binding) (RowIter, error) {
	left, err := e.evalWithContext(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return left(func(leftRow Binding) error {
			right, err := e.evalWithContext(n.Right, leftRow)
			if err != nil {
				return err
			}
			matched := false
			err = right(func(extended Binding) error {
				if n.Filter != nil {
					ok, ferr := effectiveBooleanValue(mustEval(e, n.Filter, extended))
					if ferr != nil || !ok {
						return nil
					}
				}
				matched = true
				return yield(extended)
			})
			if err != nil {
				return err
			}
			if !matched {
				return yield(leftRow)
			}
			return nil
		})
	}, nil
}

// mustEval evaluates expr for LeftJoin's additional filter condition,
// returning a term that effectiveBooleanValue then treats as false on
// any evaluation error (a filter that errors never admits the OPTIONAL
// match, same as a top-level FILTER).
func mustEval(e *Evaluator, expr algebra.Expression, binding Binding) rdf.Term {
	v, err := e.Evaluate(expr, binding)
	if err != nil {
		return nil
	}
	return v
}

func (e *Evaluator) evalUnion(n *algebra.Union, ctx Binding) (RowIter, error) {
	left, err := e.evalWithContext(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.evalWithContext(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		if err := left(yield); err != nil {
			return err
		}
		return right(yield)
	}, nil
}

func (e *Evaluator) evalMinus(n *algebra.Minus, ctx Binding) (RowIter, error) {
	left, err := e.evalWithContext(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	rightRows, err := e.collect(n.Right, Binding{})
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return left(func(leftRow Binding) error {
			for _, rr := range rightRows {
				if sharesVariable(leftRow, rr) && leftRow.Compatible(rr) {
					return nil // dropped: a compatible overlapping right solution exists
				}
			}
			return yield(leftRow)
		})
	}, nil
}

func sharesVariable(a, b Binding) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalFilter(n *algebra.Filter, ctx Binding) (RowIter, error) {
	input, err := e.evalWithContext(n.Input, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return input(func(row Binding) error {
			v, err := e.Evaluate(n.Condition, row)
			if err != nil {
				return nil // type error => filter excludes the row, not a query failure
			}
			ebv, err := effectiveBooleanValue(v)
			if err != nil || !ebv {
				return nil
			}
			return yield(row)
		})
	}, nil
}

func (e *Evaluator) evalExtend(n *algebra.Extend, ctx Binding) (RowIter, error) {
	input, err := e.evalWithContext(n.Input, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return input(func(row Binding) error {
			v, err := e.Evaluate(n.Expression, row)
			if err == nil && n.Variable != nil {
				row = row.Clone()
				row[n.Variable.Name] = v
			}
			return yield(row)
		})
	}, nil
}

func (e *Evaluator) evalValues(n *algebra.Values, ctx Binding) (RowIter, error) {
	return func(yield func(Binding) error) error {
		for _, rowValues := range n.Rows {
			candidate := Binding{}
			for i, v := range rowValues {
				if v == nil || i >= len(n.Variables) {
					continue
				}
				candidate[n.Variables[i].Name] = v
			}
			if !candidate.Compatible(ctx) {
				continue
			}
			if err := yield(ctx.Merge(candidate)); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func (e *Evaluator) evalProject(n *algebra.Project, ctx Binding) (RowIter, error) {
	input, err := e.evalWithContext(n.Input, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		return input(func(row Binding) error {
			projected := Binding{}
			for _, v := range n.Variables {
				if val, ok := row[v.Name]; ok {
					projected[v.Name] = val
				}
			}
			return yield(projected)
		})
	}, nil
}

func (e *Evaluator) evalDistinctOrReduced(input algebra.Plan, ctx Binding) (RowIter, error) {
	rows, err := e.evalWithContext(input, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		seen := map[string]bool{}
		return rows(func(row Binding) error {
			key := bindingKey(row)
			if seen[key] {
				return nil
			}
			seen[key] = true
			return yield(row)
		})
	}, nil
}

func bindingKey(row Binding) string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	sort.Strings(names)
	key := ""
	for _, n := range names {
		key += n + "=" + row[n].String() + "\x00"
	}
	return key
}

func (e *Evaluator) evalSlice(n *algebra.Slice, ctx Binding) (RowIter, error) {
	input, err := e.evalWithContext(n.Input, ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(Binding) error) error {
		var i int64
		var emitted int64
		err := input(func(row Binding) error {
			if i < n.Offset {
				i++
				return nil
			}
			i++
			if n.Limit >= 0 && emitted >= n.Limit {
				return errStop
			}
			emitted++
			return yield(row)
		})
		if err == errStop {
			return nil
		}
		return err
	}, nil
}

func (e *Evaluator) collect(plan algebra.Plan, ctx Binding) ([]Binding, error) {
	iter, err := e.evalWithContext(plan, ctx)
	if err != nil {
		return nil, err
	}
	var rows []Binding
	err = iter(func(row Binding) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *Evaluator) evalOrderBy(n *algebra.OrderBy, ctx Binding) (RowIter, error) {
	rows, err := e.collect(n.Input, ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, cond := range n.Conditions {
			vi, erri := e.Evaluate(cond.Expression, rows[i])
			vj, errj := e.Evaluate(cond.Expression, rows[j])
			cmp := compareForOrder(vi, erri, vj, errj)
			if cmp == 0 {
				continue
			}
			if cond.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return sliceIter(rows), nil
}

// compareForOrder orders unbound/errored evaluations before every bound
// value, then falls back to numeric or lexical comparison, so ORDER BY
// never itself errors on an incomparable value.
func compareForOrder(a rdf.Term, aErr error, b rdf.Term, bErr error) int {
	if aErr != nil && bErr != nil {
		return 0
	}
	if aErr != nil {
		return -1
	}
	if bErr != nil {
		return 1
	}
	if an, err := asNumeric(a); err == nil {
		if bn, err := asNumeric(b); err == nil {
			switch {
			case an.value < bn.value:
				return -1
			case an.value > bn.value:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := lexicalOf(a), lexicalOf(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func sliceIter(rows []Binding) RowIter {
	return func(yield func(Binding) error) error {
		for _, r := range rows {
			if err := yield(r); err != nil {
				if err == errStop {
					return nil
				}
				return err
			}
		}
		return nil
	}
}

func (e *Evaluator) evalService(n *algebra.Service, ctx Binding) (RowIter, error) {
	if n.Silent {
		return func(func(Binding) error) error { return nil }, nil
	}
	return nil, fmt.Errorf("%w: SERVICE requires a federation transport, out of this core's scope", ErrNotImplemented)
}
