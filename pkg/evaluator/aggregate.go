package evaluator

import (
	"sort"
	"strings"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// evalGroup partitions Input's solutions by GroupBy's evaluated values
// and computes each Aggregate per partition. An empty GroupBy list still
// produces exactly one group (possibly over zero rows), matching
// SPARQL's implicit grouping for a bare aggregate SELECT.
func (e *Evaluator) evalGroup(n *algebra.Group, ctx Binding) (RowIter, error) {
	rows, err := e.collect(n.Input, ctx)
	if err != nil {
		return nil, err
	}

	type group struct {
		key  string
		rows []Binding
	}
	var order []string
	groups := map[string]*group{}
	for _, row := range rows {
		key := e.groupKey(n.GroupBy, row)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}
	if len(order) == 0 && len(n.GroupBy) == 0 {
		order = []string{""}
		groups[""] = &group{}
	}

	results := make([]Binding, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out := Binding{}
		for _, gbExpr := range n.GroupBy {
			if ref, ok := gbExpr.(*algebra.VariableRef); ok && len(g.rows) > 0 {
				if v, err := e.Evaluate(ref, g.rows[0]); err == nil {
					out[ref.Variable.Name] = v
				}
			}
		}
		for _, agg := range n.Aggregates {
			v, err := e.evalAggregate(agg, g.rows)
			if err == nil && agg.Output != nil {
				out[agg.Output.Name] = v
			}
		}
		results = append(results, out)
	}
	return sliceIter(results), nil
}

func (e *Evaluator) groupKey(exprs []algebra.Expression, row Binding) string {
	if len(exprs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, expr := range exprs {
		v, err := e.Evaluate(expr, row)
		if err != nil {
			sb.WriteString("\x01error\x00")
			continue
		}
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String()
}

// evalAggregate reduces rows to a single term for one AggregateExpr.
// COUNT(*) (Argument == nil) counts rows directly; every other function
// evaluates Argument per row and skips rows where it errors, per SPARQL
// 1.1 §18.5.1's "error values are eliminated" aggregate rule.
func (e *Evaluator) evalAggregate(agg *algebra.AggregateExpr, rows []Binding) (rdf.Term, error) {
	if agg.Function == algebra.AggCount && agg.Argument == nil {
		if !agg.Distinct {
			return rdf.NewIntegerLiteral(int64(len(rows))), nil
		}
		seen := map[string]bool{}
		for _, row := range rows {
			seen[bindingKey(row)] = true
		}
		return rdf.NewIntegerLiteral(int64(len(seen))), nil
	}

	values := make([]rdf.Term, 0, len(rows))
	seen := map[string]bool{}
	for _, row := range rows {
		v, err := e.Evaluate(agg.Argument, row)
		if err != nil {
			continue
		}
		if agg.Distinct {
			k := v.String()
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		values = append(values, v)
	}

	switch agg.Function {
	case algebra.AggCount:
		return rdf.NewIntegerLiteral(int64(len(values))), nil
	case algebra.AggSum:
		return sumAggregate(values), nil
	case algebra.AggMin:
		return extremeAggregate(values, true), nil
	case algebra.AggMax:
		return extremeAggregate(values, false), nil
	case algebra.AggAvg:
		return avgAggregate(values), nil
	case algebra.AggSample:
		if len(values) == 0 {
			return rdf.NewIntegerLiteral(0), nil
		}
		return values[0], nil
	case algebra.AggGroupConcat:
		sep := agg.Separator
		if sep == "" {
			sep = " "
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = lexicalOf(v)
		}
		return rdf.NewLiteral(strings.Join(parts, sep)), nil
	default:
		return rdf.NewIntegerLiteral(0), nil
	}
}

func sumAggregate(values []rdf.Term) rdf.Term {
	result := numeric{kind: numInteger}
	for _, v := range values {
		n, err := asNumeric(v)
		if err != nil {
			continue
		}
		result.value += n.value
		result.kind = promote(result.kind, n.kind)
	}
	return result.term()
}

func avgAggregate(values []rdf.Term) rdf.Term {
	if len(values) == 0 {
		return rdf.NewIntegerLiteral(0)
	}
	result := numeric{kind: numInteger}
	count := 0
	for _, v := range values {
		n, err := asNumeric(v)
		if err != nil {
			continue
		}
		result.value += n.value
		result.kind = promote(result.kind, n.kind)
		count++
	}
	if count == 0 {
		return rdf.NewIntegerLiteral(0)
	}
	result.value /= float64(count)
	if result.kind == numInteger {
		result.kind = numDecimal
	}
	return result.term()
}

func extremeAggregate(values []rdf.Term, min bool) rdf.Term {
	if len(values) == 0 {
		return rdf.NewIntegerLiteral(0)
	}
	sorted := make([]rdf.Term, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareForOrder(sorted[i], nil, sorted[j], nil) < 0
	})
	if min {
		return sorted[0]
	}
	return sorted[len(sorted)-1]
}
