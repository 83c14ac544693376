// Package algebra is the SPARQL 1.1 algebra: the tagged-sum-type
// intermediate representation the parser (out of scope for this core)
// targets, the optimizer rewrites, and the evaluator walks. Every node
// implements a marker method (planNode/expressionNode/pathNode/updateNode)
// the way the teacher's parser.Expression does with expressionNode(),
// generalized from one marker interface to the four this package needs.
package algebra

import "github.com/quadcore/quadcore/pkg/rdf"

// Variable is a SPARQL variable, identified by name alone; two Variable
// values with the same Name refer to the same binding slot within a query.
type Variable struct {
	Name string
}

// Plan is any algebra pattern node: the evaluator dispatches on its
// dynamic type, the same way the teacher's evaluator switches on
// parser.GraphPatternType, generalized to a real sum type instead of an
// enum-plus-shared-struct.
type Plan interface {
	planNode()
}

// QuadPattern is the leaf: a single (subject, predicate, object, graph)
// pattern where each position is either a bound Term or a Variable.
// Grounded on the teacher's parser.TriplePattern + GraphTerm, extended
// with an explicit graph position since this core is quad-native, not
// triple-plus-bolted-on-graph.
type QuadPattern struct {
	Subject   TermOrVariable
	Predicate TermOrVariable
	Object    TermOrVariable
	Graph     TermOrVariable
}

func (*QuadPattern) planNode() {}

// TermOrVariable is a pattern position: exactly one of Term or Variable is
// set. Grounded on the teacher's parser.TermOrVariable.
type TermOrVariable struct {
	Term     rdf.Term
	Variable *Variable
}

// IsVariable reports whether this position is unbound.
func (t TermOrVariable) IsVariable() bool { return t.Variable != nil }

// Join is an inner join of Left and Right's solution sequences.
type Join struct{ Left, Right Plan }

func (*Join) planNode() {}

// LeftJoin is OPTIONAL: every Left solution is retained even when no Right
// solution compatible with it (and satisfying Filter, if set) exists.
type LeftJoin struct {
	Left, Right Plan
	Filter      Expression // nil means "no additional filter", i.e. plain OPTIONAL
}

func (*LeftJoin) planNode() {}

// Union is the union of Left and Right's solutions (duplicates kept; a
// later Distinct/Reduced removes them if the query asks for it).
type Union struct{ Left, Right Plan }

func (*Union) planNode() {}

// Minus removes every Left solution that shares at least one variable
// binding with a compatible Right solution, per SPARQL 1.1 MINUS
// semantics (not the same as NOT EXISTS when the two sides share no
// variables: MINUS is then a no-op, which the evaluator implements by
// testing domain-compatibility before testing binding-equality).
type Minus struct{ Left, Right Plan }

func (*Minus) planNode() {}

// Filter keeps only Input solutions for which Condition evaluates to
// effective-true under SPARQL's three-valued logic.
type Filter struct {
	Input     Plan
	Condition Expression
}

func (*Filter) planNode() {}

// Extend is BIND: each Input solution gains a binding of Variable to
// Expression's evaluation, or stays unbound if evaluation errors (an
// unbound BIND target is not a query error, per spec).
type Extend struct {
	Input      Plan
	Variable   *Variable
	Expression Expression
}

func (*Extend) planNode() {}

// Graph is the GRAPH Name { Input } form. The evaluator runs Input as is
// and does not apply Name itself; graph scoping comes from the Graph
// position of the quad patterns inside Input.
type Graph struct {
	Name  TermOrVariable
	Input Plan
}

func (*Graph) planNode() {}

// Values is an inline VALUES data block: a fixed table of solutions, any
// cell of which may be UNDEF (nil Term).
type Values struct {
	Variables []*Variable
	Rows      [][]rdf.Term // nil entry in a row means that variable is UNDEF for this row
}

func (*Values) planNode() {}

// Service is a federated SPARQL SERVICE clause; Endpoint may itself be a
// Variable (SERVICE ?ep form). Silent controls whether a failing remote
// call is swallowed (empty result) or propagated as a query error.
type Service struct {
	Endpoint TermOrVariable
	Input    Plan
	Silent   bool
}

func (*Service) planNode() {}

// AggregateExpr is one aggregate projected by Group, e.g. COUNT(?x),
// SUM(DISTINCT ?y).
type AggregateExpr struct {
	Function AggregateFunction
	Distinct bool
	// Argument is nil for COUNT(*).
	Argument Expression
	Output   *Variable
	// Separator is GROUP_CONCAT's SEPARATOR, ignored by every other
	// aggregate function.
	Separator string
}

// AggregateFunction names a SPARQL 1.1 aggregate.
type AggregateFunction int

const (
	AggCount AggregateFunction = iota
	AggSum
	AggMin
	AggMax
	AggAvg
	AggSample
	AggGroupConcat
)

// Group computes Aggregates per distinct binding of GroupBy over Input's
// solutions; an empty GroupBy groups the whole input into one row (the
// implicit group a bare aggregate-only SELECT creates).
type Group struct {
	Input      Plan
	GroupBy    []Expression
	Aggregates []*AggregateExpr
}

func (*Group) planNode() {}

// OrderCondition is one ORDER BY key. Grounded on the teacher's
// parser.OrderCondition.
type OrderCondition struct {
	Expression Expression
	Ascending  bool
}

// OrderBy sorts Input's solutions by Conditions in order, per SPARQL's
// comparison operator extended to order UNDEF/incomparable values
// consistently rather than erroring.
type OrderBy struct {
	Input      Plan
	Conditions []OrderCondition
}

func (*OrderBy) planNode() {}

// Project restricts each solution to Variables, in projection order; a
// Variable not bound in a given solution is simply absent from the
// projected row rather than an error.
type Project struct {
	Input     Plan
	Variables []*Variable
}

func (*Project) planNode() {}

// Distinct removes duplicate solutions (after projection, per spec
// order of operations).
type Distinct struct{ Input Plan }

func (*Distinct) planNode() {}

// Reduced permits (but does not require) duplicate elimination; the
// evaluator treats it as Distinct when convenient and as a no-op
// otherwise, since SPARQL leaves this to implementation discretion.
type Reduced struct{ Input Plan }

func (*Reduced) planNode() {}

// Slice applies LIMIT/OFFSET. A negative Limit means "no limit".
type Slice struct {
	Input  Plan
	Offset int64
	Limit  int64
}

func (*Slice) planNode() {}

// PropertyPathPattern is a triple pattern whose predicate position is a
// property path expression rather than a single IRI or variable.
type PropertyPathPattern struct {
	Subject TermOrVariable
	Path    PropertyPath
	Object  TermOrVariable
	Graph   TermOrVariable
}

func (*PropertyPathPattern) planNode() {}
