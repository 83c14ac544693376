package optimizer

import (
	"testing"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/rdf"
	"github.com/quadcore/quadcore/pkg/storage"
)

func varRef(name string) algebra.TermOrVariable {
	return algebra.TermOrVariable{Variable: &algebra.Variable{Name: name}}
}

func termPos(t rdf.Term) algebra.TermOrVariable {
	return algebra.TermOrVariable{Term: t}
}

func TestReorderJoinsPrefersMoreSelectivePatternFirst(t *testing.T) {
	o := New(&storage.Statistics{TotalQuads: 1_000_000})

	// Pattern A: fully unbound (multiplier of 1, the largest estimate).
	unbound := &algebra.QuadPattern{
		Subject: varRef("s"), Predicate: varRef("p"), Object: varRef("o"), Graph: varRef("g"),
	}
	// Pattern B: subject+predicate+object bound (far more selective).
	bound := &algebra.QuadPattern{
		Subject:   termPos(rdf.NewNamedNode("http://example.org/alice")),
		Predicate: termPos(rdf.NewNamedNode("http://example.org/knows")),
		Object:    termPos(rdf.NewNamedNode("http://example.org/bob")),
		Graph:     varRef("g"),
	}

	join := &algebra.Join{Left: unbound, Right: bound}
	result := o.reorderJoins(join)

	reordered, ok := result.(*algebra.Join)
	if !ok {
		t.Fatalf("expected *algebra.Join, got %T", result)
	}
	if reordered.Left != algebra.Plan(bound) {
		t.Errorf("expected the selective bound pattern first, got %#v", reordered.Left)
	}
}

func TestFoldConstantsCollapsesBooleanAnd(t *testing.T) {
	o := New(nil)
	cond := &algebra.BinaryOp{
		Op:    algebra.OpAnd,
		Left:  &algebra.TermLiteral{Term: rdf.NewBooleanLiteral(true)},
		Right: &algebra.TermLiteral{Term: rdf.NewBooleanLiteral(false)},
	}
	plan := &algebra.Filter{Input: &algebra.QuadPattern{}, Condition: cond}
	out := o.foldConstants(plan)

	f, ok := out.(*algebra.Filter)
	if !ok {
		t.Fatalf("expected *algebra.Filter, got %T", out)
	}
	lit, ok := f.Condition.(*algebra.TermLiteral)
	if !ok {
		t.Fatalf("expected folded condition to be *algebra.TermLiteral, got %T", f.Condition)
	}
	boolLit, ok := lit.Term.(*rdf.Literal)
	if !ok || boolLit.Value != "false" {
		t.Fatalf("expected folded constant false, got %v", lit.Term)
	}
}

func TestPushDownFiltersMovesConditionToOwningJoinSide(t *testing.T) {
	o := New(nil)
	left := &algebra.QuadPattern{Subject: varRef("s"), Predicate: termPos(rdf.NewNamedNode("http://example.org/p1")), Object: varRef("o1"), Graph: varRef("g")}
	right := &algebra.QuadPattern{Subject: varRef("s2"), Predicate: termPos(rdf.NewNamedNode("http://example.org/p2")), Object: varRef("o2"), Graph: varRef("g")}
	join := &algebra.Join{Left: left, Right: right}
	cond := &algebra.BinaryOp{
		Op:    algebra.OpEqual,
		Left:  &algebra.VariableRef{Variable: &algebra.Variable{Name: "o2"}},
		Right: &algebra.TermLiteral{Term: rdf.NewLiteral("x")},
	}
	plan := &algebra.Filter{Input: join, Condition: cond}

	out := o.pushDownFilters(plan)
	pushedJoin, ok := out.(*algebra.Join)
	if !ok {
		t.Fatalf("expected filter pushed below the join, got %T", out)
	}
	if _, ok := pushedJoin.Right.(*algebra.Filter); !ok {
		t.Fatalf("expected filter pushed onto right side (owns ?o2), got %T", pushedJoin.Right)
	}
}

func TestScopeDetectsOptionalBoundaryVariable(t *testing.T) {
	always := &algebra.QuadPattern{Subject: varRef("s"), Predicate: varRef("p"), Object: varRef("o"), Graph: varRef("g")}
	optionalOnly := &algebra.QuadPattern{Subject: varRef("s"), Predicate: varRef("q"), Object: varRef("maybe"), Graph: varRef("g")}
	plan := &algebra.LeftJoin{Left: always, Right: optionalOnly}

	scope := AnalyzeScope(plan)
	if !scope.IsAlwaysBound("s") {
		t.Error("expected ?s (bound on required side) to be always-bound")
	}
	if scope.IsAlwaysBound("maybe") {
		t.Error("expected ?maybe (bound only inside OPTIONAL) to not be always-bound")
	}
}

func TestRewriteBoundFoldsUnconditionalVariable(t *testing.T) {
	always := &algebra.QuadPattern{Subject: varRef("s"), Predicate: varRef("p"), Object: varRef("o"), Graph: varRef("g")}
	plan := &algebra.Filter{
		Input: always,
		Condition: &algebra.FunctionCall{
			Builtin:   algebra.BuiltinBound,
			Arguments: []algebra.Expression{&algebra.VariableRef{Variable: &algebra.Variable{Name: "s"}}},
		},
	}

	out := RewriteBound(plan)
	f, ok := out.(*algebra.Filter)
	if !ok {
		t.Fatalf("expected *algebra.Filter, got %T", out)
	}
	lit, ok := f.Condition.(*algebra.TermLiteral)
	if !ok {
		t.Fatalf("expected BOUND(?s) folded to a literal, got %T", f.Condition)
	}
	boolLit := lit.Term.(*rdf.Literal)
	if boolLit.Value != "true" {
		t.Errorf("expected folded true, got %v", boolLit.Value)
	}
}

func TestRewriteBoundKeepsOptionalVariableAsRuntimeCheck(t *testing.T) {
	always := &algebra.QuadPattern{Subject: varRef("s"), Predicate: varRef("p"), Object: varRef("o"), Graph: varRef("g")}
	optionalOnly := &algebra.QuadPattern{Subject: varRef("s"), Predicate: varRef("q"), Object: varRef("maybe"), Graph: varRef("g")}
	leftJoin := &algebra.LeftJoin{Left: always, Right: optionalOnly}
	plan := &algebra.Filter{
		Input: leftJoin,
		Condition: &algebra.FunctionCall{
			Builtin:   algebra.BuiltinBound,
			Arguments: []algebra.Expression{&algebra.VariableRef{Variable: &algebra.Variable{Name: "maybe"}}},
		},
	}

	out := RewriteBound(plan)
	f := out.(*algebra.Filter)
	if _, ok := f.Condition.(*algebra.FunctionCall); !ok {
		t.Fatalf("expected BOUND(?maybe) to remain a runtime call, got %T", f.Condition)
	}
}
