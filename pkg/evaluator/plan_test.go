package evaluator

import (
	"sort"
	"testing"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
)

func collectRows(t *testing.T, rows RowIter) []Binding {
	t.Helper()
	var out []Binding
	if err := rows(func(b Binding) error {
		out = append(out, b)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return out
}

func quadPattern(s, p, o, g algebra.TermOrVariable) *algebra.QuadPattern {
	return &algebra.QuadPattern{Subject: s, Predicate: p, Object: o, Graph: g}
}

func vvar(name string) algebra.TermOrVariable {
	return algebra.TermOrVariable{Variable: &algebra.Variable{Name: name}}
}

func vterm(t rdf.Term) algebra.TermOrVariable { return algebra.TermOrVariable{Term: t} }

func TestEvalPlanQuadPatternBindsVariables(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	knows := rdf.NewNamedNode("http://example.org/knows")
	dg := rdf.NewDefaultGraph()
	insert(t, s, rdf.NewQuad(alice, knows, bob, dg))

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	plan := quadPattern(vvar("s"), vterm(knows), vvar("o"), vterm(dg))
	rows, err := e.EvalPlan(plan)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 1 || !got[0]["s"].Equals(alice) || !got[0]["o"].Equals(bob) {
		t.Fatalf("got %v", got)
	}
}

func TestEvalPlanJoinNestedLoop(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	carol := rdf.NewNamedNode("http://example.org/carol")
	knows := rdf.NewNamedNode("http://example.org/knows")
	likes := rdf.NewNamedNode("http://example.org/likes")
	dg := rdf.NewDefaultGraph()
	insert(t, s,
		rdf.NewQuad(alice, knows, bob, dg),
		rdf.NewQuad(bob, likes, carol, dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	join := &algebra.Join{
		Left:  quadPattern(vvar("a"), vterm(knows), vvar("b"), vterm(dg)),
		Right: quadPattern(vvar("b"), vterm(likes), vvar("c"), vterm(dg)),
	}
	rows, err := e.EvalPlan(join)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 1 || !got[0]["a"].Equals(alice) || !got[0]["c"].Equals(carol) {
		t.Fatalf("got %v", got)
	}
}

func TestEvalPlanLeftJoinKeepsUnmatchedRow(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	knows := rdf.NewNamedNode("http://example.org/knows")
	likes := rdf.NewNamedNode("http://example.org/likes")
	dg := rdf.NewDefaultGraph()
	insert(t, s, rdf.NewQuad(alice, knows, bob, dg))

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	lj := &algebra.LeftJoin{
		Left:  quadPattern(vvar("a"), vterm(knows), vvar("b"), vterm(dg)),
		Right: quadPattern(vvar("a"), vterm(likes), vvar("c"), vterm(dg)),
	}
	rows, err := e.EvalPlan(lj)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1: %v", len(got), got)
	}
	if _, ok := got[0]["c"]; ok {
		t.Fatal("expected ?c to stay unbound when no OPTIONAL match exists")
	}
	if !got[0]["a"].Equals(alice) {
		t.Fatalf("expected ?a bound, got %v", got[0])
	}
}

func TestEvalPlanMinusDropsOverlappingCompatibleSolution(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	carol := rdf.NewNamedNode("http://example.org/carol")
	knows := rdf.NewNamedNode("http://example.org/knows")
	dg := rdf.NewDefaultGraph()
	insert(t, s,
		rdf.NewQuad(alice, knows, bob, dg),
		rdf.NewQuad(carol, knows, bob, dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	minus := &algebra.Minus{
		Left:  quadPattern(vvar("x"), vterm(knows), vvar("y"), vterm(dg)),
		Right: &algebra.Values{Variables: []*algebra.Variable{{Name: "x"}}, Rows: [][]rdf.Term{{alice}}},
	}
	rows, err := e.EvalPlan(minus)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 1 || !got[0]["x"].Equals(carol) {
		t.Fatalf("got %v, want only the carol row", got)
	}
}

func TestEvalPlanFilterExcludesFalseRows(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	age := rdf.NewNamedNode("http://example.org/age")
	dg := rdf.NewDefaultGraph()
	insert(t, s,
		rdf.NewQuad(alice, age, rdf.NewIntegerLiteral(30), dg),
		rdf.NewQuad(alice, age, rdf.NewIntegerLiteral(10), dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	filter := &algebra.Filter{
		Input: quadPattern(vvar("s"), vterm(age), vvar("v"), vterm(dg)),
		Condition: &algebra.BinaryOp{
			Left:  varRef("v"),
			Right: termLit(rdf.NewIntegerLiteral(18)),
			Op:    algebra.OpGreater,
		},
	}
	rows, err := e.EvalPlan(filter)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1: %v", len(got), got)
	}
	v, _ := asNumeric(got[0]["v"])
	if v.value != 30 {
		t.Fatalf("got %v, want the row with age 30", got)
	}
}

func TestEvalPlanExtendBindsComputedValue(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	age := rdf.NewNamedNode("http://example.org/age")
	dg := rdf.NewDefaultGraph()
	insert(t, s, rdf.NewQuad(alice, age, rdf.NewIntegerLiteral(30), dg))

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	extend := &algebra.Extend{
		Input:    quadPattern(vvar("s"), vterm(age), vvar("v"), vterm(dg)),
		Variable: &algebra.Variable{Name: "doubled"},
		Expression: &algebra.BinaryOp{
			Left:  varRef("v"),
			Right: termLit(rdf.NewIntegerLiteral(2)),
			Op:    algebra.OpMultiply,
		},
	}
	rows, err := e.EvalPlan(extend)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	n, err := asNumeric(got[0]["doubled"])
	if err != nil || n.value != 60 {
		t.Fatalf("got %v, want 60", got[0]["doubled"])
	}
}

func TestEvalPlanSliceAppliesOffsetAndLimit(t *testing.T) {
	s := newTestStore(t)
	p := rdf.NewNamedNode("http://example.org/p")
	dg := rdf.NewDefaultGraph()
	for i := 0; i < 5; i++ {
		insert(t, s, rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), p, rdf.NewIntegerLiteral(int64(i)), dg))
	}

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	slice := &algebra.Slice{
		Input:  quadPattern(vvar("s"), vterm(p), vvar("o"), vterm(dg)),
		Offset: 1,
		Limit:  2,
	}
	rows, err := e.EvalPlan(slice)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
}

func TestEvalPlanOrderByAscending(t *testing.T) {
	s := newTestStore(t)
	p := rdf.NewNamedNode("http://example.org/p")
	dg := rdf.NewDefaultGraph()
	insert(t, s,
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), p, rdf.NewIntegerLiteral(3), dg),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), p, rdf.NewIntegerLiteral(1), dg),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), p, rdf.NewIntegerLiteral(2), dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	order := &algebra.OrderBy{
		Input:      quadPattern(vvar("s"), vterm(p), vvar("o"), vterm(dg)),
		Conditions: []algebra.OrderCondition{{Expression: varRef("o"), Ascending: true}},
	}
	rows, err := e.EvalPlan(order)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	var values []int64
	for _, r := range got {
		n, _ := asNumeric(r["o"])
		values = append(values, int64(n.value))
	}
	if !sort.IsSorted(int64Slice(values)) {
		t.Fatalf("rows not in ascending order: %v", values)
	}
}

type int64Slice []int64

func (s int64Slice) Len() int           { return len(s) }
func (s int64Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s int64Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func TestEvalPlanGroupCountsPerGroup(t *testing.T) {
	s := newTestStore(t)
	p := rdf.NewNamedNode("http://example.org/type")
	dg := rdf.NewDefaultGraph()
	person := rdf.NewNamedNode("http://example.org/Person")
	org := rdf.NewNamedNode("http://example.org/Org")
	insert(t, s,
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/a"), p, person, dg),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/b"), p, person, dg),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/c"), p, org, dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	group := &algebra.Group{
		Input:   quadPattern(vvar("s"), vterm(p), vvar("t"), vterm(dg)),
		GroupBy: []algebra.Expression{varRef("t")},
		Aggregates: []*algebra.AggregateExpr{
			{Function: algebra.AggCount, Output: &algebra.Variable{Name: "n"}},
		},
	}
	rows, err := e.EvalPlan(group)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(got), got)
	}
	counts := map[string]int64{}
	for _, r := range got {
		n, _ := asNumeric(r["n"])
		counts[r["t"].String()] = int64(n.value)
	}
	if counts[person.String()] != 2 || counts[org.String()] != 1 {
		t.Fatalf("got counts %v", counts)
	}
}

func TestEvalPlanPropertyPathOneOrMore(t *testing.T) {
	s := newTestStore(t)
	a := rdf.NewNamedNode("http://example.org/a")
	b := rdf.NewNamedNode("http://example.org/b")
	c := rdf.NewNamedNode("http://example.org/c")
	knows := rdf.NewNamedNode("http://example.org/knows")
	dg := rdf.NewDefaultGraph()
	insert(t, s,
		rdf.NewQuad(a, knows, b, dg),
		rdf.NewQuad(b, knows, c, dg),
	)

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	pattern := &algebra.PropertyPathPattern{
		Subject: vterm(a),
		Path:    &algebra.PathOneOrMore{Path: &algebra.PathPredicate{IRI: knows}},
		Object:  vvar("reached"),
		Graph:   vterm(dg),
	}
	rows, err := e.EvalPlan(pattern)
	if err != nil {
		t.Fatal(err)
	}
	got := collectRows(t, rows)
	reached := map[string]bool{}
	for _, r := range got {
		reached[r["reached"].String()] = true
	}
	if !reached[b.String()] || !reached[c.String()] {
		t.Fatalf("expected both b and c reachable via knows+, got %v", reached)
	}
	if reached[a.String()] {
		t.Fatal("OneOrMore should not include the start node unless reached via a cycle")
	}
}
