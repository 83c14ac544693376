package evaluator

import (
	"testing"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
	"github.com/quadcore/quadcore/pkg/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open("", storage.WithInMemory())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insert(t *testing.T, s *storage.Store, quads ...*rdf.Quad) {
	t.Helper()
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range quads {
		enc, err := wtx.EncodeQuad(q)
		if err != nil {
			t.Fatal(err)
		}
		if err := wtx.Insert(enc); err != nil {
			t.Fatal(err)
		}
	}
	if err := wtx.Commit(); err != nil {
		t.Fatal(err)
	}
}

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	s := newTestStore(t)
	ds := dataset.Open(s)
	t.Cleanup(ds.Close)
	return New(ds)
}

func varRef(name string) *algebra.VariableRef {
	return &algebra.VariableRef{Variable: &algebra.Variable{Name: name}}
}

func termLit(t rdf.Term) *algebra.TermLiteral { return &algebra.TermLiteral{Term: t} }

func TestEvaluateVariableRefUnbound(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.Evaluate(varRef("x"), Binding{})
	if err == nil {
		t.Fatal("expected an error for an unbound variable")
	}
}

func TestEvaluateBinaryEqualAcrossNumericDatatypes(t *testing.T) {
	e := newTestEvaluator(t)
	expr := &algebra.BinaryOp{
		Left:  termLit(rdf.NewIntegerLiteral(2)),
		Right: termLit(rdf.NewDoubleLiteral(2.0)),
		Op:    algebra.OpEqual,
	}
	v, err := e.Evaluate(expr, Binding{})
	if err != nil {
		t.Fatal(err)
	}
	ebv, err := effectiveBooleanValue(v)
	if err != nil || !ebv {
		t.Fatalf("expected 2 = 2.0e0 to hold, got %v (err %v)", v, err)
	}
}

func TestEvaluateOrShortCircuitsThroughError(t *testing.T) {
	e := newTestEvaluator(t)
	expr := &algebra.BinaryOp{
		Left:  varRef("unbound"), // errors
		Right: termLit(rdf.NewBooleanLiteral(true)),
		Op:    algebra.OpOr,
	}
	v, err := e.Evaluate(expr, Binding{})
	if err != nil {
		t.Fatalf("OR should swallow the left error when the right side is true: %v", err)
	}
	ebv, _ := effectiveBooleanValue(v)
	if !ebv {
		t.Fatal("expected true")
	}
}

func TestEvaluateOrPropagatesErrorWhenBothSidesFail(t *testing.T) {
	e := newTestEvaluator(t)
	expr := &algebra.BinaryOp{
		Left:  varRef("a"),
		Right: varRef("b"),
		Op:    algebra.OpOr,
	}
	if _, err := e.Evaluate(expr, Binding{}); err == nil {
		t.Fatal("expected an error when both operands are unbound")
	}
}

func TestEvaluateArithmeticIntegerDivisionPromotesToDecimal(t *testing.T) {
	e := newTestEvaluator(t)
	expr := &algebra.BinaryOp{
		Left:  termLit(rdf.NewIntegerLiteral(7)),
		Right: termLit(rdf.NewIntegerLiteral(2)),
		Op:    algebra.OpDivide,
	}
	v, err := e.Evaluate(expr, Binding{})
	if err != nil {
		t.Fatal(err)
	}
	lit, ok := v.(*rdf.Literal)
	if !ok || lit.Datatype.IRI != rdf.XSDDecimal.IRI {
		t.Fatalf("expected an xsd:decimal result, got %v", v)
	}
}

func TestEvaluateArithmeticDivisionByZero(t *testing.T) {
	e := newTestEvaluator(t)
	expr := &algebra.BinaryOp{
		Left:  termLit(rdf.NewIntegerLiteral(1)),
		Right: termLit(rdf.NewIntegerLiteral(0)),
		Op:    algebra.OpDivide,
	}
	if _, err := e.Evaluate(expr, Binding{}); err == nil {
		t.Fatal("expected division by zero to error")
	}
}

func TestEffectiveBooleanValue(t *testing.T) {
	cases := []struct {
		term rdf.Term
		want bool
	}{
		{rdf.NewBooleanLiteral(true), true},
		{rdf.NewBooleanLiteral(false), false},
		{rdf.NewIntegerLiteral(0), false},
		{rdf.NewIntegerLiteral(5), true},
		{rdf.NewLiteral(""), false},
		{rdf.NewLiteral("x"), true},
	}
	for _, c := range cases {
		got, err := effectiveBooleanValue(c.term)
		if err != nil {
			t.Fatalf("effectiveBooleanValue(%v): %v", c.term, err)
		}
		if got != c.want {
			t.Errorf("effectiveBooleanValue(%v) = %v, want %v", c.term, got, c.want)
		}
	}
}

func TestEvaluateExistsFindsMatchingPattern(t *testing.T) {
	s := newTestStore(t)
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	knows := rdf.NewNamedNode("http://example.org/knows")
	insert(t, s, rdf.NewQuad(alice, knows, bob, rdf.NewDefaultGraph()))

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	pattern := &algebra.QuadPattern{
		Subject:   algebra.TermOrVariable{Variable: &algebra.Variable{Name: "s"}},
		Predicate: algebra.TermOrVariable{Term: knows},
		Object:    algebra.TermOrVariable{Term: bob},
		Graph:     algebra.TermOrVariable{Term: rdf.NewDefaultGraph()},
	}
	exists := &algebra.Exists{Pattern: pattern}

	v, err := e.Evaluate(exists, Binding{"s": alice})
	if err != nil {
		t.Fatal(err)
	}
	ebv, _ := effectiveBooleanValue(v)
	if !ebv {
		t.Fatal("expected EXISTS to find the seeded binding's pattern match")
	}

	v, err = e.Evaluate(exists, Binding{"s": bob})
	if err != nil {
		t.Fatal(err)
	}
	ebv, _ = effectiveBooleanValue(v)
	if ebv {
		t.Fatal("expected EXISTS to fail when the outer binding does not match")
	}
}

func TestEvaluateBuiltinStringFunctions(t *testing.T) {
	e := newTestEvaluator(t)
	fn := &algebra.FunctionCall{
		Builtin:   algebra.BuiltinConcat,
		Arguments: []algebra.Expression{termLit(rdf.NewLiteral("foo")), termLit(rdf.NewLiteral("bar"))},
	}
	v, err := e.Evaluate(fn, Binding{})
	if err != nil {
		t.Fatal(err)
	}
	if lexicalOf(v) != "foobar" {
		t.Fatalf("got %q, want \"foobar\"", lexicalOf(v))
	}
}

func TestEvaluateBuiltinBoundDoesNotErrorOnUnboundArgument(t *testing.T) {
	e := newTestEvaluator(t)
	fn := &algebra.FunctionCall{
		Builtin:   algebra.BuiltinBound,
		Arguments: []algebra.Expression{varRef("x")},
	}
	v, err := e.Evaluate(fn, Binding{})
	if err != nil {
		t.Fatal(err)
	}
	ebv, _ := effectiveBooleanValue(v)
	if ebv {
		t.Fatal("expected BOUND(?x) to be false when ?x is unbound")
	}
}
