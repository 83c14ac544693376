package evaluator

import (
	"fmt"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// Evaluator evaluates scalar expressions and walks plan trees against one
// dataset.Dataset snapshot. Grounded on the teacher's evaluator.Evaluator,
// generalized to take a Dataset so EXISTS and SERVICE (both stubbed with
// an error in the teacher) can actually run a nested pattern.
type Evaluator struct {
	ds *dataset.Dataset
}

// New builds an Evaluator bound to ds.
func New(ds *dataset.Dataset) *Evaluator { return &Evaluator{ds: ds} }

// Evaluate computes expr's value under binding. Grounded on the
// teacher's Evaluate type-switch, extended with BinaryOp's full operator
// set, Exists, and the builtin-function dispatch in functions.go.
func (e *Evaluator) Evaluate(expr algebra.Expression, binding Binding) (rdf.Term, error) {
	if expr == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrTypeError)
	}
	switch ex := expr.(type) {
	case *algebra.VariableRef:
		return e.evalVariableRef(ex, binding)
	case *algebra.TermLiteral:
		return ex.Term, nil
	case *algebra.BinaryOp:
		return e.evalBinaryOp(ex, binding)
	case *algebra.UnaryOp:
		return e.evalUnaryOp(ex, binding)
	case *algebra.FunctionCall:
		return e.evalFunctionCall(ex, binding)
	case *algebra.Exists:
		return e.evalExists(ex, binding)
	default:
		return nil, fmt.Errorf("%w: unsupported expression type %T", ErrTypeError, expr)
	}
}

func (e *Evaluator) evalVariableRef(ex *algebra.VariableRef, binding Binding) (rdf.Term, error) {
	if ex.Variable == nil {
		return nil, fmt.Errorf("%w: nil variable", ErrTypeError)
	}
	v, ok := binding[ex.Variable.Name]
	if !ok {
		return nil, fmt.Errorf("%w: ?%s", ErrUnboundVariable, ex.Variable.Name)
	}
	return v, nil
}

// evalExists runs Pattern against e.ds, restricted to solutions
// compatible with binding, and reports whether at least one exists. The
// teacher's evaluateExistsExpression is a stub returning "not yet
// implemented"; this replaces it with a real nested evaluation using
// EvalPlan over a Values-seeded input so the outer binding's variables
// constrain the inner pattern (the standard EXISTS-as-correlated-subquery
// construction).
func (e *Evaluator) evalExists(ex *algebra.Exists, binding Binding) (rdf.Term, error) {
	seed := seedPlan(ex.Pattern, binding)
	rows, err := e.EvalPlan(seed)
	if err != nil {
		return nil, err
	}
	found := false
	err = rows(func(Binding) error {
		found = true
		return errStop
	})
	if err != nil && err != errStop {
		return nil, err
	}
	return rdf.NewBooleanLiteral(found), nil
}

// seedPlan wraps pattern so its evaluation starts from a single-row
// Values block carrying binding's existing bindings, making EXISTS's
// outer-scope variables act as if pre-bound constants inside the
// sub-pattern (a Join with a one-row Values table is exactly that).
func seedPlan(pattern algebra.Plan, binding Binding) algebra.Plan {
	if len(binding) == 0 {
		return pattern
	}
	vars := make([]*algebra.Variable, 0, len(binding))
	row := make([]rdf.Term, 0, len(binding))
	for name, term := range binding {
		vars = append(vars, &algebra.Variable{Name: name})
		row = append(row, term)
	}
	seed := &algebra.Values{Variables: vars, Rows: [][]rdf.Term{row}}
	return &algebra.Join{Left: seed, Right: pattern}
}

// effectiveBooleanValue computes a term's EBV per SPARQL 1.1 §17.2.2:
// booleans pass through; numeric literals are false only when zero or
// NaN; plain/xsd:string literals are false only when empty; every other
// term kind is a type error. Grounded on the teacher's
// effectiveBooleanValue in operators.go.
func effectiveBooleanValue(t rdf.Term) (bool, error) {
	lit, ok := t.(*rdf.Literal)
	if !ok {
		return false, fmt.Errorf("%w: %v has no effective boolean value", ErrTypeError, t)
	}
	if lit.Datatype != nil && lit.Datatype.IRI == rdf.XSDBoolean.IRI {
		return lit.Value == "true" || lit.Value == "1", nil
	}
	if n, err := asNumeric(t); err == nil {
		return n.value != 0 && n.value == n.value, nil
	}
	if lit.Datatype == nil || lit.Datatype.IRI == rdf.XSDString.IRI || lit.Language != "" {
		return lit.Value != "", nil
	}
	return false, fmt.Errorf("%w: %v has no effective boolean value", ErrTypeError, t)
}

var errStop = fmt.Errorf("evaluator: iteration stopped early")
