package evaluator

import (
	"fmt"
	"strings"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// evalBinaryOp dispatches a BinaryOp, grounded on the teacher's
// evaluateBinaryExpression switch. Logical AND/OR are special-cased
// before operand evaluation so their SPARQL-mandated short-circuit
// (including the "OR is true if either side is true, even if the other
// errors" rule) can run; every other operator evaluates both operands
// unconditionally first.
func (e *Evaluator) evalBinaryOp(ex *algebra.BinaryOp, binding Binding) (rdf.Term, error) {
	if ex.Op == algebra.OpAnd {
		return e.evalAnd(ex.Left, ex.Right, binding)
	}
	if ex.Op == algebra.OpOr {
		return e.evalOr(ex.Left, ex.Right, binding)
	}

	left, err := e.Evaluate(ex.Left, binding)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(ex.Right, binding)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case algebra.OpEqual:
		return rdf.NewBooleanLiteral(valueEquals(left, right)), nil
	case algebra.OpNotEqual:
		return rdf.NewBooleanLiteral(!valueEquals(left, right)), nil
	case algebra.OpSameTerm:
		return rdf.NewBooleanLiteral(left.Equals(right)), nil
	case algebra.OpLess, algebra.OpLessOrEqual, algebra.OpGreater, algebra.OpGreaterOrEqual:
		return e.evalCompare(ex.Op, left, right)
	case algebra.OpAdd, algebra.OpSubtract, algebra.OpMultiply, algebra.OpDivide:
		return e.evalArithmetic(ex.Op, left, right)
	case algebra.OpIn, algebra.OpNotIn:
		return nil, fmt.Errorf("%w: IN/NOT IN is represented as nested BinaryOp(OpEqual) chains, not a single operator with a list operand", ErrNotImplemented)
	default:
		return nil, fmt.Errorf("%w: binary operator %v", ErrNotImplemented, ex.Op)
	}
}

func (e *Evaluator) evalAnd(leftExpr, rightExpr algebra.Expression, binding Binding) (rdf.Term, error) {
	left, err := e.Evaluate(leftExpr, binding)
	if err != nil {
		return nil, err
	}
	leftEBV, err := effectiveBooleanValue(left)
	if err != nil {
		return nil, err
	}
	if !leftEBV {
		return rdf.NewBooleanLiteral(false), nil
	}
	right, err := e.Evaluate(rightExpr, binding)
	if err != nil {
		return nil, err
	}
	rightEBV, err := effectiveBooleanValue(right)
	if err != nil {
		return nil, err
	}
	return rdf.NewBooleanLiteral(rightEBV), nil
}

func (e *Evaluator) evalOr(leftExpr, rightExpr algebra.Expression, binding Binding) (rdf.Term, error) {
	left, leftErr := e.Evaluate(leftExpr, binding)
	var leftEBV bool
	if leftErr == nil {
		leftEBV, leftErr = effectiveBooleanValue(left)
	}
	if leftErr == nil && leftEBV {
		return rdf.NewBooleanLiteral(true), nil
	}

	right, rightErr := e.Evaluate(rightExpr, binding)
	if rightErr != nil {
		if leftErr != nil {
			return nil, leftErr
		}
		return nil, rightErr
	}
	rightEBV, err := effectiveBooleanValue(right)
	if err != nil {
		if leftErr != nil {
			return nil, leftErr
		}
		return nil, err
	}
	if rightEBV {
		return rdf.NewBooleanLiteral(true), nil
	}
	if leftErr != nil {
		return nil, leftErr
	}
	return rdf.NewBooleanLiteral(false), nil
}

// evalUnaryOp dispatches NOT and unary +/-. Grounded on the teacher's
// evaluateUnaryExpression.
func (e *Evaluator) evalUnaryOp(ex *algebra.UnaryOp, binding Binding) (rdf.Term, error) {
	operand, err := e.Evaluate(ex.Operand, binding)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case algebra.OpNot:
		ebv, err := effectiveBooleanValue(operand)
		if err != nil {
			return nil, err
		}
		return rdf.NewBooleanLiteral(!ebv), nil
	case algebra.OpUnaryPlus:
		n, err := asNumeric(operand)
		if err != nil {
			return nil, err
		}
		return n.term(), nil
	case algebra.OpUnaryMinus:
		n, err := asNumeric(operand)
		if err != nil {
			return nil, err
		}
		n.value = -n.value
		return n.term(), nil
	default:
		return nil, fmt.Errorf("%w: unary operator %v", ErrNotImplemented, ex.Op)
	}
}

// valueEquals implements SPARQL's "=" operator: numeric terms compare by
// value across datatypes, plain/lang-tagged strings compare lexically,
// and any other pair falls back to term equality.
func valueEquals(a, b rdf.Term) bool {
	if an, err := asNumeric(a); err == nil {
		if bn, err := asNumeric(b); err == nil {
			return an.value == bn.value
		}
	}
	return a.Equals(b)
}

func (e *Evaluator) evalCompare(op algebra.BinaryOperator, a, b rdf.Term) (rdf.Term, error) {
	if an, err := asNumeric(a); err == nil {
		if bn, err := asNumeric(b); err == nil {
			return rdf.NewBooleanLiteral(compareFloats(op, an.value, bn.value)), nil
		}
	}
	al, aok := a.(*rdf.Literal)
	bl, bok := b.(*rdf.Literal)
	if aok && bok && (al.Datatype == nil || al.Datatype.IRI == rdf.XSDString.IRI) &&
		(bl.Datatype == nil || bl.Datatype.IRI == rdf.XSDString.IRI) {
		return rdf.NewBooleanLiteral(compareStrings(op, al.Value, bl.Value)), nil
	}
	return nil, fmt.Errorf("%w: %v and %v are not ordered-comparable", ErrTypeError, a, b)
}

func compareFloats(op algebra.BinaryOperator, a, b float64) bool {
	switch op {
	case algebra.OpLess:
		return a < b
	case algebra.OpLessOrEqual:
		return a <= b
	case algebra.OpGreater:
		return a > b
	default:
		return a >= b
	}
}

func compareStrings(op algebra.BinaryOperator, a, b string) bool {
	c := strings.Compare(a, b)
	switch op {
	case algebra.OpLess:
		return c < 0
	case algebra.OpLessOrEqual:
		return c <= 0
	case algebra.OpGreater:
		return c > 0
	default:
		return c >= 0
	}
}

func (e *Evaluator) evalArithmetic(op algebra.BinaryOperator, a, b rdf.Term) (rdf.Term, error) {
	an, err := asNumeric(a)
	if err != nil {
		return nil, err
	}
	bn, err := asNumeric(b)
	if err != nil {
		return nil, err
	}
	result := numeric{kind: promote(an.kind, bn.kind)}
	switch op {
	case algebra.OpAdd:
		result.value = an.value + bn.value
	case algebra.OpSubtract:
		result.value = an.value - bn.value
	case algebra.OpMultiply:
		result.value = an.value * bn.value
	case algebra.OpDivide:
		if bn.value == 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrTypeError)
		}
		result.value = an.value / bn.value
		if result.kind == numInteger {
			result.kind = numDecimal // integer/integer division is decimal, per spec
		}
	}
	return result.term(), nil
}
