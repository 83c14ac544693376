package evaluator

import (
	"fmt"
	"strconv"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// numeric is the evaluator's unified numeric value: every xsd:integer/
// decimal/float/double literal coerces into one of these before
// arithmetic or comparison, then is re-literalized at the narrowest type
// the operation's type-promotion rules (SPARQL 1.1 §17.4.1.1) allow.
// Grounded on the teacher's operators.go, which does the same coercion
// inline per operator with float64; this type centralizes it and tracks
// which of the four numeric datatypes produced the value so promotion
// (integer+integer=integer, integer+double=double, etc.) can be
// re-derived instead of collapsing everything to float64 and losing the
// result's correct datatype.
type numeric struct {
	kind  numericKind
	value float64
}

type numericKind int

const (
	numInteger numericKind = iota
	numDecimal
	numFloat
	numDouble
)

// asNumeric coerces a literal term to a numeric value, failing for any
// non-numeric-datatype literal or non-literal term.
func asNumeric(t rdf.Term) (numeric, error) {
	lit, ok := t.(*rdf.Literal)
	if !ok || lit.Datatype == nil {
		return numeric{}, fmt.Errorf("%w: %v is not a numeric literal", ErrTypeError, t)
	}
	v, err := strconv.ParseFloat(normalizeNumericLexical(lit.Value), 64)
	if err != nil {
		return numeric{}, fmt.Errorf("%w: %v", ErrTypeError, err)
	}
	switch lit.Datatype.IRI {
	case rdf.XSDInteger.IRI:
		return numeric{kind: numInteger, value: v}, nil
	case rdf.XSDDecimal.IRI:
		return numeric{kind: numDecimal, value: v}, nil
	case rdf.XSDFloat.IRI:
		return numeric{kind: numFloat, value: v}, nil
	case rdf.XSDDouble.IRI:
		return numeric{kind: numDouble, value: v}, nil
	default:
		return numeric{}, fmt.Errorf("%w: datatype %s is not numeric", ErrTypeError, lit.Datatype.IRI)
	}
}

func normalizeNumericLexical(v string) string {
	switch v {
	case "INF", "+INF":
		return "+Inf"
	case "-INF":
		return "-Inf"
	default:
		return v
	}
}

// promote returns the wider of two numeric kinds, per SPARQL's
// type-promotion order integer < decimal < float < double.
func promote(a, b numericKind) numericKind {
	if a > b {
		return a
	}
	return b
}

// term re-literalizes n at its tracked datatype.
func (n numeric) term() *rdf.Literal {
	switch n.kind {
	case numInteger:
		return rdf.NewIntegerLiteral(int64(n.value))
	case numDecimal:
		return rdf.NewDecimalLiteral(strconv.FormatFloat(n.value, 'f', -1, 64))
	case numFloat:
		return rdf.NewLiteralWithDatatype(strconv.FormatFloat(n.value, 'g', -1, 32), rdf.XSDFloat)
	default:
		return rdf.NewDoubleLiteral(n.value)
	}
}
