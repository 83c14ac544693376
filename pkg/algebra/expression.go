package algebra

import "github.com/quadcore/quadcore/pkg/rdf"

// Expression is a scalar SPARQL expression: the FILTER/BIND/ORDER BY/
// aggregate-argument language. Grounded on the teacher's parser.Expression
// marker interface (expressionNode()), generalized from the teacher's
// fixed BinaryExpression/UnaryExpression/FunctionCallExpression trio to
// also cover EXISTS/NOT EXISTS sub-patterns, which the teacher's evaluator
// never had to support. IN/NOT IN have operator codes (OpIn/OpNotIn), but
// BinaryOp has no field for their list of values.
type Expression interface {
	expressionNode()
}

// VariableRef evaluates to the current solution's binding for Name, or is
// unbound (a query error raised by the referencing expression, not here)
// if Name isn't bound in that solution.
type VariableRef struct{ Variable *Variable }

func (*VariableRef) expressionNode() {}

// TermLiteral is a constant term appearing directly in an expression.
type TermLiteral struct{ Term rdf.Term }

func (*TermLiteral) expressionNode() {}

// BinaryOp is a two-operand operator application. Grounded on the
// teacher's parser.BinaryExpression.
type BinaryOp struct {
	Left, Right Expression
	Op          BinaryOperator
}

func (*BinaryOp) expressionNode() {}

// BinaryOperator enumerates binary expression operators.
type BinaryOperator int

const (
	OpOr BinaryOperator = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpSameTerm
	OpIn
	OpNotIn
)

// UnaryOp is a one-operand operator application. Grounded on the
// teacher's parser.UnaryExpression.
type UnaryOp struct {
	Operand Expression
	Op      UnaryOperator
}

func (*UnaryOp) expressionNode() {}

// UnaryOperator enumerates unary expression operators.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpUnaryPlus
	OpUnaryMinus
)

// FunctionCall is a built-in or extension function application. Grounded
// on the teacher's parser.FunctionCallExpression, generalized from a bare
// string function name to the Builtin enum below so the evaluator
// dispatches on a closed set rather than string-matching at eval time;
// Name carries the full function through only for unrecognized extension
// functions (Builtin == BuiltinUnknown).
type FunctionCall struct {
	Builtin   Builtin
	Name      string // set when Builtin == BuiltinUnknown, e.g. a custom IRI function
	Arguments []Expression
}

func (*FunctionCall) expressionNode() {}

// Builtin enumerates the SPARQL 1.1 built-in function/operator forms this
// core's evaluator implements.
type Builtin int

const (
	BuiltinUnknown Builtin = iota
	BuiltinStr
	BuiltinLang
	BuiltinLangMatches
	BuiltinDatatype
	BuiltinBound
	BuiltinIRI
	BuiltinBNode
	BuiltinRand
	BuiltinAbs
	BuiltinCeil
	BuiltinFloor
	BuiltinRound
	BuiltinConcat
	BuiltinStrLen
	BuiltinUCase
	BuiltinLCase
	BuiltinEncodeForURI
	BuiltinContains
	BuiltinStrStarts
	BuiltinStrEnds
	BuiltinStrBefore
	BuiltinStrAfter
	BuiltinYear
	BuiltinMonth
	BuiltinDay
	BuiltinHours
	BuiltinMinutes
	BuiltinSeconds
	BuiltinTimezone
	BuiltinTZ
	BuiltinNow
	BuiltinUUID
	BuiltinStrUUID
	BuiltinMD5
	BuiltinSHA1
	BuiltinSHA256
	BuiltinSHA384
	BuiltinSHA512
	BuiltinCoalesce
	BuiltinIf
	BuiltinStrLang
	BuiltinStrDt
	BuiltinIsIRI
	BuiltinIsBlank
	BuiltinIsLiteral
	BuiltinIsNumeric
	BuiltinRegex
	BuiltinReplace
	BuiltinSubstr
)

// Exists evaluates to a boolean: whether Pattern has at least one
// solution compatible with the current binding (NOT EXISTS negates it at
// the UnaryOp(OpNot) level, not here).
type Exists struct{ Pattern Plan }

func (*Exists) expressionNode() {}
