package evaluator

import "errors"

// ErrUnboundVariable is returned by Evaluate when an expression
// references a variable not present in the current binding, grounded on
// the teacher's evaluateVariableExpression error path.
var ErrUnboundVariable = errors.New("evaluator: unbound variable")

// ErrTypeError is returned when an expression is applied to terms of an
// incompatible kind (e.g. arithmetic on an IRI); under SPARQL's
// three-valued logic this propagates as an unbound FILTER/BIND result
// rather than aborting the whole query.
var ErrTypeError = errors.New("evaluator: type error")

// ErrNotImplemented marks a builtin or path form recognized by the
// algebra but not yet supported by this evaluator.
var ErrNotImplemented = errors.New("evaluator: not implemented")
