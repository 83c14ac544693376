package optimizer

import (
	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// foldConstants replaces expressions with no variable references by their
// evaluated TermLiteral wherever that's sound to do syntactically (boolean
// AND/OR/NOT over two constant boolean literals, and unary NOT of a
// constant). It deliberately does not attempt arithmetic or full constant
// propagation across BIND, since that needs live type/error information
// the evaluator's three-valued logic owns, not the optimizer.
func (o *Optimizer) foldConstants(plan algebra.Plan) algebra.Plan {
	plan = o.rewriteChildren(plan, o.foldConstants)
	if f, ok := plan.(*algebra.Filter); ok {
		return &algebra.Filter{Input: f.Input, Condition: foldExpr(f.Condition)}
	}
	return plan
}

func foldExpr(e algebra.Expression) algebra.Expression {
	switch n := e.(type) {
	case *algebra.UnaryOp:
		operand := foldExpr(n.Operand)
		if n.Op == algebra.OpNot {
			if lit, ok := asBoolLiteral(operand); ok {
				return boolLiteral(!lit)
			}
		}
		return &algebra.UnaryOp{Op: n.Op, Operand: operand}
	case *algebra.BinaryOp:
		left := foldExpr(n.Left)
		right := foldExpr(n.Right)
		if lLit, lOK := asBoolLiteral(left); lOK {
			if rLit, rOK := asBoolLiteral(right); rOK {
				switch n.Op {
				case algebra.OpAnd:
					return boolLiteral(lLit && rLit)
				case algebra.OpOr:
					return boolLiteral(lLit || rLit)
				}
			}
		}
		return &algebra.BinaryOp{Op: n.Op, Left: left, Right: right}
	default:
		return e
	}
}

func asBoolLiteral(e algebra.Expression) (bool, bool) {
	lit, ok := e.(*algebra.TermLiteral)
	if !ok {
		return false, false
	}
	l, ok := lit.Term.(*rdf.Literal)
	if !ok || l.Datatype == nil || l.Datatype.IRI != rdf.XSDBoolean.IRI {
		return false, false
	}
	switch l.Value {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func boolLiteral(v bool) *algebra.TermLiteral {
	return &algebra.TermLiteral{Term: rdf.NewBooleanLiteral(v)}
}
