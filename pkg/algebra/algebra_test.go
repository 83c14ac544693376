package algebra

import (
	"testing"

	"github.com/quadcore/quadcore/pkg/rdf"
)

func TestPlanTreeConstruction(t *testing.T) {
	x := &Variable{Name: "x"}
	pattern := &QuadPattern{
		Subject:   TermOrVariable{Variable: x},
		Predicate: TermOrVariable{Term: rdf.NewNamedNode("http://example.org/knows")},
		Object:    TermOrVariable{Variable: &Variable{Name: "y"}},
		Graph:     TermOrVariable{Term: rdf.NewDefaultGraph()},
	}

	var plan Plan = &Slice{
		Offset: 0,
		Limit:  10,
		Input: &Project{
			Variables: []*Variable{x},
			Input: &Distinct{
				Input: &Filter{
					Condition: &BinaryOp{
						Op:   OpEqual,
						Left: &VariableRef{Variable: x},
						Right: &TermLiteral{
							Term: rdf.NewNamedNode("http://example.org/alice"),
						},
					},
					Input: pattern,
				},
			},
		},
	}

	if _, ok := plan.(*Slice); !ok {
		t.Fatalf("expected top-level *Slice, got %T", plan)
	}
}

func TestPropertyPathComposition(t *testing.T) {
	knows := &rdf.NamedNode{IRI: "http://example.org/knows"}
	var path PropertyPath = &PathOneOrMore{
		Path: &PathAlternative{
			Left:  &PathPredicate{IRI: knows},
			Right: &PathInverse{Path: &PathPredicate{IRI: knows}},
		},
	}
	if _, ok := path.(*PathOneOrMore); !ok {
		t.Fatalf("expected *PathOneOrMore, got %T", path)
	}
}

func TestUpdateOperationConstruction(t *testing.T) {
	g := rdf.NewNamedNode("http://example.org/g1")
	var ops = []Update{
		&Create{Graph: g},
		&InsertData{Data: QuadData{Quads: []*rdf.Quad{}}},
		&Clear{Target: GraphTarget{Kind: GraphTargetAll}},
		&Drop{Target: GraphTarget{Graph: g, Kind: GraphTargetNamed}},
	}
	if len(ops) != 4 {
		t.Fatalf("got %d ops, want 4", len(ops))
	}
}

func TestAggregateGroupConstruction(t *testing.T) {
	count := &Variable{Name: "cnt"}
	group := &Group{
		GroupBy: []Expression{&VariableRef{Variable: &Variable{Name: "x"}}},
		Aggregates: []*AggregateExpr{
			{Function: AggCount, Output: count},
		},
	}
	if group.Aggregates[0].Function != AggCount {
		t.Fatalf("expected AggCount, got %v", group.Aggregates[0].Function)
	}
}
