package evaluator

import (
	"testing"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// TestOrderByIsDeterministicAcrossRepeatedEvaluation is a
// determinism_audit-style self-check, grounded on
// original_source/lib/oxigraph/tests/determinism_audit.rs: it runs the
// same ORDER BY plan against one fixed snapshot N times and requires
// byte-identical row sequences every time. ORDER BY is the one operator
// whose output order is an observable contract (every other plan node's
// row order is implementation-defined), so it is the operator this
// property actually constrains.
func TestOrderByIsDeterministicAcrossRepeatedEvaluation(t *testing.T) {
	s := newTestStore(t)
	p := rdf.NewNamedNode("http://example.org/value")
	dg := rdf.NewDefaultGraph()
	for i := 0; i < 25; i++ {
		insert(t, s, rdf.NewQuad(
			rdf.NewNamedNode("http://example.org/s"),
			p,
			rdf.NewIntegerLiteral(int64((i*7+3)%25)),
			dg,
		))
	}

	ds := dataset.Open(s)
	defer ds.Close()
	e := New(ds)

	plan := &algebra.OrderBy{
		Input:      quadPattern(vvar("s"), vterm(p), vvar("v"), vterm(dg)),
		Conditions: []algebra.OrderCondition{{Expression: varRef("v"), Ascending: true}},
	}

	var reference []string
	const runs = 10
	for run := 0; run < runs; run++ {
		rows, err := e.EvalPlan(plan)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		got := collectRows(t, rows)
		sequence := make([]string, len(got))
		for i, row := range got {
			sequence[i] = row["v"].String()
		}
		if run == 0 {
			reference = sequence
			continue
		}
		if len(sequence) != len(reference) {
			t.Fatalf("run %d produced %d rows, run 0 produced %d", run, len(sequence), len(reference))
		}
		for i := range sequence {
			if sequence[i] != reference[i] {
				t.Fatalf("run %d diverged from run 0 at position %d: %q vs %q", run, i, sequence[i], reference[i])
			}
		}
	}
}
