package results

import (
	"strings"
	"testing"

	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
)

func rowsOf(rows ...evaluator.Binding) evaluator.RowIter {
	return func(yield func(evaluator.Binding) error) error {
		for _, r := range rows {
			if err := yield(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func sampleSolutions() Solutions {
	alice := rdf.NewNamedNode("http://example.org/alice")
	age := rdf.NewIntegerLiteral(37)
	name := rdf.NewLiteralWithLanguage("Alice", "en")
	anon := rdf.NewBlankNode("b0")
	return Solutions{
		Variables: []string{"person", "age", "name", "friend"},
		Rows: rowsOf(
			evaluator.Binding{"person": alice, "age": age, "name": name, "friend": anon},
			evaluator.Binding{"person": alice, "age": age},
		),
	}
}

func TestWriteSolutionsJSONRoundTrip(t *testing.T) {
	data, err := WriteSolutionsJSON(sampleSolutions())
	if err != nil {
		t.Fatal(err)
	}
	vars, rows, err := ReadSolutionsJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 4 {
		t.Fatalf("vars = %v", vars)
	}
	wantVars, wantRows, _ := collectSolutions(sampleSolutions())
	_ = wantVars
	if !CompareSolutions(wantRows, rows) {
		t.Fatalf("round-trip mismatch: got %v", rows)
	}
}

func TestWriteSolutionsXMLRoundTrip(t *testing.T) {
	data, err := WriteSolutionsXML(sampleSolutions())
	if err != nil {
		t.Fatal(err)
	}
	_, rows, err := ReadSolutionsXML(data)
	if err != nil {
		t.Fatal(err)
	}
	_, wantRows, _ := collectSolutions(sampleSolutions())
	if !CompareSolutions(wantRows, rows) {
		t.Fatalf("round-trip mismatch: got %v", rows)
	}
}

func TestWriteSolutionsTSVRoundTrip(t *testing.T) {
	// No blank node here: TSV canonicalizes blank-node labels on write
	// (blankNodeLabels, which tsv.go applies), so a label
	// a round-tripped row gets back is not guaranteed to equal the
	// original's — exactly the reason CSV/TSV are excluded from spec.md's
	// round-trip requirement for blank-node-bearing data. IRIs and
	// literals round-trip exactly, which this test checks instead.
	alice := rdf.NewNamedNode("http://example.org/alice")
	age := rdf.NewIntegerLiteral(37)
	name := rdf.NewLiteralWithLanguage("Alice", "en")
	s := Solutions{
		Variables: []string{"person", "age", "name"},
		Rows: rowsOf(
			evaluator.Binding{"person": alice, "age": age, "name": name},
		),
	}

	data, err := WriteSolutionsTSV(s)
	if err != nil {
		t.Fatal(err)
	}
	_, rows, err := ReadSolutionsTSV(data)
	if err != nil {
		t.Fatal(err)
	}
	_, wantRows, _ := collectSolutions(s)
	if !CompareSolutions(wantRows, rows) {
		t.Fatalf("round-trip mismatch: got %v, data:\n%s", rows, data)
	}
}

func TestWriteBooleanRoundTrip(t *testing.T) {
	for _, want := range []Boolean{true, false} {
		jsonData, err := WriteBooleanJSON(want)
		if err != nil {
			t.Fatal(err)
		}
		if got, err := ReadBooleanJSON(jsonData); err != nil || got != want {
			t.Fatalf("json: got %v, %v; want %v", got, err, want)
		}
		xmlData, err := WriteBooleanXML(want)
		if err != nil {
			t.Fatal(err)
		}
		if got, err := ReadBooleanXML(xmlData); err != nil || got != want {
			t.Fatalf("xml: got %v, %v; want %v", got, err, want)
		}
	}
}

func TestWriteGraphNQuadsRoundTrip(t *testing.T) {
	alice := rdf.NewNamedNode("http://example.org/alice")
	bob := rdf.NewNamedNode("http://example.org/bob")
	knows := rdf.NewNamedNode("http://example.org/knows")
	named := rdf.NewNamedNode("http://example.org/g1")
	quads := []*rdf.Quad{
		rdf.NewQuad(alice, knows, bob, rdf.NewDefaultGraph()),
		rdf.NewQuad(bob, knows, alice, named),
	}
	g := Graph(func(yield func(*rdf.Quad) error) error {
		for _, q := range quads {
			if err := yield(q); err != nil {
				return err
			}
		}
		return nil
	})

	var buf strings.Builder
	if err := WriteGraphNQuads(&buf, g); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGraphNQuads(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(quads) {
		t.Fatalf("got %d quads, want %d", len(got), len(quads))
	}
	for i, q := range quads {
		if !q.Equals(got[i]) {
			t.Fatalf("quad %d: got %v, want %v", i, got[i], q)
		}
	}
}

func TestWriteSolutionsCSVDoesNotError(t *testing.T) {
	if _, err := WriteSolutionsCSV(sampleSolutions()); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteBooleanCSV(true); err != nil {
		t.Fatal(err)
	}
}

func TestCompareSolutionsIgnoresOrder(t *testing.T) {
	a := rdf.NewNamedNode("http://example.org/a")
	b := rdf.NewNamedNode("http://example.org/b")
	x := []evaluator.Binding{{"v": a}, {"v": b}}
	y := []evaluator.Binding{{"v": b}, {"v": a}}
	if !CompareSolutions(x, y) {
		t.Fatal("expected order-independent equality")
	}
}
