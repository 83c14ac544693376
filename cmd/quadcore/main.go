// Command quadcore is a small driver over the storage/dataset/optimizer/
// evaluator/update/results pipeline, grounded on the teacher's cmd/trigo
// demo in shape (subcommand dispatch, FOAF-style sample data, an ASCII
// results table) but adapted to this core's actual input boundary: since
// SPARQL concrete-syntax parsing is out of scope here (a parser is an
// external collaborator that targets pkg/algebra directly), this command
// builds algebra.Plan/algebra.Update trees by hand instead of parsing a
// query string.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/quadcore/quadcore/pkg/algebra"
	"github.com/quadcore/quadcore/pkg/dataset"
	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/optimizer"
	"github.com/quadcore/quadcore/pkg/rdf"
	"github.com/quadcore/quadcore/pkg/results"
	"github.com/quadcore/quadcore/pkg/storage"
	"github.com/quadcore/quadcore/pkg/update"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: quadcore <command>")
		fmt.Println("Commands:")
		fmt.Println("  demo  - load sample data and run a select/ask/construct pipeline")
		fmt.Println("  stats - load sample data and print store statistics")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo()
	case "stats":
		runStats()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

// FOAF-style sample data: alice/bob/carol connected by foaf:knows, each
// with a foaf:name and foaf:age, plus a couple of named-graph quads —
// the same shape the teacher's runDemo seeds, generalized to quads.
func sampleData() (alice, bob, carol, knows, name, age *rdf.NamedNode, quads []*rdf.Quad) {
	alice = rdf.NewNamedNode("http://example.org/alice")
	bob = rdf.NewNamedNode("http://example.org/bob")
	carol = rdf.NewNamedNode("http://example.org/carol")
	knows = rdf.NewNamedNode("http://xmlns.com/foaf/0.1/knows")
	name = rdf.NewNamedNode("http://xmlns.com/foaf/0.1/name")
	age = rdf.NewNamedNode("http://xmlns.com/foaf/0.1/age")
	graph1 := rdf.NewNamedNode("http://example.org/graph1")
	dg := rdf.NewDefaultGraph()

	quads = []*rdf.Quad{
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice"), dg),
		rdf.NewQuad(alice, age, rdf.NewIntegerLiteral(30), dg),
		rdf.NewQuad(alice, knows, bob, dg),
		rdf.NewQuad(bob, name, rdf.NewLiteral("Bob"), dg),
		rdf.NewQuad(bob, age, rdf.NewIntegerLiteral(25), dg),
		rdf.NewQuad(bob, knows, carol, dg),
		rdf.NewQuad(carol, name, rdf.NewLiteral("Carol"), dg),
		rdf.NewQuad(carol, age, rdf.NewIntegerLiteral(28), dg),
		rdf.NewQuad(alice, name, rdf.NewLiteral("Alice in Graph1"), graph1),
	}
	return
}

func openStore() *storage.Store {
	store, err := storage.Open("", storage.WithInMemory())
	if err != nil {
		log.Fatalf("storage.Open: %v", err)
	}
	return store
}

func loadSampleData(store *storage.Store, quads []*rdf.Quad) {
	ex := update.New(store, nil)
	op := &algebra.InsertData{Data: algebra.QuadData{Quads: quads}}
	if err := ex.Execute([]algebra.Update{op}); err != nil {
		log.Fatalf("loading sample data: %v", err)
	}
}

func runDemo() {
	fmt.Println("=== quadcore pipeline demo ===")
	fmt.Println()

	store := openStore()
	defer store.Close()

	alice, _, _, knows, name, age, quads := sampleData()
	loadSampleData(store, quads)
	fmt.Printf("Loaded %d sample quads\n\n", len(quads))

	stats, err := store.Statistics()
	if err != nil {
		log.Fatalf("store.Statistics: %v", err)
	}

	fmt.Println("--- SELECT ?person ?name ?age WHERE { ?person foaf:name ?name ; foaf:age ?age } ---")
	runSelectDemo(store, &stats, name, age)

	fmt.Println()
	fmt.Println("--- ASK { ?s foaf:knows ?o } ---")
	runAskDemo(store, knows)

	fmt.Println()
	fmt.Println("--- DESCRIBE <http://example.org/alice> (as a graph result) ---")
	runGraphDemo(store, alice)

	fmt.Println("\n=== Demo complete ===")
}

func runSelectDemo(store *storage.Store, stats *storage.Statistics, name, age *rdf.NamedNode) {
	ds := dataset.Open(store)
	defer ds.Close()

	person := algebra.TermOrVariable{Variable: &algebra.Variable{Name: "person"}}
	nameVar := algebra.TermOrVariable{Variable: &algebra.Variable{Name: "name"}}
	ageVar := algebra.TermOrVariable{Variable: &algebra.Variable{Name: "age"}}
	dg := algebra.TermOrVariable{Term: rdf.NewDefaultGraph()}

	var plan algebra.Plan = &algebra.Join{
		Left: &algebra.QuadPattern{
			Subject: person, Predicate: algebra.TermOrVariable{Term: name}, Object: nameVar, Graph: dg,
		},
		Right: &algebra.QuadPattern{
			Subject: person, Predicate: algebra.TermOrVariable{Term: age}, Object: ageVar, Graph: dg,
		},
	}
	plan = &algebra.Project{
		Input:     plan,
		Variables: []*algebra.Variable{{Name: "person"}, {Name: "name"}, {Name: "age"}},
	}

	plan = optimizer.New(stats).Optimize(plan)

	ev := evaluator.New(ds)
	rows, err := ev.EvalPlan(plan)
	if err != nil {
		log.Fatalf("EvalPlan: %v", err)
	}

	solutions := results.Solutions{Variables: []string{"person", "name", "age"}, Rows: rows}
	json, err := results.WriteSolutionsJSON(solutions)
	if err != nil {
		log.Fatalf("WriteSolutionsJSON: %v", err)
	}
	fmt.Println(string(json))
}

func runAskDemo(store *storage.Store, knows *rdf.NamedNode) {
	ds := dataset.Open(store)
	defer ds.Close()

	s := algebra.TermOrVariable{Variable: &algebra.Variable{Name: "s"}}
	o := algebra.TermOrVariable{Variable: &algebra.Variable{Name: "o"}}
	plan := &algebra.QuadPattern{
		Subject: s, Predicate: algebra.TermOrVariable{Term: knows}, Object: o,
		Graph: algebra.TermOrVariable{Term: rdf.NewDefaultGraph()},
	}

	ev := evaluator.New(ds)
	rows, err := ev.EvalPlan(plan)
	if err != nil {
		log.Fatalf("EvalPlan: %v", err)
	}

	found := false
	if err := rows(func(evaluator.Binding) error {
		found = true
		return errStopIteration
	}); err != nil && err != errStopIteration {
		log.Fatalf("ASK evaluation: %v", err)
	}

	out, err := results.WriteBooleanJSON(results.Boolean(found))
	if err != nil {
		log.Fatalf("WriteBooleanJSON: %v", err)
	}
	fmt.Println(string(out))
}

// errStopIteration short-circuits a RowIter once the ASK demo has its
// answer; any non-nil error a yield func returns stops iteration the same
// way the evaluator's own operators treat a sentinel stop error.
var errStopIteration = fmt.Errorf("quadcore: stop")

func runGraphDemo(store *storage.Store, alice *rdf.NamedNode) {
	ds := dataset.Open(store)
	defer ds.Close()

	graph := results.Graph(func(yield func(*rdf.Quad) error) error {
		quads, err := ds.QuadsForPattern(dataset.Pattern{Subject: alice})
		if err != nil {
			return err
		}
		return quads(yield)
	})

	if err := results.WriteGraphNQuads(os.Stdout, graph); err != nil {
		log.Fatalf("WriteGraphNQuads: %v", err)
	}
}

func runStats() {
	store := openStore()
	defer store.Close()

	_, _, _, _, _, _, quads := sampleData()
	loadSampleData(store, quads)

	stats, err := store.Statistics()
	if err != nil {
		log.Fatalf("store.Statistics: %v", err)
	}
	fmt.Printf("Total quads:  %d\n", stats.TotalQuads)
	fmt.Printf("Named graphs: %d\n", stats.NamedGraphs)
}
