package update

import "github.com/quadcore/quadcore/pkg/rdf"

// Loader fetches and parses the document at source for LOAD, yielding the
// parsed quads; the executor replaces each quad's graph with the LOAD's
// target graph before inserting it. Parsing is this module's declared
// out-of-scope boundary (§ non-goals): the executor never speaks
// Turtle/RDF-XML/JSON-LD itself, it only consumes quads a Loader hands it,
// the way the teacher's HTTP layer is injected rather than hand-rolled.
type Loader interface {
	Load(source *rdf.NamedNode) (func(yield func(*rdf.Quad) error) error, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(source *rdf.NamedNode) (func(yield func(*rdf.Quad) error) error, error)

func (f LoaderFunc) Load(source *rdf.NamedNode) (func(yield func(*rdf.Quad) error) error, error) {
	return f(source)
}
