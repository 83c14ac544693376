package algebra

import "github.com/quadcore/quadcore/pkg/rdf"

// Update is one SPARQL 1.1 Update operation. A request is a sequence of
// these, executed left to right inside a single storage-writer
// transaction: earlier operations in the sequence are visible to later
// ones, but none of them are visible outside the transaction until the
// whole sequence commits, and an error at any operation rolls back every
// operation that ran before it.
type Update interface {
	updateNode()
}

// GraphOrDefault names either a specific named graph or the default
// graph in an update operation's target.
type GraphOrDefault struct {
	Graph     *rdf.NamedNode // nil means the default graph
	IsDefault bool
}

// QuadData is a fixed block of quads, as produced by an INSERT DATA /
// DELETE DATA block (no variables permitted there, per spec).
type QuadData struct{ Quads []*rdf.Quad }

// InsertData adds QuadData's quads verbatim.
type InsertData struct{ Data QuadData }

func (*InsertData) updateNode() {}

// DeleteData removes QuadData's quads verbatim; quads not present are
// silently ignored, per spec.
type DeleteData struct{ Data QuadData }

func (*DeleteData) updateNode() {}

// QuadPatternTemplate is a quad template used in a DELETE/INSERT clause:
// like algebra.QuadPattern, but only ever read for substitution, never
// matched against storage.
type QuadPatternTemplate struct {
	Subject   TermOrVariable
	Predicate TermOrVariable
	Object    TermOrVariable
	Graph     TermOrVariable
}

// DeleteInsert is the general DELETE {...} INSERT {...} WHERE {...} form
// (also covers the single-clause DELETE WHERE shorthand, represented as
// DeleteInsert with a nil Insert template and Delete equal to Where's own
// pattern). USING / USING NAMED restrict Where's dataset the same way a
// query's FROM / FROM NAMED would.
type DeleteInsert struct {
	Delete      []QuadPatternTemplate
	Insert      []QuadPatternTemplate
	Using       []rdf.Term // FROM-equivalent default-graph scoping
	UsingNamed  []rdf.Term
	Where       Plan
}

func (*DeleteInsert) updateNode() {}

// Load reads a document at Source, parses it as the format its IRI or
// content-type implies (parsing is this module's declared out-of-scope
// boundary; pkg/update's Load handler delegates to an injected loader
// function so the engine core never itself speaks Turtle), and inserts
// the resulting quads into Into (or the default graph if Into is the
// zero value). Silent suppresses a fetch/parse failure as a no-op rather
// than aborting the request.
type Load struct {
	Source *rdf.NamedNode
	Into   GraphOrDefault
	Silent bool
}

func (*Load) updateNode() {}

// Clear removes every quad from Target (a specific graph, DEFAULT, NAMED
// for all named graphs, or ALL for every graph including default).
type Clear struct {
	Target GraphTarget
	Silent bool
}

func (*Clear) updateNode() {}

// GraphTarget is Clear/Drop's target selector.
type GraphTarget struct {
	Graph   *rdf.NamedNode // set when Kind == GraphTargetNamed
	Kind    GraphTargetKind
}

// GraphTargetKind enumerates the target forms of CLEAR, DROP, COPY, MOVE
// and ADD.
type GraphTargetKind int

const (
	GraphTargetNamed GraphTargetKind = iota
	GraphTargetDefault
	GraphTargetNamedAll
	GraphTargetAll
)

// Create declares a new empty named graph; with Silent unset, creating a
// graph that already exists is an error (oxigraph, and this core, treat
// every named graph as implicitly existing the moment it holds a quad, so
// Create against an already-populated name is the only way this can
// actually fail).
type Create struct {
	Graph  *rdf.NamedNode
	Silent bool
}

func (*Create) updateNode() {}

// Drop removes Target's graph(s) entirely (distinct from Clear only in
// that Drop also forgets the named graph existed; Clear leaves an empty
// graph registered).
type Drop struct {
	Target GraphTarget
	Silent bool
}

func (*Drop) updateNode() {}

// Copy replaces To's content with a copy of From's (From is left
// unchanged); To is truncated first.
type Copy struct {
	From, To GraphTarget
	Silent   bool
}

func (*Copy) updateNode() {}

// Move is Copy followed by dropping From.
type Move struct {
	From, To GraphTarget
	Silent   bool
}

func (*Move) updateNode() {}

// Add inserts a copy of From's quads into To without truncating To first
// (the one graph-management operation that is additive rather than
// replacing).
type Add struct {
	From, To GraphTarget
	Silent   bool
}

func (*Add) updateNode() {}
