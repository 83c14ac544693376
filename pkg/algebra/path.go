package algebra

import "github.com/quadcore/quadcore/pkg/rdf"

// PropertyPath is a SPARQL 1.1 property path expression. The evaluator
// walks it with a BFS over decoded terms fetched by quad lookups rather than
// compiling it to quad patterns, since paths of unbounded length
// (ZeroOrMore, OneOrMore) have no finite unfolding.
type PropertyPath interface {
	pathNode()
}

// PathPredicate is a single IRI used directly as a path (the base case
// every other path combinator composes).
type PathPredicate struct{ IRI *rdf.NamedNode }

func (*PathPredicate) pathNode() {}

// PathInverse is ^path: matches object-to-subject instead of
// subject-to-object.
type PathInverse struct{ Path PropertyPath }

func (*PathInverse) pathNode() {}

// PathSequence is path1 / path2.
type PathSequence struct{ Left, Right PropertyPath }

func (*PathSequence) pathNode() {}

// PathAlternative is path1 | path2.
type PathAlternative struct{ Left, Right PropertyPath }

func (*PathAlternative) pathNode() {}

// PathZeroOrMore is path*.
type PathZeroOrMore struct{ Path PropertyPath }

func (*PathZeroOrMore) pathNode() {}

// PathOneOrMore is path+.
type PathOneOrMore struct{ Path PropertyPath }

func (*PathOneOrMore) pathNode() {}

// PathZeroOrOne is path?.
type PathZeroOrOne struct{ Path PropertyPath }

func (*PathZeroOrOne) pathNode() {}

// PathNegatedPropertySet is !(iri1|...|irin) or !(^iri1|...), a path that
// matches any single edge whose predicate is not one of the listed IRIs
// (optionally restricted to a direction per entry).
type PathNegatedPropertySet struct {
	Forward  []*rdf.NamedNode
	Inverse  []*rdf.NamedNode
}

func (*PathNegatedPropertySet) pathNode() {}
