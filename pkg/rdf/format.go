package rdf

import "io"

// Format names a concrete RDF text syntax. Parsing and serializing these
// formats is outside this module's scope (§1); Format only labels which
// external collaborator a FormatParser implementation, a LOAD source, or a
// SERVICE response claims to speak.
type Format int

const (
	FormatTurtle Format = iota
	FormatTriG
	FormatNTriples
	FormatNQuads
	FormatRdfXml
	FormatJsonLd
	FormatN3
)

func (f Format) String() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatTriG:
		return "application/trig"
	case FormatNTriples:
		return "application/n-triples"
	case FormatNQuads:
		return "application/n-quads"
	case FormatRdfXml:
		return "application/rdf+xml"
	case FormatJsonLd:
		return "application/ld+json"
	case FormatN3:
		return "text/n3"
	default:
		return "application/octet-stream"
	}
}

// FormatFromContentType maps a MIME content type (parameters such as
// ";charset=utf-8" are ignored) to a Format, for LOAD's media-type sniffing.
func FormatFromContentType(contentType string) (Format, bool) {
	ct := contentType
	for i, r := range contentType {
		if r == ';' {
			ct = contentType[:i]
			break
		}
	}
	switch ct {
	case "text/turtle", "application/x-turtle":
		return FormatTurtle, true
	case "application/trig", "application/x-trig":
		return FormatTriG, true
	case "application/n-triples", "text/plain":
		return FormatNTriples, true
	case "application/n-quads":
		return FormatNQuads, true
	case "application/rdf+xml":
		return FormatRdfXml, true
	case "application/ld+json":
		return FormatJsonLd, true
	case "text/n3":
		return FormatN3, true
	default:
		return 0, false
	}
}

// DocumentLoader fetches an externally-referenced document (e.g. a JSON-LD
// @context or an xsd:import target) during parsing. An external collaborator
// injects the implementation; the core only depends on this contract.
type DocumentLoader interface {
	LoadDocument(iri string) (io.ReadCloser, string, error)
}

// FormatParser is the external collaborator contract for turning a byte
// stream plus a declared Format into a quad stream. The core never parses
// RDF text itself: LOAD and test fixtures both go through an injected
// implementation of this interface.
type FormatParser interface {
	// ParseQuads parses r as format, resolving relative IRIs against base
	// (nil means no base IRI is available) and invoking loader for any
	// referenced external document. It streams quads to sink; sink returning
	// an error aborts parsing and is returned unwrapped.
	ParseQuads(r io.Reader, format Format, base *Iri, loader DocumentLoader, sink func(*Quad) error) error
}
