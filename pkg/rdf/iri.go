package rdf

import (
	"fmt"
	"net/url"
)

// Iri wraps a parsed IRI reference (ParseIri also accepts relative ones)
// and resolves relative references against it (RFC 3986 §5). No example repo in the retrieval pack pulls in a
// dedicated IRI/URI-template library for this; net/url already implements
// RFC 3986 reference resolution (url.URL.ResolveReference), so reaching for
// a third-party IRI crate-equivalent would just wrap the same stdlib logic.
type Iri struct {
	raw string
	u   *url.URL
}

// IriParseError reports a malformed IRI, surfaced to callers as the
// InvalidIri error kind (§7).
type IriParseError struct {
	Input string
	Cause error
}

func (e *IriParseError) Error() string {
	return fmt.Sprintf("rdf: invalid IRI %q: %v", e.Input, e.Cause)
}
func (e *IriParseError) Unwrap() error { return e.Cause }

// ParseIri parses an absolute or relative IRI reference.
func ParseIri(iri string) (*Iri, error) {
	u, err := url.Parse(iri)
	if err != nil {
		return nil, &IriParseError{Input: iri, Cause: err}
	}
	return &Iri{raw: iri, u: u}, nil
}

// ParseAbsoluteIri parses iri and requires it to be absolute (have a scheme).
func ParseAbsoluteIri(iri string) (*Iri, error) {
	i, err := ParseIri(iri)
	if err != nil {
		return nil, err
	}
	if !i.u.IsAbs() {
		return nil, &IriParseError{Input: iri, Cause: fmt.Errorf("not an absolute IRI")}
	}
	return i, nil
}

// Resolve resolves a relative IRI reference against this (base) IRI,
// following RFC 3986's reference-resolution algorithm.
func (i *Iri) Resolve(reference string) (*Iri, error) {
	ref, err := url.Parse(reference)
	if err != nil {
		return nil, &IriParseError{Input: reference, Cause: err}
	}
	resolved := i.u.ResolveReference(ref)
	return &Iri{raw: resolved.String(), u: resolved}, nil
}

// String returns the IRI's lexical form.
func (i *Iri) String() string { return i.raw }

// NamedNode converts the resolved IRI into an rdf.NamedNode term.
func (i *Iri) NamedNode() *NamedNode { return NewNamedNode(i.raw) }

// ResolveIri is a convenience for the common "resolve this lexical form
// against this optional base" pattern used when converting a parsed algebra
// constant or a LOAD source into an absolute term.
func ResolveIri(base *Iri, lexical string) (*NamedNode, error) {
	if base == nil {
		abs, err := ParseAbsoluteIri(lexical)
		if err != nil {
			return nil, err
		}
		return abs.NamedNode(), nil
	}
	resolved, err := base.Resolve(lexical)
	if err != nil {
		return nil, err
	}
	return resolved.NamedNode(), nil
}
