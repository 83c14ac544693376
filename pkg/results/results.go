// Package results serializes the evaluator's three output shapes —
// solutions (SELECT), boolean (ASK), and graph (CONSTRUCT/DESCRIBE) — into
// the textual forms SPARQL 1.1 publishes result sets in, generalized from
// the teacher's pkg/server/results onto this module's own rdf.Term and
// evaluator.Binding representation instead of the teacher's string-tagged
// executor.Term. Serializing/parsing Turtle, TriG, RDF-XML and friends is
// still out of scope (pkg/rdf.FormatParser is the boundary for that); this
// package only speaks the SPARQL result formats and a canonical N-Quads
// rendering of a quad stream, neither of which is a general RDF syntax.
package results

import (
	"fmt"
	"strings"

	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// Solutions is the SELECT-shaped result: the query's declared projection
// order plus a lazy row stream. Variables is nil for "project every
// variable the pattern binds"; writers fall back to collecting and sorting the names that
// appear across Rows, as the teacher's formatters already did per-format.
type Solutions struct {
	Variables []string
	Rows      evaluator.RowIter
}

// Boolean is the ASK-shaped result.
type Boolean bool

// Graph is the CONSTRUCT/DESCRIBE-shaped result: a lazy quad stream, pulled
// the same way evaluator.RowIter pulls bindings.
type Graph func(yield func(*rdf.Quad) error) error

// collectSolutions drains s.Rows, materializing every row. Every writer in
// this package buffers the full result before encoding (matching the
// teacher's own json.go/xml.go/csv.go, which all build one in-memory
// struct and marshal it at the end rather than streaming).
func collectSolutions(s Solutions) ([]string, []evaluator.Binding, error) {
	var rows []evaluator.Binding
	if s.Rows != nil {
		if err := s.Rows(func(b evaluator.Binding) error {
			rows = append(rows, b)
			return nil
		}); err != nil {
			return nil, nil, err
		}
	}
	vars := s.Variables
	if vars == nil {
		seen := make(map[string]bool)
		for _, b := range rows {
			for name := range b {
				if !seen[name] {
					seen[name] = true
					vars = append(vars, name)
				}
			}
		}
		sortStrings(vars)
	}
	return vars, rows, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// bindingToString is the canonical order-independent rendering of one
// solution, used both as the "N-Quads-like" canonical solutions form and
// to compare two solution sets irrespective of row order, grounded on the
// teacher's xml.go bindingToString/CompareResults.
func bindingToString(b evaluator.Binding) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sortStrings(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(nTriplesTerm(b[name]))
	}
	return sb.String()
}

// CompareSolutions reports whether expected and actual hold the same set
// of bindings, ignoring row order — the order-independent equality a
// result-format round-trip test needs, since neither SPARQL nor this
// evaluator promises a particular solution order absent ORDER BY.
func CompareSolutions(expected, actual []evaluator.Binding) bool {
	if len(expected) != len(actual) {
		return false
	}
	e := make([]string, len(expected))
	a := make([]string, len(actual))
	for i, b := range expected {
		e[i] = bindingToString(b)
	}
	for i, b := range actual {
		a[i] = bindingToString(b)
	}
	sortStrings(e)
	sortStrings(a)
	for i := range e {
		if e[i] != a[i] {
			return false
		}
	}
	return true
}

// nTriplesTerm renders term the way N-Triples/N-Quads and SPARQL's TSV
// format both do: <iri>, _:label, or a quoted literal with its language
// tag or datatype IRI suffix.
func nTriplesTerm(term rdf.Term) string {
	var sb strings.Builder
	writeNTriplesTerm(&sb, term)
	return sb.String()
}

func writeNTriplesTerm(sb *strings.Builder, term rdf.Term) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		sb.WriteByte('<')
		sb.WriteString(t.IRI)
		sb.WriteByte('>')
	case *rdf.BlankNode:
		sb.WriteString("_:")
		sb.WriteString(t.ID)
	case *rdf.Literal:
		sb.WriteByte('"')
		sb.WriteString(escapeNTriplesString(t.Value))
		sb.WriteByte('"')
		switch {
		case t.Language != "":
			sb.WriteByte('@')
			sb.WriteString(t.Language)
		case t.Datatype != nil && t.Datatype.IRI != rdf.XSDString.IRI:
			sb.WriteString("^^<")
			sb.WriteString(t.Datatype.IRI)
			sb.WriteByte('>')
		}
	case *rdf.QuotedTriple:
		sb.WriteString("<< ")
		writeNTriplesTerm(sb, t.Subject)
		sb.WriteByte(' ')
		writeNTriplesTerm(sb, t.Predicate)
		sb.WriteByte(' ')
		writeNTriplesTerm(sb, t.Object)
		sb.WriteString(" >>")
	default:
		sb.WriteString(term.String())
	}
}

// escapeNTriplesString escapes the characters N-Triples/N-Quads forbid
// unescaped inside a quoted literal.
func escapeNTriplesString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// parseNTriplesTerm parses one nTriplesTerm rendering back into an
// rdf.Term; the minimal reader this package's own round-trip tests need,
// not a general N-Triples/Turtle-family parser (that boundary stays with
// rdf.FormatParser — this only has to understand what writeNTriplesTerm
// above ever emits).
func parseNTriplesTerm(s string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "<<") && strings.HasSuffix(s, ">>"):
		inner := strings.TrimSpace(s[2 : len(s)-2])
		parts, err := splitTermList(inner, 3)
		if err != nil {
			return nil, fmt.Errorf("results: quoted triple: %w", err)
		}
		subj, err := parseNTriplesTerm(parts[0])
		if err != nil {
			return nil, err
		}
		pred, err := parseNTriplesTerm(parts[1])
		if err != nil {
			return nil, err
		}
		obj, err := parseNTriplesTerm(parts[2])
		if err != nil {
			return nil, err
		}
		return rdf.NewQuotedTriple(subj, pred, obj)
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.NewNamedNode(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		return rdf.NewBlankNode(s[2:]), nil
	case strings.HasPrefix(s, "\""):
		return parseNTriplesLiteral(s)
	default:
		return nil, fmt.Errorf("results: cannot parse term %q", s)
	}
}

func parseNTriplesLiteral(s string) (rdf.Term, error) {
	end := -1
	escaped := false
	for i := 1; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '"':
			end = i
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("results: unterminated literal %q", s)
	}
	value := unescapeNTriplesString(s[1:end])
	rest := s[end+1:]
	switch {
	case strings.HasPrefix(rest, "@"):
		return rdf.NewLiteralWithLanguage(value, rest[1:]), nil
	case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(rest[3:len(rest)-1])), nil
	case rest == "":
		return rdf.NewLiteral(value), nil
	default:
		return nil, fmt.Errorf("results: malformed literal suffix %q", rest)
	}
}

func unescapeNTriplesString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// splitTermList splits a space-separated list of n top-level terms,
// respecting quoted-literal and quoted-triple nesting.
func splitTermList(s string, n int) ([]string, error) {
	var parts []string
	depth := 0
	inLiteral := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"' && (i == 0 || s[i-1] != '\\'):
			inLiteral = !inLiteral
		case inLiteral:
		case strings.HasPrefix(s[i:], "<<"):
			depth++
			i++
		case strings.HasPrefix(s[i:], ">>"):
			depth--
			i++
		case s[i] == ' ' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	if len(parts) != n {
		return nil, fmt.Errorf("results: expected %d terms, got %d in %q", n, len(parts), s)
	}
	return parts, nil
}

// blankNodeLabels canonicalizes blank-node identifiers into single-letter
// labels (a, b, ..., z, then b0, b1, ...) in order of first appearance across
// rows, grounded on the teacher's csv.go createBlankNodeMapping — unified
// here instead of the teacher's separate, inconsistent CSV and TSV
// helpers.
func blankNodeLabels(rows []evaluator.Binding, vars []string) map[string]string {
	labels := make(map[string]string)
	counter := 0
	for _, row := range rows {
		for _, name := range vars {
			bn, ok := row[name].(*rdf.BlankNode)
			if !ok {
				continue
			}
			if _, seen := labels[bn.ID]; seen {
				continue
			}
			if counter < 26 {
				labels[bn.ID] = string(rune('a' + counter))
			} else {
				labels[bn.ID] = fmt.Sprintf("b%d", counter-26)
			}
			counter++
		}
	}
	return labels
}
