package results

import (
	"strings"

	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// SPARQL 1.1 Query Results TSV Format.
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// WriteSolutionsTSV encodes s as SPARQL TSV, grounded on the teacher's
// tsv.go FormatSelectResultsTSV.
func WriteSolutionsTSV(s Solutions) ([]byte, error) {
	vars, rows, err := collectSolutions(s)
	if err != nil {
		return nil, err
	}
	labels := blankNodeLabels(rows, vars)
	var sb strings.Builder
	for i, name := range vars {
		if i > 0 {
			sb.WriteByte('\t')
		}
		sb.WriteByte('?')
		sb.WriteString(name)
	}
	sb.WriteByte('\n')
	for _, row := range rows {
		for i, name := range vars {
			if i > 0 {
				sb.WriteByte('\t')
			}
			if term, ok := row[name]; ok {
				sb.WriteString(termToTSVValue(term, labels))
			}
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

// WriteBooleanTSV encodes b as SPARQL TSV.
func WriteBooleanTSV(b Boolean) ([]byte, error) {
	if b {
		return []byte("?result\ntrue\n"), nil
	}
	return []byte("?result\nfalse\n"), nil
}

// ReadSolutionsTSV parses the form WriteSolutionsTSV produces, the reader
// half of TSV's round-trip pair: unlike CSV, TSV's term syntax (<iri>,
// _:label, quoted literal with @lang/^^<dt> suffix, bare numerics) keeps
// datatypes and language tags, so a faithful reader is possible. The one
// loss is that a bare xsd:double written without an exponent is read back
// as xsd:decimal.
func ReadSolutionsTSV(data []byte) ([]string, []evaluator.Binding, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return nil, nil, nil
	}
	headerFields := strings.Split(lines[0], "\t")
	vars := make([]string, len(headerFields))
	for i, f := range headerFields {
		vars[i] = strings.TrimPrefix(f, "?")
	}
	var rows []evaluator.Binding
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		row := make(evaluator.Binding, len(fields))
		for i, f := range fields {
			if f == "" || i >= len(vars) {
				continue
			}
			term, err := parseTSVValue(f)
			if err != nil {
				return nil, nil, err
			}
			row[vars[i]] = term
		}
		rows = append(rows, row)
	}
	return vars, rows, nil
}

func termToTSVValue(term rdf.Term, labels map[string]string) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return "<" + t.IRI + ">"
	case *rdf.BlankNode:
		if label, ok := labels[t.ID]; ok {
			return "_:" + label
		}
		return "_:" + t.ID
	case *rdf.Literal:
		switch {
		case t.Language != "":
			return "\"" + escapeTSVString(t.Value) + "\"@" + t.Language
		case t.Datatype != nil && isBareNumericTSV(t.Datatype.IRI):
			return t.Value
		case t.Datatype != nil && t.Datatype.IRI != rdf.XSDString.IRI:
			return "\"" + escapeTSVString(t.Value) + "\"^^<" + t.Datatype.IRI + ">"
		default:
			return "\"" + escapeTSVString(t.Value) + "\""
		}
	default:
		return term.String()
	}
}

// isBareNumericTSV reports whether datatype is one of the three numeric
// types the TSV format's published examples write without quotes or a
// datatype suffix.
func isBareNumericTSV(datatype string) bool {
	return datatype == rdf.XSDInteger.IRI || datatype == rdf.XSDDecimal.IRI || datatype == rdf.XSDDouble.IRI
}

func parseTSVValue(s string) (rdf.Term, error) {
	switch {
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.NewNamedNode(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		return rdf.NewBlankNode(s[2:]), nil
	case strings.HasPrefix(s, "\""):
		return parseNTriplesLiteral(s)
	default:
		// A bare numeric literal, written without quotes or a datatype
		// suffix; its own lexical form is the only guide to which xsd
		// type it came from, so reuse the same heuristic SPARQL's own
		// grammar uses: an exponent means double, otherwise a dot means
		// decimal.
		dt := rdf.XSDInteger
		if strings.ContainsAny(s, "eE") {
			dt = rdf.XSDDouble
		} else if strings.Contains(s, ".") {
			dt = rdf.XSDDecimal
		}
		return rdf.NewLiteralWithDatatype(s, dt), nil
	}
}

func escapeTSVString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
