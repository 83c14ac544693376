package results

import (
	"encoding/csv"
	"strings"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// SPARQL 1.1 Query Results CSV Format.
// https://www.w3.org/TR/sparql11-results-csv-tsv/
//
// CSV drops datatype information (a language tag is written as an "@tag"
// suffix on the value), so unlike JSON/XML/TSV it is write-only here:
// spec.md's round-trip requirement names XML/JSON/TSV specifically, not
// CSV, for exactly this reason.

// WriteSolutionsCSV encodes s as SPARQL CSV, grounded on the teacher's
// csv.go FormatSelectResultsCSV.
func WriteSolutionsCSV(s Solutions) ([]byte, error) {
	vars, rows, err := collectSolutions(s)
	if err != nil {
		return nil, err
	}
	labels := blankNodeLabels(rows, vars)
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(vars); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(vars))
		for i, name := range vars {
			if term, ok := row[name]; ok {
				record[i] = termToCSVValue(term, labels)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// WriteBooleanCSV encodes b as SPARQL CSV.
func WriteBooleanCSV(b Boolean) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"result"}); err != nil {
		return nil, err
	}
	value := "false"
	if b {
		value = "true"
	}
	if err := w.Write([]string{value}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func termToCSVValue(term rdf.Term, labels map[string]string) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return t.IRI
	case *rdf.BlankNode:
		if label, ok := labels[t.ID]; ok {
			return "_:" + label
		}
		return "_:" + t.ID
	case *rdf.Literal:
		if t.Language != "" {
			return t.Value + "@" + t.Language
		}
		if t.Datatype != nil && t.Datatype.IRI == rdf.XSDDouble.IRI {
			return formatCSVDouble(t.Value)
		}
		return t.Value
	default:
		return term.String()
	}
}

// formatCSVDouble renders an xsd:double lexical form with uppercase E
// notation and an explicit decimal point, matching the W3C CSV test
// suite's expected output (e.g. "1.0E6" rather than Go's "1e+06").
func formatCSVDouble(value string) string {
	value = strings.ReplaceAll(value, "e+", "E")
	value = strings.ReplaceAll(value, "e-", "E-")
	value = strings.ReplaceAll(value, "e", "E")
	if !strings.Contains(value, "E") {
		return value
	}
	parts := strings.SplitN(value, "E", 2)
	mantissa, exponent := parts[0], parts[1]
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	negative := strings.HasPrefix(exponent, "-")
	exponent = strings.TrimPrefix(exponent, "-")
	exponent = strings.TrimLeft(exponent, "0")
	if exponent == "" {
		exponent = "0"
	}
	if negative {
		exponent = "-" + exponent
	}
	return mantissa + "E" + exponent
}
