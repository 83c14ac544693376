package results

import (
	"encoding/json"

	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// SPARQL 1.1 Query Results JSON Format.
// https://www.w3.org/TR/sparql11-results-json/

type jsonResults struct {
	Head    jsonHead      `json:"head"`
	Results *jsonBindings `json:"results,omitempty"`
	Boolean *bool         `json:"boolean,omitempty"`
}

type jsonHead struct {
	Vars []string `json:"vars"`
}

type jsonBindings struct {
	Bindings []map[string]jsonValue `json:"bindings"`
}

type jsonValue struct {
	Type     string  `json:"type"`
	Value    string  `json:"value"`
	Datatype *string `json:"datatype,omitempty"`
	XMLLang  *string `json:"xml:lang,omitempty"`
}

// WriteSolutionsJSON encodes s as a SPARQL JSON results document, grounded
// on the teacher's json.go FormatSelectResultsJSON adapted onto
// evaluator.Binding/rdf.Term.
func WriteSolutionsJSON(s Solutions) ([]byte, error) {
	vars, rows, err := collectSolutions(s)
	if err != nil {
		return nil, err
	}
	bindings := make([]map[string]jsonValue, 0, len(rows))
	for _, row := range rows {
		binding := make(map[string]jsonValue, len(row))
		for name, term := range row {
			binding[name] = termToJSONValue(term)
		}
		bindings = append(bindings, binding)
	}
	doc := jsonResults{
		Head:    jsonHead{Vars: vars},
		Results: &jsonBindings{Bindings: bindings},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteBooleanJSON encodes b as a SPARQL JSON ASK result.
func WriteBooleanJSON(b Boolean) ([]byte, error) {
	value := bool(b)
	doc := jsonResults{Head: jsonHead{Vars: []string{}}, Boolean: &value}
	return json.MarshalIndent(doc, "", "  ")
}

// ReadSolutionsJSON parses a SPARQL JSON results document back into a
// variable list and binding rows, the reader half of this format's
// round-trip pair.
func ReadSolutionsJSON(data []byte) ([]string, []evaluator.Binding, error) {
	var doc jsonResults
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	var rows []evaluator.Binding
	if doc.Results != nil {
		for _, raw := range doc.Results.Bindings {
			row := make(evaluator.Binding, len(raw))
			for name, v := range raw {
				term, err := jsonValueToTerm(v)
				if err != nil {
					return nil, nil, err
				}
				row[name] = term
			}
			rows = append(rows, row)
		}
	}
	return doc.Head.Vars, rows, nil
}

// ReadBooleanJSON parses a SPARQL JSON ASK result.
func ReadBooleanJSON(data []byte) (Boolean, error) {
	var doc jsonResults
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	if doc.Boolean == nil {
		return false, errNotBoolean
	}
	return Boolean(*doc.Boolean), nil
}

func termToJSONValue(term rdf.Term) jsonValue {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return jsonValue{Type: "uri", Value: t.IRI}
	case *rdf.BlankNode:
		return jsonValue{Type: "bnode", Value: t.ID}
	case *rdf.Literal:
		v := jsonValue{Type: "literal", Value: t.Value}
		switch {
		case t.Language != "":
			lang := t.Language
			v.XMLLang = &lang
		case t.Datatype != nil && t.Datatype.IRI != rdf.XSDString.IRI:
			dt := t.Datatype.IRI
			v.Datatype = &dt
		}
		return v
	default:
		return jsonValue{Type: "literal", Value: term.String()}
	}
}

func jsonValueToTerm(v jsonValue) (rdf.Term, error) {
	switch v.Type {
	case "uri":
		return rdf.NewNamedNode(v.Value), nil
	case "bnode":
		return rdf.NewBlankNode(v.Value), nil
	case "literal", "typed-literal":
		switch {
		case v.XMLLang != nil:
			return rdf.NewLiteralWithLanguage(v.Value, *v.XMLLang), nil
		case v.Datatype != nil:
			return rdf.NewLiteralWithDatatype(v.Value, rdf.NewNamedNode(*v.Datatype)), nil
		default:
			return rdf.NewLiteral(v.Value), nil
		}
	default:
		return nil, errUnknownTermType
	}
}
