package results

import (
	"encoding/xml"
	"strings"

	"github.com/quadcore/quadcore/pkg/evaluator"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// SPARQL Query Results XML Format.
// https://www.w3.org/TR/rdf-sparql-XMLres/

type xmlResults struct {
	XMLName xml.Name       `xml:"sparql"`
	Head    xmlHead        `xml:"head"`
	Results *xmlResultsSet `xml:"results"`
	Boolean *bool          `xml:"boolean"`
}

type xmlHead struct {
	Variables []xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Name string `xml:"name,attr"`
}

type xmlResultsSet struct {
	Results []xmlResult `xml:"result"`
}

type xmlResult struct {
	Bindings []xmlBinding `xml:"binding"`
}

type xmlBinding struct {
	Name    string      `xml:"name,attr"`
	URI     *string     `xml:"uri"`
	Literal *xmlLiteral `xml:"literal"`
	BNode   *string     `xml:"bnode"`
}

type xmlLiteral struct {
	Value    string `xml:",chardata"`
	Lang     string `xml:"lang,attr,omitempty"`
	Datatype string `xml:"datatype,attr,omitempty"`
}

// WriteSolutionsXML encodes s as a SPARQL XML results document. Built by
// hand-assembling the string, like the teacher's xml.go
// FormatSelectResultsXML, rather than through encoding/xml.Marshal, since
// the SPARQL XML namespace declaration belongs on the root element only
// and Go's xml.Marshal has no clean way to pin that without a second,
// namespace-only struct tier.
func WriteSolutionsXML(s Solutions) ([]byte, error) {
	vars, rows, err := collectSolutions(s)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\"?>\n<sparql xmlns=\"http://www.w3.org/2005/sparql-results#\">\n  <head>\n")
	for _, v := range vars {
		sb.WriteString("    <variable name=\"" + xmlEscape(v) + "\"/>\n")
	}
	sb.WriteString("  </head>\n  <results>\n")
	for _, row := range rows {
		sb.WriteString("    <result>\n")
		for name, term := range row {
			sb.WriteString("      <binding name=\"" + xmlEscape(name) + "\">\n")
			sb.WriteString(termToXML(term, "        "))
			sb.WriteString("      </binding>\n")
		}
		sb.WriteString("    </result>\n")
	}
	sb.WriteString("  </results>\n</sparql>\n")
	return []byte(sb.String()), nil
}

// WriteBooleanXML encodes b as a SPARQL XML ASK result.
func WriteBooleanXML(b Boolean) ([]byte, error) {
	boolStr := "false"
	if b {
		boolStr = "true"
	}
	doc := "<?xml version=\"1.0\"?>\n<sparql xmlns=\"http://www.w3.org/2005/sparql-results#\">\n  <head/>\n  <boolean>" + boolStr + "</boolean>\n</sparql>\n"
	return []byte(doc), nil
}

// ReadSolutionsXML parses a SPARQL XML results document back into a
// variable list and binding rows, using encoding/xml.Decoder (the teacher's
// ParseXMLResults already did, since reading an externally-produced
// document is a case where Go's generic XML decoder is the right tool,
// unlike writing where the namespace placement above argues against it).
func ReadSolutionsXML(data []byte) ([]string, []evaluator.Binding, error) {
	var doc xmlResults
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Boolean != nil {
		return nil, nil, errNotBoolean
	}
	vars := make([]string, len(doc.Head.Variables))
	for i, v := range doc.Head.Variables {
		vars[i] = v.Name
	}
	var rows []evaluator.Binding
	if doc.Results != nil {
		for _, r := range doc.Results.Results {
			row := make(evaluator.Binding, len(r.Bindings))
			for _, b := range r.Bindings {
				term, err := xmlBindingToTerm(b)
				if err != nil {
					return nil, nil, err
				}
				row[b.Name] = term
			}
			rows = append(rows, row)
		}
	}
	return vars, rows, nil
}

// ReadBooleanXML parses a SPARQL XML ASK result.
func ReadBooleanXML(data []byte) (Boolean, error) {
	var doc xmlResults
	if err := xml.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	if doc.Boolean == nil {
		return false, errNotBoolean
	}
	return Boolean(*doc.Boolean), nil
}

func xmlBindingToTerm(b xmlBinding) (rdf.Term, error) {
	switch {
	case b.URI != nil:
		return rdf.NewNamedNode(*b.URI), nil
	case b.BNode != nil:
		return rdf.NewBlankNode(*b.BNode), nil
	case b.Literal != nil:
		switch {
		case b.Literal.Lang != "":
			return rdf.NewLiteralWithLanguage(b.Literal.Value, b.Literal.Lang), nil
		case b.Literal.Datatype != "":
			return rdf.NewLiteralWithDatatype(b.Literal.Value, rdf.NewNamedNode(b.Literal.Datatype)), nil
		default:
			return rdf.NewLiteral(b.Literal.Value), nil
		}
	default:
		return nil, errUnknownTermType
	}
}

func termToXML(term rdf.Term, indent string) string {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return indent + "<uri>" + xmlEscape(t.IRI) + "</uri>\n"
	case *rdf.BlankNode:
		return indent + "<bnode>" + xmlEscape(t.ID) + "</bnode>\n"
	case *rdf.Literal:
		switch {
		case t.Language != "":
			return indent + "<literal xml:lang=\"" + t.Language + "\">" + xmlEscape(t.Value) + "</literal>\n"
		case t.Datatype != nil && t.Datatype.IRI != rdf.XSDString.IRI:
			return indent + "<literal datatype=\"" + xmlEscape(t.Datatype.IRI) + "\">" + xmlEscape(t.Value) + "</literal>\n"
		default:
			return indent + "<literal>" + xmlEscape(t.Value) + "</literal>\n"
		}
	default:
		return indent + "<literal>" + xmlEscape(term.String()) + "</literal>\n"
	}
}

func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
