package results

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// WriteGraphNQuads writes g in the canonical N-Quads-like form the
// evaluator's graph-shaped results (CONSTRUCT/DESCRIBE) use: one quad per
// line, "subject predicate object" for the default graph or "subject
// predicate object graph" for a named one, each terminated with " .\n",
// grounded on the teacher's formatter.go FormatConstructResultNTriples
// generalized from triples to quads and from the teacher's string-tagged
// executor.Term to rdf.Term.
func WriteGraphNQuads(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)
	if g != nil {
		if err := g(func(q *rdf.Quad) error {
			var sb strings.Builder
			writeNTriplesTerm(&sb, q.Subject)
			sb.WriteByte(' ')
			writeNTriplesTerm(&sb, q.Predicate)
			sb.WriteByte(' ')
			writeNTriplesTerm(&sb, q.Object)
			if _, isDefault := q.Graph.(*rdf.DefaultGraph); !isDefault && q.Graph != nil {
				sb.WriteByte(' ')
				writeNTriplesTerm(&sb, q.Graph)
			}
			sb.WriteString(" .\n")
			_, err := bw.WriteString(sb.String())
			return err
		}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadGraphNQuads parses the form WriteGraphNQuads produces back into a
// quad slice, for this package's own round-trip tests; not a general
// N-Quads parser (see parseNTriplesTerm's doc comment) since it only has to
// understand terms this package itself wrote, including the relaxed
// "graph field omitted means the default graph" shorthand WriteGraphNQuads
// uses in place of an explicit DefaultGraph token.
func ReadGraphNQuads(r io.Reader) ([]*rdf.Quad, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var quads []*rdf.Quad
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, " .") {
			return nil, fmt.Errorf("results: malformed N-Quads line %q", line)
		}
		line = strings.TrimSuffix(line, " .")
		var parts []string
		var err error
		graph := rdf.Term(rdf.NewDefaultGraph())
		parts, err = splitTermList(line, 3)
		if err != nil {
			parts, err = splitTermList(line, 4)
			if err != nil {
				return nil, fmt.Errorf("results: malformed N-Quads line %q: %w", line, err)
			}
			graph, err = parseNTriplesTerm(parts[3])
			if err != nil {
				return nil, err
			}
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
		quads = append(quads, rdf.NewQuad(subj, pred, obj, graph))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return quads, nil
}
