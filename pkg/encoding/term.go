package encoding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// EncodedTermSize is the fixed width of an encoded term: one tag byte plus
// 16 bytes of payload (either an inlined value or a dictionary id).
const EncodedTermSize = 17

// EncodedTerm is the fixed-size identifier the six quad indexes sort and
// compare on. It is never interpreted without Decode; two EncodedTerms with
// the same bytes always denote the same RDF term (term-equality), but two
// term-equal RDF terms always map to the same EncodedTerm bytes too, since
// encoding is deterministic.
type EncodedTerm [EncodedTermSize]byte

// tag identifies which of the encoding disciplines in §4.1 an EncodedTerm
// uses. It is distinct from rdf.TermType: several tags (e.g. inline integer
// vs interned named node) share an rdf.TermType.
type tag byte

const (
	tagNamedNode tag = iota + 1
	tagBlankNodeInline
	tagBlankNodeInterned
	tagDefaultGraph
	tagBoolean
	tagInteger
	tagDouble
	tagFloat
	tagDecimal
	tagDateTime
	tagDate
	tagTime
	tagGYear
	tagGYearMonth
	tagStringInline
	tagStringInterned
	tagLangStringInterned
	tagTypedLiteralInterned
	tagQuotedTripleInterned
)

func (e EncodedTerm) tag() tag { return tag(e[0]) }

// IsDefaultGraph reports whether e encodes the default graph name.
func (e EncodedTerm) IsDefaultGraph() bool { return e.tag() == tagDefaultGraph }

// DefaultGraphEncoded is the fixed encoding of the default graph, reused
// verbatim by every quad stored in the unnamed graph: it must sort and
// compare identically regardless of when it was produced.
var DefaultGraphEncoded = EncodedTerm{byte(tagDefaultGraph)}

// Codec encodes and decodes RDF terms against a Dictionary for interning.
// It is the only place term bytes and store strings meet.
type Codec struct {
	dict *Dictionary
}

func NewCodec(dict *Dictionary) *Codec { return &Codec{dict: dict} }

// Encode interns term (if needed) into the dictionary and returns its fixed
// encoding. Call this from the write path; the dictionary grows.
func (c *Codec) Encode(term rdf.Term) (EncodedTerm, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return c.encodeInterned(tagNamedNode, t.IRI)
	case *rdf.BlankNode:
		return c.encodeBlankNode(t)
	case *rdf.Literal:
		return c.encodeLiteral(t)
	case *rdf.DefaultGraph:
		return DefaultGraphEncoded, nil
	case *rdf.QuotedTriple:
		return c.encodeQuotedTriple(t)
	default:
		return EncodedTerm{}, fmt.Errorf("encoding: unsupported term type %T", term)
	}
}

// encodeQuotedTriple interns the concatenation of its three already-encoded
// components (not their textual form): this lets Decode reconstruct the
// nested term exactly, instead of only its printed representation.
func (c *Codec) encodeQuotedTriple(t *rdf.QuotedTriple) (EncodedTerm, error) {
	s, err := c.Encode(t.Subject)
	if err != nil {
		return EncodedTerm{}, err
	}
	p, err := c.Encode(t.Predicate)
	if err != nil {
		return EncodedTerm{}, err
	}
	o, err := c.Encode(t.Object)
	if err != nil {
		return EncodedTerm{}, err
	}
	packed := string(s[:]) + string(p[:]) + string(o[:])
	return c.encodeInterned(tagQuotedTripleInterned, packed)
}

// Probe encodes term without mutating the dictionary, returning ok=false if
// an interned-form term isn't already present. Used to build query-side
// patterns: a bound variable that was never stored can never match.
func (c *Codec) Probe(term rdf.Term) (EncodedTerm, bool) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return c.probeInterned(tagNamedNode, t.IRI)
	case *rdf.BlankNode:
		if id, ok := inlineBlankNodeID(t.ID); ok {
			var enc EncodedTerm
			enc[0] = byte(tagBlankNodeInline)
			putUint128(enc[1:], id)
			return enc, true
		}
		return c.probeInterned(tagBlankNodeInterned, t.ID)
	case *rdf.Literal:
		enc, err := c.encodeLiteralProbe(t)
		return enc, err == nil
	case *rdf.DefaultGraph:
		return DefaultGraphEncoded, true
	case *rdf.QuotedTriple:
		s, ok1 := c.Probe(t.Subject)
		p, ok2 := c.Probe(t.Predicate)
		o, ok3 := c.Probe(t.Object)
		if !ok1 || !ok2 || !ok3 {
			return EncodedTerm{}, false
		}
		return c.probeInterned(tagQuotedTripleInterned, string(s[:])+string(p[:])+string(o[:]))
	default:
		return EncodedTerm{}, false
	}
}

func (c *Codec) encodeInterned(tg tag, value string) (EncodedTerm, error) {
	if tg == tagStringInline {
		if len(value) <= 16 {
			var enc EncodedTerm
			enc[0] = byte(tagStringInline)
			copy(enc[1:], value)
			return enc, nil
		}
		tg = tagStringInterned
	}
	id, err := c.dict.Insert(value)
	if err != nil {
		return EncodedTerm{}, err
	}
	var enc EncodedTerm
	enc[0] = byte(tg)
	putUint64(enc[1:9], id)
	return enc, nil
}

func (c *Codec) probeInterned(tg tag, value string) (EncodedTerm, bool) {
	id, ok := c.dict.Probe(value)
	if !ok {
		return EncodedTerm{}, false
	}
	var enc EncodedTerm
	enc[0] = byte(tg)
	putUint64(enc[1:9], id)
	return enc, true
}

// inlineBlankNodeID reports whether id parses as a 128-bit unique value
// (a UUID, or a plain unsigned integer that fits in 64 bits) eligible for inline
// encoding instead of dictionary interning.
func inlineBlankNodeID(id string) ([16]byte, bool) {
	if u, err := uuid.Parse(id); err == nil {
		return u, true
	}
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		var b [16]byte
		putUint64(b[8:], n)
		return b, true
	}
	return [16]byte{}, false
}

func (c *Codec) encodeBlankNode(b *rdf.BlankNode) (EncodedTerm, error) {
	if id, ok := inlineBlankNodeID(b.ID); ok {
		var enc EncodedTerm
		enc[0] = byte(tagBlankNodeInline)
		putUint128(enc[1:], id)
		return enc, nil
	}
	return c.encodeInterned(tagBlankNodeInterned, b.ID)
}

func putUint128(dst []byte, v [16]byte) { copy(dst, v[:]) }

func (c *Codec) encodeLiteral(lit *rdf.Literal) (EncodedTerm, error) {
	if lit.Datatype != nil {
		switch lit.Datatype.IRI {
		case rdf.XSDBoolean.IRI:
			return encodeBoolean(lit)
		case rdf.XSDInteger.IRI:
			return encodeInteger(lit)
		case rdf.XSDDecimal.IRI:
			return encodeDecimal(lit)
		case rdf.XSDDouble.IRI:
			return encodeDouble(lit)
		case rdf.XSDFloat.IRI:
			return encodeFloat(lit)
		case rdf.XSDDateTime.IRI:
			return encodeDateTime(lit)
		case rdf.XSDDate.IRI:
			return encodeDate(lit)
		case rdf.XSDTime.IRI:
			return encodeTime(lit)
		case rdf.XSDGYear.IRI:
			return encodeGYear(lit)
		case rdf.XSDGYearMonth.IRI:
			return encodeGYearMonth(lit)
		case rdf.XSDString.IRI:
			return c.encodeInterned(tagStringInline, lit.Value)
		default:
			return c.encodeInterned(tagTypedLiteralInterned, lit.Value+"^^"+lit.Datatype.IRI)
		}
	}
	if lit.Language != "" {
		combined := lit.Value + "@" + lit.Language
		if lit.Direction != "" {
			combined += "--" + lit.Direction
		}
		return c.encodeInterned(tagLangStringInterned, combined)
	}
	return c.encodeInterned(tagStringInline, lit.Value)
}

// encodeLiteralProbe mirrors encodeLiteral but never inserts into the
// dictionary, for Probe's read-only pattern encoding.
func (c *Codec) encodeLiteralProbe(lit *rdf.Literal) (EncodedTerm, error) {
	if lit.Datatype != nil {
		switch lit.Datatype.IRI {
		case rdf.XSDBoolean.IRI:
			return encodeBoolean(lit)
		case rdf.XSDInteger.IRI:
			return encodeInteger(lit)
		case rdf.XSDDecimal.IRI:
			return encodeDecimal(lit)
		case rdf.XSDDouble.IRI:
			return encodeDouble(lit)
		case rdf.XSDFloat.IRI:
			return encodeFloat(lit)
		case rdf.XSDDateTime.IRI:
			return encodeDateTime(lit)
		case rdf.XSDDate.IRI:
			return encodeDate(lit)
		case rdf.XSDTime.IRI:
			return encodeTime(lit)
		case rdf.XSDGYear.IRI:
			return encodeGYear(lit)
		case rdf.XSDGYearMonth.IRI:
			return encodeGYearMonth(lit)
		case rdf.XSDString.IRI:
			if len(lit.Value) <= 16 {
				return c.encodeInterned(tagStringInline, lit.Value)
			}
			enc, ok := c.probeInterned(tagStringInterned, lit.Value)
			if !ok {
				return EncodedTerm{}, fmt.Errorf("encoding: not interned")
			}
			return enc, nil
		default:
			enc, ok := c.probeInterned(tagTypedLiteralInterned, lit.Value+"^^"+lit.Datatype.IRI)
			if !ok {
				return EncodedTerm{}, fmt.Errorf("encoding: not interned")
			}
			return enc, nil
		}
	}
	if lit.Language != "" {
		combined := lit.Value + "@" + lit.Language
		if lit.Direction != "" {
			combined += "--" + lit.Direction
		}
		enc, ok := c.probeInterned(tagLangStringInterned, combined)
		if !ok {
			return EncodedTerm{}, fmt.Errorf("encoding: not interned")
		}
		return enc, nil
	}
	if len(lit.Value) <= 16 {
		return c.encodeInterned(tagStringInline, lit.Value)
	}
	enc, ok := c.probeInterned(tagStringInterned, lit.Value)
	if !ok {
		return EncodedTerm{}, fmt.Errorf("encoding: not interned")
	}
	return enc, nil
}

func encodeBoolean(lit *rdf.Literal) (EncodedTerm, error) {
	v, err := strconv.ParseBool(lit.Value)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:boolean %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagBoolean)
	if v {
		enc[1] = 1
	}
	return enc, nil
}

func encodeInteger(lit *rdf.Literal) (EncodedTerm, error) {
	v, err := strconv.ParseInt(lit.Value, 10, 64)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:integer %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagInteger)
	putUint64(enc[1:9], uint64(v))
	return enc, nil
}

func encodeDecimal(lit *rdf.Literal) (EncodedTerm, error) {
	d, err := ParseDecimal(lit.Value)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:decimal %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagDecimal)
	bytes := d.ToBEBytes()
	copy(enc[1:], bytes[:])
	return enc, nil
}

func encodeDouble(lit *rdf.Literal) (EncodedTerm, error) {
	v, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:double %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagDouble)
	b := EncodeFloat64BigEndian(v)
	copy(enc[1:9], b)
	return enc, nil
}

func encodeFloat(lit *rdf.Literal) (EncodedTerm, error) {
	v, err := strconv.ParseFloat(lit.Value, 32)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:float %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagFloat)
	b := EncodeFloat64BigEndian(v)
	copy(enc[1:9], b)
	return enc, nil
}

var dateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}
var dateLayouts = []string{"2006-01-02Z07:00", "2006-01-02"}
var timeLayouts = []string{"15:04:05.999999999Z07:00", "15:04:05.999999999"}

func parseFlexibleTime(layouts []string, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func encodeDateTime(lit *rdf.Literal) (EncodedTerm, error) {
	t, err := parseFlexibleTime(dateTimeLayouts, lit.Value)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:dateTime %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagDateTime)
	putUint64(enc[1:9], uint64(t.UnixNano()))
	return enc, nil
}

func encodeDate(lit *rdf.Literal) (EncodedTerm, error) {
	t, err := parseFlexibleTime(dateLayouts, lit.Value)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:date %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagDate)
	putUint64(enc[1:9], uint64(t.Unix()/86400))
	return enc, nil
}

func encodeTime(lit *rdf.Literal) (EncodedTerm, error) {
	t, err := parseFlexibleTime(timeLayouts, lit.Value)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:time %q: %w", lit.Value, err)
	}
	nanosSinceMidnight := t.Hour()*3600e9 + t.Minute()*60e9 + t.Second()*1e9 + t.Nanosecond()
	var enc EncodedTerm
	enc[0] = byte(tagTime)
	putUint64(enc[1:9], uint64(nanosSinceMidnight))
	return enc, nil
}

func encodeGYear(lit *rdf.Literal) (EncodedTerm, error) {
	v, err := strconv.ParseInt(strings.TrimSuffix(lit.Value, "Z"), 10, 32)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:gYear %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagGYear)
	putUint64(enc[1:9], uint64(v))
	return enc, nil
}

func encodeGYearMonth(lit *rdf.Literal) (EncodedTerm, error) {
	parts := strings.SplitN(strings.TrimSuffix(lit.Value, "Z"), "-", 2)
	if len(parts) != 2 {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:gYearMonth %q", lit.Value)
	}
	year, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:gYearMonth %q: %w", lit.Value, err)
	}
	month, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return EncodedTerm{}, fmt.Errorf("encoding: invalid xsd:gYearMonth %q: %w", lit.Value, err)
	}
	var enc EncodedTerm
	enc[0] = byte(tagGYearMonth)
	putUint64(enc[1:9], uint64(year*12+month))
	return enc, nil
}
