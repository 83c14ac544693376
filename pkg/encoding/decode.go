package encoding

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// Decode reverses Encode, resolving any interned payload through the
// dictionary. It never mutates the dictionary.
func (c *Codec) Decode(enc EncodedTerm) (rdf.Term, error) {
	switch enc.tag() {
	case tagNamedNode:
		s, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(s), nil

	case tagBlankNodeInline:
		var payload [16]byte
		copy(payload[:], enc[1:])
		if isZero(payload[:8]) {
			n := getUint64(payload[8:])
			return rdf.NewBlankNode(strconv.FormatUint(n, 10)), nil
		}
		u := uuid.UUID(payload)
		return rdf.NewBlankNode(u.String()), nil

	case tagBlankNodeInterned:
		s, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		return rdf.NewBlankNode(s), nil

	case tagDefaultGraph:
		return rdf.NewDefaultGraph(), nil

	case tagBoolean:
		return rdf.NewBooleanLiteral(enc[1] != 0), nil

	case tagInteger:
		v := int64(getUint64(enc[1:9]))
		return rdf.NewIntegerLiteral(v), nil

	case tagDecimal:
		var b [16]byte
		copy(b[:], enc[1:])
		return rdf.NewDecimalLiteral(DecimalFromBEBytes(b).String()), nil

	case tagDouble:
		v := DecodeFloat64BigEndian(enc[1:9])
		return rdf.NewDoubleLiteral(v), nil

	case tagFloat:
		v := DecodeFloat64BigEndian(enc[1:9])
		return rdf.NewLiteralWithDatatype(formatXSDFloat(float32(v)), rdf.XSDFloat), nil

	case tagDateTime:
		nanos := int64(getUint64(enc[1:9]))
		return rdf.NewDateTimeLiteral(time.Unix(0, nanos).UTC()), nil

	case tagDate:
		days := int64(getUint64(enc[1:9]))
		t := time.Unix(days*86400, 0).UTC()
		return rdf.NewLiteralWithDatatype(t.Format("2006-01-02"), rdf.XSDDate), nil

	case tagTime:
		nanos := int64(getUint64(enc[1:9]))
		d := time.Duration(nanos)
		t := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
		return rdf.NewLiteralWithDatatype(t.Format("15:04:05.999999999"), rdf.XSDTime), nil

	case tagGYear:
		v := int64(getUint64(enc[1:9]))
		return rdf.NewLiteralWithDatatype(fmt.Sprintf("%04d", v), rdf.XSDGYear), nil

	case tagGYearMonth:
		v := int64(getUint64(enc[1:9]))
		return rdf.NewLiteralWithDatatype(fmt.Sprintf("%04d-%02d", (v-1)/12, (v-1)%12+1), rdf.XSDGYearMonth), nil

	case tagStringInline:
		end := 1
		for end < EncodedTermSize && enc[end] != 0 {
			end++
		}
		return rdf.NewLiteral(string(enc[1:end])), nil

	case tagStringInterned:
		s, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteral(s), nil

	case tagLangStringInterned:
		combined, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		return decodeLangString(combined), nil

	case tagTypedLiteralInterned:
		combined, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		value, datatype, ok := strings.Cut(combined, "^^")
		if !ok {
			return nil, fmt.Errorf("encoding: malformed typed literal dictionary entry %q", combined)
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil

	case tagQuotedTripleInterned:
		packed, err := c.lookup(enc)
		if err != nil {
			return nil, err
		}
		if len(packed) != 3*EncodedTermSize {
			return nil, fmt.Errorf("encoding: malformed quoted triple dictionary entry (length %d)", len(packed))
		}
		var s, p, o EncodedTerm
		copy(s[:], packed[0:EncodedTermSize])
		copy(p[:], packed[EncodedTermSize:2*EncodedTermSize])
		copy(o[:], packed[2*EncodedTermSize:3*EncodedTermSize])
		subject, err := c.Decode(s)
		if err != nil {
			return nil, err
		}
		predicate, err := c.Decode(p)
		if err != nil {
			return nil, err
		}
		object, err := c.Decode(o)
		if err != nil {
			return nil, err
		}
		return rdf.NewQuotedTriple(subject, predicate, object)

	default:
		return nil, fmt.Errorf("encoding: unknown tag byte %d", enc[0])
	}
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func (c *Codec) lookup(enc EncodedTerm) (string, error) {
	id := getUint64(enc[1:9])
	s, ok := c.dict.Lookup(id)
	if !ok {
		return "", fmt.Errorf("encoding: %w: dictionary id %d", ErrMissingDictionaryEntry, id)
	}
	return s, nil
}

// decodeLangString splits a dictionary entry of the form "value@lang" or
// "value@lang--direction" back into its components. "@" inside value itself
// is unambiguous because the language tag is appended last and RFC 5646
// language tags never contain "@".
func decodeLangString(combined string) *rdf.Literal {
	at := strings.LastIndexByte(combined, '@')
	if at < 0 {
		return rdf.NewLiteral(combined)
	}
	value := combined[:at]
	rest := combined[at+1:]
	if lang, dir, ok := strings.Cut(rest, "--"); ok {
		return rdf.NewLiteralWithLanguageAndDirection(value, lang, dir)
	}
	return rdf.NewLiteralWithLanguage(value, rest)
}

func formatXSDFloat(v float32) string {
	switch {
	case v != v:
		return "NaN"
	case v > 3.4028235e+38:
		return "INF"
	case v < -3.4028235e+38:
		return "-INF"
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
