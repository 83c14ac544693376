package encoding

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// decimalScale is the number of fractional digits xsd:decimal keeps: values
// are stored as value * 10^18, matching the fixed-point scheme the system
// this package's storage model is derived from uses for its 128-bit decimal
// type. Go has no native 128-bit integer, so Decimal keeps the scaled value
// in a math/big.Int and truncates to 16 big-endian bytes on encode (the
// same width a true i128 would occupy); math/big is the idiomatic stdlib
// choice here since no third-party fixed-point or big-integer library
// appears anywhere in the reference corpus.
const decimalScale = 18

var decimalPow = new(big.Int).Exp(big.NewInt(10), big.NewInt(decimalScale), nil)

// ErrDecimalOverflow reports that a Decimal operation's result no longer
// fits in the 128-bit fixed-point range.
var ErrDecimalOverflow = errors.New("encoding: decimal overflow")

// decimalMin and decimalMax are the bounds of a signed 128-bit integer,
// the scaled value's storage width.
var (
	decimalMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	decimalMin = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Decimal is xsd:decimal stored as a fixed-point integer scaled by 10^18,
// giving up to 18 digits of fractional precision within a 128-bit range.
type Decimal struct {
	value *big.Int // scaled by decimalPow
}

func decimalFromScaled(v *big.Int) (Decimal, error) {
	if v.Cmp(decimalMin) < 0 || v.Cmp(decimalMax) > 0 {
		return Decimal{}, ErrDecimalOverflow
	}
	return Decimal{value: v}, nil
}

// ParseDecimal parses an XSD decimal lexical form ("-123.456000") into its
// fixed-point representation.
func ParseDecimal(lexical string) (Decimal, error) {
	s := strings.TrimSpace(lexical)
	if s == "" {
		return Decimal{}, fmt.Errorf("encoding: empty decimal literal")
	}
	neg := false
	if s[0] == '+' {
		s = s[1:]
	} else if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > decimalScale {
		return Decimal{}, fmt.Errorf("encoding: decimal literal %q has more than %d fractional digits", lexical, decimalScale)
	}
	fracPart += strings.Repeat("0", decimalScale-len(fracPart))

	digits := intPart + fracPart
	if !isAllDigits(digits) {
		return Decimal{}, fmt.Errorf("encoding: invalid decimal literal %q", lexical)
	}
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("encoding: invalid decimal literal %q", lexical)
	}
	if neg {
		value.Neg(value)
	}
	return decimalFromScaled(value)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// String renders the canonical lexical form: no trailing fractional zeros
// beyond one digit, a leading "-" for negative values, never scientific
// notation.
func (d Decimal) String() string {
	if d.value == nil {
		d.value = new(big.Int)
	}
	neg := d.value.Sign() < 0
	abs := new(big.Int).Abs(d.value)
	digits := abs.String()
	for len(digits) <= decimalScale {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-decimalScale]
	fracPart := digits[len(digits)-decimalScale:]
	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		fracPart = "0"
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return sign + intPart + "." + fracPart
}

// ToBEBytes renders the scaled value as 16 big-endian bytes (two's
// complement), the storage-layer encoding of an inline decimal.
func (d Decimal) ToBEBytes() [16]byte {
	var out [16]byte
	v := d.value
	if v == nil {
		v = new(big.Int)
	}
	// Two's complement encoding for a 128-bit signed integer.
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	u := new(big.Int).Mod(v, mod)
	b := u.Bytes()
	copy(out[16-len(b):], b)
	return out
}

// DecimalFromBEBytes decodes the 16 big-endian bytes produced by ToBEBytes.
func DecimalFromBEBytes(b [16]byte) Decimal {
	u := new(big.Int).SetBytes(b[:])
	half := new(big.Int).Lsh(big.NewInt(1), 127)
	if u.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		u.Sub(u, mod)
	}
	return Decimal{value: u}
}

func (d Decimal) checkedBinOp(rhs Decimal, op func(z, x, y *big.Int) *big.Int) (Decimal, error) {
	result := op(new(big.Int), d.value, rhs.value)
	return decimalFromScaled(result)
}

// Add implements op:numeric-add.
func (d Decimal) Add(rhs Decimal) (Decimal, error) {
	return d.checkedBinOp(rhs, (*big.Int).Add)
}

// Sub implements op:numeric-subtract.
func (d Decimal) Sub(rhs Decimal) (Decimal, error) {
	return d.checkedBinOp(rhs, (*big.Int).Sub)
}

// Mul implements op:numeric-multiply. Precision beyond decimalScale digits
// is truncated, matching the scheme this is derived from.
func (d Decimal) Mul(rhs Decimal) (Decimal, error) {
	result := new(big.Int).Mul(d.value, rhs.value)
	result.Quo(result, decimalPow)
	return decimalFromScaled(result)
}

// Div implements op:numeric-divide.
func (d Decimal) Div(rhs Decimal) (Decimal, error) {
	if rhs.value.Sign() == 0 {
		return Decimal{}, fmt.Errorf("encoding: division by zero decimal")
	}
	numerator := new(big.Int).Mul(d.value, decimalPow)
	result := new(big.Int).Quo(numerator, rhs.value)
	return decimalFromScaled(result)
}

// Neg negates the value.
func (d Decimal) Neg() Decimal {
	return Decimal{value: new(big.Int).Neg(d.value)}
}

// Abs implements fn:abs.
func (d Decimal) Abs() Decimal {
	return Decimal{value: new(big.Int).Abs(d.value)}
}

// Cmp compares two decimals, for ORDER BY and the "<"/">" operators.
func (d Decimal) Cmp(rhs Decimal) int {
	return d.value.Cmp(rhs.value)
}

// Floor implements fn:floor: largest integer not greater than the value.
func (d Decimal) Floor() Decimal {
	q, r := new(big.Int).QuoRem(d.value, decimalPow, new(big.Int))
	if r.Sign() != 0 && d.value.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
	}
	return Decimal{value: new(big.Int).Mul(q, decimalPow)}
}

// Ceil implements fn:ceiling: smallest integer not less than the value.
func (d Decimal) Ceil() Decimal {
	q, r := new(big.Int).QuoRem(d.value, decimalPow, new(big.Int))
	if r.Sign() != 0 && d.value.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return Decimal{value: new(big.Int).Mul(q, decimalPow)}
}

// Round implements fn:round: round half up, toward positive infinity for
// exact ties (XPath F&O semantics, not banker's rounding).
func (d Decimal) Round() Decimal {
	half := new(big.Int).Quo(decimalPow, big.NewInt(2))
	shifted := new(big.Int).Add(d.value, half)
	q, r := new(big.Int).QuoRem(shifted, decimalPow, new(big.Int))
	if r.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
	}
	return Decimal{value: new(big.Int).Mul(q, decimalPow)}
}

// IsZero reports whether the decimal's value is exactly zero.
func (d Decimal) IsZero() bool { return d.value == nil || d.value.Sign() == 0 }

// Float64 converts to the nearest float64, for cross-type numeric promotion
// in expression evaluation (e.g. xsd:decimal compared against xsd:double).
func (d Decimal) Float64() float64 {
	f := new(big.Float).SetInt(d.value)
	scaled := new(big.Float).Quo(f, new(big.Float).SetInt(decimalPow))
	v, _ := scaled.Float64()
	return v
}
