package encoding

import "testing"

func TestDecimalParseAndString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0", "0.0"},
		{"1", "1.0"},
		{"-1", "-1.0"},
		{"3.14", "3.14"},
		{"-3.14", "-3.14"},
		{"123.456000", "123.456"},
		{"+10", "10.0"},
	}
	for _, c := range cases {
		d, err := ParseDecimal(c.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", c.in, err)
		}
		if got := d.String(); got != c.want {
			t.Errorf("ParseDecimal(%q).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecimalArithmetic(t *testing.T) {
	a, _ := ParseDecimal("1.5")
	b, _ := ParseDecimal("2.5")

	sum, err := a.Add(b)
	if err != nil || sum.String() != "4.0" {
		t.Errorf("1.5 + 2.5 = %v, %v; want 4.0", sum, err)
	}

	diff, err := b.Sub(a)
	if err != nil || diff.String() != "1.0" {
		t.Errorf("2.5 - 1.5 = %v, %v; want 1.0", diff, err)
	}

	prod, err := a.Mul(b)
	if err != nil || prod.String() != "3.75" {
		t.Errorf("1.5 * 2.5 = %v, %v; want 3.75", prod, err)
	}

	quot, err := b.Div(a)
	if err != nil || quot.String() != "1.666666666666666666" {
		t.Errorf("2.5 / 1.5 = %v, %v", quot, err)
	}
}

func TestDecimalDivByZero(t *testing.T) {
	a, _ := ParseDecimal("1")
	zero, _ := ParseDecimal("0")
	if _, err := a.Div(zero); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestDecimalRoundFloorCeil(t *testing.T) {
	d, _ := ParseDecimal("2.5")
	if got := d.Round().String(); got != "3.0" {
		t.Errorf("round(2.5) = %s, want 3.0", got)
	}
	if got := d.Floor().String(); got != "2.0" {
		t.Errorf("floor(2.5) = %s, want 2.0", got)
	}
	if got := d.Ceil().String(); got != "3.0" {
		t.Errorf("ceil(2.5) = %s, want 3.0", got)
	}

	neg, _ := ParseDecimal("-2.5")
	if got := neg.Floor().String(); got != "-3.0" {
		t.Errorf("floor(-2.5) = %s, want -3.0", got)
	}
	if got := neg.Ceil().String(); got != "-2.0" {
		t.Errorf("ceil(-2.5) = %s, want -2.0", got)
	}
}

func TestDecimalBEBytesRoundTrip(t *testing.T) {
	values := []string{"0", "1.5", "-1.5", "123456789.123456789", "-999999999999.999999999999"}
	for _, v := range values {
		d, err := ParseDecimal(v)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", v, err)
		}
		b := d.ToBEBytes()
		back := DecimalFromBEBytes(b)
		if back.Cmp(d) != 0 {
			t.Errorf("round trip %q: got %s, want %s", v, back, d)
		}
	}
}

func TestDecimalCmp(t *testing.T) {
	a, _ := ParseDecimal("1.0")
	b, _ := ParseDecimal("2.0")
	if a.Cmp(b) >= 0 {
		t.Error("expected 1.0 < 2.0")
	}
	if b.Cmp(a) <= 0 {
		t.Error("expected 2.0 > 1.0")
	}
	if a.Cmp(a) != 0 {
		t.Error("expected 1.0 == 1.0")
	}
}

func TestDecimalTooManyFractionalDigits(t *testing.T) {
	if _, err := ParseDecimal("1.1234567890123456789"); err == nil {
		t.Fatal("expected an error for 19 fractional digits")
	}
}
