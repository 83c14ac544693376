package encoding

import "testing"

type memBackend struct {
	m map[uint64]string
}

func newMemBackend() *memBackend { return &memBackend{m: make(map[uint64]string)} }

func (b *memBackend) GetString(hash uint64) (string, bool) {
	v, ok := b.m[hash]
	return v, ok
}

func (b *memBackend) PutString(hash uint64, value string) error {
	b.m[hash] = value
	return nil
}

func TestDictionaryInsertLookup(t *testing.T) {
	d := NewDictionary(newMemBackend())

	id, err := d.Insert("http://example.org/alice")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, ok := d.Lookup(id)
	if !ok || got != "http://example.org/alice" {
		t.Fatalf("Lookup(%d) = %q, %v; want alice, true", id, got, ok)
	}
}

func TestDictionaryInsertIdempotent(t *testing.T) {
	d := NewDictionary(newMemBackend())

	id1, err := d.Insert("same value")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := d.Insert("same value")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("re-inserting the same value produced different ids: %d vs %d", id1, id2)
	}
}

func TestDictionaryProbeMissing(t *testing.T) {
	d := NewDictionary(newMemBackend())
	if _, ok := d.Probe("never inserted"); ok {
		t.Fatal("Probe found a value that was never inserted")
	}
}

func TestDictionaryProbeAfterInsert(t *testing.T) {
	d := NewDictionary(newMemBackend())
	id, err := d.Insert("value")
	if err != nil {
		t.Fatal(err)
	}
	probed, ok := d.Probe("value")
	if !ok {
		t.Fatal("Probe did not find an inserted value")
	}
	if probed != id {
		t.Fatalf("Probe id %d != Insert id %d", probed, id)
	}
}

func TestDictionaryDistinctValuesDistinctIDs(t *testing.T) {
	d := NewDictionary(newMemBackend())
	a, err := d.Insert("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := d.Insert("b")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("distinct values hashed to the same dictionary id")
	}
}

func TestEncodeDecodeInt64RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 9223372036854775807, -9223372036854775808}
	for _, v := range cases {
		b := EncodeInt64BigEndian(v)
		if len(b) != 8 {
			t.Fatalf("expected 8 bytes, got %d", len(b))
		}
		if got := DecodeInt64BigEndian(b); got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestEncodeDecodeFloat64RoundTrip(t *testing.T) {
	cases := []float64{0.0, 1.0, -1.0, 3.14, -3.14, 1.7976931348623157e+308, 2.2250738585072014e-308}
	for _, v := range cases {
		b := EncodeFloat64BigEndian(v)
		if len(b) != 8 {
			t.Fatalf("expected 8 bytes, got %d", len(b))
		}
		if got := DecodeFloat64BigEndian(b); got != v {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}
