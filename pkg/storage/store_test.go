package storage

import (
	"testing"

	"github.com/quadcore/quadcore/pkg/rdf"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", WithInMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuad() *rdf.Quad {
	return rdf.NewQuad(
		rdf.NewNamedNode("http://example.org/alice"),
		rdf.NewNamedNode("http://example.org/knows"),
		rdf.NewNamedNode("http://example.org/bob"),
		rdf.NewDefaultGraph(),
	)
}

func TestInsertAndScanAllSixIndexes(t *testing.T) {
	s := newTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatal(err)
	}
	q := sampleQuad()
	enc, err := wtx.EncodeQuad(q)
	if err != nil {
		t.Fatal(err)
	}
	if err := wtx.Insert(enc); err != nil {
		t.Fatal(err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatal(err)
	}

	rtx := s.ReadSnapshot()
	defer rtx.Close()

	for idx := Index(0); idx < indexCount; idx++ {
		cur, err := rtx.ScanIndex(idx)
		if err != nil {
			t.Fatalf("ScanIndex(%v): %v", idx, err)
		}
		count := 0
		for cur.Next() {
			decoded, err := rtx.DecodeQuad(idx, cur.Key())
			if err != nil {
				t.Fatalf("DecodeQuad(%v): %v", idx, err)
			}
			if !decoded.Equals(q) {
				t.Errorf("index %v decoded %v, want %v", idx, decoded, q)
			}
			count++
		}
		cur.Close()
		if count != 1 {
			t.Errorf("index %v: got %d rows, want 1", idx, count)
		}
	}
}

func TestRemoveQuad(t *testing.T) {
	s := newTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatal(err)
	}
	q := sampleQuad()
	enc, err := wtx.EncodeQuad(q)
	if err != nil {
		t.Fatal(err)
	}
	if err := wtx.Insert(enc); err != nil {
		t.Fatal(err)
	}
	if err := wtx.Remove(enc); err != nil {
		t.Fatal(err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatal(err)
	}

	rtx := s.ReadSnapshot()
	defer rtx.Close()
	cur, err := rtx.ScanIndex(IndexSPOG)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()
	if cur.Next() {
		t.Fatal("expected no rows after remove")
	}
}

func TestNamedGraphTracking(t *testing.T) {
	s := newTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatal(err)
	}
	graph := rdf.NewNamedNode("http://example.org/g1")
	q := rdf.NewQuad(
		rdf.NewNamedNode("http://example.org/s"),
		rdf.NewNamedNode("http://example.org/p"),
		rdf.NewLiteral("o"),
		graph,
	)
	enc, err := wtx.EncodeQuad(q)
	if err != nil {
		t.Fatal(err)
	}
	if err := wtx.Insert(enc); err != nil {
		t.Fatal(err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatal(err)
	}

	rtx := s.ReadSnapshot()
	defer rtx.Close()
	graphEnc, ok := s.Codec().Probe(graph)
	if !ok {
		t.Fatal("graph term was not interned")
	}
	present, err := rtx.ContainsGraph(graphEnc)
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("expected graph to be tracked after inserting a quad into it")
	}
}

func TestBulkLoad(t *testing.T) {
	s := newTestStore(t)
	quads := []*rdf.Quad{sampleQuad(), sampleQuad()}
	seen := 0
	loaded, err := s.BulkLoad(func(yield func(*rdf.Quad) error) error {
		for _, q := range quads {
			seen++
			if err := yield(q); err != nil {
				return err
			}
		}
		return nil
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != uint64(len(quads)) {
		t.Errorf("loaded = %d, want %d", loaded, len(quads))
	}
}

func TestEnsureFormatIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.EnsureFormat(true); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureFormat(true); err != nil {
		t.Fatalf("second EnsureFormat call should be a no-op validation, got: %v", err)
	}
	enabled, err := s.RDF12Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if !enabled {
		t.Fatal("expected rdf12 flag to be latched true")
	}
}

func TestStatisticsCountsQuadsAndGraphs(t *testing.T) {
	s := newTestStore(t)
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatal(err)
	}
	g1 := rdf.NewNamedNode("http://example.org/g1")
	q1 := rdf.NewQuad(rdf.NewNamedNode("http://example.org/s1"), rdf.NewNamedNode("http://example.org/p"), rdf.NewLiteral("o1"), g1)
	q2 := rdf.NewQuad(rdf.NewNamedNode("http://example.org/s2"), rdf.NewNamedNode("http://example.org/p"), rdf.NewLiteral("o2"), rdf.NewDefaultGraph())
	for _, q := range []*rdf.Quad{q1, q2} {
		enc, err := wtx.EncodeQuad(q)
		if err != nil {
			t.Fatal(err)
		}
		if err := wtx.Insert(enc); err != nil {
			t.Fatal(err)
		}
	}
	if err := wtx.Commit(); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Statistics()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalQuads != 2 {
		t.Errorf("TotalQuads = %d, want 2", stats.TotalQuads)
	}
	if stats.NamedGraphs != 1 {
		t.Errorf("NamedGraphs = %d, want 1", stats.NamedGraphs)
	}
}

func TestBackupRefusedOnInMemoryStore(t *testing.T) {
	s := newTestStore(t)
	var buf discardWriter
	if err := s.Backup(buf); err != ErrUnsupportedOperation {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
