package storage

import (
	"encoding/binary"
	"log"

	"github.com/quadcore/quadcore/pkg/encoding"
	"github.com/quadcore/quadcore/pkg/rdf"
)

// Store is the top-level handle a dataset or update executor opens against.
// It owns the backend, the codec (dictionary-backed term encoder), and the
// named-graphs set. A functional-options constructor mirrors the teacher's
// NewBadgerStorage(path) / NewServer(addr) shape, generalized to cover the
// extra knobs a quad store needs.
type Store struct {
	backend Backend
	codec   *encoding.Codec
	dict    *encoding.Dictionary
	logger  *log.Logger
}

// Option configures a Store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	logger   *log.Logger
	inMemory bool
}

// WithLogger injects a logger for storage and bulk-load diagnostics,
// forwarded into badger through a small adapter rather than introducing a
// second logging dependency.
func WithLogger(l *log.Logger) Option {
	return func(c *storeConfig) { c.logger = l }
}

// WithInMemory opens an ephemeral store with no on-disk footprint, for
// tests and scratch evaluation. Backup/Restore refuse to operate on it.
func WithInMemory() Option {
	return func(c *storeConfig) { c.inMemory = true }
}

// Open opens or creates a store at path (ignored when WithInMemory is set).
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var backend Backend
	var err error
	if cfg.inMemory {
		backend, err = NewInMemoryBadgerBackend()
	} else {
		backend, err = NewBadgerBackend(path, cfg.logger)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{backend: backend, logger: cfg.logger}
	s.dict = encoding.NewDictionary(&dictionaryBackend{store: s})
	s.codec = encoding.NewCodec(s.dict)
	return s, nil
}

func (s *Store) Close() error { return s.backend.Close() }

// Codec exposes the term encoder/decoder, for the dataset and update
// packages to translate between rdf.Term and encoding.EncodedTerm.
func (s *Store) Codec() *encoding.Codec { return s.codec }

// dictionaryBackend adapts Store's dictionary column family to
// encoding.DictionaryBackend. It always opens its own short-lived
// transaction per call; the dictionary is append-only, so a dictionary read
// racing a dictionary write from the single active Writer can only ever
// observe "not yet visible", never a torn value.
type dictionaryBackend struct {
	store *Store
}

func dictKey(hash uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, hash)
	return prefixKey(cfDictionary, key)
}

func (b *dictionaryBackend) GetString(hash uint64) (string, bool) {
	snap := b.store.backend.NewSnapshot()
	defer snap.Discard()
	value, ok, err := snap.Get(dictKey(hash))
	if err != nil || !ok {
		return "", false
	}
	return string(value), true
}

func (b *dictionaryBackend) PutString(hash uint64, value string) error {
	// A standalone writer per dictionary insert keeps Dictionary backend-
	// agnostic; inserts made while an update's WriteTx is open also commit
	// through their own writer here, independently of that WriteTx.
	w, err := b.store.backend.NewWriter()
	if err != nil {
		return err
	}
	if err := w.Set(dictKey(hash), []byte(value)); err != nil {
		w.Rollback()
		return err
	}
	return w.Commit()
}

// ReadSnapshot opens a point-in-time, read-only view for query evaluation.
func (s *Store) ReadSnapshot() *ReadTx {
	return &ReadTx{store: s, snap: s.backend.NewSnapshot()}
}

// ReadTx is a read-only transaction over one snapshot of the keyspace.
type ReadTx struct {
	store *Store
	snap  Snapshot
}

func (r *ReadTx) Close() { r.snap.Discard() }

// ScanIndex returns a Cursor over idx restricted to keys with the given
// encoded-term prefix (0 to 4 terms). Each key found has 4*encoding.
// EncodedTermSize bytes after the column-family byte.
func (r *ReadTx) ScanIndex(idx Index, prefixTerms ...encoding.EncodedTerm) (Cursor, error) {
	prefix := encoding.EncodeKey(prefixTerms...)
	cfPrefix := prefixKey(indexColumnFamily(idx), prefix)
	end := prefixUpperBound(cfPrefix)
	return r.snap.Scan(cfPrefix, end)
}

// prefixUpperBound returns the smallest key greater than every key having
// prefix p, by incrementing the last byte that isn't already 0xff and
// truncating the rest; if every byte is 0xff, nil (open-ended) is returned.
func prefixUpperBound(p []byte) []byte {
	out := append([]byte{}, p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

// ContainsGraph reports whether graph is a known named graph (has at least
// one quad, or was created explicitly via CREATE).
func (r *ReadTx) ContainsGraph(graph encoding.EncodedTerm) (bool, error) {
	_, ok, err := r.snap.Get(prefixKey(cfGraphs, graph[:]))
	return ok, err
}

// GraphNames streams every known named graph's encoded term.
func (r *ReadTx) GraphNames() (Cursor, error) {
	prefix := []byte{byte(cfGraphs)}
	return r.snap.Scan(prefix, prefixUpperBound(prefix))
}

// DecodeQuad resolves one index-ordered key back into an (s,p,o,g) Quad of
// rdf.Term values.
func (r *ReadTx) DecodeQuad(idx Index, key []byte) (*rdf.Quad, error) {
	terms, ok := encoding.SplitKey(key, 4)
	if !ok {
		return nil, errMalformedKey
	}
	var arr [4]encoding.EncodedTerm
	copy(arr[:], terms)
	q := EncodedQuadFromIndexKey(idx, arr)
	s, err := r.store.codec.Decode(q[0])
	if err != nil {
		return nil, err
	}
	p, err := r.store.codec.Decode(q[1])
	if err != nil {
		return nil, err
	}
	o, err := r.store.codec.Decode(q[2])
	if err != nil {
		return nil, err
	}
	g, err := r.store.codec.Decode(q[3])
	if err != nil {
		return nil, err
	}
	return rdf.NewQuad(s, p, o, g), nil
}
