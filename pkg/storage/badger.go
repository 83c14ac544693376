package storage

import (
	"errors"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

// badgerBackend implements Backend on top of a single badger.DB, exactly
// the way the teacher's BadgerStorage wraps one *badger.DB: one physical
// database, logical separation by a one-byte column-family prefix instead
// of badger's own (heavier) multi-DB support.
type badgerBackend struct {
	db       *badger.DB
	inMemory bool
}

// badgerLogAdapter forwards badger's internal logging through the store's
// injected *log.Logger instead of pulling in a second logging dependency.
type badgerLogAdapter struct{ l *log.Logger }

func (a badgerLogAdapter) Errorf(f string, args ...interface{})   { a.l.Printf("badger ERROR: "+f, args...) }
func (a badgerLogAdapter) Warningf(f string, args ...interface{}) { a.l.Printf("badger WARN: "+f, args...) }
func (a badgerLogAdapter) Infof(f string, args ...interface{})    { a.l.Printf("badger INFO: "+f, args...) }
func (a badgerLogAdapter) Debugf(f string, args ...interface{})   { a.l.Printf("badger DEBUG: "+f, args...) }

// NewBadgerBackend opens (or creates) a badger-backed store at path. A nil
// logger disables badger's own logging, the same opts.Logger = nil the
// teacher sets.
func NewBadgerBackend(path string, logger *log.Logger) (*badgerBackend, error) {
	opts := badger.DefaultOptions(path)
	if logger != nil {
		opts.Logger = badgerLogAdapter{l: logger}
	} else {
		opts.Logger = nil
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerBackend{db: db}, nil
}

// NewInMemoryBadgerBackend opens an ephemeral store, for tests and
// query-planning scratch space. Backup/Restore refuse to operate on it.
func NewInMemoryBadgerBackend() (*badgerBackend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerBackend{db: db, inMemory: true}, nil
}

func (b *badgerBackend) IsInMemory() bool { return b.inMemory }

func (b *badgerBackend) Close() error { return b.db.Close() }

func (b *badgerBackend) NewSnapshot() Snapshot {
	return &badgerSnapshot{txn: b.db.NewTransaction(false)}
}

func (b *badgerBackend) NewWriter() (Writer, error) {
	return &badgerWriter{txn: b.db.NewTransaction(true)}, nil
}

type badgerSnapshot struct {
	txn *badger.Txn
}

func (s *badgerSnapshot) Get(key []byte) ([]byte, bool, error) {
	item, err := s.txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *badgerSnapshot) Scan(start, end []byte) (Cursor, error) {
	opts := badger.DefaultIteratorOptions
	it := s.txn.NewIterator(opts)
	it.Seek(start)
	return &badgerCursor{it: it, end: end, started: false}, nil
}

func (s *badgerSnapshot) Discard() { s.txn.Discard() }

type badgerWriter struct {
	txn *badger.Txn
}

func (w *badgerWriter) Get(key []byte) ([]byte, bool, error) { return (&badgerSnapshot{txn: w.txn}).Get(key) }
func (w *badgerWriter) Scan(start, end []byte) (Cursor, error) {
	return (&badgerSnapshot{txn: w.txn}).Scan(start, end)
}
func (w *badgerWriter) Discard() { w.txn.Discard() }

func (w *badgerWriter) Set(key, value []byte) error    { return w.txn.Set(key, value) }
func (w *badgerWriter) Delete(key []byte) error        { return w.txn.Delete(key) }
func (w *badgerWriter) Commit() error                  { return w.txn.Commit() }
func (w *badgerWriter) Rollback()                      { w.txn.Discard() }

type badgerCursor struct {
	it      *badger.Iterator
	end     []byte
	started bool
}

func (c *badgerCursor) Next() bool {
	if !c.started {
		c.started = true
	} else {
		c.it.Next()
	}
	if !c.it.Valid() {
		return false
	}
	if c.end != nil && compareBytes(c.it.Item().Key(), c.end) >= 0 {
		return false
	}
	return true
}

func (c *badgerCursor) Key() []byte { return c.it.Item().KeyCopy(nil) }

func (c *badgerCursor) Value() ([]byte, error) {
	var value []byte
	err := c.it.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	return value, err
}

func (c *badgerCursor) Close() { c.it.Close() }

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// DB exposes the underlying *badger.DB for Backup/Restore, which need
// badger-specific streaming APIs with no generic Backend equivalent.
func (b *badgerBackend) DB() *badger.DB { return b.db }
