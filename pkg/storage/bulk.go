package storage

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/quadcore/quadcore/pkg/rdf"
)

// BulkLoad writes quads from source directly into the indexes outside the
// normal single-writer transaction discipline: it is not atomic, and a
// quad inserted by BulkLoad wins over a pending delete of the same quad
// staged in a concurrently open WriteTx, since it commits its own batches
// as it goes rather than waiting on the writer's eventual Commit.
//
// Progress is logged every reportEvery quads using go-humanize to format
// the running count, matching how a long-running import reports itself to
// an operator watching logs.
func (s *Store) BulkLoad(source func(yield func(*rdf.Quad) error) error, reportEvery int) (loaded uint64, err error) {
	w, err := s.backend.NewWriter()
	if err != nil {
		return 0, err
	}
	rtx := &ReadTx{store: s, snap: w}
	wtx := &WriteTx{rtx: rtx, w: w}

	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		if err := w.Commit(); err != nil {
			return err
		}
		w, err = s.backend.NewWriter()
		if err != nil {
			return err
		}
		rtx.snap = w
		wtx.w = w
		pending = 0
		return nil
	}

	yieldErr := source(func(q *rdf.Quad) error {
		enc, encErr := wtx.EncodeQuad(q)
		if encErr != nil {
			return fmt.Errorf("storage: bulk load: encode quad: %w", encErr)
		}
		if insErr := wtx.Insert(enc); insErr != nil {
			return insErr
		}
		loaded++
		pending++
		if reportEvery > 0 && loaded%uint64(reportEvery) == 0 {
			if s.logger != nil {
				s.logger.Printf("bulk load: %s quads loaded", humanize.Comma(int64(loaded)))
			}
			if err := flush(); err != nil {
				return err
			}
		}
		return nil
	})
	if yieldErr != nil {
		w.Rollback()
		return loaded, yieldErr
	}
	if err := w.Commit(); err != nil {
		return loaded, err
	}
	if s.logger != nil {
		s.logger.Printf("bulk load: finished, %s quads total", humanize.Comma(int64(loaded)))
	}
	return loaded, nil
}

// EncodeQuad encodes all four terms of q against this transaction's codec.
func (t *WriteTx) EncodeQuad(q *rdf.Quad) (Quad, error) {
	s, err := t.Encode(q.Subject)
	if err != nil {
		return Quad{}, err
	}
	p, err := t.Encode(q.Predicate)
	if err != nil {
		return Quad{}, err
	}
	o, err := t.Encode(q.Object)
	if err != nil {
		return Quad{}, err
	}
	g, err := t.Encode(q.Graph)
	if err != nil {
		return Quad{}, err
	}
	return Quad{s, p, o, g}, nil
}
