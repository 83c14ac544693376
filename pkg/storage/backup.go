package storage

import (
	"fmt"
	"io"
	"os"
)

// Backup streams a full copy of the database to w, badger's native KV log
// format. It fails with ErrUnsupportedOperation on an in-memory store,
// since there is nothing durable to snapshot to a byte stream.
func (s *Store) Backup(w io.Writer) error {
	bb, ok := s.backend.(*badgerBackend)
	if !ok || bb.IsInMemory() {
		return ErrUnsupportedOperation
	}
	_, err := bb.DB().Backup(w, 0)
	return err
}

// Restore loads a backup stream produced by Backup into destDir, which
// must not already contain a database: restoring into a non-empty
// directory is refused rather than silently merging two keyspaces' worth
// of dictionary ids, which are only meaningful within the store instance
// that minted them.
func Restore(destDir string, r io.Reader, logger func(string)) error {
	entries, err := os.ReadDir(destDir)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("storage: restore destination %q is not empty: %w", destDir, ErrUnsupportedOperation)
	}
	bb, err := NewBadgerBackend(destDir, nil)
	if err != nil {
		return err
	}
	defer bb.Close()
	if logger != nil {
		logger(fmt.Sprintf("storage: restoring into %s", destDir))
	}
	return bb.DB().Load(r, 256)
}
