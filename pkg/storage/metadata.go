package storage

import "fmt"

// CurrentFormatVersion is written to a fresh store by EnsureFormat and
// checked by later EnsureFormat calls: a store recorded with another
// version fails that check rather than having its keys silently
// misinterpreted. Open does not call EnsureFormat.
const CurrentFormatVersion = 1

var metadataFormatVersionKey = prefixKey(cfMetadata, []byte("format_version"))
var metadataRDF12Key = prefixKey(cfMetadata, []byte("rdf12_enabled"))

// ErrIncompatibleFormatVersion is returned by EnsureFormat when an existing
// store's recorded version doesn't match CurrentFormatVersion.
var ErrIncompatibleFormatVersion = fmt.Errorf("storage: incompatible format version")

// EnsureFormat writes the format version and feature flags on first open of
// an empty store, or validates the format version of an existing store.
// rdf12 is recorded as the rdf12_enabled flag on the first call only; on
// an existing store the argument is ignored, so the flag stays latched at
// its first value. The encoder does not read the flag: QuotedTriple terms
// are encoded whatever its value.
func (s *Store) EnsureFormat(rdf12 bool) error {
	w, err := s.backend.NewWriter()
	if err != nil {
		return err
	}
	defer w.Rollback()

	existing, ok, err := w.Get(metadataFormatVersionKey)
	if err != nil {
		return err
	}
	if !ok {
		if err := w.Set(metadataFormatVersionKey, []byte{CurrentFormatVersion}); err != nil {
			return err
		}
		flag := byte(0)
		if rdf12 {
			flag = 1
		}
		if err := w.Set(metadataRDF12Key, []byte{flag}); err != nil {
			return err
		}
		return w.Commit()
	}
	if len(existing) != 1 || existing[0] != CurrentFormatVersion {
		return ErrIncompatibleFormatVersion
	}
	return nil
}

// RDF12Enabled reports the latched rdf12_enabled flag EnsureFormat wrote on
// its first call (false if it was never written).
func (s *Store) RDF12Enabled() (bool, error) {
	snap := s.backend.NewSnapshot()
	defer snap.Discard()
	value, ok, err := snap.Get(metadataRDF12Key)
	if err != nil || !ok {
		return false, err
	}
	return len(value) == 1 && value[0] == 1, nil
}
