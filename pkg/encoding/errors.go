package encoding

import "errors"

// ErrMissingDictionaryEntry is returned when an encoded term's dictionary id
// cannot be resolved: either the backing store was corrupted, or the
// EncodedTerm came from a different Store instance's dictionary (dictionary
// ids are scoped per store and are never comparable across stores).
var ErrMissingDictionaryEntry = errors.New("encoding: missing dictionary entry")
