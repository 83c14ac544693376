package storage

import "errors"

// errMalformedKey reports an index key that didn't decompose into four
// fixed-width encoded terms, which indicates on-disk corruption (writes
// always produce exactly 4*encoding.EncodedTermSize-byte keys).
var errMalformedKey = errors.New("storage: malformed index key")
