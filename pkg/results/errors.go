package results

import "errors"

// errNotBoolean is returned by a Read*Boolean when the document it was
// given is solutions-shaped instead of boolean-shaped.
var errNotBoolean = errors.New("results: document has no boolean result")

// errUnknownTermType is returned when a parsed binding value names a term
// type none of this format's readers recognize.
var errUnknownTermType = errors.New("results: unknown term type")
