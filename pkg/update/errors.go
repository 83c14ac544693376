// Package update executes a SPARQL 1.1 Update request (a sequence of
// algebra.Update operations) against a storage.Store inside a single
// storage-writer transaction, grounded on
// original_source/lib/oxigraph/src/sparql/update.rs's SimpleUpdateEvaluator,
// since this codebase's query executors are read-only and have no update
// counterpart to adapt from.
package update

import (
	"errors"
	"fmt"
)

// ErrGraphAlreadyExists is CREATE's failure when the named graph already
// holds quads (or was itself created) and the operation is not silent.
var ErrGraphAlreadyExists = errors.New("update: graph already exists")

// ErrGraphDoesNotExist is CLEAR/DROP's failure against a named graph the
// store has never seen, when the operation is not silent.
var ErrGraphDoesNotExist = errors.New("update: graph does not exist")

// ErrNoLoader is Load's failure when the executor was not given a Loader,
// since this core declares document parsing out of scope (§ non-goals)
// and never speaks Turtle/RDF-XML/etc. itself.
var ErrNoLoader = errors.New("update: no Loader configured for LOAD")

// UpdateError wraps a failure from one operation in an update request with
// the zero-based index of the operation that failed; it is the only typed
// error in this module.
type UpdateError struct {
	Op  int
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update: operation %d: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
