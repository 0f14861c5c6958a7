// Package relgen generates a single Go source file — a versioned
// migration runner plus one function per query — from a schema built
// with package schema and a list of checked package query.Query values.
package relgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/relgenhq/relgen/relerr"
)

// ErrBadSchema is the sentinel every *GenerationError satisfies via
// errors.Is. Emitted code does not refer to it: the generated file
// defines its own Error type whose BadSchema flag marks driver errors
// classified as schema drift (undefined-table, or SQLite's "no such
// table" substring).
var ErrBadSchema = errors.New("relgen: schema mismatch")

// GenerationError reports every problem the query checker collected
// during one generation pass — checking never stops at the first bad
// query, so callers see the complete list. Errors from migration
// planning are not collected here; Generate returns them as-is.
type GenerationError struct {
	Errors []relerr.PathError
}

// Error renders every collected error on its own line.
func (e *GenerationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "relgen: %d generation errors:", len(e.Errors))
	for i, pe := range e.Errors {
		fmt.Fprintf(&b, "\n  [%d] %s", i+1, pe.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is(err, relgen.ErrBadSchema) and errors.As see
// through to every collected error (Go 1.20+ multi-unwrap).
func (e *GenerationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// Is reports whether target is ErrBadSchema — a GenerationError arising
// from a schema/query mismatch is always reported this way.
func (e *GenerationError) Is(target error) bool {
	return target == ErrBadSchema
}

// newGenerationError wraps acc's errors as a *GenerationError, or returns
// nil if acc collected none.
func newGenerationError(errs []relerr.PathError) error {
	if len(errs) == 0 {
		return nil
	}
	return &GenerationError{Errors: errs}
}

// IsGenerationError reports whether err is a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
