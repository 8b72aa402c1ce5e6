// Package batched provides records of n-dimensional arrays that share and
// broadcast a common set of leading batch dimensions.
package batched

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-batched/internal/index"
)

// Common errors
var (
	ErrMissingData      = errors.New("no field data present")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrIndex            = errors.New("index error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnknownField     = errors.New("unknown field")
	ErrSchemaMismatch   = errors.New("value does not match field schema")
	ErrFieldType        = errors.New("field has a different element type")
	ErrInvalidSchema    = errors.New("invalid schema")
	ErrInvalidPath      = errors.New("invalid field path")
)

// ErrStopWalk can be returned from a WalkFunc to stop walking without an error.
var ErrStopWalk = errors.New("walk stopped")

// indexError folds a resolver failure into ErrIndex.
func indexError(terms []index.Term, err error) error {
	return fmt.Errorf("%w: [%s]: %w", ErrIndex, index.Format(terms), err)
}

// shapeError folds a shape algebra failure into ErrShapeMismatch.
func shapeError(err error) error {
	return fmt.Errorf("%w: %w", ErrShapeMismatch, err)
}
