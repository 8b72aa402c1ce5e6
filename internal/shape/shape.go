package shape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrIncompatible  = errors.New("incompatible shapes")
	ErrNegativeDim   = errors.New("negative dimension")
	ErrCountMismatch = errors.New("element count mismatch")
)

// Shape is the list of dimension sizes of an n-dimensional extent.
type Shape []int

// Of builds a Shape from its dimensions, copying the arguments.
func Of(dims ...int) Shape {
	return Shape(dims).Clone()
}

// Clone returns an independent copy. A nil shape clones to an empty, non-nil shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the product of the dimensions (1 for rank 0).
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate returns ErrNegativeDim when any dimension is negative.
func (s Shape) Validate() error {
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("dimension %d is %d: %w", i, d, ErrNegativeDim)
		}
	}
	return nil
}

// Concat returns s followed by tail as a new shape.
func (s Shape) Concat(tail Shape) Shape {
	out := make(Shape, 0, len(s)+len(tail))
	out = append(out, s...)
	return append(out, tail...)
}

// Split divides s into its leading dimensions and its trailing n dimensions.
func (s Shape) Split(n int) (lead, tail Shape, err error) {
	if n < 0 || n > len(s) {
		return nil, nil, fmt.Errorf("cannot take %d trailing dims of rank-%d shape %v: %w", n, len(s), s, ErrIncompatible)
	}
	cut := len(s) - n
	return s[:cut].Clone(), s[cut:].Clone(), nil
}

// String renders the shape as "[4 6 3]"; rank 0 is "[]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Strides returns dense row-major element strides for s.
func Strides(s Shape) []int {
	if len(s) == 0 {
		return []int{}
	}
	strides := make([]int, len(s))
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Broadcast returns the shape both a and b stretch to.
func Broadcast(a, b Shape) (Shape, error) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	out := make(Shape, maxLen)
	for i := 0; i < maxLen; i++ {
		da, db := 1, 1
		if i < len(a) {
			da = a[len(a)-1-i]
		}
		if i < len(b) {
			db = b[len(b)-1-i]
		}

		switch {
		case da == db:
			out[maxLen-1-i] = da
		case da == 1:
			out[maxLen-1-i] = db
		case db == 1:
			out[maxLen-1-i] = da
		default:
			return nil, fmt.Errorf("%v and %v differ at dimension %d (%d vs %d): %w",
				a, b, maxLen-1-i, da, db, ErrIncompatible)
		}
	}
	return out, nil
}

// BroadcastAll folds Broadcast over every shape. With no shapes it returns
// the rank-0 shape.
func BroadcastAll(shapes ...Shape) (Shape, error) {
	out := Shape{}
	for _, s := range shapes {
		var err error
		out, err = Broadcast(out, s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CanBroadcast reports whether from stretches to exactly target.
func CanBroadcast(from, target Shape) bool {
	if len(from) > len(target) {
		return false
	}
	off := len(target) - len(from)
	for i, d := range from {
		if d != 1 && d != target[off+i] {
			return false
		}
	}
	return true
}

// Reshape checks that target holds as many elements as from and returns it
// with a single -1 dimension, if any, replaced by the size that makes the
// element counts agree.
func Reshape(from, target Shape) (Shape, error) {
	out := target.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d == -1:
			return nil, fmt.Errorf("%v has more than one inferred dimension: %w", target, ErrNegativeDim)
		case d < 0:
			return nil, fmt.Errorf("dimension %d of %v is %d: %w", i, target, d, ErrNegativeDim)
		default:
			known *= d
		}
	}

	total := from.NumElements()
	if infer >= 0 {
		if known == 0 || total%known != 0 {
			return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v: %w", from, total, target, ErrCountMismatch)
		}
		out[infer] = total / known
	}

	if out.NumElements() != total {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements): %w",
			from, total, out, out.NumElements(), ErrCountMismatch)
	}
	return out, nil
}
