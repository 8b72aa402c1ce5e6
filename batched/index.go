package batched

import (
	"fmt"

	"github.com/robert-malhotra/go-batched/internal/index"
)

// Term is one entry of an index expression. Build terms with Int, Slice,
// All, Ellipsis and Mask, or parse them with ParseIndex.
type Term = index.Term

// Int selects one position along an axis and removes the axis. Negative
// values count from the end.
func Int(i int) Term {
	return index.Int(i)
}

// Slice selects [start, stop) along an axis, keeping the axis. Out of range
// bounds are clamped; negative bounds count from the end.
func Slice(start, stop int) Term {
	return index.Range(start, stop)
}

// SliceStep is Slice with an explicit step, which may be negative but not
// zero.
func SliceStep(start, stop, step int) Term {
	return index.Range(start, stop).WithStep(step)
}

// SliceFrom selects from start to the end of the axis.
func SliceFrom(start int) Term {
	return index.Full().WithStart(start)
}

// SliceTo selects from the beginning of the axis up to stop.
func SliceTo(stop int) Term {
	return index.Full().WithStop(stop)
}

// All selects a whole axis. Use All().WithStep(-1) to reverse it.
func All() Term {
	return index.Full()
}

// Ellipsis stands for full slices over every axis not otherwise indexed.
func Ellipsis() Term {
	return index.Ellipsis()
}

// Mask selects the positions where m is true. m must have the shape of the
// consecutive axes it is placed over; those axes collapse into one axis
// whose length is the number of true entries.
func Mask(m *Array[bool]) Term {
	return index.Mask(m.Shape(), m.Values())
}

// ParseIndex parses a textual index expression such as "0, ..., 1:3" or
// ":, ::-1".
func ParseIndex(expr string) ([]Term, error) {
	terms, err := index.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	return terms, nil
}
