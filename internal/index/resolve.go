package index

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-batched/internal/shape"
)

var (
	ErrOutOfRange       = errors.New("index out of range")
	ErrTooManyIndices   = errors.New("too many indices")
	ErrMultipleEllipsis = errors.New("an index can only have a single ellipsis")
	ErrMultipleMasks    = errors.New("an index can only have a single mask")
	ErrMaskShape        = errors.New("mask shape does not match indexed axes")
	ErrZeroStep         = errors.New("slice step cannot be zero")
	ErrSyntax           = errors.New("invalid index syntax")
)

// AxisKind identifies how a resolved axis is selected.
type AxisKind uint8

const (
	AxisInt AxisKind = iota
	AxisRange
	AxisMask
)

// Axis is the resolved selection of one term.
type Axis struct {
	Kind AxisKind

	// Source is the first indexed axis and Span the number of axes covered
	// (always 1 except for masks).
	Source int
	Span   int

	// AxisInt
	Index int

	// AxisRange
	Start int
	Step  int
	Count int

	// AxisMask: coordinates of the true entries, row-major over the masked
	// axes.
	Coords [][]int
}

// Selection is an index expression bound to a concrete shape.
type Selection struct {
	Axes []Axis

	// InShape is the shape the selection was resolved against and OutShape
	// the shape it produces.
	InShape  shape.Shape
	OutShape shape.Shape
}

// HasMask reports whether the selection gathers through a mask and therefore
// cannot be expressed as a strided view.
func (s *Selection) HasMask() bool {
	for _, ax := range s.Axes {
		if ax.Kind == AxisMask {
			return true
		}
	}
	return false
}

// Resolve binds terms to dims.
func Resolve(terms []Term, dims shape.Shape) (*Selection, error) {
	expanded, err := expand(terms, len(dims))
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Axes:     make([]Axis, 0, len(expanded)),
		InShape:  dims.Clone(),
		OutShape: shape.Shape{},
	}

	axis := 0
	for _, t := range expanded {
		switch t.kind {
		case KindInt:
			n := dims[axis]
			i := t.index
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				return nil, fmt.Errorf("index %d for axis %d with size %d: %w", t.index, axis, n, ErrOutOfRange)
			}
			sel.Axes = append(sel.Axes, Axis{Kind: AxisInt, Source: axis, Span: 1, Index: i})

		case KindSlice:
			start, step, count, err := t.bounds(dims[axis])
			if err != nil {
				return nil, err
			}
			sel.Axes = append(sel.Axes, Axis{Kind: AxisRange, Source: axis, Span: 1, Start: start, Step: step, Count: count})
			sel.OutShape = append(sel.OutShape, count)

		case KindMask:
			span := len(t.maskShape)
			covered := dims[axis : axis+span]
			if span == 0 || !covered.Equal(t.maskShape) || len(t.mask) != t.maskShape.NumElements() {
				return nil, fmt.Errorf("mask %v against axes %d..%d of %v: %w",
					t.maskShape, axis, axis+span-1, dims, ErrMaskShape)
			}
			coords := maskCoords(t.maskShape, t.mask)
			sel.Axes = append(sel.Axes, Axis{Kind: AxisMask, Source: axis, Span: span, Count: len(coords), Coords: coords})
			sel.OutShape = append(sel.OutShape, len(coords))
		}
		axis += t.span()
	}

	return sel, nil
}

// expand replaces the ellipsis (or appends to the end when there is none)
// with full slices so the terms consume exactly rank axes.
func expand(terms []Term, rank int) ([]Term, error) {
	consumed := 0
	ellipsis := -1
	masks := 0
	for i, t := range terms {
		switch t.kind {
		case KindEllipsis:
			if ellipsis >= 0 {
				return nil, ErrMultipleEllipsis
			}
			ellipsis = i
		case KindMask:
			masks++
			if masks > 1 {
				return nil, ErrMultipleMasks
			}
		}
		consumed += t.span()
	}
	if consumed > rank {
		return nil, fmt.Errorf("%d axes indexed but only %d available: %w", consumed, rank, ErrTooManyIndices)
	}

	fill := make([]Term, rank-consumed)
	for i := range fill {
		fill[i] = Full()
	}

	out := make([]Term, 0, len(terms)+len(fill))
	if ellipsis < 0 {
		out = append(out, terms...)
		return append(out, fill...), nil
	}
	out = append(out, terms[:ellipsis]...)
	out = append(out, fill...)
	return append(out, terms[ellipsis+1:]...), nil
}

// maskCoords lists the multi-dimensional coordinates of every true entry.
func maskCoords(dims shape.Shape, values []bool) [][]int {
	strides := shape.Strides(dims)
	var coords [][]int
	for flat, v := range values {
		if !v {
			continue
		}
		c := make([]int, len(dims))
		rem := flat
		for d, s := range strides {
			c[d] = rem / s
			rem %= s
		}
		coords = append(coords, c)
	}
	return coords
}
