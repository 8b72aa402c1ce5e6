package strided

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-batched/internal/index"
	"github.com/robert-malhotra/go-batched/internal/shape"
)

var (
	ErrRank      = errors.New("selection rank exceeds layout rank")
	ErrBroadcast = errors.New("layout cannot broadcast")
	ErrMask      = errors.New("mask selection is not a view")
)

// Layout is the shape, element strides and base offset of a view.
type Layout struct {
	Shape   shape.Shape
	Strides []int
	Offset  int
}

// Dense returns the row-major layout of a freshly allocated array.
func Dense(s shape.Shape) Layout {
	return Layout{Shape: s.Clone(), Strides: shape.Strides(s), Offset: 0}
}

// Rank returns the number of dimensions.
func (l Layout) Rank() int {
	return len(l.Shape)
}

// NumElements returns the number of addressable positions.
func (l Layout) NumElements() int {
	return l.Shape.NumElements()
}

// IsContiguous reports whether l addresses a dense row-major block.
// Dimensions of size 1 may carry any stride.
func (l Layout) IsContiguous() bool {
	if l.NumElements() == 0 {
		return true
	}
	want := 1
	for d := len(l.Shape) - 1; d >= 0; d-- {
		if l.Shape[d] == 1 {
			continue
		}
		if l.Strides[d] != want {
			return false
		}
		want *= l.Shape[d]
	}
	return true
}

// BroadcastTo stretches l to target. New leading dimensions and stretched
// size-1 dimensions get stride 0.
func (l Layout) BroadcastTo(target shape.Shape) (Layout, error) {
	if !shape.CanBroadcast(l.Shape, target) {
		return Layout{}, fmt.Errorf("%v to %v: %w", l.Shape, target, ErrBroadcast)
	}

	off := len(target) - len(l.Shape)
	strides := make([]int, len(target))
	for i := range target {
		if i < off {
			continue
		}
		src := i - off
		if l.Shape[src] == 1 && target[i] != 1 {
			continue
		}
		strides[i] = l.Strides[src]
	}
	return Layout{Shape: target.Clone(), Strides: strides, Offset: l.Offset}, nil
}

// Select applies a selection without masks to the leading axes of l. Axes
// past the selection's rank are carried over unchanged.
func (l Layout) Select(sel *index.Selection) (Layout, error) {
	if len(sel.InShape) > len(l.Shape) {
		return Layout{}, fmt.Errorf("selection over %v on layout %v: %w", sel.InShape, l.Shape, ErrRank)
	}
	if sel.HasMask() {
		return Layout{}, ErrMask
	}

	out := Layout{Shape: shape.Shape{}, Strides: []int{}, Offset: l.Offset}
	for _, ax := range sel.Axes {
		stride := l.Strides[ax.Source]
		switch ax.Kind {
		case index.AxisInt:
			out.Offset += ax.Index * stride
		case index.AxisRange:
			out.Offset += ax.Start * stride
			out.Shape = append(out.Shape, ax.Count)
			out.Strides = append(out.Strides, stride*ax.Step)
		}
	}

	rank := len(sel.InShape)
	out.Shape = append(out.Shape, l.Shape[rank:]...)
	out.Strides = append(out.Strides, l.Strides[rank:]...)
	return out, nil
}

// Reshape regroups l into target without moving data. ok is false when the
// strides of l cannot express target, in which case the caller must copy.
// The caller has already checked that the element counts agree.
func (l Layout) Reshape(target shape.Shape) (reshaped Layout, ok bool) {
	if l.NumElements() == 0 {
		return Layout{Shape: target.Clone(), Strides: shape.Strides(target), Offset: l.Offset}, true
	}

	var oldDims, oldStrides []int
	for i, d := range l.Shape {
		if d != 1 {
			oldDims = append(oldDims, d)
			oldStrides = append(oldStrides, l.Strides[i])
		}
	}

	newStrides := make([]int, len(target))
	oi, oj := 0, 1
	ni, nj := 0, 1
	for ni < len(target) && oi < len(oldDims) {
		np, op := target[ni], oldDims[oi]
		for np != op {
			if np < op {
				np *= target[nj]
				nj++
			} else {
				op *= oldDims[oj]
				oj++
			}
		}

		// The old dimensions merged into this group must be contiguous
		// relative to each other.
		for k := oi; k < oj-1; k++ {
			if oldStrides[k] != oldDims[k+1]*oldStrides[k+1] {
				return Layout{}, false
			}
		}

		newStrides[nj-1] = oldStrides[oj-1]
		for nk := nj - 1; nk > ni; nk-- {
			newStrides[nk-1] = newStrides[nk] * target[nk]
		}

		ni = nj
		nj++
		oi = oj
		oj++
	}

	last := 1
	if ni > 0 {
		last = newStrides[ni-1]
	}
	for nk := ni; nk < len(target); nk++ {
		newStrides[nk] = last
	}

	return Layout{Shape: target.Clone(), Strides: newStrides, Offset: l.Offset}, true
}

// dim is one output dimension of an enumeration: either a strided run or an
// explicit table of offset contributions.
type dim struct {
	n      int
	stride int
	table  []int
}

// Offsets returns the storage offset of every position of l in row-major
// order.
func (l Layout) Offsets() []int {
	dims := make([]dim, len(l.Shape))
	for i, n := range l.Shape {
		dims[i] = dim{n: n, stride: l.Strides[i]}
	}
	return enumerate(dims, l.Offset, l.NumElements())
}

// Gather applies any selection, masks included, to the leading axes of l and
// returns the resulting shape with the row-major offsets of its elements.
func (l Layout) Gather(sel *index.Selection) (shape.Shape, []int, error) {
	if len(sel.InShape) > len(l.Shape) {
		return nil, nil, fmt.Errorf("selection over %v on layout %v: %w", sel.InShape, l.Shape, ErrRank)
	}

	base := l.Offset
	var dims []dim
	for _, ax := range sel.Axes {
		switch ax.Kind {
		case index.AxisInt:
			base += ax.Index * l.Strides[ax.Source]
		case index.AxisRange:
			stride := l.Strides[ax.Source]
			base += ax.Start * stride
			dims = append(dims, dim{n: ax.Count, stride: stride * ax.Step})
		case index.AxisMask:
			table := make([]int, len(ax.Coords))
			for j, c := range ax.Coords {
				for k, v := range c {
					table[j] += v * l.Strides[ax.Source+k]
				}
			}
			dims = append(dims, dim{n: ax.Count, table: table})
		}
	}

	rank := len(sel.InShape)
	for i := rank; i < len(l.Shape); i++ {
		dims = append(dims, dim{n: l.Shape[i], stride: l.Strides[i]})
	}

	out := make(shape.Shape, len(dims))
	for i, d := range dims {
		out[i] = d.n
	}
	return out, enumerate(dims, base, out.NumElements()), nil
}

func enumerate(dims []dim, base, total int) []int {
	offsets := make([]int, 0, total)
	if total == 0 {
		return offsets
	}
	if len(dims) == 0 {
		return append(offsets, base)
	}
	return enumerateRecursive(dims, 0, base, offsets)
}

func enumerateRecursive(dims []dim, d int, base int, offsets []int) []int {
	cur := dims[d]
	if d == len(dims)-1 {
		for i := 0; i < cur.n; i++ {
			offsets = append(offsets, base+cur.step(i))
		}
		return offsets
	}
	for i := 0; i < cur.n; i++ {
		offsets = enumerateRecursive(dims, d+1, base+cur.step(i), offsets)
	}
	return offsets
}

func (d dim) step(i int) int {
	if d.table != nil {
		return d.table[i]
	}
	return i * d.stride
}
