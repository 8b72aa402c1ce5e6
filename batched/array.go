package batched

import (
	"fmt"

	"github.com/robert-malhotra/go-batched/internal/index"
	"github.com/robert-malhotra/go-batched/internal/shape"
	"github.com/robert-malhotra/go-batched/internal/strided"
)

// Array is an n-dimensional view over shared storage.
//
// Broadcasting, integer and slice indexing and compatible reshapes return
// views that alias the storage of the source array. Mask indexing and
// reshapes the view's strides cannot express return fresh storage. No
// operation writes into existing storage.
type Array[T Element] struct {
	data   []T
	layout strided.Layout
}

// NewArray wraps data, laid out row-major, as an array of the given
// dimensions. The slice is not copied.
func NewArray[T Element](data []T, dims ...int) (*Array[T], error) {
	s := shape.Of(dims...)
	if err := s.Validate(); err != nil {
		return nil, shapeError(err)
	}
	if len(data) != s.NumElements() {
		return nil, fmt.Errorf("%d values for shape %v (%d elements): %w",
			len(data), s, s.NumElements(), ErrShapeMismatch)
	}
	return &Array[T]{data: data, layout: strided.Dense(s)}, nil
}

// Zeros returns a zero-filled array. It panics on negative dimensions.
func Zeros[T Element](dims ...int) *Array[T] {
	return filled[T](dims, func(int) T {
		var zero T
		return zero
	})
}

// Ones returns an array filled with ones (true for bool arrays). It panics
// on negative dimensions.
func Ones[T Element](dims ...int) *Array[T] {
	return filled[T](dims, func(int) T { return fromInt[T](1) })
}

// Arange returns an array whose row-major elements are 0, 1, 2, ... . For
// bool arrays the elements alternate false, true. It panics on negative
// dimensions.
func Arange[T Element](dims ...int) *Array[T] {
	return filled[T](dims, func(i int) T {
		if DTypeOf[T]() == Bool {
			return fromInt[T](i % 2)
		}
		return fromInt[T](i)
	})
}

// Scalar returns a rank-0 array holding v.
func Scalar[T Element](v T) *Array[T] {
	return &Array[T]{data: []T{v}, layout: strided.Dense(Shape{})}
}

func filled[T Element](dims []int, fn func(i int) T) *Array[T] {
	s := shape.Of(dims...)
	if err := s.Validate(); err != nil {
		panic(err)
	}
	data := make([]T, s.NumElements())
	for i := range data {
		data[i] = fn(i)
	}
	return &Array[T]{data: data, layout: strided.Dense(s)}
}

func fromInt[T Element](i int) T {
	var out any
	switch any(*new(T)).(type) {
	case bool:
		out = i != 0
	case int8:
		out = int8(i)
	case int16:
		out = int16(i)
	case int32:
		out = int32(i)
	case int64:
		out = int64(i)
	case uint8:
		out = uint8(i)
	case uint16:
		out = uint16(i)
	case uint32:
		out = uint32(i)
	case uint64:
		out = uint64(i)
	case float32:
		out = float32(i)
	default:
		out = float64(i)
	}
	return out.(T)
}

// Shape returns the dimensions of the array.
func (a *Array[T]) Shape() Shape {
	return a.layout.Shape.Clone()
}

// Rank returns the number of dimensions.
func (a *Array[T]) Rank() int {
	return a.layout.Rank()
}

// Size returns the total number of elements.
func (a *Array[T]) Size() int {
	return a.layout.NumElements()
}

// DType returns the element type.
func (a *Array[T]) DType() DType {
	return DTypeOf[T]()
}

// IsContiguous reports whether the array addresses a dense row-major block
// of its storage.
func (a *Array[T]) IsContiguous() bool {
	return a.layout.IsContiguous()
}

// At returns the element at the given coordinates. Negative coordinates
// count from the end of their axis.
func (a *Array[T]) At(coords ...int) (T, error) {
	var zero T
	if len(coords) != a.Rank() {
		return zero, fmt.Errorf("%w: %d coordinates for rank-%d array", ErrIndex, len(coords), a.Rank())
	}

	off := a.layout.Offset
	for d, c := range coords {
		n := a.layout.Shape[d]
		if c < 0 {
			c += n
		}
		if c < 0 || c >= n {
			return zero, fmt.Errorf("%w: coordinate %d for axis %d with size %d", ErrIndex, coords[d], d, n)
		}
		off += c * a.layout.Strides[d]
	}
	return a.data[off], nil
}

// Values returns the elements in row-major order as a new slice.
func (a *Array[T]) Values() []T {
	offsets := a.layout.Offsets()
	out := make([]T, len(offsets))
	for i, off := range offsets {
		out[i] = a.data[off]
	}
	return out
}

// Contiguous returns a, or a dense copy of a when its view is not a dense
// row-major block.
func (a *Array[T]) Contiguous() *Array[T] {
	if a.IsContiguous() {
		return a
	}
	return &Array[T]{data: a.Values(), layout: strided.Dense(a.layout.Shape)}
}

// BroadcastTo returns a view of a stretched to dims.
func (a *Array[T]) BroadcastTo(dims ...int) (*Array[T], error) {
	l, err := a.layout.BroadcastTo(shape.Of(dims...))
	if err != nil {
		return nil, shapeError(err)
	}
	return &Array[T]{data: a.data, layout: l}, nil
}

// Reshape returns a with new dimensions holding the same elements in
// row-major order. One dimension may be -1 and is then inferred. The result
// is a view when the current strides allow it and a copy otherwise.
func (a *Array[T]) Reshape(dims ...int) (*Array[T], error) {
	out, _, err := a.reshape(shape.Of(dims...))
	return out, err
}

func (a *Array[T]) reshape(target Shape) (*Array[T], bool, error) {
	target, err := shape.Reshape(a.layout.Shape, target)
	if err != nil {
		return nil, false, shapeError(err)
	}
	if l, ok := a.layout.Reshape(target); ok {
		return &Array[T]{data: a.data, layout: l}, false, nil
	}
	return &Array[T]{data: a.Values(), layout: strided.Dense(target)}, true, nil
}

// Index applies an index expression to the leading axes of a.
func (a *Array[T]) Index(terms ...Term) (*Array[T], error) {
	sel, err := index.Resolve(terms, a.layout.Shape)
	if err != nil {
		return nil, indexError(terms, err)
	}
	return a.selectArray(sel)
}

func (a *Array[T]) selectArray(sel *index.Selection) (*Array[T], error) {
	if !sel.HasMask() {
		l, err := a.layout.Select(sel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIndex, err)
		}
		return &Array[T]{data: a.data, layout: l}, nil
	}

	s, offsets, err := a.layout.Gather(sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	data := make([]T, len(offsets))
	for i, off := range offsets {
		data[i] = a.data[off]
	}
	return &Array[T]{data: data, layout: strided.Dense(s)}, nil
}

// String renders the element type and shape, e.g. "float32[4 6 3]".
func (a *Array[T]) String() string {
	if a == nil {
		return "<absent>"
	}
	return a.DType().String() + a.layout.Shape.String()
}

func (a *Array[T]) present() bool {
	return a != nil
}

func (a *Array[T]) broadcastTensor(target Shape) (Tensor, error) {
	out, err := a.BroadcastTo(target...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Array[T]) reshapeTensor(target Shape) (Tensor, bool, error) {
	out, copied, err := a.reshape(target)
	if err != nil {
		return nil, false, err
	}
	return out, copied, nil
}

func (a *Array[T]) selectTensor(sel *index.Selection) (Tensor, error) {
	out, err := a.selectArray(sel)
	if err != nil {
		return nil, err
	}
	return out, nil
}
