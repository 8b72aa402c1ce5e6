package batched

import (
	"github.com/robert-malhotra/go-batched/internal/index"
	"github.com/robert-malhotra/go-batched/internal/shape"
)

// Shape is the list of dimension sizes of an array or record.
type Shape = shape.Shape

// Value is anything a record field can hold: an *Array[T] or a nested
// *Record. A nil Value (or a nil pointer of either kind) marks the field
// absent.
type Value interface {
	// Shape returns the full shape: batch dimensions followed, for arrays,
	// by the element dimensions.
	Shape() Shape
	String() string

	present() bool
}

// Tensor is the element-type-erased view of an *Array[T]. Use Get or a type
// assertion to recover the typed array.
type Tensor interface {
	Value
	DType() DType
	Rank() int
	Size() int
	IsContiguous() bool

	broadcastTensor(target Shape) (Tensor, error)
	reshapeTensor(target Shape) (t Tensor, copied bool, err error)
	selectTensor(sel *index.Selection) (Tensor, error)
}

func isPresent(v Value) bool {
	return v != nil && v.present()
}
