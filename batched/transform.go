package batched

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-batched/internal/index"
	"github.com/robert-malhotra/go-batched/internal/shape"
)

// member is the capability shared by array fields and nested records. Every
// method works on batch dimensions only; element dimensions of array fields
// ride along unchanged.
type member interface {
	batchShape() Shape
	broadcastBatch(batch Shape) (member, error)
	reshapeBatch(batch Shape) (member, error)
	selectBatch(sel *index.Selection) (member, error)
	value() Value
}

// leaf is a bound array field.
type leaf struct {
	name   string
	tensor Tensor
	elem   Shape
	log    *zap.Logger
}

func (l *leaf) batchShape() Shape {
	s := l.tensor.Shape()
	return s[:len(s)-len(l.elem)]
}

func (l *leaf) with(t Tensor) *leaf {
	return &leaf{name: l.name, tensor: t, elem: l.elem, log: l.log}
}

func (l *leaf) broadcastBatch(batch Shape) (member, error) {
	t, err := l.tensor.broadcastTensor(batch.Concat(l.elem))
	if err != nil {
		return nil, err
	}
	return l.with(t), nil
}

func (l *leaf) reshapeBatch(batch Shape) (member, error) {
	from := l.tensor.Shape()
	t, copied, err := l.tensor.reshapeTensor(batch.Concat(l.elem))
	if err != nil {
		return nil, err
	}
	if copied {
		l.log.Debug("reshape materialised a copy",
			zap.String("field", l.name),
			zap.Stringer("from", from),
			zap.Stringer("to", t.Shape()))
	}
	return l.with(t), nil
}

func (l *leaf) selectBatch(sel *index.Selection) (member, error) {
	t, err := l.tensor.selectTensor(sel)
	if err != nil {
		return nil, err
	}
	if sel.HasMask() {
		l.log.Debug("mask gathered a copy",
			zap.String("field", l.name),
			zap.Stringer("shape", t.Shape()))
	}
	return l.with(t), nil
}

func (l *leaf) value() Value {
	return l.tensor
}

func (r *Record) batchShape() Shape {
	return r.shape
}

func (r *Record) broadcastBatch(batch Shape) (member, error) {
	return r.broadcast(batch)
}

func (r *Record) reshapeBatch(batch Shape) (member, error) {
	return r.derive(batch, func(m member) (member, error) { return m.reshapeBatch(batch) })
}

func (r *Record) selectBatch(sel *index.Selection) (member, error) {
	return r.derive(sel.OutShape, func(m member) (member, error) { return m.selectBatch(sel) })
}

func (r *Record) value() Value {
	return r
}

// derive builds a record of the same type with batch shape batch by mapping
// fn over the present fields. Absent fields stay absent.
func (r *Record) derive(batch Shape, fn func(member) (member, error)) (*Record, error) {
	out := &Record{
		schema:  r.schema,
		shape:   batch.Clone(),
		members: make([]member, len(r.members)),
		log:     r.log,
	}
	for i, m := range r.members {
		if m == nil {
			continue
		}
		next, err := fn(m)
		if err != nil {
			return nil, fmt.Errorf("%s field %q: %w", r.schema.name, r.schema.fields[i].Name, err)
		}
		out.members[i] = next
	}
	return out, nil
}

func (r *Record) broadcast(batch Shape) (*Record, error) {
	return r.derive(batch, func(m member) (member, error) { return m.broadcastBatch(batch) })
}

// BroadcastTo returns r stretched to a larger compatible batch shape.
func (r *Record) BroadcastTo(dims ...int) (*Record, error) {
	target := shape.Of(dims...)
	if !shape.CanBroadcast(r.shape, target) {
		return nil, fmt.Errorf("%w: cannot broadcast %s batch shape %v to %v",
			ErrShapeMismatch, r.schema.name, r.shape, target)
	}
	return r.broadcast(target)
}

// Reshape returns r with a new batch shape holding the same number of batch
// elements, linearised row-major. One dimension may be -1 and is then
// inferred. Element dimensions are preserved and nested records are
// reshaped with the same batch shape.
func (r *Record) Reshape(dims ...int) (*Record, error) {
	target, err := shape.Reshape(r.shape, shape.Of(dims...))
	if err != nil {
		return nil, shapeError(err)
	}
	return r.derive(target, func(m member) (member, error) { return m.reshapeBatch(target) })
}

// Flatten collapses all batch dimensions into one.
func (r *Record) Flatten() (*Record, error) {
	return r.Reshape(r.Size())
}

// Index applies an index expression to the batch dimensions of r and every
// field. Element dimensions are never indexed.
func (r *Record) Index(terms ...Term) (*Record, error) {
	sel, err := index.Resolve(terms, r.shape)
	if err != nil {
		return nil, indexError(terms, err)
	}
	return r.derive(sel.OutShape, func(m member) (member, error) { return m.selectBatch(sel) })
}

// IndexString parses expr with ParseIndex and applies it.
func (r *Record) IndexString(expr string) (*Record, error) {
	terms, err := ParseIndex(expr)
	if err != nil {
		return nil, err
	}
	return r.Index(terms...)
}
