package batched

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-batched/internal/shape"
)

// Values maps field names to the values a record is built from. Missing
// names and nil values leave the field absent.
type Values map[string]Value

// Record is an immutable set of named arrays and nested records sharing one
// batch shape.
//
// Every present leaf field has shape Shape() followed by its element shape;
// every present nested record has shape Shape(). Operations never modify a
// record; they return a new one.
type Record struct {
	schema  *Schema
	shape   Shape
	members []member // parallel to schema.fields, nil when absent
	log     *zap.Logger
}

// New builds a record of type s.
//
// The batch view of a leaf is its shape without the declared trailing
// element dimensions; the batch view of a nested record is its shape. The
// record's batch shape is the broadcast of all batch views, and every field
// is broadcast to it without copying.
func (s *Schema) New(values Values, opts ...Option) (*Record, error) {
	options := defaultRecordOptions()
	for _, opt := range opts {
		opt(options)
	}

	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := s.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, s.name, name)
		}
	}

	members := make([]member, len(s.fields))
	present := 0
	for i, f := range s.fields {
		v := values[f.Name]
		if !isPresent(v) {
			continue
		}
		m, err := bind(s, f, v, options.logger)
		if err != nil {
			return nil, err
		}
		members[i] = m
		present++
	}
	if present == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one field", ErrMissingData, s.name)
	}

	batch := Shape{}
	for i, m := range members {
		if m == nil {
			continue
		}
		view := m.batchShape()
		next, err := shape.Broadcast(batch, view)
		if err != nil {
			return nil, fmt.Errorf("%w: %s field %q with batch shape %v: %w",
				ErrShapeMismatch, s.name, s.fields[i].Name, view, err)
		}
		batch = next
	}

	r := &Record{schema: s, shape: batch, members: members, log: options.logger}
	out, err := r.broadcast(batch)
	if err != nil {
		return nil, err
	}

	out.log.Debug("record constructed",
		zap.String("schema", s.name),
		zap.Stringer("shape", out.shape),
		zap.Int("fields", present))
	return out, nil
}

// bind checks v against its declaration and splits off the element shape.
func bind(s *Schema, f FieldSpec, v Value, log *zap.Logger) (member, error) {
	switch f.Role {
	case RoleNested:
		rec, ok := v.(*Record)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s expects a %s record, got %s",
				ErrSchemaMismatch, s.name, f.Name, f.Schema.name, v)
		}
		if rec.schema != f.Schema {
			return nil, fmt.Errorf("%w: %s.%s expects a %s record, got %s",
				ErrSchemaMismatch, s.name, f.Name, f.Schema.name, rec.schema.name)
		}
		return rec, nil

	default:
		t, ok := v.(Tensor)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s expects an array, got %s",
				ErrSchemaMismatch, s.name, f.Name, v)
		}
		_, elem, err := t.Shape().Split(f.ElementRank)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s has shape %v but %d element dimensions",
				ErrShapeMismatch, s.name, f.Name, t.Shape(), f.ElementRank)
		}
		return &leaf{name: f.Name, tensor: t, elem: elem, log: log}, nil
	}
}

// Schema returns the record type.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Shape returns the batch shape.
func (r *Record) Shape() Shape {
	return r.shape.Clone()
}

// NDim returns the number of batch dimensions.
func (r *Record) NDim() int {
	return len(r.shape)
}

// Size returns the number of batch elements.
func (r *Record) Size() int {
	return r.shape.NumElements()
}

// Len returns the size of the leading batch dimension.
func (r *Record) Len() (int, error) {
	if len(r.shape) == 0 {
		return 0, fmt.Errorf("%w: len() of rank-0 %s record", ErrIndex, r.schema.name)
	}
	return r.shape[0], nil
}

// Names returns every declared field name in schema order, present or not.
func (r *Record) Names() []string {
	names := make([]string, len(r.schema.fields))
	for i, f := range r.schema.fields {
		names[i] = f.Name
	}
	return names
}

// Present returns the names of the present fields in schema order.
func (r *Record) Present() []string {
	var names []string
	for i, m := range r.members {
		if m != nil {
			names = append(names, r.schema.fields[i].Name)
		}
	}
	return names
}

// Has reports whether name is declared and present.
func (r *Record) Has(name string) bool {
	_, ok := r.Field(name)
	return ok
}

// Field returns the value of a present field.
func (r *Record) Field(name string) (Value, bool) {
	i, ok := r.schema.byName[name]
	if !ok || r.members[i] == nil {
		return nil, false
	}
	return r.members[i].value(), true
}

// Leaf returns a present array field.
func (r *Record) Leaf(name string) (Tensor, bool) {
	v, ok := r.Field(name)
	if !ok {
		return nil, false
	}
	t, ok := v.(Tensor)
	return t, ok
}

// Nested returns a present nested record field.
func (r *Record) Nested(name string) (*Record, bool) {
	v, ok := r.Field(name)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*Record)
	return rec, ok
}

// ElementShape returns the element dimensions of a present array field.
func (r *Record) ElementShape(name string) (Shape, bool) {
	i, ok := r.schema.byName[name]
	if !ok {
		return nil, false
	}
	l, ok := r.members[i].(*leaf)
	if !ok {
		return nil, false
	}
	return l.elem.Clone(), true
}

// Values returns the present field values, suitable for building another
// record with Schema.New.
func (r *Record) Values() Values {
	out := make(Values, len(r.members))
	for i, m := range r.members {
		if m != nil {
			out[r.schema.fields[i].Name] = m.value()
		}
	}
	return out
}

// Get returns the array field name of r typed as *Array[T].
func Get[T Element](r *Record, name string) (*Array[T], error) {
	f, ok := r.schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, r.schema.name, name)
	}
	if f.Role != RoleLeaf {
		return nil, fmt.Errorf("%w: %s.%s is a nested field", ErrSchemaMismatch, r.schema.name, name)
	}
	t, ok := r.Leaf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is absent", ErrMissingData, r.schema.name, name)
	}
	a, ok := t.(*Array[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s holds %s, not %s",
			ErrFieldType, r.schema.name, name, t.DType(), DTypeOf[T]())
	}
	return a, nil
}

func (r *Record) present() bool {
	return r != nil
}
