package batched

import "fmt"

// Role says whether a field holds an array or a nested record.
type Role uint8

const (
	RoleLeaf Role = iota
	RoleNested
)

func (r Role) String() string {
	if r == RoleNested {
		return "nested"
	}
	return "leaf"
}

// FieldSpec declares one field of a Schema.
type FieldSpec struct {
	Name string
	Role Role

	// ElementRank is the number of trailing dimensions private to a leaf
	// field. They are split off when the field is bound and are never
	// broadcast, reshaped or indexed.
	ElementRank int

	// Schema is the record type of a nested field.
	Schema *Schema
}

// LeafField declares an array field with elementRank trailing element
// dimensions.
func LeafField(name string, elementRank int) FieldSpec {
	return FieldSpec{Name: name, Role: RoleLeaf, ElementRank: elementRank}
}

// NestedField declares a field holding a record of type s.
func NestedField(name string, s *Schema) FieldSpec {
	return FieldSpec{Name: name, Role: RoleNested, Schema: s}
}

// Schema is the fixed, ordered field list of one record type.
type Schema struct {
	name   string
	fields []FieldSpec
	byName map[string]int
}

// NewSchema validates and returns a record type. Field names must be unique
// and non-empty and may not contain the path separator.
func NewSchema(name string, fields ...FieldSpec) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: schema name cannot be empty", ErrInvalidSchema)
	}

	s := &Schema{
		name:   name,
		fields: make([]FieldSpec, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		switch {
		case f.Name == "" || !validFieldName(f.Name):
			return nil, fmt.Errorf("%w: %s field %d has invalid name %q", ErrInvalidSchema, name, i, f.Name)
		case f.Role == RoleLeaf && f.ElementRank < 0:
			return nil, fmt.Errorf("%w: %s.%s has negative element rank %d", ErrInvalidSchema, name, f.Name, f.ElementRank)
		case f.Role == RoleNested && f.Schema == nil:
			return nil, fmt.Errorf("%w: %s.%s is nested but has no schema", ErrInvalidSchema, name, f.Name)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s declares %q twice", ErrInvalidSchema, name, f.Name)
		}
		s.fields[i] = f
		s.byName[f.Name] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. It simplifies
// package-level schema variables.
func MustSchema(name string, fields ...FieldSpec) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the record type name.
func (s *Schema) Name() string {
	return s.name
}

// Fields returns the field declarations in order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declaration of name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}
