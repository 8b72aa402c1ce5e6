package plan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-batched/batched"
)

// ErrInvalidPlan is returned for plans that fail validation.
var ErrInvalidPlan = errors.New("invalid plan")

// Fill names how generated arrays are populated.
const (
	FillZeros  = "zeros"
	FillOnes   = "ones"
	FillArange = "arange"
)

// Plan is a complete inspection plan.
type Plan struct {
	Schemas []SchemaDef `yaml:"schemas"`
	Record  RecordDef   `yaml:"record"`
	Ops     []Op        `yaml:"ops,omitempty"`
}

// SchemaDef declares one record schema.
type SchemaDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef declares one field. Fields naming a schema are nested records;
// all others are array leaves with ElementRank trailing element dimensions.
type FieldDef struct {
	Name        string `yaml:"name"`
	ElementRank int    `yaml:"element_rank,omitempty"`
	Schema      string `yaml:"schema,omitempty"`
}

// RecordDef binds values to the fields of a schema.
type RecordDef struct {
	Schema string              `yaml:"schema"`
	Values map[string]ValueDef `yaml:"values"`
}

// ValueDef describes a generated array, or a nested record when Values is set.
type ValueDef struct {
	Shape  []int               `yaml:"shape,omitempty"`
	DType  string              `yaml:"dtype,omitempty"` // defaults to float32
	Fill   string              `yaml:"fill,omitempty"`  // zeros, ones, arange; defaults to zeros
	Values map[string]ValueDef `yaml:"values,omitempty"`
}

// Op is one shape operation. Exactly one of its fields is set.
type Op struct {
	Reshape   []int  `yaml:"reshape,omitempty,flow"`
	Flatten   bool   `yaml:"flatten,omitempty"`
	Index     string `yaml:"index,omitempty"`
	Broadcast []int  `yaml:"broadcast,omitempty,flow"`
}

// String renders the operation as it is reported by the CLI.
func (o Op) String() string {
	switch {
	case o.Reshape != nil:
		return fmt.Sprintf("reshape %v", o.Reshape)
	case o.Flatten:
		return "flatten"
	case o.Broadcast != nil:
		return fmt.Sprintf("broadcast %v", o.Broadcast)
	default:
		return fmt.Sprintf("index [%s]", o.Index)
	}
}

func (o Op) count() int {
	n := 0
	if o.Reshape != nil {
		n++
	}
	if o.Flatten {
		n++
	}
	if o.Index != "" {
		n++
	}
	if o.Broadcast != nil {
		n++
	}
	return n
}

// Stage is the record produced by one operation.
type Stage struct {
	Op     Op
	Record *batched.Record
}

// DefaultPlan returns the plan printed by "batchinspect example".
func DefaultPlan() *Plan {
	return &Plan{
		Schemas: []SchemaDef{
			{
				Name:   "Nested",
				Fields: []FieldDef{{Name: "x", ElementRank: 1}},
			},
			{
				Name: "Bundle",
				Fields: []FieldDef{
					{Name: "a", ElementRank: 1},
					{Name: "b", ElementRank: 1},
					{Name: "c", Schema: "Nested"},
				},
			},
		},
		Record: RecordDef{
			Schema: "Bundle",
			Values: map[string]ValueDef{
				"a": {Shape: []int{4, 6, 3}, DType: "float32", Fill: FillArange},
				"b": {Shape: []int{6, 2}},
				"c": {Values: map[string]ValueDef{
					"x": {Shape: []int{6, 5}, DType: "int32", Fill: FillOnes},
				}},
			},
		},
		Ops: []Op{
			{Reshape: []int{2, 12}},
			{Flatten: true},
			{Index: "0:4"},
		},
	}
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML plan. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the plan as YAML, creating parent directories as needed.
func (p *Plan) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	data, err := p.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// Marshal encodes the plan as YAML.
func (p *Plan) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the plan for structural errors. Shape compatibility is
// checked later, when the record is built.
func (p *Plan) Validate() error {
	defs := make(map[string]SchemaDef, len(p.Schemas))
	for _, s := range p.Schemas {
		if s.Name == "" {
			return fmt.Errorf("%w: schema without a name", ErrInvalidPlan)
		}
		if _, dup := defs[s.Name]; dup {
			return fmt.Errorf("%w: schema %q declared twice", ErrInvalidPlan, s.Name)
		}
		defs[s.Name] = s
	}
	for _, s := range p.Schemas {
		for _, f := range s.Fields {
			if f.Schema == "" {
				continue
			}
			if _, ok := defs[f.Schema]; !ok {
				return fmt.Errorf("%w: field %s.%s refers to unknown schema %q", ErrInvalidPlan, s.Name, f.Name, f.Schema)
			}
			if f.ElementRank != 0 {
				return fmt.Errorf("%w: nested field %s.%s cannot have an element rank", ErrInvalidPlan, s.Name, f.Name)
			}
		}
	}

	root, ok := defs[p.Record.Schema]
	if !ok {
		return fmt.Errorf("%w: record uses unknown schema %q", ErrInvalidPlan, p.Record.Schema)
	}
	if err := validateValues(defs, root, p.Record.Values, root.Name); err != nil {
		return err
	}

	for i, op := range p.Ops {
		if op.count() != 1 {
			return fmt.Errorf("%w: op %d must set exactly one of reshape, flatten, index, broadcast", ErrInvalidPlan, i)
		}
	}
	return nil
}

func validateValues(defs map[string]SchemaDef, s SchemaDef, values map[string]ValueDef, path string) error {
	for _, name := range sortedKeys(values) {
		v := values[name]
		fieldPath := batched.JoinPath(path, name)

		var field *FieldDef
		for i := range s.Fields {
			if s.Fields[i].Name == name {
				field = &s.Fields[i]
				break
			}
		}
		if field == nil {
			return fmt.Errorf("%w: %s has no field %q", ErrInvalidPlan, s.Name, name)
		}

		if field.Schema != "" {
			if v.Values == nil {
				return fmt.Errorf("%w: %s is a nested record and needs values", ErrInvalidPlan, fieldPath)
			}
			if err := validateValues(defs, defs[field.Schema], v.Values, fieldPath); err != nil {
				return err
			}
			continue
		}

		if v.Values != nil {
			return fmt.Errorf("%w: %s is an array field and cannot have nested values", ErrInvalidPlan, fieldPath)
		}
		if v.DType != "" {
			if _, err := batched.ParseDType(v.DType); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidPlan, fieldPath, err)
			}
		}
		switch v.Fill {
		case "", FillZeros, FillOnes, FillArange:
		default:
			return fmt.Errorf("%w: %s: unknown fill %q", ErrInvalidPlan, fieldPath, v.Fill)
		}
		for _, d := range v.Shape {
			if d < 0 {
				return fmt.Errorf("%w: %s: negative dimension in %v", ErrInvalidPlan, fieldPath, v.Shape)
			}
		}
	}
	return nil
}

// Build constructs the plan's schemas and its record. Records log through
// logger.
func (p *Plan) Build(logger *zap.Logger) (*batched.Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &builder{
		defs:    make(map[string]SchemaDef, len(p.Schemas)),
		schemas: make(map[string]*batched.Schema, len(p.Schemas)),
		visit:   make(map[string]bool),
		log:     logger,
	}
	for _, s := range p.Schemas {
		b.defs[s.Name] = s
	}

	s, err := b.schema(p.Record.Schema)
	if err != nil {
		return nil, err
	}
	r, err := b.record(s, p.Record.Values, p.Record.Schema)
	if err != nil {
		return nil, err
	}
	logger.Debug("plan record built",
		zap.String("schema", s.Name()),
		zap.Stringer("shape", r.Shape()))
	return r, nil
}

// Apply runs the plan's operations in order, each on the result of the
// previous one, and returns every intermediate record.
func (p *Plan) Apply(r *batched.Record) ([]Stage, error) {
	stages := make([]Stage, 0, len(p.Ops))
	cur := r
	for i, op := range p.Ops {
		next, err := applyOp(cur, op)
		if err != nil {
			return stages, fmt.Errorf("op %d (%s): %w", i, op, err)
		}
		stages = append(stages, Stage{Op: op, Record: next})
		cur = next
	}
	return stages, nil
}

func applyOp(r *batched.Record, op Op) (*batched.Record, error) {
	switch {
	case op.Reshape != nil:
		return r.Reshape(op.Reshape...)
	case op.Flatten:
		return r.Flatten()
	case op.Broadcast != nil:
		return r.BroadcastTo(op.Broadcast...)
	default:
		return r.IndexString(op.Index)
	}
}

type builder struct {
	defs    map[string]SchemaDef
	schemas map[string]*batched.Schema
	visit   map[string]bool
	log     *zap.Logger
}

// schema builds the named schema after the schemas it nests.
func (b *builder) schema(name string) (*batched.Schema, error) {
	if s, ok := b.schemas[name]; ok {
		return s, nil
	}
	if b.visit[name] {
		return nil, fmt.Errorf("%w: schema %q nests itself", ErrInvalidPlan, name)
	}
	b.visit[name] = true
	defer delete(b.visit, name)

	def := b.defs[name]
	fields := make([]batched.FieldSpec, 0, len(def.Fields))
	for _, f := range def.Fields {
		if f.Schema == "" {
			fields = append(fields, batched.LeafField(f.Name, f.ElementRank))
			continue
		}
		nested, err := b.schema(f.Schema)
		if err != nil {
			return nil, err
		}
		fields = append(fields, batched.NestedField(f.Name, nested))
	}

	s, err := batched.NewSchema(name, fields...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	b.schemas[name] = s
	return s, nil
}

func (b *builder) record(s *batched.Schema, defs map[string]ValueDef, path string) (*batched.Record, error) {
	values := make(batched.Values, len(defs))
	for _, name := range sortedKeys(defs) {
		v := defs[name]
		f, _ := s.Field(name)
		if f.Role == batched.RoleNested {
			nested, err := b.record(f.Schema, v.Values, batched.JoinPath(path, name))
			if err != nil {
				return nil, err
			}
			values[name] = nested
			continue
		}
		arr, err := makeArray(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", batched.JoinPath(path, name), err)
		}
		values[name] = arr
	}

	r, err := s.New(values, batched.WithLogger(b.log))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", path, err)
	}
	return r, nil
}

// makeArray generates the array a ValueDef describes.
func makeArray(v ValueDef) (batched.Value, error) {
	dt := batched.Float32
	if v.DType != "" {
		var err error
		if dt, err = batched.ParseDType(v.DType); err != nil {
			return nil, err
		}
	}

	switch dt {
	case batched.Bool:
		return fill[bool](v)
	case batched.Int8:
		return fill[int8](v)
	case batched.Int16:
		return fill[int16](v)
	case batched.Int32:
		return fill[int32](v)
	case batched.Int64:
		return fill[int64](v)
	case batched.Uint8:
		return fill[uint8](v)
	case batched.Uint16:
		return fill[uint16](v)
	case batched.Uint32:
		return fill[uint32](v)
	case batched.Uint64:
		return fill[uint64](v)
	case batched.Float64:
		return fill[float64](v)
	default:
		return fill[float32](v)
	}
}

func fill[T batched.Element](v ValueDef) (batched.Value, error) {
	for _, d := range v.Shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", batched.ErrShapeMismatch, v.Shape)
		}
	}
	switch strings.ToLower(v.Fill) {
	case FillOnes:
		return batched.Ones[T](v.Shape...), nil
	case FillArange:
		return batched.Arange[T](v.Shape...), nil
	default:
		return batched.Zeros[T](v.Shape...), nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
