package batched

import (
	"fmt"
	"strings"
)

// PathSeparator joins the field names of nested records in a field path.
const PathSeparator = "."

// SplitPath splits a field path into its components.
//
// Examples:
//   - "" -> []string{}
//   - "a" -> []string{"a"}
//   - "camera.origins" -> []string{"camera", "origins"}
func SplitPath(path string) []string {
	if path == "" {
		return []string{}
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath joins field names into a path, skipping empty components.
func JoinPath(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, PathSeparator)
}

func validFieldName(name string) bool {
	return name != "" && !strings.Contains(name, PathSeparator)
}

// Lookup resolves a field path through nested records.
//
// Examples:
//   - "a" -> the array field a of r
//   - "c.x" -> the array field x of the nested record c
func (r *Record) Lookup(path string) (Value, error) {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	cur := r
	for i, name := range parts {
		if name == "" {
			return nil, fmt.Errorf("%w: empty component in %q", ErrInvalidPath, path)
		}
		if _, ok := cur.schema.Field(name); !ok {
			return nil, fmt.Errorf("%w: %s has no field %q (path %q)", ErrUnknownField, cur.schema.name, name, path)
		}
		v, ok := cur.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is absent", ErrMissingData, JoinPath(parts[:i+1]...))
		}
		if i == len(parts)-1 {
			return v, nil
		}
		next, ok := v.(*Record)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a nested record", ErrInvalidPath, JoinPath(parts[:i+1]...))
		}
		cur = next
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
}
