package index

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a comma-separated index expression: integers, slices
// ("start:stop:step" with any part optional) and "...". A single trailing
// comma is accepted, so "0," equals "0". The empty string yields no terms.
func Parse(expr string) ([]Term, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	items := strings.Split(expr, ",")
	if strings.TrimSpace(items[len(items)-1]) == "" && len(items) > 1 {
		items = items[:len(items)-1]
	}

	terms := make([]Term, 0, len(items))
	for i, item := range items {
		t, err := parseItem(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("item %d of %q: %w", i, expr, err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func parseItem(item string) (Term, error) {
	switch {
	case item == "":
		return Term{}, fmt.Errorf("empty item: %w", ErrSyntax)
	case item == "...":
		return Ellipsis(), nil
	case !strings.Contains(item, ":"):
		v, err := strconv.Atoi(item)
		if err != nil {
			return Term{}, fmt.Errorf("%q is not an integer: %w", item, ErrSyntax)
		}
		return Int(v), nil
	}

	parts := strings.Split(item, ":")
	if len(parts) > 3 {
		return Term{}, fmt.Errorf("%q has more than two colons: %w", item, ErrSyntax)
	}

	bounds := make([]*int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return Term{}, fmt.Errorf("%q in %q is not an integer: %w", p, item, ErrSyntax)
		}
		bounds[i] = &v
	}
	return Slice(bounds[0], bounds[1], bounds[2]), nil
}
