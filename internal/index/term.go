package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-batched/internal/shape"
)

// Kind identifies the variant held by a Term.
type Kind uint8

const (
	KindInt Kind = iota
	KindSlice
	KindEllipsis
	KindMask
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindSlice:
		return "slice"
	case KindEllipsis:
		return "ellipsis"
	case KindMask:
		return "mask"
	default:
		return "unknown"
	}
}

// Term is one entry of an index expression.
type Term struct {
	kind Kind

	// KindInt
	index int

	// KindSlice
	start, stop, step          int
	hasStart, hasStop, hasStep bool

	// KindMask
	maskShape shape.Shape
	mask      []bool
}

// Int selects a single position. Negative values count from the end.
func Int(i int) Term {
	return Term{kind: KindInt, index: i}
}

// Slice builds a slice term. Nil bounds are open, a nil step is 1.
func Slice(start, stop, step *int) Term {
	t := Term{kind: KindSlice}
	if start != nil {
		t.start, t.hasStart = *start, true
	}
	if stop != nil {
		t.stop, t.hasStop = *stop, true
	}
	if step != nil {
		t.step, t.hasStep = *step, true
	}
	return t
}

// Range selects [start, stop) with step 1.
func Range(start, stop int) Term {
	return Term{kind: KindSlice, start: start, stop: stop, hasStart: true, hasStop: true}
}

// Full selects a whole axis.
func Full() Term {
	return Term{kind: KindSlice}
}

// Ellipsis expands to full slices over every axis not otherwise indexed.
func Ellipsis() Term {
	return Term{kind: KindEllipsis}
}

// Mask selects the positions where values is true. values is row-major over
// dims and must cover len(dims) consecutive axes of the indexed shape.
func Mask(dims shape.Shape, values []bool) Term {
	return Term{kind: KindMask, maskShape: dims.Clone(), mask: append([]bool(nil), values...)}
}

// WithStart returns a copy of a slice term with its start bound set.
func (t Term) WithStart(start int) Term {
	t.start, t.hasStart = start, true
	return t
}

// WithStop returns a copy of a slice term with its stop bound set.
func (t Term) WithStop(stop int) Term {
	t.stop, t.hasStop = stop, true
	return t
}

// WithStep returns a copy of a slice term with its step set.
func (t Term) WithStep(step int) Term {
	t.step, t.hasStep = step, true
	return t
}

// Kind reports the variant of t.
func (t Term) Kind() Kind {
	return t.kind
}

// span is the number of axes t consumes.
func (t Term) span() int {
	switch t.kind {
	case KindEllipsis:
		return 0
	case KindMask:
		return len(t.maskShape)
	default:
		return 1
	}
}

// String renders t in the syntax accepted by Parse (masks render as
// "mask[2 3]", which Parse does not accept).
func (t Term) String() string {
	switch t.kind {
	case KindInt:
		return strconv.Itoa(t.index)
	case KindEllipsis:
		return "..."
	case KindMask:
		return "mask" + t.maskShape.String()
	}

	var b strings.Builder
	if t.hasStart {
		b.WriteString(strconv.Itoa(t.start))
	}
	b.WriteByte(':')
	if t.hasStop {
		b.WriteString(strconv.Itoa(t.stop))
	}
	if t.hasStep {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(t.step))
	}
	return b.String()
}

// Format renders a whole expression, e.g. "0, ..., 1:3".
func Format(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// bounds clamps the slice to an axis of length n and returns the first
// position, the step and the number of selected positions. Negative bounds
// count from the end.
func (t Term) bounds(n int) (start, step, count int, err error) {
	step = 1
	if t.hasStep {
		step = t.step
	}
	if step == 0 {
		return 0, 0, 0, fmt.Errorf("slice %s: %w", t, ErrZeroStep)
	}

	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}

	clamp := func(v int) int {
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}

	if t.hasStart {
		start = clamp(t.start)
	} else if step < 0 {
		start = upper
	} else {
		start = lower
	}

	stop := upper
	if t.hasStop {
		stop = clamp(t.stop)
	} else if step < 0 {
		stop = lower
	}

	switch {
	case step > 0 && stop > start:
		count = (stop-start-1)/step + 1
	case step < 0 && start > stop:
		count = (start-stop-1)/(-step) + 1
	}
	if count == 0 {
		start = 0
	}
	return start, step, count, nil
}
