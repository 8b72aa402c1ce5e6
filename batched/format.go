package batched

import "strings"

// String renders the record type, batch shape and fields, e.g.
//
//	Bundle(shape=[4 6], a=float32[4 6 3], c=Nested(shape=[4 6], x=float32[4 6 5]), d=<absent>)
func (r *Record) String() string {
	if r == nil {
		return "<absent>"
	}

	var b strings.Builder
	b.WriteString(r.schema.name)
	b.WriteString("(shape=")
	b.WriteString(r.shape.String())
	for i, m := range r.members {
		b.WriteString(", ")
		b.WriteString(r.schema.fields[i].Name)
		b.WriteByte('=')
		if m == nil {
			b.WriteString("<absent>")
			continue
		}
		b.WriteString(m.value().String())
	}
	b.WriteByte(')')
	return b.String()
}
