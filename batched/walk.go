package batched

import (
	"errors"

	"github.com/eapache/queue"
)

// WalkFunc is called for each present field during traversal.
// path is the dotted path of the field from the walked record.
// v is either a Tensor or a *Record.
// Return nil to continue walking, ErrStopWalk to stop without an error, or
// any other error to stop and return it.
type WalkFunc func(path string, v Value) error

// Walk visits every present field of r and of its nested records,
// breadth-first: all fields of r in schema order, then the fields of each
// nested record in the order the records were visited.
//
// Example:
//
//	Walk(rec, func(path string, v Value) error {
//	    switch o := v.(type) {
//	    case *Record:
//	        fmt.Println("Record:", path, "shape:", o.Shape())
//	    case Tensor:
//	        fmt.Println("Array:", path, "shape:", o.Shape())
//	    }
//	    return nil
//	})
func Walk(r *Record, fn WalkFunc) error {
	type pending struct {
		path string
		rec  *Record
	}

	q := queue.New()
	q.Add(pending{path: "", rec: r})
	for q.Length() > 0 {
		p := q.Remove().(pending)
		for i, m := range p.rec.members {
			if m == nil {
				continue
			}
			childPath := JoinPath(p.path, p.rec.schema.fields[i].Name)
			v := m.value()
			if err := fn(childPath, v); err != nil {
				if errors.Is(err, ErrStopWalk) {
					return nil
				}
				return err
			}
			if nested, ok := v.(*Record); ok {
				q.Add(pending{path: childPath, rec: nested})
			}
		}
	}
	return nil
}
