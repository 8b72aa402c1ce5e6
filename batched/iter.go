package batched

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// All returns a sequence of the sub-records along the leading batch
// dimension, r.Index(Int(0)), r.Index(Int(1)), ... . Rows are built lazily
// as the sequence is consumed, and the sequence can be ranged over any
// number of times. Rank-0 records cannot be iterated.
//
// Example:
//
//	rows, err := rec.All()
//	if err != nil {
//	    return err
//	}
//	for i, row := range rows {
//	    fmt.Println(i, row.Shape())
//	}
func (r *Record) All() (iter.Seq2[int, *Record], error) {
	n, err := r.Len()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot iterate rank-0 %s record", ErrInvalidOperation, r.schema.name)
	}

	return func(yield func(int, *Record) bool) {
		for i := 0; i < n; i++ {
			row, err := r.Index(Int(i))
			if err != nil {
				r.log.Error("iteration stopped", zap.Int("row", i), zap.Error(err))
				return
			}
			if !yield(i, row) {
				return
			}
		}
	}, nil
}

// Rows returns every sub-record along the leading batch dimension.
func (r *Record) Rows() ([]*Record, error) {
	seq, err := r.All()
	if err != nil {
		return nil, err
	}
	var rows []*Record
	for _, row := range seq {
		rows = append(rows, row)
	}
	return rows, nil
}
