// Package strided describes n-dimensional views over flat storage.
//
// A [Layout] maps a multi-index (i0, i1, ..., in) to the storage position
//
//	Offset + i0*Strides[0] + i1*Strides[1] + ... + in*Strides[n]
//
// Strides are counted in elements, not bytes. Three kinds of view are
// expressible without touching the storage:
//
//   - Broadcast: a stretched dimension gets stride 0, so every position along
//     it reads the same element. See [Layout.BroadcastTo].
//   - Basic selection: integers fold into Offset and drop their axis; ranges
//     move Offset to the first selected element and multiply the stride by the
//     step (negative steps give negative strides). See [Layout.Select].
//   - Reshape: when the old strides can be regrouped into the new dimensions,
//     the reshape is a pure metadata change. See [Layout.Reshape].
//
// Anything else, namely mask selections and reshapes across broadcast or
// non-contiguous views, is resolved into an explicit offset table by
// [Layout.Offsets] or [Layout.Gather]; callers copy the addressed elements
// into fresh dense storage.
//
// # Row-major Enumeration
//
// Offset tables are produced by walking the output dimensions outermost
// first, recursing one dimension at a time and emitting the innermost
// dimension in a single loop:
//
//  1. For each position in the current dimension, add its contribution
//     (a stride multiple, or a table entry for a gathered dimension)
//  2. Recurse into the next dimension until the innermost is reached
//  3. At the innermost dimension, append the offsets of the whole row
package strided
