// Package index resolves index expressions against a known batch shape.
//
// An expression is a list of [Term] values, each one of:
//
//   - Integer: selects one position along an axis and removes the axis
//   - Slice: selects a (possibly strided, possibly reversed) range and keeps
//     the axis with its reduced extent; negative bounds count from the end
//     and out of range bounds are clamped to the axis
//   - Ellipsis: stands for as many full slices as needed to cover the
//     remaining axes (at most one per expression)
//   - Mask: a boolean array covering one or more consecutive axes; the masked
//     axes collapse into a single axis whose length is the number of true
//     entries (at most one per expression)
//
// # Resolution
//
// [Resolve] works in two passes:
//
//  1. Count the axes consumed by non-ellipsis terms (a mask consumes its own
//     rank) and expand the ellipsis, or pad the end with full slices when
//     there is no ellipsis, so the expression covers the batch rank exactly
//  2. Walk the expanded terms left to right, binding each to its axis or
//     axes, normalising negative integers and clamping slices
//
// The result is a [Selection]: one [Axis] entry per term, together with the
// output batch shape. Axes beyond the resolved rank (for example the element
// dimensions of a record field) are never touched by a Selection.
//
// [Parse] turns textual expressions such as "0, ..., 1:3" or ":, ::-1" into
// terms.
package index
