// Package shape implements the dimension algebra shared by arrays and records.
//
// A [Shape] is an ordered list of non-negative dimension sizes. The empty
// shape describes a rank-0 (scalar) extent holding exactly one element, the
// same convention a scalar dataspace uses.
//
// # Broadcasting
//
// [Broadcast] combines two shapes with the usual right-aligned rule:
//
//  1. Pad the shorter shape on the left with dimensions of size 1
//  2. Compare the shapes dimension by dimension from the right
//  3. Equal sizes are kept; a size of 1 stretches to the other size
//  4. Any other pair is incompatible and reported as [ErrIncompatible]
//
// [BroadcastAll] folds the rule over any number of shapes, and [CanBroadcast]
// checks whether one shape can be stretched to a fixed target without the
// target itself changing.
//
// # Row-major Layout
//
// [Strides] returns element strides for a dense row-major (last dimension
// fastest) layout. All linearisation in this module, including reshape and
// flatten, follows this order.
package shape
