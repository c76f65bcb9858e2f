// Package split cuts a long transcript tier into abutting chunks sized for
// per-segment alignment runs.
//
// Cuts land on existing label boundaries, never inside a label, choosing the
// boundary nearest each multiple of the target duration. Adjacent chunks
// share their boundary time exactly, so chunk outputs aligned separately
// satisfy the closure and abutment preconditions the concatenator enforces
// when stitching them back together.
package split
