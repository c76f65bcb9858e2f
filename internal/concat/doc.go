// Package concat merges independently produced label files into one
// continuous timeline.
//
// Inputs are ordered by their effective span start, never by argument order,
// so the same set of files always yields the same bytes. Overlapping spans
// and tiers that are not closed to their boundaries are fatal: there is no
// principled way to reconcile colliding boundaries, and gap-filling here
// would only mask bugs in whatever produced the inputs.
package concat
