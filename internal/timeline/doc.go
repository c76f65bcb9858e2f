// Package timeline defines the label, tier, and label-file model shared by
// every alignment operation.
//
// A Label is one annotation with a start and end time. A Tier is an ordered
// sequence of labels over a span, and mutation goes through Append and the
// gap helpers so temporal ordering is enforced at the container, not by
// caller convention. A LabelFile groups the tiers read from or written to a
// single annotation file.
//
// All boundary comparisons share a single tolerance, Epsilon. Two times
// within Epsilon of each other are the same boundary; a gap or overlap
// smaller than Epsilon does not exist.
package timeline
