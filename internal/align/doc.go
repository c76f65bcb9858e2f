// Package align drives per-segment forced alignment and folds the results
// into continuous phone and word tiers.
//
// The driver walks a source tier's selected labels in time order, hands each
// one to an Aligner together with its audio window, and appends the returned
// labels to accumulating output tiers. Gaps between segments are filled with
// empty labels and a failed segment becomes a single error-status label
// spanning its window, so the output timeline stays contiguous no matter how
// individual segments fare. Overlapping input segments abort the run; they
// cannot be reconciled automatically.
package align
