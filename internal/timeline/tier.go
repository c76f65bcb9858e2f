package timeline

import (
	"fmt"
	"strings"
)

// Class identifies the kind of tier.
type Class string

const (
	// ClassInterval tiers hold contiguous [T1, T2] spans.
	ClassInterval Class = "interval"
	// ClassPoint tiers hold instantaneous marks ordered by time.
	ClassPoint Class = "point"
)

// ParseClass converts a string into a known Class.
func ParseClass(value string) (Class, bool) {
	switch Class(strings.ToLower(strings.TrimSpace(value))) {
	case ClassInterval:
		return ClassInterval, true
	case ClassPoint:
		return ClassPoint, true
	}
	return "", false
}

// OverlapError reports a label that begins before the accumulated end of its
// tier. Overlap always means corrupt input or a misbehaving aligner, so
// callers treat it as fatal instead of repairing silently.
type OverlapError struct {
	Tier  string
	Start float64 // offending label start
	End   float64 // accumulated tier end it collides with
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("tier %q: label at %s overlaps accumulated end %s", e.Tier, FormatTime(e.Start), FormatTime(e.End))
}

// Tier is an ordered sequence of labels over a time span. Mutation goes
// through Append and the gap helpers, which enforce temporal ordering; code
// that writes Labels directly must keep them sorted itself and is expected
// to run Validate before handing the tier on.
type Tier struct {
	Name   string
	Class  Class
	Start  float64
	End    float64
	Labels []Label
}

// NewIntervalTier returns an empty interval tier spanning [start, end].
func NewIntervalTier(name string, start, end float64) *Tier {
	return &Tier{Name: name, Class: ClassInterval, Start: start, End: end}
}

// NewPointTier returns an empty point tier spanning [start, end].
func NewPointTier(name string, start, end float64) *Tier {
	return &Tier{Name: name, Class: ClassPoint, Start: start, End: end}
}

// LastEnd returns the accumulated end of the tier: T2 of the final label, or
// Start when nothing has been appended yet.
func (t *Tier) LastEnd() float64 {
	if len(t.Labels) == 0 {
		return t.Start
	}
	return t.Labels[len(t.Labels)-1].T2
}

// ContentStart returns the start of the first label carrying non-whitespace
// text, so leading silence does not count toward a tier's effective span.
// Falls back to Start when every label is empty.
func (t *Tier) ContentStart() float64 {
	for _, l := range t.Labels {
		if !l.IsEmpty() {
			return l.T1
		}
	}
	return t.Start
}

// Append adds a label at the end of the tier. The label must not begin
// before the accumulated end, and interval labels must not end before they
// begin. A violation leaves the tier unchanged.
func (t *Tier) Append(l Label) error {
	if t.Class == ClassPoint {
		l.T2 = l.T1
	}
	if strictlyBefore(l.T2, l.T1) {
		return fmt.Errorf("tier %q: label [%s, %s] ends before it starts", t.Name, FormatTime(l.T1), FormatTime(l.T2))
	}
	if end := t.LastEnd(); strictlyBefore(l.T1, end) {
		return &OverlapError{Tier: t.Name, Start: l.T1, End: end}
	}
	t.Labels = append(t.Labels, l)
	return nil
}

// GapTo extends an interval tier with an empty filler when the accumulated
// end falls short of start, keeping the timeline contiguous. It reports
// whether a filler was inserted; a start before the accumulated end is an
// *OverlapError.
func (t *Tier) GapTo(start float64) (bool, error) {
	if t.Class != ClassInterval {
		return false, fmt.Errorf("tier %q: gap filling requires an interval tier", t.Name)
	}
	end := t.LastEnd()
	if strictlyBefore(start, end) {
		return false, &OverlapError{Tier: t.Name, Start: start, End: end}
	}
	if !strictlyAfter(start, end) {
		return false, nil
	}
	t.Labels = append(t.Labels, Label{T1: end, T2: start})
	return true, nil
}

// CloseOut pads the tier with a final empty filler so its content reaches
// End. No-op when the accumulated end already abuts End; content past End is
// an error.
func (t *Tier) CloseOut() (bool, error) {
	return t.GapTo(t.End)
}

// Validate checks the tier's structural contract. Interval tiers must be
// contiguous: ordered labels with non-negative duration, each beginning
// where the previous ended, the first at Start and the last at End. Point
// tiers only need non-decreasing times.
func (t *Tier) Validate() error {
	if t.Class == ClassPoint {
		for i := 1; i < len(t.Labels); i++ {
			if strictlyBefore(t.Labels[i].T1, t.Labels[i-1].T1) {
				return fmt.Errorf("tier %q: point at %s precedes point at %s", t.Name, FormatTime(t.Labels[i].T1), FormatTime(t.Labels[i-1].T1))
			}
		}
		return nil
	}
	if strictlyBefore(t.End, t.Start) {
		return fmt.Errorf("tier %q: span [%s, %s] ends before it starts", t.Name, FormatTime(t.Start), FormatTime(t.End))
	}
	if len(t.Labels) == 0 {
		return fmt.Errorf("tier %q: no labels", t.Name)
	}
	if first := t.Labels[0].T1; !Abuts(first, t.Start) {
		return fmt.Errorf("tier %q: first label starts at %s, tier starts at %s", t.Name, FormatTime(first), FormatTime(t.Start))
	}
	prevEnd := t.Labels[0].T1
	for i, l := range t.Labels {
		if strictlyBefore(l.T2, l.T1) {
			return fmt.Errorf("tier %q: label %d [%s, %s] ends before it starts", t.Name, i, FormatTime(l.T1), FormatTime(l.T2))
		}
		if !Abuts(l.T1, prevEnd) {
			if strictlyBefore(l.T1, prevEnd) {
				return fmt.Errorf("tier %q: label %d at %s overlaps previous end %s", t.Name, i, FormatTime(l.T1), FormatTime(prevEnd))
			}
			return fmt.Errorf("tier %q: gap between %s and %s", t.Name, FormatTime(prevEnd), FormatTime(l.T1))
		}
		prevEnd = l.T2
	}
	if !Abuts(prevEnd, t.End) {
		return fmt.Errorf("tier %q: last label ends at %s, tier ends at %s", t.Name, FormatTime(prevEnd), FormatTime(t.End))
	}
	return nil
}

// Clone returns a deep copy of the tier.
func (t *Tier) Clone() *Tier {
	cp := *t
	cp.Labels = make([]Label, len(t.Labels))
	copy(cp.Labels, t.Labels)
	return &cp
}
