package timeline

import "fmt"

// LabelFile is the ordered set of tiers read from or written to a single
// annotation file.
type LabelFile struct {
	Tiers []*Tier
	// Encoding records the character encoding the file was read with so a
	// rewrite can preserve it. Empty means UTF-8.
	Encoding string
}

// Tier returns the first tier with the given name, or nil.
func (f *LabelFile) Tier(name string) *Tier {
	for _, t := range f.Tiers {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TierNames returns the tier names in file order.
func (f *LabelFile) TierNames() []string {
	names := make([]string, len(f.Tiers))
	for i, t := range f.Tiers {
		names[i] = t.Name
	}
	return names
}

// IntervalTiers returns the interval tiers in file order.
func (f *LabelFile) IntervalTiers() []*Tier {
	var tiers []*Tier
	for _, t := range f.Tiers {
		if t.Class == ClassInterval {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// Span reports the effective time range of the file for ordering purposes.
// With tierName set it is that tier's (ContentStart, LastEnd); naming a tier
// the file lacks is an error. Otherwise a single-tier file uses its only
// tier, and a multi-tier file uses the union of every tier's effective
// range.
func (f *LabelFile) Span(tierName string) (start, end float64, err error) {
	if len(f.Tiers) == 0 {
		return 0, 0, fmt.Errorf("label file has no tiers")
	}
	if tierName != "" {
		t := f.Tier(tierName)
		if t == nil {
			return 0, 0, fmt.Errorf("label file has no tier %q", tierName)
		}
		return t.ContentStart(), t.LastEnd(), nil
	}
	if len(f.Tiers) == 1 {
		t := f.Tiers[0]
		return t.ContentStart(), t.LastEnd(), nil
	}
	start = f.Tiers[0].ContentStart()
	end = f.Tiers[0].LastEnd()
	for _, t := range f.Tiers[1:] {
		if s := t.ContentStart(); s < start {
			start = s
		}
		if e := t.LastEnd(); e > end {
			end = e
		}
	}
	return start, end, nil
}

// Clone returns a deep copy of the file.
func (f *LabelFile) Clone() *LabelFile {
	cp := &LabelFile{Encoding: f.Encoding, Tiers: make([]*Tier, len(f.Tiers))}
	for i, t := range f.Tiers {
		cp.Tiers[i] = t.Clone()
	}
	return cp
}
