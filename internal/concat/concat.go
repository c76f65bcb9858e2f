package concat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"loom/internal/services"
	"loom/internal/services/pyalign"
	"loom/internal/timeline"
)

// Input is one label file to merge. Path appears in error messages so the
// offending file can be named; it is never opened here.
type Input struct {
	Path string
	File *timeline.LabelFile
}

// Options adjusts the merge.
type Options struct {
	// Tier selects the tier whose span orders the inputs. Empty means the
	// single tier, or the union span across tiers.
	Tier string
}

type entry struct {
	in    Input
	ord   int
	start float64
	end   float64
}

// genericTierRe matches placeholder tier names produced by positional
// readers: empty, a bare index, or "tier" plus an index.
var genericTierRe = regexp.MustCompile(`^(?:tier)?[0-9]*$`)

func genericTierName(name string) bool {
	return genericTierRe.MatchString(strings.ToLower(strings.TrimSpace(name)))
}

// Timelines merges the inputs into one label file. Inputs are sorted by
// effective span start; adjacent spans must not overlap and every tier must
// be closed to its boundaries so the merged tiers stay contiguous without
// any gap-filling here.
func Timelines(inputs []Input, opts Options) (*timeline.LabelFile, error) {
	if len(inputs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "concat", "merge", "no label files to concatenate", nil)
	}

	entries := make([]entry, 0, len(inputs))
	tierCount := 0
	for i, in := range inputs {
		name := inputName(in, i)
		if in.File == nil || len(in.File.Tiers) == 0 {
			return nil, services.Wrap(services.ErrValidation, "concat", "merge", name+" has no tiers", nil)
		}
		if i == 0 {
			tierCount = len(in.File.Tiers)
		} else if len(in.File.Tiers) != tierCount {
			return nil, services.Wrap(services.ErrValidation, "concat", "merge",
				fmt.Sprintf("%s has %d tiers, the first input has %d", name, len(in.File.Tiers), tierCount), nil)
		}
		for _, tier := range in.File.Tiers {
			if err := tier.Validate(); err != nil {
				return nil, services.Wrap(services.ErrValidation, "concat", "merge",
					name+" is not closed to its boundaries", err)
			}
		}
		start, end, err := in.File.Span(opts.Tier)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "concat", "merge", name, err)
		}
		entries = append(entries, entry{in: in, ord: i, start: start, end: end})
	}

	// Content order is decided here and only here; the round-trip guarantee
	// depends on argument order never leaking through.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].start != entries[j].start {
			return entries[i].start < entries[j].start
		}
		if entries[i].end != entries[j].end {
			return entries[i].end < entries[j].end
		}
		return entries[i].in.Path < entries[j].in.Path
	})

	for i := 1; i < len(entries); i++ {
		prev, next := entries[i-1], entries[i]
		if next.start < prev.end-timeline.Epsilon {
			return nil, services.Wrap(services.ErrOverlap, "concat", "merge",
				fmt.Sprintf("%s [%s, %s] overlaps %s [%s, %s]",
					inputName(prev.in, prev.ord), timeline.FormatTime(prev.start), timeline.FormatTime(prev.end),
					inputName(next.in, next.ord), timeline.FormatTime(next.start), timeline.FormatTime(next.end)), nil)
		}
	}

	result := entries[0].in.File.Clone()
	for i := 1; i < len(entries); i++ {
		next := entries[i]
		name := inputName(next.in, next.ord)
		for ti, tier := range next.in.File.Tiers {
			dst := result.Tiers[ti]
			if dst.Class != tier.Class {
				return nil, services.Wrap(services.ErrValidation, "concat", "merge",
					fmt.Sprintf("%s tier %d is a %s tier, expected %s", name, ti+1, tier.Class, dst.Class), nil)
			}
			if !genericTierName(dst.Name) && !genericTierName(tier.Name) && dst.Name != tier.Name {
				return nil, services.Wrap(services.ErrValidation, "concat", "merge",
					fmt.Sprintf("%s tier %d is named %q, expected %q", name, ti+1, tier.Name, dst.Name), nil)
			}
			if tier.Class == timeline.ClassInterval {
				if !timeline.Abuts(tier.Start, dst.LastEnd()) {
					verb := "leaves a gap after"
					if tier.Start < dst.LastEnd() {
						verb = "overlaps"
					}
					return nil, services.Wrap(services.ErrOverlap, "concat", "merge",
						fmt.Sprintf("%s tier %q starts at %s and %s the accumulated end %s",
							name, tier.Name, timeline.FormatTime(tier.Start), verb, timeline.FormatTime(dst.LastEnd())), nil)
				}
			} else if len(dst.Labels) > 0 && len(tier.Labels) > 0 {
				last := dst.Labels[len(dst.Labels)-1].T1
				if tier.Labels[0].T1 < last-timeline.Epsilon {
					return nil, services.Wrap(services.ErrOverlap, "concat", "merge",
						fmt.Sprintf("%s tier %q point at %s precedes the accumulated point at %s",
							name, tier.Name, timeline.FormatTime(tier.Labels[0].T1), timeline.FormatTime(last)), nil)
				}
			}
			dst.Labels = append(dst.Labels, tier.Labels...)
			if tier.End > dst.End {
				dst.End = tier.End
			}
			if genericTierName(dst.Name) && !genericTierName(tier.Name) {
				dst.Name = tier.Name
			}
		}
	}

	if opts.Tier == "" && len(result.Tiers) == 2 &&
		genericTierName(result.Tiers[0].Name) && genericTierName(result.Tiers[1].Name) {
		result.Tiers[0].Name = pyalign.PhoneTier
		result.Tiers[1].Name = pyalign.WordTier
	}
	return result, nil
}

func inputName(in Input, ord int) string {
	if strings.TrimSpace(in.Path) != "" {
		return in.Path
	}
	return fmt.Sprintf("input %d", ord+1)
}
