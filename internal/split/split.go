package split

import (
	"fmt"
	"strings"

	"loom/internal/services"
	"loom/internal/timeline"
)

// Options controls where the cuts land.
type Options struct {
	// Tier names the tier whose label boundaries become cut points. Required
	// when the file carries more than one tier.
	Tier string
	// TargetDuration is the chunk length in seconds the cuts aim for. Actual
	// chunks run from one chosen label boundary to the next, so they only
	// approximate it.
	TargetDuration float64
}

// Chunks cuts the selected tier of file into consecutive single-tier label
// files. Each cut lands on the label boundary nearest a multiple of the
// target duration, and a label longer than the target stays whole. Absolute
// times are preserved: chunk k+1 starts at the exact float where chunk k
// ends, so separately processed chunks satisfy the concatenation
// preconditions. The result is never empty; a tier that fits within one
// target comes back as a single chunk.
func Chunks(file *timeline.LabelFile, opts Options) ([]*timeline.LabelFile, error) {
	if file == nil || len(file.Tiers) == 0 {
		return nil, services.Wrap(services.ErrValidation, "split", "chunks", "no tiers to split", nil)
	}
	if opts.TargetDuration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "split", "chunks",
			fmt.Sprintf("target duration %g must be positive", opts.TargetDuration), nil)
	}
	tier, err := selectTier(file, opts.Tier)
	if err != nil {
		return nil, err
	}
	if tier.Class != timeline.ClassInterval {
		return nil, services.Wrap(services.ErrValidation, "split", "chunks",
			fmt.Sprintf("tier %q holds points, splitting needs intervals", tier.Name), nil)
	}
	if err := tier.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "split", "chunks", "tier must tile its span", err)
	}

	bounds := boundaries(tier)
	cuts := cutIndexes(bounds, opts.TargetDuration)
	chunks := make([]*timeline.LabelFile, 0, len(cuts))
	for i, a := range cuts {
		b := len(bounds) - 1
		if i+1 < len(cuts) {
			b = cuts[i+1]
		}
		part := timeline.NewIntervalTier(tier.Name, bounds[a], bounds[b])
		part.Labels = append([]timeline.Label(nil), tier.Labels[a:b]...)
		chunks = append(chunks, &timeline.LabelFile{
			Tiers:    []*timeline.Tier{part},
			Encoding: file.Encoding,
		})
	}
	return chunks, nil
}

func selectTier(file *timeline.LabelFile, name string) (*timeline.Tier, error) {
	if name != "" {
		if t := file.Tier(name); t != nil {
			return t, nil
		}
		return nil, services.Wrap(services.ErrValidation, "split", "chunks",
			fmt.Sprintf("no tier named %q (file has %s)", name, strings.Join(file.TierNames(), ", ")), nil)
	}
	if len(file.Tiers) == 1 {
		return file.Tiers[0], nil
	}
	return nil, services.Wrap(services.ErrValidation, "split", "chunks",
		fmt.Sprintf("file has %d tiers, name the one to split on", len(file.Tiers)), nil)
}

// boundaries lists the candidate cut times: tier start, each interior label
// start, tier end. Interior entries come from label starts rather than the
// preceding ends so adjacent chunks share their boundary float exactly.
func boundaries(tier *timeline.Tier) []float64 {
	bounds := make([]float64, 0, len(tier.Labels)+1)
	bounds = append(bounds, tier.Start)
	for _, l := range tier.Labels[1:] {
		bounds = append(bounds, l.T1)
	}
	return append(bounds, tier.End)
}

// cutIndexes picks chunk start indexes into bounds greedily: from each chunk
// start, the next cut is the interior boundary nearest start+duration, with
// ties going to the earlier one. The tier end is not a cut point, so the
// remainder past the last cut always forms a non-empty final chunk.
func cutIndexes(bounds []float64, duration float64) []int {
	cuts := []int{0}
	last := len(bounds) - 1
	for {
		start := cuts[len(cuts)-1]
		target := bounds[start] + duration
		if bounds[last] <= target+timeline.Epsilon {
			break
		}
		hi := start + 1
		for hi < last && bounds[hi] < target {
			hi++
		}
		cut := hi
		if hi == last {
			cut = hi - 1
		} else if prev := hi - 1; prev > start && target-bounds[prev] <= bounds[hi]-target {
			cut = prev
		}
		if cut == start {
			break
		}
		cuts = append(cuts, cut)
	}
	return cuts
}
