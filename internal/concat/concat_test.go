package concat_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"loom/internal/concat"
	"loom/internal/services"
	"loom/internal/timeline"
)

// segmentFile builds a closed two-tier label file covering [start, end].
func segmentFile(start, end float64, names ...string) *timeline.LabelFile {
	phoneName, wordName := "phone", "word"
	if len(names) == 2 {
		phoneName, wordName = names[0], names[1]
	}
	phone := timeline.NewIntervalTier(phoneName, start, end)
	phone.Labels = []timeline.Label{{Text: "P", T1: start, T2: end}}
	word := timeline.NewIntervalTier(wordName, start, end)
	word.Labels = []timeline.Label{{Text: "W", T1: start, T2: end}}
	return &timeline.LabelFile{Tiers: []*timeline.Tier{phone, word}, Encoding: "utf-8"}
}

func TestTimelinesMergesSortedBySpan(t *testing.T) {
	inputs := []concat.Input{
		{Path: "c.tab", File: segmentFile(20, 30)},
		{Path: "a.tab", File: segmentFile(0, 10)},
		{Path: "b.tab", File: segmentFile(10, 20)},
	}

	merged, err := concat.Timelines(inputs, concat.Options{})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	if len(merged.Tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(merged.Tiers))
	}
	for _, tier := range merged.Tiers {
		if tier.Start != 0 || tier.End != 30 {
			t.Fatalf("tier %q spans [%v, %v], want [0, 30]", tier.Name, tier.Start, tier.End)
		}
		if err := tier.Validate(); err != nil {
			t.Fatalf("merged tier %q invalid: %v", tier.Name, err)
		}
		if len(tier.Labels) != 3 {
			t.Fatalf("tier %q has %d labels, want 3", tier.Name, len(tier.Labels))
		}
		for i, wantT1 := range []float64{0, 10, 20} {
			if tier.Labels[i].T1 != wantT1 {
				t.Fatalf("tier %q label %d starts at %v, want %v", tier.Name, i, tier.Labels[i].T1, wantT1)
			}
		}
	}
}

func TestTimelinesRejectsOverlap(t *testing.T) {
	inputs := []concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10)},
		{Path: "b.tab", File: segmentFile(5, 20)},
	}

	merged, err := concat.Timelines(inputs, concat.Options{})
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if !errors.Is(err, services.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	if merged != nil {
		t.Fatal("expected no output on overlap")
	}
	for _, path := range []string{"a.tab", "b.tab"} {
		if !strings.Contains(err.Error(), path) {
			t.Fatalf("error %q does not name %s", err, path)
		}
	}
}

func TestTimelinesArgumentOrderDoesNotMatter(t *testing.T) {
	build := func(order ...int) []concat.Input {
		all := []concat.Input{
			{Path: "a.tab", File: segmentFile(0, 10)},
			{Path: "b.tab", File: segmentFile(10, 20)},
			{Path: "c.tab", File: segmentFile(20, 30)},
		}
		out := make([]concat.Input, 0, len(order))
		for _, i := range order {
			out = append(out, all[i])
		}
		return out
	}
	forward := build(0, 1, 2)
	reversed := build(2, 0, 1)

	a, err := concat.Timelines(forward, concat.Options{})
	if err != nil {
		t.Fatalf("forward merge failed: %v", err)
	}
	b, err := concat.Timelines(reversed, concat.Options{})
	if err != nil {
		t.Fatalf("reversed merge failed: %v", err)
	}

	var bufA, bufB bytes.Buffer
	if err := timeline.EncodeTable(&bufA, a); err != nil {
		t.Fatalf("encode forward: %v", err)
	}
	if err := timeline.EncodeTable(&bufB, b); err != nil {
		t.Fatalf("encode reversed: %v", err)
	}
	if !bytes.Equal(bufA.Bytes(), bufB.Bytes()) {
		t.Fatalf("argument order changed output:\n%s\n---\n%s", bufA.String(), bufB.String())
	}
}

func TestTimelinesRejectsUnclosedInput(t *testing.T) {
	open := segmentFile(0, 10)
	open.Tiers[0].Labels[0].T2 = 9 // tier claims [0, 10] but content stops early

	_, err := concat.Timelines([]concat.Input{
		{Path: "open.tab", File: open},
		{Path: "b.tab", File: segmentFile(10, 20)},
	}, concat.Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "open.tab") {
		t.Fatalf("error %q does not name the unclosed input", err)
	}
}

func TestTimelinesRejectsBoundaryGapBetweenFiles(t *testing.T) {
	_, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10)},
		{Path: "b.tab", File: segmentFile(12, 20)},
	}, concat.Options{})
	if !errors.Is(err, services.ErrOverlap) {
		t.Fatalf("expected boundary error, got %v", err)
	}
	if !strings.Contains(err.Error(), "gap") {
		t.Fatalf("error %q does not describe the gap", err)
	}
}

func TestTimelinesRejectsTierCountMismatch(t *testing.T) {
	single := &timeline.LabelFile{Tiers: segmentFile(10, 20).Tiers[:1]}

	_, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10)},
		{Path: "b.tab", File: single},
	}, concat.Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTimelinesRejectsTierNameMismatch(t *testing.T) {
	_, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10)},
		{Path: "b.tab", File: segmentFile(10, 20, "phone", "banana")},
	}, concat.Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "banana") {
		t.Fatalf("error %q does not name the mismatched tier", err)
	}
}

func TestTimelinesRenamesGenericTiers(t *testing.T) {
	merged, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10, "1", "2")},
		{Path: "b.tab", File: segmentFile(10, 20, "tier1", "tier2")},
	}, concat.Options{})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	if got := merged.TierNames(); got[0] != "phone" || got[1] != "word" {
		t.Fatalf("expected generic names rewritten to phone/word, got %v", got)
	}
}

func TestTimelinesAdoptsNamedTiersOverGeneric(t *testing.T) {
	merged, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10, "1", "2")},
		{Path: "b.tab", File: segmentFile(10, 20, "utt_phone", "utt_word")},
	}, concat.Options{})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	if got := merged.TierNames(); got[0] != "utt_phone" || got[1] != "utt_word" {
		t.Fatalf("expected names adopted from the named input, got %v", got)
	}
}

func TestTimelinesKeepsDistinctiveNames(t *testing.T) {
	merged, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10, "utt_phone", "utt_word")},
		{Path: "b.tab", File: segmentFile(10, 20, "utt_phone", "utt_word")},
	}, concat.Options{})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	if got := merged.TierNames(); got[0] != "utt_phone" || got[1] != "utt_word" {
		t.Fatalf("expected distinctive names untouched, got %v", got)
	}
}

func TestTimelinesTierSelectorOrdersBySelectedTier(t *testing.T) {
	// Second file's word tier begins with silence; selecting "word"
	// orders by content start, which still sorts the files correctly.
	second := segmentFile(10, 20)
	second.Tiers[1].Labels = []timeline.Label{
		{Text: "", T1: 10, T2: 12},
		{Text: "W", T1: 12, T2: 20},
	}

	merged, err := concat.Timelines([]concat.Input{
		{Path: "b.tab", File: second},
		{Path: "a.tab", File: segmentFile(0, 10)},
	}, concat.Options{Tier: "word"})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	word := merged.Tier("word")
	if word == nil {
		t.Fatal("expected word tier in output")
	}
	if err := word.Validate(); err != nil {
		t.Fatalf("word tier invalid: %v", err)
	}
	if word.Start != 0 || word.End != 20 {
		t.Fatalf("word tier spans [%v, %v], want [0, 20]", word.Start, word.End)
	}
}

func TestTimelinesSelectorRejectsMissingTier(t *testing.T) {
	_, err := concat.Timelines([]concat.Input{
		{Path: "a.tab", File: segmentFile(0, 10)},
	}, concat.Options{Tier: "syllable"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTimelinesSingleInputPassesThrough(t *testing.T) {
	in := segmentFile(0, 10)
	merged, err := concat.Timelines([]concat.Input{{Path: "a.tab", File: in}}, concat.Options{})
	if err != nil {
		t.Fatalf("Timelines returned error: %v", err)
	}
	if len(merged.Tiers) != 2 || merged.Tiers[0].End != 10 {
		t.Fatalf("unexpected single-input result: %+v", merged.TierNames())
	}
	// result is a copy, not the input
	merged.Tiers[0].Name = "changed"
	if in.Tiers[0].Name == "changed" {
		t.Fatal("expected merge output to be independent of its input")
	}
}
