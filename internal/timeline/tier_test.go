package timeline

import (
	"errors"
	"strings"
	"testing"
)

func TestAppendEnforcesOrdering(t *testing.T) {
	tier := NewIntervalTier("phone", 0, 10)
	if err := tier.Append(Label{T1: 0, T2: 0.5, Text: "HH"}); err != nil {
		t.Fatalf("append first label: %v", err)
	}
	if err := tier.Append(Label{T1: 0.5, T2: 1.2, Text: "AY"}); err != nil {
		t.Fatalf("append abutting label: %v", err)
	}

	err := tier.Append(Label{T1: 1.0, T2: 1.5, Text: "S"})
	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if overlap.Start != 1.0 || overlap.End != 1.2 {
		t.Fatalf("unexpected overlap bounds: %+v", overlap)
	}
	if len(tier.Labels) != 2 {
		t.Fatalf("failed append must leave tier unchanged, got %d labels", len(tier.Labels))
	}

	if err := tier.Append(Label{T1: 2.0, T2: 1.5}); err == nil {
		t.Fatal("expected error for label that ends before it starts")
	}
}

func TestAppendToleratesEpsilonJitter(t *testing.T) {
	tier := NewIntervalTier("phone", 0, 10)
	if err := tier.Append(Label{T1: 0, T2: 1.0, Text: "AA"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// A start Epsilon/2 before the accumulated end is the same boundary.
	if err := tier.Append(Label{T1: 1.0 - Epsilon/2, T2: 2.0, Text: "B"}); err != nil {
		t.Fatalf("append within epsilon: %v", err)
	}
}

func TestGapTo(t *testing.T) {
	tier := NewIntervalTier("word", 0, 10)
	if err := tier.Append(Label{T1: 0, T2: 1.5, Text: "hello"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	filled, err := tier.GapTo(3.0)
	if err != nil {
		t.Fatalf("gap to 3.0: %v", err)
	}
	if !filled {
		t.Fatal("expected a filler label")
	}
	gap := tier.Labels[len(tier.Labels)-1]
	if gap.T1 != 1.5 || gap.T2 != 3.0 || !gap.IsEmpty() {
		t.Fatalf("unexpected filler: %+v", gap)
	}

	filled, err = tier.GapTo(3.0)
	if err != nil {
		t.Fatalf("gap to abutting start: %v", err)
	}
	if filled {
		t.Fatal("abutting start must not insert a filler")
	}

	if _, err := tier.GapTo(2.0); err == nil {
		t.Fatal("expected overlap error for start before accumulated end")
	}

	point := NewPointTier("marks", 0, 10)
	if _, err := point.GapTo(1.0); err == nil {
		t.Fatal("expected error: gap filling is interval-only")
	}
}

func TestCloseOut(t *testing.T) {
	tier := NewIntervalTier("phone", 0, 5)
	if err := tier.Append(Label{T1: 0, T2: 3.2, Text: "AA"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := tier.CloseOut(); err != nil {
		t.Fatalf("close out: %v", err)
	}
	if err := tier.Validate(); err != nil {
		t.Fatalf("closed tier must validate: %v", err)
	}
	if got := tier.LastEnd(); got != 5 {
		t.Fatalf("LastEnd = %v, want 5", got)
	}
}

func TestContentStartSkipsLeadingSilence(t *testing.T) {
	tier := NewIntervalTier("word", 0, 10)
	for _, l := range []Label{
		{T1: 0, T2: 1.0},
		{T1: 1.0, T2: 1.5, Text: "  "},
		{T1: 1.5, T2: 2.5, Text: "hello"},
	} {
		if err := tier.Append(l); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if got := tier.ContentStart(); got != 1.5 {
		t.Fatalf("ContentStart = %v, want 1.5", got)
	}

	empty := NewIntervalTier("word", 2.5, 10)
	if got := empty.ContentStart(); got != 2.5 {
		t.Fatalf("ContentStart of empty tier = %v, want tier start", got)
	}
}

func TestValidate(t *testing.T) {
	build := func(labels ...Label) *Tier {
		return &Tier{Name: "phone", Class: ClassInterval, Start: 0, End: 2, Labels: labels}
	}
	tests := []struct {
		name    string
		tier    *Tier
		wantErr string
	}{
		{
			name: "contiguous",
			tier: build(Label{T1: 0, T2: 1, Text: "AA"}, Label{T1: 1, T2: 2, Text: "B"}),
		},
		{
			name:    "no labels",
			tier:    build(),
			wantErr: "no labels",
		},
		{
			name:    "gap in the middle",
			tier:    build(Label{T1: 0, T2: 0.5}, Label{T1: 1.0, T2: 2.0}),
			wantErr: "gap between",
		},
		{
			name:    "first label late",
			tier:    build(Label{T1: 0.5, T2: 2.0}),
			wantErr: "first label",
		},
		{
			name:    "last label short",
			tier:    build(Label{T1: 0, T2: 1.5}),
			wantErr: "last label",
		},
		{
			name:    "overlapping labels",
			tier:    &Tier{Name: "phone", Class: ClassInterval, Start: 0, End: 2, Labels: []Label{{T1: 0, T2: 1.2}, {T1: 1.0, T2: 2.0}}},
			wantErr: "overlaps",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tier.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidatePointTierOrdering(t *testing.T) {
	tier := &Tier{Name: "marks", Class: ClassPoint, Labels: []Label{{T1: 1}, {T1: 2}, {T1: 1.5}}}
	if err := tier.Validate(); err == nil {
		t.Fatal("expected ordering error")
	}
	tier.Labels = []Label{{T1: 1}, {T1: 2}, {T1: 2}}
	if err := tier.Validate(); err != nil {
		t.Fatalf("coincident points are fine: %v", err)
	}
}

func TestLabelRender(t *testing.T) {
	tests := []struct {
		name  string
		label Label
		want  string
	}{
		{name: "plain", label: Label{Text: "hello"}, want: "hello"},
		{name: "failure with detail", label: Label{Status: StatusError, Detail: "pyalign: exit status 1"}, want: "ALIGNMENT FAILED: pyalign: exit status 1"},
		{name: "failure without detail", label: Label{Status: StatusError}, want: "ALIGNMENT FAILED"},
		{name: "text on failed label is ignored", label: Label{Text: "hello", Status: StatusError, Detail: "timeout"}, want: "ALIGNMENT FAILED: timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.label.Render(); got != tc.want {
				t.Fatalf("Render = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	tier := NewIntervalTier("phone", 0, 1)
	if err := tier.Append(Label{T1: 0, T2: 1, Text: "AA"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	cp := tier.Clone()
	cp.Labels[0].Text = "changed"
	if tier.Labels[0].Text != "AA" {
		t.Fatal("clone shares label storage with original")
	}
}
