package ledger

import "time"

// RunStatus represents the lifecycle of an alignment run.
type RunStatus string

const (
	RunPending RunStatus = "pending"
	RunRunning RunStatus = "running"
	// RunCompleted means every segment aligned.
	RunCompleted RunStatus = "completed"
	// RunCompletedWithErrors means output was produced but one or more
	// segments carry error labels.
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	// RunFailed means no usable output was produced.
	RunFailed RunStatus = "failed"
)

// Terminal reports whether the status is a final one.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunCompletedWithErrors, RunFailed:
		return true
	}
	return false
}

// SegmentStatus represents the outcome of a single aligned segment.
type SegmentStatus string

const (
	SegmentPending SegmentStatus = "pending"
	SegmentAligned SegmentStatus = "aligned"
	SegmentFailed  SegmentStatus = "failed"
)

// RunSpec describes a run to record before alignment starts.
type RunSpec struct {
	AudioPath      string
	TranscriptPath string
	Tiers          []string
}

// Run is one alignment invocation and its outcome.
type Run struct {
	ID             string
	AudioPath      string
	TranscriptPath string
	Tiers          []string
	Status         RunStatus
	OutputPath     string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Segment is the recorded outcome of one aligner window within a run.
type Segment struct {
	ID      int64
	RunID   string
	Index   int
	Tier    string
	T1      float64
	T2      float64
	Text    string
	Status  SegmentStatus
	Detail  string
	Elapsed time.Duration
}
