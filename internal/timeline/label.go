package timeline

import "strings"

// LabelStatus distinguishes labels carrying annotation text from labels
// standing in for a failed alignment attempt.
type LabelStatus int

const (
	// StatusOK marks an ordinary label whose Text is annotation content.
	StatusOK LabelStatus = iota
	// StatusError marks a placeholder spanning a segment whose alignment
	// failed. Detail holds the failure description.
	StatusError
)

// ErrorMarker prefixes the rendered text of StatusError labels. The marker
// exists only in serialized output; in-memory labels carry Status and Detail
// so nothing is reconstructed by string matching.
const ErrorMarker = "ALIGNMENT FAILED"

// Label is a single annotation on a tier. Interval labels span [T1, T2];
// point labels use T1 only and keep T2 equal to T1.
type Label struct {
	Text   string
	T1     float64
	T2     float64
	Status LabelStatus
	Detail string
}

// Duration returns T2 - T1.
func (l Label) Duration() float64 {
	return l.T2 - l.T1
}

// Center returns the midpoint of the label's span.
func (l Label) Center() float64 {
	return l.T1 + (l.T2-l.T1)/2
}

// IsEmpty reports whether the label text is empty or whitespace only. Gap
// fillers inserted during alignment are empty in this sense.
func (l Label) IsEmpty() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Render returns the text to serialize for this label. Failed-segment
// placeholders render as the error marker plus the failure detail so the
// breakage stays visible wherever the file ends up.
func (l Label) Render() string {
	if l.Status != StatusError {
		return l.Text
	}
	if l.Detail == "" {
		return ErrorMarker
	}
	return ErrorMarker + ": " + l.Detail
}
