package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	tierKey    contextKey = "tier"
	segmentKey contextKey = "segment"
)

// WithRunID annotates context with the alignment run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTier annotates context with the source tier being aligned.
func WithTier(ctx context.Context, tier string) context.Context {
	if tier == "" {
		return ctx
	}
	return context.WithValue(ctx, tierKey, tier)
}

// TierFromContext returns the source tier name if present.
func TierFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(tierKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSegment annotates context with the index of the segment in flight.
func WithSegment(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, segmentKey, index)
}

// SegmentFromContext extracts the segment index if present.
func SegmentFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(segmentKey).(int); ok {
		return v, true
	}
	return 0, false
}
