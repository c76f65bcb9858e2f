package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"loom/internal/ledger"
	"loom/internal/timeline"
)

func buildRunListRows(runs []*ledger.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		audio := strings.TrimSpace(run.AudioPath)
		if audio != "" {
			audio = filepath.Base(audio)
		} else {
			audio = "-"
		}
		rows = append(rows, []string{
			shortRunID(run.ID),
			audio,
			strings.Join(run.Tiers, ", "),
			formatStatusLabel(string(run.Status)),
			formatRunTime(run.CreatedAt),
		})
	}
	return rows
}

func buildSegmentStatsRows(stats map[ledger.SegmentStatus]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[ledger.SegmentStatus(key)])})
	}
	return rows
}

func buildSegmentRows(segments []*ledger.Segment, withDetail bool) [][]string {
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		text := seg.Text
		if withDetail && seg.Status == ledger.SegmentFailed {
			text = seg.Detail
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", seg.Index),
			seg.Tier,
			formatWindow(seg.T1, seg.T2),
			formatStatusLabel(string(seg.Status)),
			formatElapsed(seg.Elapsed),
			text,
		})
	}
	return rows
}

func formatWindow(t1, t2 float64) string {
	return fmt.Sprintf("[%s, %s]", timeline.FormatTime(t1), timeline.FormatTime(t2))
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
