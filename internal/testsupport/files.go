package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/textgrid"
	"loom/internal/timeline"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte. Handy for
// stand-in audio files that only need to exist.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteDictionary writes a pronunciation dictionary fixture with one headword
// per line.
func WriteDictionary(t testing.TB, path string, words ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var b strings.Builder
	for _, word := range words {
		b.WriteString(word)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write dictionary %s: %v", path, err)
	}
}

// WriteTextGrid writes the label file to path in long-form TextGrid syntax.
func WriteTextGrid(t testing.TB, path string, file *timeline.LabelFile) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := textgrid.WriteFile(path, file, file.Encoding); err != nil {
		t.Fatalf("write textgrid %s: %v", path, err)
	}
}

// UtteranceGrid builds a single-tier transcript fixture from the given
// labels, which should tile [start, end]. Empty-text labels stand for
// silence.
func UtteranceGrid(tierName string, start, end float64, labels ...timeline.Label) *timeline.LabelFile {
	tier := timeline.NewIntervalTier(tierName, start, end)
	tier.Labels = append(tier.Labels, labels...)
	return &timeline.LabelFile{Tiers: []*timeline.Tier{tier}}
}
