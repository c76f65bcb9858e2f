package preflight

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"loom/internal/textenc"
)

// DictionaryProbe reports a snapshot of a pronunciation dictionary for
// status output.
type DictionaryProbe struct {
	Present bool
	Path    string
	Entries int
	Size    int64
}

// ProbeDictionary counts the headword entries in the dictionary at path.
// Absent or unreadable files yield a zero probe rather than an error;
// CheckFileReadable reports those separately.
func ProbeDictionary(path, encodingName string) DictionaryProbe {
	probe := DictionaryProbe{Path: path}
	if strings.TrimSpace(path) == "" {
		return probe
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return probe
	}
	f, err := os.Open(path)
	if err != nil {
		return probe
	}
	defer f.Close()

	reader, err := textenc.NewReader(f, encodingName)
	if err != nil {
		return probe
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	entries := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			entries++
		}
	}
	if scanner.Err() != nil {
		return probe
	}

	probe.Present = true
	probe.Size = info.Size()
	probe.Entries = entries
	return probe
}

// Detail renders a display-friendly summary for status UIs.
func (p DictionaryProbe) Detail() string {
	if !p.Present {
		return "No dictionary found"
	}
	return fmt.Sprintf("%d entries in %s", p.Entries, p.Path)
}
