package textgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"loom/internal/textenc"
	"loom/internal/timeline"
)

// Write serializes f as a long-form TextGrid. Label text goes through
// Render, so failed-segment placeholders appear with their marker. The file
// span is the union of the tier spans.
func Write(w io.Writer, f *timeline.LabelFile) error {
	if len(f.Tiers) == 0 {
		return fmt.Errorf("refusing to write textgrid with no tiers")
	}
	xmin := f.Tiers[0].Start
	xmax := f.Tiers[0].End
	for _, t := range f.Tiers[1:] {
		if t.Start < xmin {
			xmin = t.Start
		}
		if t.End > xmax {
			xmax = t.End
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "File type = \"ooTextFile\"\nObject class = \"TextGrid\"\n\n")
	fmt.Fprintf(bw, "xmin = %s\n", timeline.FormatTime(xmin))
	fmt.Fprintf(bw, "xmax = %s\n", timeline.FormatTime(xmax))
	fmt.Fprintf(bw, "tiers? <exists>\n")
	fmt.Fprintf(bw, "size = %d\n", len(f.Tiers))
	fmt.Fprintf(bw, "item []:\n")
	for i, t := range f.Tiers {
		writeTier(bw, i+1, t)
	}
	return bw.Flush()
}

// WriteFile writes f to path in the named encoding, replacing any existing
// file.
func WriteFile(path string, f *timeline.LabelFile, encodingName string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create textgrid: %w", err)
	}
	enc, err := textenc.NewWriter(out, encodingName)
	if err != nil {
		out.Close()
		return err
	}
	if err := Write(enc, f); err != nil {
		enc.Close()
		out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("encode textgrid: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write textgrid: %w", err)
	}
	return nil
}

func writeTier(bw *bufio.Writer, index int, t *timeline.Tier) {
	class := "IntervalTier"
	entries := "intervals"
	if t.Class == timeline.ClassPoint {
		class = "TextTier"
		entries = "points"
	}
	fmt.Fprintf(bw, "    item [%d]:\n", index)
	fmt.Fprintf(bw, "        class = %q\n", class)
	fmt.Fprintf(bw, "        name = %s\n", quote(t.Name))
	fmt.Fprintf(bw, "        xmin = %s\n", timeline.FormatTime(t.Start))
	fmt.Fprintf(bw, "        xmax = %s\n", timeline.FormatTime(t.End))
	fmt.Fprintf(bw, "        %s: size = %d\n", entries, len(t.Labels))
	for i, l := range t.Labels {
		fmt.Fprintf(bw, "        %s [%d]:\n", entries, i+1)
		if t.Class == timeline.ClassPoint {
			fmt.Fprintf(bw, "            number = %s\n", timeline.FormatTime(l.T1))
			fmt.Fprintf(bw, "            mark = %s\n", quote(l.Render()))
			continue
		}
		fmt.Fprintf(bw, "            xmin = %s\n", timeline.FormatTime(l.T1))
		fmt.Fprintf(bw, "            xmax = %s\n", timeline.FormatTime(l.T2))
		fmt.Fprintf(bw, "            text = %s\n", quote(l.Render()))
	}
}

// quote applies Praat quoting: the value is wrapped in double quotes and
// embedded quotes are doubled.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
