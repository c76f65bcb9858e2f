package timeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tierHeaderPrefix introduces a tier in the tabular format.
const tierHeaderPrefix = "#### "

var cellSanitizer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// EncodeTable writes f in the tab-separated tier table format:
//
//	#### <name>	<class>	<start>	<end>
//	<t1>	<t2>	<text>
//
// Interval labels carry three cells, point labels two (no end time). Times
// use the shortest round-tripping decimal form, so equal timelines always
// serialize to identical bytes. Tabs and newlines inside names and label
// text are replaced with spaces.
func EncodeTable(w io.Writer, f *LabelFile) error {
	bw := bufio.NewWriter(w)
	for _, t := range f.Tiers {
		fmt.Fprintf(bw, "%s%s\t%s\t%s\t%s\n", tierHeaderPrefix, cellSanitizer.Replace(t.Name), t.Class, FormatTime(t.Start), FormatTime(t.End))
		for _, l := range t.Labels {
			if t.Class == ClassPoint {
				fmt.Fprintf(bw, "%s\t%s\n", FormatTime(l.T1), cellSanitizer.Replace(l.Render()))
				continue
			}
			fmt.Fprintf(bw, "%s\t%s\t%s\n", FormatTime(l.T1), FormatTime(l.T2), cellSanitizer.Replace(l.Render()))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// DecodeTable reads a label file in the tabular format produced by
// EncodeTable. Decoding checks line structure only; callers that need the
// contiguity contract run Validate on the tiers themselves. Error markers in
// label text decode as plain text.
func DecodeTable(r io.Reader) (*LabelFile, error) {
	file := &LabelFile{}
	var current *Tier
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, tierHeaderPrefix) {
			tier, err := parseTierHeader(strings.TrimPrefix(line, tierHeaderPrefix))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			file.Tiers = append(file.Tiers, tier)
			current = tier
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: label before any tier header", lineNo)
		}
		label, err := parseTableLabel(line, current.Class)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		current.Labels = append(current.Labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read label table: %w", err)
	}
	if len(file.Tiers) == 0 {
		return nil, fmt.Errorf("label table contains no tiers")
	}
	return file, nil
}

func parseTierHeader(rest string) (*Tier, error) {
	fields := strings.Split(rest, "\t")
	if len(fields) != 4 {
		return nil, fmt.Errorf("tier header needs name, class, start, end; got %d fields", len(fields))
	}
	class, ok := ParseClass(fields[1])
	if !ok {
		return nil, fmt.Errorf("unknown tier class %q", fields[1])
	}
	start, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("tier start %q: %w", fields[2], err)
	}
	end, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, fmt.Errorf("tier end %q: %w", fields[3], err)
	}
	return &Tier{Name: fields[0], Class: class, Start: start, End: end}, nil
}

func parseTableLabel(line string, class Class) (Label, error) {
	fields := strings.Split(line, "\t")
	if class == ClassPoint {
		if len(fields) != 2 {
			return Label{}, fmt.Errorf("point label needs time and text; got %d fields", len(fields))
		}
		t1, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Label{}, fmt.Errorf("label time %q: %w", fields[0], err)
		}
		return Label{T1: t1, T2: t1, Text: fields[1]}, nil
	}
	if len(fields) != 3 {
		return Label{}, fmt.Errorf("interval label needs start, end, text; got %d fields", len(fields))
	}
	t1, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Label{}, fmt.Errorf("label start %q: %w", fields[0], err)
	}
	t2, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Label{}, fmt.Errorf("label end %q: %w", fields[1], err)
	}
	return Label{T1: t1, T2: t2, Text: fields[2]}, nil
}
