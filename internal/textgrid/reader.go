package textgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"loom/internal/textenc"
	"loom/internal/timeline"
)

var (
	tierStartRe  = regexp.MustCompile(`^\s*item\s*\[\d+\]\s*:`)
	entryStartRe = regexp.MustCompile(`^\s*(intervals|points)\s*\[\d+\]\s*:`)
)

// ReadFile opens a TextGrid, decodes it from the named encoding, and parses
// it. The returned file records the encoding it was read with.
func ReadFile(path, encodingName string) (*timeline.LabelFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open textgrid: %w", err)
	}
	defer f.Close()
	r, err := textenc.NewReader(f, encodingName)
	if err != nil {
		return nil, err
	}
	file, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	file.Encoding = encodingName
	return file, nil
}

// Parse reads a long-form TextGrid from r. Tier spans come from the tier
// headers; labels are taken as written, so callers needing the contiguity
// contract validate the tiers afterwards.
func Parse(r io.Reader) (*timeline.LabelFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read textgrid: %w", err)
	}

	p := &parser{lines: lines}
	if err := p.expectHeader(); err != nil {
		return nil, err
	}
	file := &timeline.LabelFile{}
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if !tierStartRe.MatchString(line) {
			// File-level keys (xmin, xmax, tiers?, size) and the bare
			// "item []:" container line carry nothing the tiers do not.
			continue
		}
		tier, err := p.parseTier()
		if err != nil {
			return nil, err
		}
		file.Tiers = append(file.Tiers, tier)
	}
	if len(file.Tiers) == 0 {
		return nil, fmt.Errorf("textgrid contains no tiers")
	}
	return file, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) next() (string, bool) {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) expectHeader() error {
	line, ok := p.next()
	if !ok || !strings.Contains(line, `"ooTextFile"`) {
		return fmt.Errorf("not a TextGrid: missing ooTextFile header")
	}
	line, ok = p.next()
	if !ok || !strings.Contains(line, `"TextGrid"`) {
		return fmt.Errorf("not a TextGrid: object class is not TextGrid")
	}
	return nil
}

func (p *parser) parseTier() (*timeline.Tier, error) {
	classValue, err := p.keyValue("class")
	if err != nil {
		return nil, err
	}
	var class timeline.Class
	switch classValue {
	case "IntervalTier":
		class = timeline.ClassInterval
	case "TextTier":
		class = timeline.ClassPoint
	default:
		return nil, p.errf("unsupported tier class %q", classValue)
	}
	name, err := p.keyValue("name")
	if err != nil {
		return nil, err
	}
	start, err := p.floatValue("xmin")
	if err != nil {
		return nil, err
	}
	end, err := p.floatValue("xmax")
	if err != nil {
		return nil, err
	}
	count, err := p.entryCount()
	if err != nil {
		return nil, err
	}

	tier := &timeline.Tier{Name: name, Class: class, Start: start, End: end}
	for i := 0; i < count; i++ {
		label, err := p.parseEntry(class)
		if err != nil {
			return nil, fmt.Errorf("tier %q entry %d: %w", name, i+1, err)
		}
		tier.Labels = append(tier.Labels, label)
	}
	return tier, nil
}

func (p *parser) parseEntry(class timeline.Class) (timeline.Label, error) {
	// The "intervals [n]:" / "points [n]:" line is decorative.
	if line, ok := p.next(); ok && !entryStartRe.MatchString(line) {
		p.pos--
	}
	if class == timeline.ClassPoint {
		t1, err := p.floatValue("number")
		if err != nil {
			return timeline.Label{}, err
		}
		text, err := p.keyValue("mark")
		if err != nil {
			return timeline.Label{}, err
		}
		return timeline.Label{T1: t1, T2: t1, Text: text}, nil
	}
	t1, err := p.floatValue("xmin")
	if err != nil {
		return timeline.Label{}, err
	}
	t2, err := p.floatValue("xmax")
	if err != nil {
		return timeline.Label{}, err
	}
	text, err := p.keyValue("text")
	if err != nil {
		return timeline.Label{}, err
	}
	return timeline.Label{T1: t1, T2: t2, Text: text}, nil
}

// entryCount accepts both "intervals: size = n" and "points: size = n".
func (p *parser) entryCount() (int, error) {
	line, ok := p.next()
	if !ok {
		return 0, p.errf("unexpected end of file, expected entry count")
	}
	idx := strings.Index(line, "size")
	if idx < 0 {
		return 0, p.errf("expected entry count, got %q", strings.TrimSpace(line))
	}
	rest := line[idx+len("size"):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return 0, p.errf("malformed entry count %q", strings.TrimSpace(line))
	}
	count, err := strconv.Atoi(strings.TrimSpace(rest[eq+1:]))
	if err != nil || count < 0 {
		return 0, p.errf("malformed entry count %q", strings.TrimSpace(line))
	}
	return count, nil
}

func (p *parser) floatValue(key string) (float64, error) {
	raw, err := p.rawValue(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, p.errf("%s is not a number: %q", key, strings.TrimSpace(raw))
	}
	return v, nil
}

// keyValue reads `key = "quoted"` handling Praat's doubled-quote escapes and
// values that continue across lines.
func (p *parser) keyValue(key string) (string, error) {
	raw, err := p.rawValue(key)
	if err != nil {
		return "", err
	}
	return p.unquote(raw, key)
}

func (p *parser) rawValue(key string) (string, error) {
	line, ok := p.next()
	if !ok {
		return "", p.errf("unexpected end of file, expected %q", key)
	}
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", p.errf("expected %q, got %q", key, strings.TrimSpace(line))
	}
	if got := strings.TrimSpace(line[:eq]); got != key {
		return "", p.errf("expected %q, got %q", key, got)
	}
	return line[eq+1:], nil
}

func (p *parser) unquote(raw, key string) (string, error) {
	open := strings.Index(raw, `"`)
	if open < 0 {
		return "", p.errf("%s is not quoted: %q", key, strings.TrimSpace(raw))
	}
	var b strings.Builder
	rest := raw[open+1:]
	for {
		for i := 0; i < len(rest); i++ {
			if rest[i] != '"' {
				b.WriteByte(rest[i])
				continue
			}
			if i+1 < len(rest) && rest[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			return b.String(), nil
		}
		// No closing quote on this line; the value continues.
		if p.pos >= len(p.lines) {
			return "", p.errf("unterminated %s value", key)
		}
		b.WriteByte('\n')
		rest = p.lines[p.pos]
		p.pos++
	}
}
