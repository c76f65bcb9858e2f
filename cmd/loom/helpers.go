package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"loom/internal/align"
	"loom/internal/fileutil"
	"loom/internal/services"
	"loom/internal/textenc"
	"loom/internal/textgrid"
	"loom/internal/timeline"
)

// tierSelector is one parsed --tier value: a tier name plus the audio
// channel it is read from.
type tierSelector struct {
	name    string
	channel int
}

func (s tierSelector) String() string {
	if s.channel == 1 {
		return s.name
	}
	return fmt.Sprintf("%s:%d", s.name, s.channel)
}

// parseTierSelector splits "name[:channel]". Tier names may themselves
// contain colons, so only a numeric suffix counts as a channel.
func parseTierSelector(value string) (tierSelector, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return tierSelector{}, services.Wrap(services.ErrConfiguration, "align", "usage", "tier selector is empty", nil)
	}
	name, channel := value, 1
	if i := strings.LastIndex(value, ":"); i >= 0 {
		if ch, err := strconv.Atoi(value[i+1:]); err == nil {
			if ch < 1 {
				return tierSelector{}, services.Wrap(services.ErrConfiguration, "align", "usage",
					fmt.Sprintf("channel in %q must be 1 or higher", value), nil)
			}
			name, channel = value[:i], ch
		}
	}
	if strings.TrimSpace(name) == "" {
		return tierSelector{}, services.Wrap(services.ErrConfiguration, "align", "usage",
			fmt.Sprintf("tier selector %q names no tier", value), nil)
	}
	return tierSelector{name: name, channel: channel}, nil
}

func parseTierSelectors(values []string) ([]tierSelector, error) {
	selectors := make([]tierSelector, 0, len(values))
	for _, value := range values {
		sel, err := parseTierSelector(value)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

// selectSources resolves selectors against the file's tiers. No selectors
// means every interval tier on channel 1.
func selectSources(file *timeline.LabelFile, path string, selectors []tierSelector) ([]align.Source, error) {
	if len(selectors) == 0 {
		tiers := file.IntervalTiers()
		if len(tiers) == 0 {
			return nil, services.Wrap(services.ErrValidation, "align", "select tiers",
				fmt.Sprintf("%s has no interval tiers", path), nil)
		}
		sources := make([]align.Source, 0, len(tiers))
		for _, tier := range tiers {
			sources = append(sources, align.Source{Tier: tier, Channel: 1})
		}
		return sources, nil
	}

	sources := make([]align.Source, 0, len(selectors))
	for _, sel := range selectors {
		tier := file.Tier(sel.name)
		if tier == nil {
			return nil, services.Wrap(services.ErrConfiguration, "align", "select tiers",
				fmt.Sprintf("no tier named %q in %s (has %s)", sel.name, path, strings.Join(file.TierNames(), ", ")), nil)
		}
		if tier.Class != timeline.ClassInterval {
			return nil, services.Wrap(services.ErrConfiguration, "align", "select tiers",
				fmt.Sprintf("tier %q in %s holds points, not intervals", sel.name, path), nil)
		}
		sources = append(sources, align.Source{Tier: tier, Channel: sel.channel})
	}
	return sources, nil
}

// readLabelFile loads a label file in either supported format, sniffing by
// content: tabular files open with a tier header, TextGrids announce
// themselves as ooTextFile.
func readLabelFile(path, encodingName string) (*timeline.LabelFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "loom", "read label file", path, err)
	}
	defer f.Close()

	r, err := textenc.NewReader(f, encodingName)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "loom", "read label file", path, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "loom", "read label file", path, err)
	}

	text := string(data)
	var file *timeline.LabelFile
	if strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "#### ") {
		file, err = timeline.DecodeTable(strings.NewReader(text))
	} else {
		file, err = textgrid.Parse(strings.NewReader(text))
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "loom", "parse label file", path, err)
	}
	file.Encoding = encodingName
	return file, nil
}

// writeTabular encodes the file in the compact tabular format, atomically
// to outPath or straight to w when outPath is empty.
func writeTabular(w io.Writer, outPath string, file *timeline.LabelFile, encodingName string) error {
	encode := func(dst io.Writer) error {
		enc, err := textenc.NewWriter(dst, encodingName)
		if err != nil {
			return err
		}
		if err := timeline.EncodeTable(enc, file); err != nil {
			return err
		}
		return enc.Close()
	}

	if strings.TrimSpace(outPath) == "" {
		return encode(w)
	}
	if err := fileutil.WriteAtomic(outPath, encode); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}
