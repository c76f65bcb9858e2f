package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"loom/internal/services"
	"loom/internal/textenc"
)

// Dictionary is the set of headwords the aligner's model can pronounce.
type Dictionary struct {
	words map[string]struct{}
}

// Load reads the main dictionary and, when present, a local supplement.
// Entries follow the CMU convention: the first whitespace-delimited token of
// each line is the headword, the remainder is the pronunciation.
//
// The main dictionary is required. A missing or unreadable main dictionary
// is a configuration error rather than an empty vocabulary, because an empty
// vocabulary would flag every transcript word and a silently empty one would
// flag none. A missing local dictionary simply contributes nothing.
func Load(mainPath, localPath, encodingName string) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]struct{})}
	if strings.TrimSpace(mainPath) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "dictionary", "load", "main dictionary path is empty", nil)
	}
	if err := d.loadFile(mainPath, encodingName); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dictionary", "load", fmt.Sprintf("main dictionary %s", mainPath), err)
	}
	if strings.TrimSpace(localPath) != "" {
		err := d.loadFile(localPath, encodingName)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "dictionary", "load", fmt.Sprintf("local dictionary %s", localPath), err)
		}
	}
	return d, nil
}

func (d *Dictionary) loadFile(path, encodingName string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := textenc.NewReader(f, encodingName)
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		d.words[fields[0]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// Contains reports whether word is a known headword. Matching is exact;
// callers normalize first.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[word]
	return ok
}

// Len returns the number of distinct headwords.
func (d *Dictionary) Len() int {
	return len(d.words)
}
