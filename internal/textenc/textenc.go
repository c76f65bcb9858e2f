// Package textenc resolves user-supplied character encoding names to
// decoders and encoders. Annotation files in the wild arrive in legacy
// 8-bit encodings about as often as UTF-8, so every label file and
// dictionary read or written goes through this package.
package textenc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Lookup resolves an encoding name to its x/text implementation. Names are
// trimmed, lower-cased, and matched against the IANA registry; an empty
// name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	switch normalizeName(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	}
	enc, err := ianaindex.IANA.Encoding(normalizeName(name))
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown character encoding %q", name)
	}
	return enc, nil
}

// NewReader wraps r so reads yield UTF-8 regardless of the named source
// encoding. A UTF-8 source passes through with any byte-order mark
// stripped.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	switch normalizeName(name) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter wraps w so UTF-8 writes come out in the named encoding. Close
// flushes partial runes and must be called. UTF-8 output is written bare,
// without a byte-order mark.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	switch normalizeName(name) {
	case "", "utf-8", "utf8":
		return nopCloser{w}, nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
