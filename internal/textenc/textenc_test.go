package textenc

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF-8", "utf8", "utf-16", "utf-16le", "utf-16be", "iso-8859-1", "windows-1252", " ISO-8859-1 "} {
		if _, err := Lookup(name); err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("klingon-7"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestNewReaderDecodesLatin1(t *testing.T) {
	// "café" in ISO-8859-1: é is a single 0xE9 byte.
	src := []byte{'c', 'a', 'f', 0xE9}
	r, err := NewReader(bytes.NewReader(src), "iso-8859-1")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "café" {
		t.Fatalf("decoded %q, want %q", got, "café")
	}
}

func TestNewReaderStripsUTF8BOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("phone")...)
	r, err := NewReader(bytes.NewReader(src), "utf-8")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "phone" {
		t.Fatalf("decoded %q, want %q", got, "phone")
	}
}

func TestNewWriterEncodesLatin1(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "iso-8859-1")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := io.WriteString(w, "café"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	want := []byte{'c', 'a', 'f', 0xE9}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded % x, want % x", buf.Bytes(), want)
	}
}

func TestUTF16RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "utf-16")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	const text = "xmin = 0\n"
	if _, err := io.WriteString(w, text); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if buf.Len() <= len(text) {
		t.Fatalf("UTF-16 output suspiciously small: %d bytes", buf.Len())
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()), "utf-16")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != text {
		t.Fatalf("round trip = %q, want %q", got, text)
	}
}

func TestNewWriterUTF8PassThrough(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := io.WriteString(w, "plain"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if buf.String() != "plain" || strings.HasPrefix(buf.String(), "\xEF\xBB\xBF") {
		t.Fatalf("UTF-8 output must be bare, got % x", buf.Bytes())
	}
}
