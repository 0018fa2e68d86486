package bulk

import (
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func readLines(t *testing.T, backend Backend, name string) []string {
	t.Helper()
	rc, err := backend.Open(name)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	defer rc.Close()

	gz, err := gzip.NewReader(rc)
	if err != nil {
		t.Fatalf("gzip reader for %s: %v", name, err)
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestWriterHeaderAndRows(t *testing.T) {
	backend := NewMemBackend()

	w, err := NewWriter(backend, "nodes.tsv.gz", []string{"id:ID", "name", ":LABEL"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteRow("mesh:D000001", "Calcimycin", "BioEntity"); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if err := w.WriteRow("chebi:15377", "water", "BioEntity"); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if w.Rows() != 2 {
		t.Fatalf("unexpected row count: got %d, want 2", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, backend, "nodes.tsv.gz")
	want := []string{
		"id:ID\tname\t:LABEL",
		"mesh:D000001\tCalcimycin\tBioEntity",
		"chebi:15377\twater\tBioEntity",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected line count: got %d, want %d", len(lines), len(want))
	}
	for i, line := range lines {
		if line != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, line, want[i])
		}
	}
}

func TestWriterRejectsWrongFieldCount(t *testing.T) {
	backend := NewMemBackend()

	w, err := NewWriter(backend, "edges.tsv.gz", []string{":START_ID", ":END_ID", ":TYPE"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteRow("a", "b"); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestAppendWriterKeepsSingleHeader(t *testing.T) {
	backend := NewMemBackend()

	w, err := NewWriter(backend, "nodes.tsv.gz", []string{"id:ID", ":LABEL"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteRow("pubmed:100", "Publication"); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Second chunk appends without a header.
	a, err := NewAppendWriter(backend, "nodes.tsv.gz", 2)
	if err != nil {
		t.Fatalf("new append writer: %v", err)
	}
	if err := a.WriteRow("pubmed:200", "Publication"); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lines := readLines(t, backend, "nodes.tsv.gz")
	want := []string{
		"id:ID\t:LABEL",
		"pubmed:100\tPublication",
		"pubmed:200\tPublication",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected line count: got %d, want %d", len(lines), len(want))
	}
	for i, line := range lines {
		if line != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, line, want[i])
		}
	}
}
