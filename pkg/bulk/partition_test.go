package bulk

import (
	"strings"
	"testing"
)

func writeBaseEdges(t *testing.T, backend Backend, rows [][]string) {
	t.Helper()
	w, err := NewWriter(backend, "edges_base.tsv.gz", []string{":START_ID", ":END_ID", ":TYPE"})
	if err != nil {
		t.Fatalf("new base writer: %v", err)
	}
	for _, row := range rows {
		if err := w.WriteRow(row...); err != nil {
			t.Fatalf("write base row: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close base writer: %v", err)
	}
}

func TestPartitionedMerge(t *testing.T) {
	backend := NewMemBackend()
	writeBaseEdges(t, backend, [][]string{
		{"nihreporter.project:A100", "uspto:7654321", "has_patent"},
	})

	pw := NewPartitionedWriter(backend, "edges", 3)
	for chunk := 0; chunk < 3; chunk++ {
		w, err := pw.Partition(chunk)
		if err != nil {
			t.Fatalf("partition %d: %v", chunk, err)
		}
		if err := w.WriteRow("nihreporter.project:A100", "pubmed:100", "has_publication"); err != nil {
			t.Fatalf("write chunk row: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close partition %d: %v", chunk, err)
		}
	}

	if err := pw.Merge("edges.tsv.gz", "edges_base.tsv.gz"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	lines := readLines(t, backend, "edges.tsv.gz")
	if len(lines) != 4 {
		t.Fatalf("unexpected line count: got %d, want 4", len(lines))
	}
	if lines[0] != ":START_ID\t:END_ID\t:TYPE" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, ":START_ID") {
			t.Fatalf("duplicate header row in merged output: %q", line)
		}
	}

	// All intermediate files must be gone, only the final table remains.
	names := backend.Names()
	if len(names) != 1 || names[0] != "edges.tsv.gz" {
		t.Fatalf("unexpected remaining files after merge: %v", names)
	}
}

func TestPartitionedMergeRefusesReuse(t *testing.T) {
	backend := NewMemBackend()
	writeBaseEdges(t, backend, nil)

	pw := NewPartitionedWriter(backend, "edges", 3)
	if err := pw.Merge("edges.tsv.gz", "edges_base.tsv.gz"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if _, err := pw.Partition(0); err == nil {
		t.Fatal("expected error opening partition after merge")
	}
	if err := pw.Merge("edges.tsv.gz", "edges_base.tsv.gz"); err == nil {
		t.Fatal("expected error merging twice")
	}
}

// Chunk invariance: the merged edge multiset must not depend on how the
// input was split into partitions.
func TestMergeChunkInvariance(t *testing.T) {
	edges := [][]string{
		{"nihreporter.project:A1", "pubmed:10", "has_publication"},
		{"nihreporter.project:A2", "pubmed:10", "has_publication"},
		{"nihreporter.project:A1", "pubmed:11", "has_publication"},
		{"nihreporter.project:A3", "pubmed:12", "has_publication"},
		{"nihreporter.project:A1", "pubmed:10", "has_publication"},
		{"nihreporter.project:A4", "pubmed:13", "has_publication"},
	}

	mergedFor := func(chunkSize int) map[string]int {
		backend := NewMemBackend()
		writeBaseEdges(t, backend, nil)
		pw := NewPartitionedWriter(backend, "edges", 3)

		chunk := 0
		for start := 0; start < len(edges); start += chunkSize {
			end := min(start+chunkSize, len(edges))
			w, err := pw.Partition(chunk)
			if err != nil {
				t.Fatalf("partition %d: %v", chunk, err)
			}
			for _, row := range edges[start:end] {
				if err := w.WriteRow(row...); err != nil {
					t.Fatalf("write row: %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close partition: %v", err)
			}
			chunk++
		}
		if err := pw.Merge("edges.tsv.gz", "edges_base.tsv.gz"); err != nil {
			t.Fatalf("merge: %v", err)
		}

		multiset := make(map[string]int)
		for _, line := range readLines(t, backend, "edges.tsv.gz")[1:] {
			multiset[line]++
		}
		return multiset
	}

	whole := mergedFor(len(edges))
	for _, chunkSize := range []int{1, len(edges) / 2} {
		got := mergedFor(chunkSize)
		if len(got) != len(whole) {
			t.Fatalf("chunk size %d: %d distinct edges, want %d", chunkSize, len(got), len(whole))
		}
		for edge, count := range whole {
			if got[edge] != count {
				t.Fatalf("chunk size %d: edge %q count %d, want %d", chunkSize, edge, got[edge], count)
			}
		}
	}
}
