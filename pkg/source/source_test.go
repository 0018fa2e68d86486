package source

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func zipWithPayload(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create zip member: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write zip member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func gzipTSV(t *testing.T, content string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := io.WriteString(gz, content); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return &buf
}

func TestReadZipCSV(t *testing.T) {
	csvContent := "APPLICATION_ID,PROJECT_TITLE\n100,Genome study\n101,Protein folding\n"
	data := zipWithPayload(t, "RePORTER_PRJ_C_FY2023.csv", []byte(csvContent))

	table, err := ReadZipCSV(data)
	if err != nil {
		t.Fatalf("read zip csv: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("unexpected row count: got %d, want 2", table.Len())
	}
	title, ok := table.Value(1, ColProjectTitle)
	if !ok || title != "Protein folding" {
		t.Fatalf("unexpected title: got %q ok=%v", title, ok)
	}
}

func TestReadZipCSVLatin1(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte.
	csvContent := []byte("APPLICATION_ID,ORG_NAME\n100,UNIVERSIT\xc9 DE MONTR\xc9AL\n")
	data := zipWithPayload(t, "projects.csv", csvContent)

	table, err := ReadZipCSV(data)
	if err != nil {
		t.Fatalf("read zip csv: %v", err)
	}
	org, ok := table.Value(0, ColOrgName)
	if !ok {
		t.Fatal("ORG_NAME column missing")
	}
	if org != "UNIVERSITÉ DE MONTRÉAL" {
		t.Fatalf("latin1 not decoded: got %q", org)
	}
}

func TestMalformedRowsDropped(t *testing.T) {
	csvContent := strings.Join([]string{
		"APPLICATION_ID,PROJECT_TITLE,FY",
		"100,Genome study,2023",
		"101,short row",
		"102,Protein folding,2023,extra",
		"103,Immune response,2024",
	}, "\n")

	table, err := ReadCSV(strings.NewReader(csvContent))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("unexpected row count: got %d, want 2", table.Len())
	}
	if table.Dropped() != 2 {
		t.Fatalf("unexpected dropped count: got %d, want 2", table.Dropped())
	}
}

func TestValueMissingColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("APPLICATION_ID\n100\n"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if _, ok := table.Value(0, ColProjectTitle); ok {
		t.Fatal("missing column must report ok=false")
	}
	if table.HasColumn(ColProjectTitle) {
		t.Fatal("HasColumn must be false for missing column")
	}
}

func TestMergeAlignsByName(t *testing.T) {
	left, err := ReadCSV(strings.NewReader("APPLICATION_ID,PROJECT_TITLE\n100,Alpha\n"))
	if err != nil {
		t.Fatalf("read left: %v", err)
	}
	right, err := ReadCSV(strings.NewReader("PROJECT_TITLE,APPLICATION_ID,FY\nBeta,200,2024\n"))
	if err != nil {
		t.Fatalf("read right: %v", err)
	}

	left.Merge(right)
	if left.Len() != 2 {
		t.Fatalf("unexpected row count: got %d, want 2", left.Len())
	}

	id, ok := left.Value(1, ColApplicationID)
	if !ok || id != "200" {
		t.Fatalf("unexpected id: got %q ok=%v", id, ok)
	}
	fy, ok := left.Value(1, ColFiscalYear)
	if !ok || fy != "2024" {
		t.Fatalf("unexpected fiscal year: got %q ok=%v", fy, ok)
	}
	// Column added by merge is empty for pre-existing rows.
	fy, ok = left.Value(0, ColFiscalYear)
	if !ok || fy != "" {
		t.Fatalf("expected empty fiscal year for first row: got %q ok=%v", fy, ok)
	}
}

func TestRowReaderStreams(t *testing.T) {
	content := "PMID\tPROJECT_NUMBER\n100\tR01CA000001\nbadrow\n101\tR01CA000002\n"
	rr, err := NewRowReader(io.NopCloser(gzipTSV(t, content)))
	if err != nil {
		t.Fatalf("new row reader: %v", err)
	}
	defer rr.Close()

	var pmids []string
	for {
		row, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		pmid, ok := rr.Value(row, ColPMID)
		if !ok {
			t.Fatal("PMID column missing")
		}
		pmids = append(pmids, pmid)
	}

	if len(pmids) != 2 || pmids[0] != "100" || pmids[1] != "101" {
		t.Fatalf("unexpected pmids: %v", pmids)
	}
	if rr.Dropped() != 1 {
		t.Fatalf("unexpected dropped count: got %d, want 1", rr.Dropped())
	}
}
