package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "RePORTER_PRJ_C_FY2020.zip"), []byte("payload"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("make subdirectory: %v", err)
	}

	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("open directory source: %v", err)
	}

	names, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"RePORTER_PRJ_C_FY2020.zip"}) {
		t.Fatalf("unexpected names: %v", names)
	}

	data, err := source.Fetch(context.Background(), "RePORTER_PRJ_C_FY2020.zip")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestOpenRejectsMissingBucket(t *testing.T) {
	if _, err := Open(context.Background(), "s3:///prefix"); err == nil {
		t.Fatal("expected error for s3 location without bucket")
	}
}

func TestOpenRejectsMissingDirectory(t *testing.T) {
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
