// Package storage resolves the raw-extract input location the pipeline
// reads from: a local directory of downloaded bulk files, or an S3
// bucket prefix holding the same files.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source lists and fetches raw extract files by name.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Open resolves a location string to a Source. Locations of the form
// "s3://bucket/prefix" read from S3 with the ambient AWS configuration;
// everything else is a local directory path.
func Open(ctx context.Context, location string) (Source, error) {
	if after, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(after, "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid s3 location %q: missing bucket", location)
		}
		return NewS3Source(ctx, bucket, prefix)
	}
	return NewDirSource(location)
}

// DirSource reads extract files from a local directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input location %s is not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// List returns the names of the regular files in the directory, in
// lexical order. Subdirectories are not descended into.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", name, err)
	}
	return data, nil
}
