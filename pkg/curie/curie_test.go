package curie

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already canonical",
			input: "mesh:D000001",
			want:  "mesh:D000001",
		},
		{
			name:  "upper case prefix",
			input: "MESH:D000001",
			want:  "mesh:D000001",
		},
		{
			name:  "redundant embedded prefix",
			input: "CHEBI:CHEBI:15377",
			want:  "chebi:15377",
		},
		{
			name:  "prefix synonym",
			input: "UP:P04637",
			want:  "uniprot:P04637",
		},
		{
			name:  "taxonomy synonym",
			input: "TAXONOMY:9606",
			want:  "ncbitaxon:9606",
		},
		{
			name:  "local id case preserved",
			input: "hgnc:HGNC:11998",
			want:  "hgnc:11998",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected canonical form: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"MESH:D000001", "CHEBI:CHEBI:15377", "up:P04637"}
	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("normalize %q: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("re-normalize %q: %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown prefix", input: "notaregistry:123"},
		{name: "no separator", input: "mesh"},
		{name: "empty local id", input: "mesh:"},
		{name: "empty prefix", input: ":D000001"},
		{name: "empty string", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.input); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestNormalizeErrorNamesPrefix(t *testing.T) {
	_, err := Normalize("bogusdb:1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bogusdb") {
		t.Fatalf("error should name the prefix: %v", err)
	}
}
