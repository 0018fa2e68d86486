// Package ground talks to the biomedical named-entity grounding service
// and defines the annotation wire format shared between the annotate and
// build stages.
package ground

import (
	"context"
	"strings"
	"unicode/utf8"
)

// MinAbstractLength is the policy threshold below which abstract text is
// not sent for grounding: very short abstracts ("N/A" and the like) only
// produce spurious matches.
const MinAbstractLength = 10

// Term identifies a grounded entity within a source vocabulary.
type Term struct {
	DB        string `json:"db"`
	ID        string `json:"id"`
	EntryName string `json:"entry_name"`
}

// Match is one ranked grounding candidate for an annotation span.
type Match struct {
	Term Term `json:"term"`
}

// Annotation is one annotated span of input text with its candidate
// matches in rank order. Matches may be empty.
type Annotation struct {
	Text    string  `json:"text,omitempty"`
	Matches []Match `json:"matches"`
}

// Record is one line of the annotations JSONL intermediate file: the
// per-project annotation results for title and abstract text.
type Record struct {
	ApplicationID       string       `json:"application_id"`
	TitleAnnotations    []Annotation `json:"title_annotations"`
	AbstractAnnotations []Annotation `json:"abstract_annotations"`
}

// Annotator produces ordered annotation spans for a piece of free text.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]Annotation, error)
}

// ShouldAnnotateAbstract reports whether abstract text is worth
// grounding: present, non-blank, and at least MinAbstractLength
// characters long. The threshold counts characters, not bytes; the
// extracts arrive Latin-1 and are decoded to multi-byte UTF-8.
func ShouldAnnotateAbstract(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return utf8.RuneCountInString(text) >= MinAbstractLength
}
