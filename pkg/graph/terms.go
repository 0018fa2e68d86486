package graph

import (
	"strings"

	"github.com/nihkg/reporterkg/pkg/ground"
)

// Term is one top-ranked grounding result: the raw vocabulary-qualified
// identifier and its display name.
type Term struct {
	CURIE string
	Name  string
}

// TopTerms extracts the highest-ranked match of every annotation span of
// a record, title and abstract combined, deduplicated by identifier.
// First occurrence fixes the position, the most recent occurrence fixes
// the name.
func TopTerms(rec ground.Record) []Term {
	annotations := make([]ground.Annotation, 0, len(rec.TitleAnnotations)+len(rec.AbstractAnnotations))
	annotations = append(annotations, rec.TitleAnnotations...)
	annotations = append(annotations, rec.AbstractAnnotations...)

	position := make(map[string]int)
	var terms []Term
	for _, ann := range annotations {
		if len(ann.Matches) == 0 {
			continue
		}
		top := ann.Matches[0].Term
		curie := strings.ToLower(top.DB) + ":" + top.ID
		if i, ok := position[curie]; ok {
			terms[i].Name = top.EntryName
			continue
		}
		position[curie] = len(terms)
		terms = append(terms, Term{CURIE: curie, Name: top.EntryName})
	}
	return terms
}

// TermAccumulator folds per-project term mappings into one run-scoped
// identifier→name mapping. Duplicate identifiers keep their first-seen
// position; the most recently inserted name wins without raising a
// conflict.
type TermAccumulator struct {
	position map[string]int
	nodes    []BioEntityNode
}

func NewTermAccumulator() *TermAccumulator {
	return &TermAccumulator{position: make(map[string]int)}
}

// Insert records a canonical identifier with its display name.
func (a *TermAccumulator) Insert(id, name string) {
	if i, ok := a.position[id]; ok {
		a.nodes[i].Name = name
		return
	}
	a.position[id] = len(a.nodes)
	a.nodes = append(a.nodes, BioEntityNode{ID: id, Name: name})
}

// Len reports the number of distinct identifiers inserted so far.
func (a *TermAccumulator) Len() int {
	return len(a.nodes)
}

// Finalize returns the accumulated BioEntity nodes in first-insertion
// order. The accumulator must not be used afterwards.
func (a *TermAccumulator) Finalize() []BioEntityNode {
	nodes := a.nodes
	a.nodes = nil
	a.position = nil
	return nodes
}
