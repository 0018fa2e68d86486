package graph

import (
	"fmt"

	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/curie"
	"github.com/nihkg/reporterkg/pkg/ground"
	"github.com/nihkg/reporterkg/pkg/source"
)

// Builder derives node and edge records from the staged tables. It holds
// the cross-reference index and the run-scoped term accumulator; nodes
// are deduplicated by key before they are handed back for writing.
type Builder struct {
	xref      *CrossRefIndex
	terms     *TermAccumulator
	known     map[string]struct{}
	extra     []ProjectNode
	extraSeen map[string]struct{}
}

// NewBuilder indexes the project table and prepares an empty term
// accumulator.
func NewBuilder(projects *source.Table) *Builder {
	known := make(map[string]struct{}, projects.Len())
	for row := 0; row < projects.Len(); row++ {
		if appID, ok := projects.Value(row, source.ColApplicationID); ok && appID != "" {
			known[appID] = struct{}{}
		}
	}
	return &Builder{
		xref:      BuildCrossRefIndex(projects),
		terms:     NewTermAccumulator(),
		known:     known,
		extraSeen: make(map[string]struct{}),
	}
}

// Index exposes the cross-reference index for callers that report on it.
func (b *Builder) Index() *CrossRefIndex {
	return b.xref
}

// TermCount reports the number of distinct grounded terms seen so far.
func (b *Builder) TermCount() int {
	return b.terms.Len()
}

// AddAnnotationRecord consumes one project's annotation results: every
// top-ranked term is canonicalized and accumulated, and one
// has_grounded_term edge per distinct term is returned. A normalization
// failure is a hard failure for the record (collaborator fault), not a
// skipped edge. Applications absent from the project table are recorded
// as identifier-only project nodes.
func (b *Builder) AddAnnotationRecord(rec ground.Record) ([]Edge, error) {
	appID := rec.ApplicationID
	if _, ok := b.known[appID]; !ok {
		if _, seen := b.extraSeen[appID]; !seen {
			b.extraSeen[appID] = struct{}{}
			b.extra = append(b.extra, ProjectNode{ID: ProjectID(appID)})
		}
	}

	terms := TopTerms(rec)
	edges := make([]Edge, 0, len(terms))
	for _, term := range terms {
		canonical, err := curie.Normalize(term.CURIE)
		if err != nil {
			return nil, fmt.Errorf("normalize term for application %s: %w", appID, err)
		}
		b.terms.Insert(canonical, term.Name)
		edges = append(edges, Edge{
			StartID: ProjectID(appID),
			EndID:   canonical,
			Type:    EdgeHasGroundedTerm,
		})
	}
	return edges, nil
}

// ProjectNodes builds one ResearchProject node per distinct application
// identifier: every row of the project table plus any application first
// observed in the annotation source. Text attributes are sanitized to
// stay line-oriented.
func (b *Builder) ProjectNodes(projects *source.Table) []ProjectNode {
	value := func(row int, column string) string {
		v, _ := projects.Value(row, column)
		return util.SanitizeCell(v)
	}

	nodes := make([]ProjectNode, 0, projects.Len()+len(b.extra))
	for row := 0; row < projects.Len(); row++ {
		appID, ok := projects.Value(row, source.ColApplicationID)
		if !ok || appID == "" {
			continue
		}
		nodes = append(nodes, ProjectNode{
			ID:              ProjectID(appID),
			Activity:        value(row, source.ColActivity),
			AdministeringIC: value(row, source.ColAdministeringIC),
			Title:           value(row, source.ColProjectTitle),
			FiscalYear:      value(row, source.ColFiscalYear),
			ProjectStart:    value(row, source.ColProjectStart),
			ProjectEnd:      value(row, source.ColProjectEnd),
			BudgetStart:     value(row, source.ColBudgetStart),
			BudgetEnd:       value(row, source.ColBudgetEnd),
			TotalCost:       value(row, source.ColTotalCost),
			OrgName:         value(row, source.ColOrgName),
			OrgState:        value(row, source.ColOrgState),
			CoreProjectNum:  value(row, source.ColCoreProjectNum),
		})
	}
	nodes = append(nodes, b.extra...)

	return DedupeByKey(nodes, func(n ProjectNode) string { return n.ID })
}

// BioEntityNodes returns the accumulated grounded terms in first-seen
// order. Call after the last annotation record has been added.
func (b *Builder) BioEntityNodes() []BioEntityNode {
	return b.terms.Finalize()
}

// PatentRecords builds one Patent node per distinct patent identifier
// and one has_patent edge per application sharing the row's project key.
// A missing key or an index miss drops the row's edges only, never its
// node.
func (b *Builder) PatentRecords(patents *source.Table) ([]PatentNode, []Edge) {
	nodes := make([]PatentNode, 0, patents.Len())
	var edges []Edge
	for row := 0; row < patents.Len(); row++ {
		patentID, ok := patents.Value(row, source.ColPatentID)
		if !ok || patentID == "" {
			continue
		}
		title, _ := patents.Value(row, source.ColPatentTitle)
		nodes = append(nodes, PatentNode{
			ID:    PatentID(patentID),
			Title: util.SanitizeCell(title),
		})

		key, _ := patents.Value(row, source.ColPatentProjectID)
		edges = append(edges, b.fanOut(key, PatentID(patentID), EdgeHasPatent)...)
	}
	return DedupeByKey(nodes, func(n PatentNode) string { return n.ID }), edges
}

// TrialRecords builds one ClinicalTrial node per distinct trial
// identifier and one has_clinical_trial edge per application sharing the
// row's core project number.
func (b *Builder) TrialRecords(trials *source.Table) ([]TrialNode, []Edge) {
	nodes := make([]TrialNode, 0, trials.Len())
	var edges []Edge
	for row := 0; row < trials.Len(); row++ {
		trialID, ok := trials.Value(row, source.ColTrialID)
		if !ok || trialID == "" {
			continue
		}
		study, _ := trials.Value(row, source.ColTrialStudy)
		nodes = append(nodes, TrialNode{
			ID:    TrialID(trialID),
			Study: util.SanitizeCell(study),
		})

		key, _ := trials.Value(row, source.ColTrialCoreProject)
		edges = append(edges, b.fanOut(key, TrialID(trialID), EdgeHasClinicalTrial)...)
	}
	return DedupeByKey(nodes, func(n TrialNode) string { return n.ID }), edges
}

// PublicationChunk builds the nodes and edges for one chunk of the
// publication stream. Deduplication is per chunk; a PMID recurring in a
// later chunk produces a duplicate node by design. value resolves a
// column of a raw row, reporting ok=false for absent columns.
func (b *Builder) PublicationChunk(
	chunk [][]string,
	value func(row []string, column string) (string, bool),
) ([]PublicationNode, []Edge) {
	nodes := make([]PublicationNode, 0, len(chunk))
	var edges []Edge
	for _, row := range chunk {
		pmid, ok := value(row, source.ColPMID)
		if !ok || pmid == "" {
			continue
		}
		nodes = append(nodes, PublicationNode{ID: PublicationID(pmid)})

		key, _ := value(row, source.ColProjectNumber)
		edges = append(edges, b.fanOut(key, PublicationID(pmid), EdgeHasPublication)...)
	}
	return DedupeByKey(nodes, func(n PublicationNode) string { return n.ID }), edges
}

// fanOut emits one edge per application matching the linking key. An
// empty key or an index miss yields no edges; the miss policy is decided
// here, explicitly, not by a swallowed fault.
func (b *Builder) fanOut(key, endID, edgeType string) []Edge {
	if NormalizeKey(key) == "" {
		return nil
	}
	appIDs, ok := b.xref.Lookup(key)
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(appIDs))
	for _, appID := range appIDs {
		edges = append(edges, Edge{
			StartID: ProjectID(appID),
			EndID:   endID,
			Type:    edgeType,
		})
	}
	return edges
}
