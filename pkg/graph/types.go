// Package graph turns the staged NIH RePORTER tables and the annotation
// results into typed node and edge records for graph-database bulk
// import.
package graph

// Identifier namespaces. Every node id is "<namespace>:<local-id>".
const (
	ProjectNamespace     = "nihreporter.project"
	PublicationNamespace = "pubmed"
	PatentNamespace      = "uspto"
	TrialNamespace       = "clinicaltrials"
)

// Node labels.
const (
	LabelResearchProject = "ResearchProject"
	LabelBioEntity       = "BioEntity"
	LabelPatent          = "Patent"
	LabelClinicalTrial   = "ClinicalTrial"
	LabelPublication     = "Publication"
)

// Edge types.
const (
	EdgeHasGroundedTerm  = "has_grounded_term"
	EdgeHasPatent        = "has_patent"
	EdgeHasClinicalTrial = "has_clinical_trial"
	EdgeHasPublication   = "has_publication"
)

func ProjectID(applicationID string) string {
	return ProjectNamespace + ":" + applicationID
}

func PublicationID(pmid string) string {
	return PublicationNamespace + ":" + pmid
}

func PatentID(patentID string) string {
	return PatentNamespace + ":" + patentID
}

func TrialID(trialID string) string {
	return TrialNamespace + ":" + trialID
}

// Edge is one typed, directed relationship row.
type Edge struct {
	StartID string
	EndID   string
	Type    string
}

// EdgeHeader is the bulk-import header shared by every edge table.
var EdgeHeader = []string{":START_ID", ":END_ID", ":TYPE"}

func (e Edge) Row() []string {
	return []string{e.StartID, e.EndID, e.Type}
}

// ProjectNode is one ResearchProject row. Applications first observed in
// the annotation source carry only their identifier.
type ProjectNode struct {
	ID              string
	Activity        string
	AdministeringIC string
	Title           string
	FiscalYear      string
	ProjectStart    string
	ProjectEnd      string
	BudgetStart     string
	BudgetEnd       string
	TotalCost       string
	OrgName         string
	OrgState        string
	CoreProjectNum  string
}

var ProjectHeader = []string{
	"id:ID", "activity", "administering_ic", "title", "fiscal_year",
	"project_start", "project_end", "budget_start", "budget_end",
	"total_cost", "org_name", "org_state", "core_project_num", ":LABEL",
}

func (n ProjectNode) Row() []string {
	return []string{
		n.ID, n.Activity, n.AdministeringIC, n.Title, n.FiscalYear,
		n.ProjectStart, n.ProjectEnd, n.BudgetStart, n.BudgetEnd,
		n.TotalCost, n.OrgName, n.OrgState, n.CoreProjectNum,
		LabelResearchProject,
	}
}

// BioEntityNode is one grounded biomedical entity with its canonical
// registry identifier.
type BioEntityNode struct {
	ID   string
	Name string
}

var BioEntityHeader = []string{"id:ID", "name", ":LABEL"}

func (n BioEntityNode) Row() []string {
	return []string{n.ID, n.Name, LabelBioEntity}
}

// PatentNode is one patent row.
type PatentNode struct {
	ID    string
	Title string
}

var PatentHeader = []string{"id:ID", "title", ":LABEL"}

func (n PatentNode) Row() []string {
	return []string{n.ID, n.Title, LabelPatent}
}

// TrialNode is one clinical trial row.
type TrialNode struct {
	ID    string
	Study string
}

var TrialHeader = []string{"id:ID", "study", ":LABEL"}

func (n TrialNode) Row() []string {
	return []string{n.ID, n.Study, LabelClinicalTrial}
}

// PublicationNode is one publication row; publications carry no
// attributes beyond identity.
type PublicationNode struct {
	ID string
}

var PublicationHeader = []string{"id:ID", ":LABEL"}

func (n PublicationNode) Row() []string {
	return []string{n.ID, LabelPublication}
}

// DedupeByKey keeps the first record for every distinct key, preserving
// input order. Records with an empty key are discarded.
func DedupeByKey[T any](records []T, key func(T) string) []T {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	out := make([]T, 0, len(records))
	for _, record := range records {
		k := key(record)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, record)
	}
	return out
}
