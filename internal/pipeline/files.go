// Package pipeline wires the stages of the dataset build: staging the
// raw extracts, grounding project text, and assembling the bulk-import
// node and edge tables.
package pipeline

// Staging tables written by the annotate stage and read by the build
// stage.
const (
	FileProjects     = "temp_project_data.tsv.gz"
	FilePublications = "publications_data.tsv.gz"
	FilePatents      = "patents_data.tsv.gz"
	FileTrials       = "clinical_trials_data.tsv.gz"
	FileAnnotations  = "annotations.jsonl"
)

// Final bulk-import tables written by the build stage.
const (
	FileProjectNodes     = "research_project_nodes.tsv.gz"
	FileBioEntityNodes   = "bio_entity_nodes.tsv.gz"
	FilePatentNodes      = "patent_nodes.tsv.gz"
	FileTrialNodes       = "clinical_trial_nodes.tsv.gz"
	FilePublicationNodes = "publication_nodes.tsv.gz"
	FileEdges            = "edges.tsv.gz"

	fileEdgesBase   = "edges_base.tsv.gz"
	edgeChunkPrefix = "edges"
)

// DefaultChunkSize bounds how many publication rows are processed per
// chunk when no explicit size is configured.
const DefaultChunkSize = 100_000
