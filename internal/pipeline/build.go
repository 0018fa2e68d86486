package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nihkg/reporterkg/pkg/bulk"
	"github.com/nihkg/reporterkg/pkg/graph"
	"github.com/nihkg/reporterkg/pkg/ground"
	"github.com/nihkg/reporterkg/pkg/logger"
	"github.com/nihkg/reporterkg/pkg/source"
)

// BuildParams configures the build stage. Input holds the staging
// tables written by the annotate stage; Output receives the bulk-import
// tables.
type BuildParams struct {
	Input     bulk.Backend
	Output    bulk.Backend
	ChunkSize int
}

// Build assembles the bulk-import node and edge tables from the staged
// data. Every edge table shares one header; low-volume edges stream into
// a base file and publication edges into per-chunk partitions, merged
// into the final edge table at the end. Publications are the one
// unbounded source, so they never pass through memory whole.
func Build(ctx context.Context, params BuildParams) error {
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	projects, err := readStagedTable(params.Input, FileProjects)
	if err != nil {
		return err
	}
	builder := graph.NewBuilder(projects)
	logger.Info("indexed project table", "rows", projects.Len(), "core_projects", builder.Index().Len())

	edges, err := bulk.NewWriter(params.Output, fileEdgesBase, graph.EdgeHeader)
	if err != nil {
		return err
	}

	if err := buildTermEdges(params.Input, builder, edges); err != nil {
		edges.Close()
		return err
	}
	if err := buildPatents(params.Input, params.Output, builder, edges); err != nil {
		edges.Close()
		return err
	}
	if err := buildTrials(params.Input, params.Output, builder, edges); err != nil {
		edges.Close()
		return err
	}

	projectNodes := builder.ProjectNodes(projects)
	if err := writeNodeTable(params.Output, FileProjectNodes, graph.ProjectHeader, projectNodes); err != nil {
		edges.Close()
		return err
	}
	logger.Info("wrote node table", "name", FileProjectNodes, "rows", len(projectNodes))

	bioEntities := builder.BioEntityNodes()
	if err := writeNodeTable(params.Output, FileBioEntityNodes, graph.BioEntityHeader, bioEntities); err != nil {
		edges.Close()
		return err
	}
	logger.Info("wrote node table", "name", FileBioEntityNodes, "rows", len(bioEntities))

	partitions := bulk.NewPartitionedWriter(params.Output, edgeChunkPrefix, len(graph.EdgeHeader))
	if err := buildPublications(params.Input, params.Output, builder, partitions, chunkSize); err != nil {
		edges.Close()
		return err
	}

	if err := edges.Close(); err != nil {
		return fmt.Errorf("close %s: %w", fileEdgesBase, err)
	}
	if err := partitions.Merge(FileEdges, fileEdgesBase); err != nil {
		return err
	}
	logger.Info("merged edge table", "name", FileEdges)

	return nil
}

func readStagedTable(input bulk.Backend, name string) (*source.Table, error) {
	r, err := input.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open staging table %s: %w", name, err)
	}
	defer r.Close()

	table, err := source.ReadTSVGZ(r)
	if err != nil {
		return nil, fmt.Errorf("load staging table %s: %w", name, err)
	}
	return table, nil
}

// buildTermEdges streams the annotations file, accumulating grounded
// terms on the builder and writing one has_grounded_term edge per
// project-term pair.
func buildTermEdges(input bulk.Backend, builder *graph.Builder, edges *bulk.Writer) error {
	r, err := input.Open(FileAnnotations)
	if err != nil {
		return fmt.Errorf("open %s: %w", FileAnnotations, err)
	}
	defer r.Close()

	records := 0
	err = ground.ReadRecords(r, func(rec ground.Record) error {
		recordEdges, err := builder.AddAnnotationRecord(rec)
		if err != nil {
			return err
		}
		for _, edge := range recordEdges {
			if err := edges.WriteRow(edge.Row()...); err != nil {
				return err
			}
		}
		records++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("built grounded term edges", "records", records, "terms", builder.TermCount())
	return nil
}

func buildPatents(input, output bulk.Backend, builder *graph.Builder, edges *bulk.Writer) error {
	patents, err := readOptionalTable(input, FilePatents)
	if err != nil {
		return err
	}
	if patents == nil {
		return nil
	}

	nodes, patentEdges := builder.PatentRecords(patents)
	if err := writeNodeTable(output, FilePatentNodes, graph.PatentHeader, nodes); err != nil {
		return err
	}
	if err := writeEdges(edges, patentEdges); err != nil {
		return err
	}
	logger.Info("wrote node table", "name", FilePatentNodes, "rows", len(nodes), "edges", len(patentEdges))
	return nil
}

func buildTrials(input, output bulk.Backend, builder *graph.Builder, edges *bulk.Writer) error {
	trials, err := readOptionalTable(input, FileTrials)
	if err != nil {
		return err
	}
	if trials == nil {
		return nil
	}

	nodes, trialEdges := builder.TrialRecords(trials)
	if err := writeNodeTable(output, FileTrialNodes, graph.TrialHeader, nodes); err != nil {
		return err
	}
	if err := writeEdges(edges, trialEdges); err != nil {
		return err
	}
	logger.Info("wrote node table", "name", FileTrialNodes, "rows", len(nodes), "edges", len(trialEdges))
	return nil
}

// readOptionalTable loads a staging table that is allowed to be absent
// when the raw input had no extracts of its family.
func readOptionalTable(input bulk.Backend, name string) (*source.Table, error) {
	r, err := input.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("staging table absent, skipping", "name", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open staging table %s: %w", name, err)
	}
	defer r.Close()

	table, err := source.ReadTSVGZ(r)
	if err != nil {
		return nil, fmt.Errorf("load staging table %s: %w", name, err)
	}
	return table, nil
}

// buildPublications streams the publication table in chunks: node rows
// append to the single node table, edge rows go to one partition per
// chunk. Node deduplication is per chunk.
func buildPublications(
	input, output bulk.Backend,
	builder *graph.Builder,
	partitions *bulk.PartitionedWriter,
	chunkSize int,
) error {
	r, err := input.Open(FilePublications)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("staging table absent, skipping", "name", FilePublications)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open staging table %s: %w", FilePublications, err)
	}

	reader, err := source.NewRowReader(r)
	if err != nil {
		return fmt.Errorf("load staging table %s: %w", FilePublications, err)
	}
	defer reader.Close()

	header, err := bulk.NewWriter(output, FilePublicationNodes, graph.PublicationHeader)
	if err != nil {
		return err
	}
	if err := header.Close(); err != nil {
		return fmt.Errorf("close %s: %w", FilePublicationNodes, err)
	}

	chunk := make([][]string, 0, chunkSize)
	index := 0
	totalNodes := 0
	totalEdges := 0
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		nodes, edges := builder.PublicationChunk(chunk, reader.Value)

		nodeWriter, err := bulk.NewAppendWriter(output, FilePublicationNodes, len(graph.PublicationHeader))
		if err != nil {
			return err
		}
		for _, node := range nodes {
			if err := nodeWriter.WriteRow(node.Row()...); err != nil {
				nodeWriter.Close()
				return err
			}
		}
		if err := nodeWriter.Close(); err != nil {
			return fmt.Errorf("close %s: %w", FilePublicationNodes, err)
		}

		edgeWriter, err := partitions.Partition(index)
		if err != nil {
			return err
		}
		if err := writeEdges(edgeWriter, edges); err != nil {
			edgeWriter.Close()
			return err
		}
		if err := edgeWriter.Close(); err != nil {
			return fmt.Errorf("close edge partition %d: %w", index, err)
		}

		logger.Debug("processed publication chunk", "chunk", index, "nodes", len(nodes), "edges", len(edges))
		totalNodes += len(nodes)
		totalEdges += len(edges)
		index++
		chunk = chunk[:0]
		return nil
	}

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read staging table %s: %w", FilePublications, err)
		}
		chunk = append(chunk, row)
		if len(chunk) == chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("wrote node table", "name", FilePublicationNodes, "rows", totalNodes, "edges", totalEdges, "chunks", index)
	return nil
}

func writeEdges(w *bulk.Writer, edges []graph.Edge) error {
	for _, edge := range edges {
		if err := w.WriteRow(edge.Row()...); err != nil {
			return err
		}
	}
	return nil
}

// writeNodeTable writes one complete node table: header plus one row per
// node.
func writeNodeTable[T interface{ Row() []string }](
	backend bulk.Backend,
	name string,
	header []string,
	nodes []T,
) error {
	w, err := bulk.NewWriter(backend, name, header)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if err := w.WriteRow(node.Row()...); err != nil {
			w.Close()
			return fmt.Errorf("write node table %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close node table %s: %w", name, err)
	}
	return nil
}
