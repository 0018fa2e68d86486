package main

import (
	"github.com/spf13/cobra"

	"github.com/nihkg/reporterkg/internal/pipeline"
	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/bulk"
)

var (
	buildInput  string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the bulk-import node and edge tables",
	Long: `Assemble the final graph-database bulk-import tables from the
staging tables the annotate stage produced. The publication chunk size
is configurable via CHUNK_SIZE.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildInput, "input", "temp_data_storage", "directory holding the staging tables")
	buildCmd.Flags().StringVar(&buildOutput, "output", "prepped_data", "directory the bulk-import tables are written to")
}

func runBuild(cmd *cobra.Command, args []string) error {
	input, err := bulk.NewDirBackend(buildInput)
	if err != nil {
		return err
	}
	output, err := bulk.NewDirBackend(buildOutput)
	if err != nil {
		return err
	}

	return pipeline.Build(cmd.Context(), pipeline.BuildParams{
		Input:     input,
		Output:    output,
		ChunkSize: util.GetEnvInt("CHUNK_SIZE", pipeline.DefaultChunkSize),
	})
}
