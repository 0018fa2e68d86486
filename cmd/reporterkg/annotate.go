package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nihkg/reporterkg/internal/pipeline"
	"github.com/nihkg/reporterkg/internal/storage"
	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/bulk"
	"github.com/nihkg/reporterkg/pkg/ground"
)

var (
	annotateInput  string
	annotateOutput string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Stage the raw extracts and ground project text",
	Long: `Stage the downloaded ExPORTER extracts as compressed staging
tables and send every project's title and abstract to the grounding
service configured via GROUNDER_URL. The input location is a local
directory or an s3://bucket/prefix location.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVar(&annotateInput, "input", "nih_reporter_website_data", "location of the raw extract files")
	annotateCmd.Flags().StringVar(&annotateOutput, "output", "temp_data_storage", "directory the staging tables are written to")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	grounderURL := util.GetEnv("GROUNDER_URL")
	if grounderURL == "" {
		return fmt.Errorf("GROUNDER_URL is not set")
	}

	src, err := storage.Open(ctx, annotateInput)
	if err != nil {
		return err
	}
	output, err := bulk.NewDirBackend(annotateOutput)
	if err != nil {
		return err
	}

	return pipeline.Annotate(ctx, pipeline.AnnotateParams{
		Source: src,
		Output: output,
		Annotator: ground.NewHTTPAnnotator(ground.NewHTTPAnnotatorParams{
			URL:        grounderURL,
			MaxRetries: 3,
		}),
	})
}
