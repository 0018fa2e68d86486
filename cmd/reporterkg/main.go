// reporterkg builds a graph-database bulk-import dataset from NIH
// RePORTER funding data: collect pulls raw records from the search API,
// annotate grounds project text against a biomedical entity service,
// and build assembles the final node and edge tables.
package main

import (
	"github.com/spf13/cobra"

	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "reporterkg",
	Short:         "Build a knowledge-graph dataset from NIH RePORTER funding data",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(collectCmd, annotateCmd, buildCmd)
}

func main() {
	util.LoadEnv()
	logger.Init(util.GetEnvBool("DEBUG", false))

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
