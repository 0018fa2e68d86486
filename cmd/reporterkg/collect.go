package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/logger"
	"github.com/nihkg/reporterkg/pkg/reporter"
)

var (
	collectOutput             string
	collectProjectBatches     int
	collectPublicationBatches int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Pull project and publication records from the RePORTER search API",
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectOutput, "output", "api_data", "directory the collected CSV files are written to")
	collectCmd.Flags().IntVar(&collectProjectBatches, "project-batches", 30, "number of project pages to pull")
	collectCmd.Flags().IntVar(&collectPublicationBatches, "publication-batches", 20, "number of publication pages to pull")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := os.MkdirAll(collectOutput, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", collectOutput, err)
	}

	client := reporter.NewClient(reporter.NewClientParams{
		BaseURL:    util.GetEnvString("REPORTER_API_URL", reporter.DefaultBaseURL),
		MaxRetries: 3,
	})

	projects, err := client.FetchBatches(ctx, "projects/search", reporter.SearchRequest{
		IncludeFields: reporter.ProjectIncludeFields,
		SortField:     "appl_id",
		SortOrder:     "desc",
	}, collectProjectBatches)
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	if err := writeRecordsCSV(filepath.Join(collectOutput, "project_data.csv"), projects); err != nil {
		return err
	}
	logger.Info("collected projects", "records", len(projects))

	publications, err := client.FetchBatches(ctx, "publications/search", reporter.SearchRequest{
		SortField: "appl_ids",
		SortOrder: "desc",
	}, collectPublicationBatches)
	if err != nil {
		return fmt.Errorf("fetch publications: %w", err)
	}
	if err := writeRecordsCSV(filepath.Join(collectOutput, "publication_data.csv"), publications); err != nil {
		return err
	}
	logger.Info("collected publications", "records", len(publications))

	return nil
}

// writeRecordsCSV writes API records as CSV under the union of all keys,
// sorted, so every row has the same shape regardless of which fields the
// API filled in. Nested values are JSON-encoded into their cell.
func writeRecordsCSV(path string, records []map[string]any) error {
	keySet := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			keySet[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(keys); err != nil {
		f.Close()
		return fmt.Errorf("write header of %s: %w", path, err)
	}

	row := make([]string, len(keys))
	for _, record := range records {
		for i, key := range keys {
			cell, err := formatCell(record[key])
			if err != nil {
				f.Close()
				return fmt.Errorf("encode field %s of %s: %w", key, path, err)
			}
			row[i] = cell
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row of %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func formatCell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		// JSON numbers decode as float64; integral values must not
		// grow a trailing ".0" in the CSV.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), nil
		}
		return fmt.Sprintf("%g", v), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}
