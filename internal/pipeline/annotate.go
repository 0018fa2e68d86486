package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nihkg/reporterkg/internal/storage"
	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/bulk"
	"github.com/nihkg/reporterkg/pkg/ground"
	"github.com/nihkg/reporterkg/pkg/logger"
	"github.com/nihkg/reporterkg/pkg/source"
)

// AnnotateParams configures the annotate stage.
type AnnotateParams struct {
	Source    storage.Source
	Output    bulk.Backend
	Annotator ground.Annotator
}

type extractKind int

const (
	kindUnknown extractKind = iota
	kindProjects
	kindAbstracts
	kindPublications
	kindPatents
	kindTrials
)

// classifyExtract maps a raw file name to its extract family by the
// ExPORTER naming convention.
func classifyExtract(name string) extractKind {
	switch {
	case strings.Contains(name, "PRJABS_C"):
		return kindAbstracts
	case strings.Contains(name, "PRJ_C"):
		return kindProjects
	case strings.Contains(name, "PUBLINK"):
		return kindPublications
	case strings.Contains(name, "Patents"):
		return kindPatents
	case strings.Contains(name, "ClinicalStudies"):
		return kindTrials
	default:
		return kindUnknown
	}
}

// Annotate stages the raw extracts as gzip TSV tables and grounds every
// project's title and abstract text, producing the annotations JSONL
// file the build stage consumes. Per-fiscal-year extracts of the same
// family are folded into one table; a grounding failure after retries
// aborts the stage.
func Annotate(ctx context.Context, params AnnotateParams) error {
	names, err := params.Source.List(ctx)
	if err != nil {
		return fmt.Errorf("list raw extracts: %w", err)
	}
	sort.Strings(names)

	tables := make(map[extractKind]*source.Table)
	for _, name := range names {
		kind := classifyExtract(name)
		if kind == kindUnknown {
			logger.Debug("skipping unrecognized input file", "name", name)
			continue
		}

		data, err := params.Source.Fetch(ctx, name)
		if err != nil {
			return err
		}

		var table *source.Table
		if strings.HasSuffix(name, ".zip") {
			table, err = source.ReadZipCSV(data)
		} else {
			table, err = source.ReadCSV(bytes.NewReader(data))
		}
		if err != nil {
			return fmt.Errorf("load extract %s: %w", name, err)
		}
		if table.Dropped() > 0 {
			logger.Warn("dropped malformed rows", "name", name, "rows", table.Dropped())
		}

		if existing, ok := tables[kind]; ok {
			existing.Merge(table)
		} else {
			tables[kind] = table
		}
		logger.Info("loaded extract", "name", name, "rows", table.Len())
	}

	projects := tables[kindProjects]
	if projects == nil {
		return fmt.Errorf("no project extracts found in input")
	}

	for kind, name := range map[extractKind]string{
		kindPublications: FilePublications,
		kindPatents:      FilePatents,
		kindTrials:       FileTrials,
	} {
		table := tables[kind]
		if table == nil {
			logger.Warn("no extracts for staging table", "name", name)
			continue
		}
		rows, err := stageTable(params.Output, name, table)
		if err != nil {
			return err
		}
		logger.Info("staged table", "name", name, "rows", rows)
	}

	abstracts := abstractsByApplication(tables[kindAbstracts])

	rows, err := stageTable(params.Output, FileProjects, projects)
	if err != nil {
		return err
	}
	logger.Info("staged table", "name", FileProjects, "rows", rows)

	return annotateProjects(ctx, params, projects, abstracts)
}

// stageTable writes a loaded extract as a gzip TSV staging table with
// every cell sanitized to stay line-oriented.
func stageTable(backend bulk.Backend, name string, table *source.Table) (int, error) {
	w, err := bulk.NewWriter(backend, name, table.Columns())
	if err != nil {
		return 0, err
	}

	columns := table.Columns()
	fields := make([]string, len(columns))
	for row := 0; row < table.Len(); row++ {
		for i, column := range columns {
			v, _ := table.Value(row, column)
			fields[i] = util.SanitizeCell(v)
		}
		if err := w.WriteRow(fields...); err != nil {
			w.Close()
			return 0, fmt.Errorf("stage table %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close staging table %s: %w", name, err)
	}
	return w.Rows(), nil
}

// projectHasTitle gates the annotation pass only. Untitled rows carry no
// annotatable text, but they stay in the staged project table so their
// application ids remain reachable through the cross-reference index.
func projectHasTitle(projects *source.Table, row int) bool {
	title, ok := projects.Value(row, source.ColProjectTitle)
	return ok && strings.TrimSpace(title) != ""
}

// abstractsByApplication indexes abstract text by application id.
// Last-seen wins when an application recurs across fiscal-year files.
func abstractsByApplication(abstracts *source.Table) map[string]string {
	index := make(map[string]string)
	if abstracts == nil {
		return index
	}
	for row := 0; row < abstracts.Len(); row++ {
		appID, ok := abstracts.Value(row, source.ColApplicationID)
		if !ok || appID == "" {
			continue
		}
		text, _ := abstracts.Value(row, source.ColAbstractText)
		index[appID] = text
	}
	return index
}

func annotateProjects(
	ctx context.Context,
	params AnnotateParams,
	projects *source.Table,
	abstracts map[string]string,
) error {
	out, err := params.Output.Create(FileAnnotations)
	if err != nil {
		return fmt.Errorf("create %s: %w", FileAnnotations, err)
	}

	rw := ground.NewRecordWriter(out)
	written := 0
	for row := 0; row < projects.Len(); row++ {
		if !projectHasTitle(projects, row) {
			continue
		}
		appID, ok := projects.Value(row, source.ColApplicationID)
		if !ok || appID == "" {
			continue
		}
		title, _ := projects.Value(row, source.ColProjectTitle)

		rec := ground.Record{ApplicationID: appID}
		rec.TitleAnnotations, err = params.Annotator.Annotate(ctx, title)
		if err != nil {
			out.Close()
			return fmt.Errorf("annotate title for application %s: %w", appID, err)
		}

		if abstract := abstracts[appID]; ground.ShouldAnnotateAbstract(abstract) {
			rec.AbstractAnnotations, err = params.Annotator.Annotate(ctx, abstract)
			if err != nil {
				out.Close()
				return fmt.Errorf("annotate abstract for application %s: %w", appID, err)
			}
		}

		if err := rw.Write(rec); err != nil {
			out.Close()
			return fmt.Errorf("write annotation record: %w", err)
		}
		written++
		if written%1000 == 0 {
			logger.Info("annotated projects", "count", written)
		}
	}

	if err := rw.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flush %s: %w", FileAnnotations, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", FileAnnotations, err)
	}

	logger.Info("annotation complete", "records", written)
	return nil
}
