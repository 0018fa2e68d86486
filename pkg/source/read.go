package source

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"
)

// ReadZipCSV loads the single CSV payload of a zip archive. The payload
// is decoded as Latin-1 (the encoding the extracts declare, not sniffed).
// Rows whose field count does not match the header are dropped, not
// fatal; the drop count is available on the returned table.
func ReadZipCSV(data []byte) (*Table, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}
	if len(archive.File) == 0 {
		return nil, fmt.Errorf("zip archive has no payload")
	}

	payload, err := archive.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open zip payload %s: %w", archive.File[0].Name, err)
	}
	defer payload.Close()

	return readTable(charmap.ISO8859_1.NewDecoder().Reader(payload), ',')
}

// ReadCSV loads a plain CSV file.
func ReadCSV(r io.Reader) (*Table, error) {
	return readTable(r, ',')
}

// ReadTSVGZ loads a gzip-compressed TSV staging table.
func ReadTSVGZ(r io.Reader) (*Table, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	return readTable(gz, '\t')
}

func newCSVReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func readTable(r io.Reader, comma rune) (*Table, error) {
	cr := newCSVReader(r, comma)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}

	table := newTable(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			table.dropped++
			continue
		}
		if len(record) != len(header) {
			table.dropped++
			continue
		}
		table.appendRow(record)
	}

	return table, nil
}

// RowReader streams a gzip TSV staging table row by row, so high-volume
// tables never have to fit in memory. Malformed rows are dropped the same
// way the in-memory loader drops them.
type RowReader struct {
	underlying io.ReadCloser
	gz         *gzip.Reader
	cr         *csv.Reader
	columns    []string
	index      map[string]int
	dropped    int
}

// NewRowReader opens rc as a gzip TSV stream and reads the header.
// The caller owns Close.
func NewRowReader(rc io.ReadCloser) (*RowReader, error) {
	gz, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}

	cr := newCSVReader(gz, '\t')
	header, err := cr.Read()
	if err != nil {
		gz.Close()
		rc.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	return &RowReader{
		underlying: rc,
		gz:         gz,
		cr:         cr,
		columns:    header,
		index:      index,
	}, nil
}

// Columns returns the header in source order.
func (r *RowReader) Columns() []string {
	return r.columns
}

// Next returns the next well-formed row, or io.EOF when the table is
// exhausted.
func (r *RowReader) Next() ([]string, error) {
	for {
		record, err := r.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			r.dropped++
			continue
		}
		if len(record) != len(r.columns) {
			r.dropped++
			continue
		}
		return record, nil
	}
}

// Value returns the cell of row at the named column; ok is false when the
// column does not exist in this table.
func (r *RowReader) Value(row []string, column string) (string, bool) {
	i, ok := r.index[column]
	if !ok {
		return "", false
	}
	return row[i], true
}

// Dropped reports how many malformed rows have been discarded so far.
func (r *RowReader) Dropped() int {
	return r.dropped
}

func (r *RowReader) Close() error {
	if err := r.gz.Close(); err != nil {
		r.underlying.Close()
		return err
	}
	return r.underlying.Close()
}
