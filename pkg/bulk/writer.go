package bulk

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Writer emits one gzip-compressed, tab-separated bulk-import table.
// Field values must already be line-oriented (no embedded tabs or line
// breaks); attribute sanitization is the caller's job.
type Writer struct {
	underlying io.WriteCloser
	gz         *gzip.Writer
	columns    int
	rows       int
}

// NewWriter creates name on the backend and writes the header row.
func NewWriter(backend Backend, name string, header []string) (*Writer, error) {
	underlying, err := backend.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}

	w := &Writer{
		underlying: underlying,
		gz:         gzip.NewWriter(underlying),
		columns:    len(header),
	}
	if err := w.writeLine(header); err != nil {
		underlying.Close()
		return nil, fmt.Errorf("write header for %s: %w", name, err)
	}
	return w, nil
}

// NewAppendWriter opens name for appending and writes no header. The
// appended rows form a fresh gzip member, which concatenates with the
// existing content into one valid gzip stream.
func NewAppendWriter(backend Backend, name string, columns int) (*Writer, error) {
	underlying, err := backend.Append(name)
	if err != nil {
		return nil, fmt.Errorf("append table %s: %w", name, err)
	}

	return &Writer{
		underlying: underlying,
		gz:         gzip.NewWriter(underlying),
		columns:    columns,
	}, nil
}

// WriteRow writes one body row. The field count must match the header.
func (w *Writer) WriteRow(fields ...string) error {
	if len(fields) != w.columns {
		return fmt.Errorf("row has %d fields, table has %d columns", len(fields), w.columns)
	}
	if err := w.writeLine(fields); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows reports the number of body rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes the gzip stream and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.gz.Close(); err != nil {
		w.underlying.Close()
		return err
	}
	return w.underlying.Close()
}

func (w *Writer) writeLine(fields []string) error {
	if _, err := io.WriteString(w.gz, strings.Join(fields, "\t")); err != nil {
		return err
	}
	_, err := io.WriteString(w.gz, "\n")
	return err
}
