package bulk

import (
	"fmt"
	"io"
)

// PartitionedWriter writes a high-volume edge table as one headerless file
// per input chunk, then merges the partitions into a single logical table
// in one streaming pass. Peak memory stays bounded by a single chunk and
// peak disk by the not-yet-merged partitions, because every partition file
// is deleted immediately after it has been consumed.
type PartitionedWriter struct {
	backend Backend
	prefix  string
	columns int
	names   []string
	merged  bool
}

// NewPartitionedWriter returns a writer that names partitions
// "<prefix>_chunk_NNNN.tsv.gz" with the given column count.
func NewPartitionedWriter(backend Backend, prefix string, columns int) *PartitionedWriter {
	return &PartitionedWriter{
		backend: backend,
		prefix:  prefix,
		columns: columns,
	}
}

// Partition opens the writer for one chunk. Partitions must be opened and
// closed in chunk order; the merge preserves that order.
func (p *PartitionedWriter) Partition(index int) (*Writer, error) {
	if p.merged {
		return nil, fmt.Errorf("partitioned table %s already merged", p.prefix)
	}
	name := fmt.Sprintf("%s_chunk_%04d.tsv.gz", p.prefix, index)
	w, err := NewAppendWriter(p.backend, name, p.columns)
	if err != nil {
		return nil, err
	}
	p.names = append(p.names, name)
	return w, nil
}

// Merge concatenates the base table (which carries the single header row)
// and every partition, in order, into dst. Each source is deleted as soon
// as it has been consumed. The result is assembled under a temporary name
// and renamed into place only after the last partition is gone, so a crash
// mid-merge never leaves a half-written final table behind.
//
// All sources are gzip TSV files and partitions are headerless, so the
// merge is a raw byte copy: gzip members concatenate into one valid
// stream and exactly one header row survives.
func (p *PartitionedWriter) Merge(dst string, base string) error {
	if p.merged {
		return fmt.Errorf("partitioned table %s already merged", p.prefix)
	}

	partial := dst + ".partial"
	out, err := p.backend.Create(partial)
	if err != nil {
		return fmt.Errorf("create merged table %s: %w", partial, err)
	}

	sources := append([]string{base}, p.names...)
	for _, name := range sources {
		if err := p.consume(out, name); err != nil {
			out.Close()
			return err
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close merged table %s: %w", partial, err)
	}
	if err := p.backend.Rename(partial, dst); err != nil {
		return fmt.Errorf("finalize merged table %s: %w", dst, err)
	}

	p.merged = true
	p.names = nil
	return nil
}

func (p *PartitionedWriter) consume(out io.Writer, name string) error {
	in, err := p.backend.Open(name)
	if err != nil {
		return fmt.Errorf("open merge source %s: %w", name, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		in.Close()
		return fmt.Errorf("copy merge source %s: %w", name, err)
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("close merge source %s: %w", name, err)
	}
	if err := p.backend.Remove(name); err != nil {
		return fmt.Errorf("remove merge source %s: %w", name, err)
	}
	return nil
}
