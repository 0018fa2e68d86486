package ground

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// RecordWriter writes annotation records as line-delimited JSON, one
// record per project.
type RecordWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewRecordWriter(w io.Writer) *RecordWriter {
	bw := bufio.NewWriter(w)
	return &RecordWriter{w: bw, enc: json.NewEncoder(bw)}
}

func (rw *RecordWriter) Write(rec Record) error {
	// Both annotation fields are arrays on the wire, even when nothing
	// was annotated. A nil slice would encode as null.
	if rec.TitleAnnotations == nil {
		rec.TitleAnnotations = []Annotation{}
	}
	if rec.AbstractAnnotations == nil {
		rec.AbstractAnnotations = []Annotation{}
	}
	// json.Encoder terminates each value with a newline, which is
	// exactly the JSONL framing.
	return rw.enc.Encode(rec)
}

func (rw *RecordWriter) Flush() error {
	return rw.w.Flush()
}

// ReadRecords streams a JSONL annotations file, calling fn once per
// record. Abstracts can be long, so lines are read unbounded rather than
// through a fixed scanner buffer.
func ReadRecords(r io.Reader, fn func(Record) error) error {
	br := bufio.NewReader(r)
	line := 0
	for {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			line++
			var rec Record
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("parse annotations line %d: %w", line, err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read annotations line %d: %w", line+1, err)
		}
	}
}
