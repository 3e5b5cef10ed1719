package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is an in-memory trace document. It is a Sink, so a Writer can
// fill it directly, and it can be parsed back from the JSON a StreamSink
// produced.
type Document struct {
	records []StepRecord
	closed  bool
}

// ParseDocument decodes a JSON trace document.
func ParseDocument(data []byte) (*Document, error) {
	var recs []StepRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse trace document: %w", err)
	}
	return &Document{records: recs, closed: true}, nil
}

func (d *Document) Open() error {
	d.records = nil
	d.closed = false
	return nil
}

func (d *Document) Emit(rec StepRecord) error {
	d.records = append(d.records, rec)
	return nil
}

func (d *Document) Close() error {
	d.closed = true
	return nil
}

// Len returns the number of records.
func (d *Document) Len() int {
	return len(d.records)
}

// Closed reports whether the document was finished.
func (d *Document) Closed() bool {
	return d.closed
}

// Records returns the records in order. The slice is a copy; the records
// themselves are shared.
func (d *Document) Records() []StepRecord {
	out := make([]StepRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Record returns the i-th record.
func (d *Document) Record(i int) StepRecord {
	return d.records[i]
}

// Last returns the final record, or false for an empty document.
func (d *Document) Last() (StepRecord, bool) {
	if len(d.records) == 0 {
		return StepRecord{}, false
	}
	return d.records[len(d.records)-1], true
}

// WriteTo writes the document in the same layout StreamSink uses.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	s := NewStreamSink(cw)
	if err := s.Open(); err != nil {
		return cw.n, err
	}
	for _, rec := range d.records {
		if err := s.Emit(rec); err != nil {
			return cw.n, err
		}
	}
	err := s.Close()
	return cw.n, err
}

// MarshalJSON returns the WriteTo layout.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
