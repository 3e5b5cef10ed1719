package trace

import (
	"bytes"
	"io"
)

// StreamSink writes the document to an io.Writer as it is produced:
//
//	[
//	  {"arrays":{...},"variables":{...},...,"message":"..."},
//	  {...}
//	]
//
// Each record is written with a single Write when its step ends. If the
// process dies before Close the output is an unterminated array.
type StreamSink struct {
	w       io.Writer
	records int
	buf     bytes.Buffer
}

// NewStreamSink returns a sink writing to w.
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Open() error {
	s.records = 0
	_, err := io.WriteString(s.w, "[\n")
	return err
}

func (s *StreamSink) Emit(rec StepRecord) error {
	s.buf.Reset()
	if s.records > 0 {
		s.buf.WriteString(",\n")
	}
	s.buf.WriteString("  ")
	if err := encodeRecord(&s.buf, rec); err != nil {
		return err
	}
	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return err
	}
	s.records++
	return nil
}

func (s *StreamSink) Close() error {
	tail := "]\n"
	if s.records > 0 {
		tail = "\n]\n"
	}
	_, err := io.WriteString(s.w, tail)
	return err
}

// Records returns how many records were written.
func (s *StreamSink) Records() int {
	return s.records
}
