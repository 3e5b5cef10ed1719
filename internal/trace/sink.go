package trace

import "errors"

// Sink receives a document as it is produced. Open is called once by
// Writer.Open, Emit once per completed step in order, Close once by Finish.
type Sink interface {
	Open() error
	Emit(rec StepRecord) error
	Close() error
}

// Tee fans a document out to several sinks. Emit stops at the first failing
// sink; Close closes all of them and joins their errors.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Open() error {
	for _, s := range t {
		if err := s.Open(); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) Emit(rec StepRecord) error {
	for _, s := range t {
		if err := s.Emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
