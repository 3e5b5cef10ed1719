package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed trace.cue
var schemaSrc string

// RecordKeys is the required key order of every step record.
var RecordKeys = []string{"arrays", "variables", "highlights", "nodes", "edges", "message"}

// Issue is one validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError carries every issue found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid trace document: " + e.Issues[0].String()
	}
	return fmt.Sprintf("invalid trace document: %d issues, first: %s", len(e.Issues), e.Issues[0])
}

// documentSchema compiles the #Document definition into a fresh context.
// cue.Context is not safe for concurrent use, so each validation gets its own.
func documentSchema() (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSrc, cue.Filename("trace.cue"))
	if err := v.Err(); err != nil {
		return nil, cue.Value{}, fmt.Errorf("compile trace schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Document"))
	if err := def.Err(); err != nil {
		return nil, cue.Value{}, fmt.Errorf("compile trace schema: %w", err)
	}
	return ctx, def, nil
}

// Validate checks that data is a trace document: a JSON array of records
// with exactly the documented keys and types, within the default capacity
// bounds. Failures are returned as *ValidationError.
func Validate(data []byte) error {
	ctx, def, err := documentSchema()
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("trace.json", data)
	if err != nil {
		return &ValidationError{Issues: []Issue{{Message: "malformed JSON: " + err.Error()}}}
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return &ValidationError{Issues: issues(err)}
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Issues: issues(err)}
	}
	return nil
}

func issues(err error) []Issue {
	var out []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range e.InputPositions() {
			if pos.Filename() == "trace.json" {
				issue.Line = pos.Line()
				break
			}
		}
		out = append(out, issue)
	}
	if len(out) == 0 {
		out = append(out, Issue{Message: err.Error()})
	}
	return out
}

// ValidateKeyOrder checks that every record's keys appear exactly as
// RecordKeys, in that order.
func ValidateKeyOrder(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '['); err != nil {
		return err
	}

	var found []Issue
	for i := 0; dec.More(); i++ {
		keys, err := recordKeys(dec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if !slices.Equal(keys, RecordKeys) {
			found = append(found, Issue{
				Path:    fmt.Sprint(i),
				Message: fmt.Sprintf("keys %v, want %v", keys, RecordKeys),
			})
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after trace document")
	}
	if len(found) > 0 {
		return &ValidationError{Issues: found}
	}
	return nil
}

func recordKeys(dec *json.Decoder) ([]string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
	}
	return keys, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("expected %q: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
