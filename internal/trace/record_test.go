package trace

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRecord_KeyOrderAndEmptyCollections(t *testing.T) {
	data, err := json.Marshal(StepRecord{})
	require.NoError(t, err)
	assert.Equal(t,
		`{"arrays":{},"variables":{},"highlights":{},"nodes":[],"edges":[],"message":""}`,
		string(data))
}

func TestStepRecord_NamesKeepRecordingOrder(t *testing.T) {
	rec := StepRecord{
		Variables: []NamedInt{{Name: "z", Value: 1}, {Name: "a", Value: 2}},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"variables":{"z":1,"a":2}`)
}

func TestStepRecord_StringEscaping(t *testing.T) {
	rec := StepRecord{
		Arrays:  []NamedArray{{Name: `say "hi"`, Values: []int{-1}}},
		Nodes:   []Node{{ID: 1, Label: "a<b>&c"}},
		Message: "line1\nline2",
	}
	// json.Marshal would re-escape HTML while compacting; check the raw encoding.
	data, err := rec.MarshalJSON()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"say \"hi\"":[-1]`)
	assert.Contains(t, s, `"label":"a<b>&c"`)
	assert.Contains(t, s, `"message":"line1\nline2"`)
}

func TestStepRecord_EncodingKeepsStringBytes(t *testing.T) {
	// Normalization happens when a step records text, not when it is encoded.
	data, err := StepRecord{Message: "cafe\u0301"}.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"message\":\"cafe\u0301\"")
}

func TestStepRecord_RoundTripKeepsOrder(t *testing.T) {
	rec := StepRecord{
		Arrays:     []NamedArray{{Name: "Values", Values: []int{1, 2}}, {Name: "NextPtrs", Values: []int{1, -1}}},
		Variables:  []NamedInt{{Name: "n", Value: 3}},
		Highlights: []NamedInt{{Name: "Prev", Value: 0}, {Name: "Curr", Value: 1}},
		Nodes:      []Node{{ID: 0, Label: "f(3)"}},
		Edges:      []Edge{{From: 0, To: 1}},
		Message:    "m",
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var got StepRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec, got)
}

func TestStepRecord_UnmarshalNullCollections(t *testing.T) {
	var got StepRecord
	err := json.Unmarshal([]byte(`{"arrays":null,"variables":null,"highlights":{},"nodes":[],"edges":[],"message":""}`), &got)
	require.NoError(t, err)
	assert.Empty(t, got.Arrays)
	assert.Empty(t, got.Variables)
}

func TestStepRecord_UnmarshalRejectsNonObject(t *testing.T) {
	var got StepRecord
	err := json.Unmarshal([]byte(`{"arrays":[1,2]}`), &got)
	require.Error(t, err)
}

func TestStepRecord_Lookups(t *testing.T) {
	rec := StepRecord{
		Arrays:     []NamedArray{{Name: "nums", Values: []int{1}}},
		Variables:  []NamedInt{{Name: "target", Value: 5}},
		Highlights: []NamedInt{{Name: "mid", Value: 2}},
	}
	v, ok := rec.Variable("target")
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	h, ok := rec.Highlight("mid")
	assert.True(t, ok)
	assert.Equal(t, 2, h)

	_, ok = rec.Highlight("left")
	assert.False(t, ok)

	a, ok := rec.Array("nums")
	assert.True(t, ok)
	assert.Equal(t, []int{1}, a)
}

func TestDocument_WriteToMatchesStream(t *testing.T) {
	var streamed bytes.Buffer
	doc := &Document{}
	w := NewWriter(Tee(NewStreamSink(&streamed), doc), WithLogger(quietLogger()))
	require.NoError(t, w.Open())
	require.NoError(t, w.Step(func(s *Step) { s.Array("a", []int{1}) }))
	require.NoError(t, w.Step(func(s *Step) { s.Node(1, "x") }))
	require.NoError(t, w.Finish())

	var rewritten bytes.Buffer
	n, err := doc.WriteTo(&rewritten)
	require.NoError(t, err)
	assert.Equal(t, int64(rewritten.Len()), n)
	assert.Equal(t, streamed.String(), rewritten.String())
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := &Document{}
	require.NoError(t, doc.Open())
	require.NoError(t, doc.Emit(StepRecord{Message: "only"}))
	require.NoError(t, doc.Close())

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"arrays":{},"variables":{},"highlights":{},"nodes":[],"edges":[],"message":"only"}]`,
		string(data))

	last, ok := doc.Last()
	require.True(t, ok)
	assert.Equal(t, "only", last.Message)
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument([]byte(`[{"arrays":{}}`))
	require.Error(t, err)

	doc, err := ParseDocument([]byte("[\n]\n"))
	require.NoError(t, err)
	assert.Zero(t, doc.Len())
	_, ok := doc.Last()
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDrop, p)

	_, err = ParsePolicy("panic")
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "strict", PolicyStrict.String())
}
