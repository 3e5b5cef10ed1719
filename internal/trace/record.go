package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StepRecord is one frame of the trace document.
//
// Arrays, Variables and Highlights serialize as JSON objects keyed by name,
// in recording order. Nodes and Edges hold the whole overlay as of the end of
// the step.
type StepRecord struct {
	Arrays     []NamedArray
	Variables  []NamedInt
	Highlights []NamedInt
	Nodes      []Node
	Edges      []Edge
	Message    string
}

// Array returns the named array and whether it was recorded.
func (r StepRecord) Array(name string) ([]int, bool) {
	for _, a := range r.Arrays {
		if a.Name == name {
			return a.Values, true
		}
	}
	return nil, false
}

// Variable returns the named variable and whether it was recorded.
func (r StepRecord) Variable(name string) (int, bool) {
	return lookupNamed(r.Variables, name)
}

// Highlight returns the named highlight and whether it was recorded.
func (r StepRecord) Highlight(name string) (int, bool) {
	return lookupNamed(r.Highlights, name)
}

func lookupNamed(list []NamedInt, name string) (int, bool) {
	for _, v := range list {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// MarshalJSON writes the six keys in their fixed order. Every key is present,
// empty collections included.
func (r StepRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeRecord(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a record, keeping the key order of the named objects.
func (r *StepRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Arrays     orderedArrays `json:"arrays"`
		Variables  orderedInts   `json:"variables"`
		Highlights orderedInts   `json:"highlights"`
		Nodes      []Node        `json:"nodes"`
		Edges      []Edge        `json:"edges"`
		Message    string        `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = StepRecord{
		Arrays:     raw.Arrays,
		Variables:  raw.Variables,
		Highlights: raw.Highlights,
		Nodes:      raw.Nodes,
		Edges:      raw.Edges,
		Message:    raw.Message,
	}
	return nil
}

func encodeRecord(buf *bytes.Buffer, r StepRecord) error {
	buf.WriteString(`{"arrays":{`)
	for i, a := range r.Arrays {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, a.Name); err != nil {
			return err
		}
		buf.WriteString(":[")
		for j, v := range a.Values {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(v))
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`},"variables":`)
	if err := encodeNamed(buf, r.Variables); err != nil {
		return err
	}
	buf.WriteString(`,"highlights":`)
	if err := encodeNamed(buf, r.Highlights); err != nil {
		return err
	}
	buf.WriteString(`,"nodes":[`)
	for i, n := range r.Nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, `{"id":%d,"label":`, n.ID)
		if err := encodeString(buf, n.Label); err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`],"edges":[`)
	for i, e := range r.Edges {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, `{"from":%d,"to":%d}`, e.From, e.To)
	}
	buf.WriteString(`],"message":`)
	if err := encodeString(buf, r.Message); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func encodeNamed(buf *bytes.Buffer, list []NamedInt) error {
	buf.WriteByte('{')
	for i, v := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, v.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(v.Value))
	}
	buf.WriteByte('}')
	return nil
}

// encodeString writes s as a JSON string without HTML escaping.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

type orderedInts []NamedInt

func (o *orderedInts) UnmarshalJSON(data []byte) error {
	*o = nil
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		var v int
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		for i := range *o {
			if (*o)[i].Name == key {
				(*o)[i].Value = v
				return nil
			}
		}
		*o = append(*o, NamedInt{Name: key, Value: v})
		return nil
	})
}

type orderedArrays []NamedArray

func (o *orderedArrays) UnmarshalJSON(data []byte) error {
	*o = nil
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		var v []int
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		if v == nil {
			v = []int{}
		}
		for i := range *o {
			if (*o)[i].Name == key {
				(*o)[i].Values = v
				return nil
			}
		}
		*o = append(*o, NamedArray{Name: key, Values: v})
		return nil
	})
}

// decodeObject walks a JSON object in document order, handing each key to fn
// with the decoder positioned at its value. A JSON null is an empty object.
func decodeObject(data []byte, fn func(key string, dec *json.Decoder) error) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
