package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

// Field is one named value captured from a line.
type Field struct {
	Name  string
	Value string
}

// FieldMap is the ordered set of fields extracted from one matched line.
// Names are unique and sorted ascending. A FieldMap is never modified after
// construction.
type FieldMap struct {
	fields []Field
}

// NewFieldMap builds a FieldMap from a capture map.
func NewFieldMap(captures map[string]string) FieldMap {
	fields := make([]Field, 0, len(captures))
	for name, value := range captures {
		fields = append(fields, Field{Name: name, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return FieldMap{fields: fields}
}

// Len returns the number of fields.
func (m FieldMap) Len() int { return len(m.fields) }

// Fields returns a copy of the fields in name order.
func (m FieldMap) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Names returns the field names in order.
func (m FieldMap) Names() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Name
	}
	return out
}

// Values returns the field values in name order.
func (m FieldMap) Values() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Value
	}
	return out
}

// Get returns the value stored under name.
func (m FieldMap) Get(name string) (string, bool) {
	i := sort.Search(len(m.fields), func(i int) bool { return m.fields[i].Name >= name })
	if i < len(m.fields) && m.fields[i].Name == name {
		return m.fields[i].Value, true
	}
	return "", false
}

// Map returns the fields as a plain map.
func (m FieldMap) Map() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		out[f.Name] = f.Value
	}
	return out
}

// MarshalJSON encodes the fields as one JSON object with keys in name order.
// Names or values that are not valid UTF-8 are rejected since they would not
// decode back to the same strings.
func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range m.fields {
		if !utf8.ValidString(f.Name) || !utf8.ValidString(f.Value) {
			return nil, fmt.Errorf("field %q: %w", f.Name, errs.ErrInvalidUTF8)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(enc, &buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeString(enc, &buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString writes s as a JSON string, dropping the newline Encode appends.
func encodeString(enc *json.Encoder, buf *bytes.Buffer, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
