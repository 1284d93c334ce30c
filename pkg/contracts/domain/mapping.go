package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColumnMapping is the label → code assignment of one encoded categorical
// column. Codes are dense, start at 0 and follow first appearance, so the
// code of a label is its index in Labels().
type ColumnMapping struct {
	Column string
	labels []string
	codes  map[string]int
}

// NewColumnMapping creates an empty mapping for column
func NewColumnMapping(column string) *ColumnMapping {
	return &ColumnMapping{Column: column, codes: make(map[string]int)}
}

// Add returns the code of label, assigning the next free code on first sight
func (m *ColumnMapping) Add(label string) int {
	if code, ok := m.codes[label]; ok {
		return code
	}
	code := len(m.labels)
	m.labels = append(m.labels, label)
	m.codes[label] = code
	return code
}

// Code looks up the code of label
func (m *ColumnMapping) Code(label string) (int, bool) {
	code, ok := m.codes[label]
	return code, ok
}

// Label decodes code back to its label
func (m *ColumnMapping) Label(code int) (string, bool) {
	if code < 0 || code >= len(m.labels) {
		return "", false
	}
	return m.labels[code], true
}

// Labels returns the labels in code order
func (m *ColumnMapping) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Len returns the number of distinct labels
func (m *ColumnMapping) Len() int { return len(m.labels) }

// Codes returns a copy of the label → code map
func (m *ColumnMapping) Codes() map[string]int {
	out := make(map[string]int, len(m.codes))
	for k, v := range m.codes {
		out[k] = v
	}
	return out
}

// MarshalJSON writes {"label": code, ...} in code order
func (m *ColumnMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for code, label := range m.labels {
		if code > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", code)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON. Codes must be the
// dense sequence 0..n-1 in document order.
func (m *ColumnMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	m.labels = nil
	m.codes = make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("mapping: expected label, got %v", tok)
		}
		var code int
		if err := dec.Decode(&code); err != nil {
			return fmt.Errorf("mapping: code for %q: %w", label, err)
		}
		if code != len(m.labels) {
			return fmt.Errorf("mapping: label %q has code %d, want %d", label, code, len(m.labels))
		}
		m.Add(label)
	}
	return expectDelim(dec, '}')
}

// Mappings holds the column mappings in encoding order
type Mappings []*ColumnMapping

// Get returns the mapping of column, or nil
func (ms Mappings) Get(column string) *ColumnMapping {
	for _, m := range ms {
		if m.Column == column {
			return m
		}
	}
	return nil
}

// Columns returns the encoded column names in order
func (ms Mappings) Columns() []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Column
	}
	return out
}

// MarshalJSON writes {"column": {"label": code}} preserving both orders
func (ms Mappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Column)
		if err != nil {
			return nil, err
		}
		body, err := m.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON
func (ms *Mappings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	var out Mappings
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		column, ok := tok.(string)
		if !ok {
			return fmt.Errorf("mappings: expected column name, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		m := NewColumnMapping(column)
		if err := m.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("mappings: column %q: %w", column, err)
		}
		out = append(out, m)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*ms = out
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
