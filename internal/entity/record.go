package entity

import (
	"bytes"
	"encoding/json"
)

// Record is an insertion-ordered mapping of field name to normalized value.
// Downstream serializers iterate fields in the order the extraction engine
// resolved them, which plain map iteration cannot guarantee.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value under name. Re-setting an existing name replaces the
// value in place and keeps its original position.
func (r *Record) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Number returns the field as a float64, or 0 when absent or non-numeric.
func (r *Record) Number(name string) float64 {
	if v, ok := r.values[name]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// String returns the field as a string, or "" when absent or not a string.
func (r *Record) String(name string) string {
	if v, ok := r.values[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// LineItems returns the line items stored under key, or nil.
func (r *Record) LineItems(name string) []LineItem {
	if v, ok := r.values[name]; ok {
		if items, ok := v.([]LineItem); ok {
			return items
		}
	}
	return nil
}

// MarshalJSON emits the fields as a JSON object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
