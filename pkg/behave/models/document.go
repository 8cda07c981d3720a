package models

import (
	"bytes"
	"encoding/json"
)

// Document is a JSON object that preserves key insertion order. BIDS
// sidecars are conventionally written in source order, which a plain
// map cannot guarantee.
type Document struct {
	keys    []string
	entries map[string]any
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{entries: make(map[string]any)}
}

// Set stores a value under key. Setting an existing key overwrites the
// value but keeps the key's original position.
func (d *Document) Set(key string, value any) {
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = value
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.keys)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(d.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
