// SPDX-License-Identifier: MPL-2.0

// Package manifestjson reads and writes the static JSON manifest that maps
// logical asset names to fingerprinted filenames. Key order is preserved
// across a read/write cycle so rewritten manifests diff cleanly.
package manifestjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultName is the conventional manifest filename.
const DefaultName = "manifest.json"

// ErrMalformed is the sentinel wrapped by MalformedError.
var ErrMalformed = errors.New("malformed JSON manifest")

type (
	// MalformedError describes why a manifest could not be parsed.
	MalformedError struct {
		Offset int64
		Reason string
	}

	// Document is an ordered string-to-string mapping.
	Document struct {
		keys   []string
		values map[string]string
	}
)

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed JSON manifest at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

// New returns an empty document.
func New() *Document {
	return &Document{values: make(map[string]string)}
}

// Parse decodes a JSON object whose values are all strings. A repeated key
// keeps its first position and its last value.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	malformed := func(reason string) error {
		return &MalformedError{Offset: dec.InputOffset(), Reason: reason}
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err.Error())
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed("top-level value must be an object")
	}

	doc := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, malformed(err.Error())
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, malformed(err.Error())
		}
		value, ok := valTok.(string)
		if !ok {
			return nil, malformed(fmt.Sprintf("value of %q must be a string", key))
		}
		doc.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("unexpected data after top-level object")
	}
	return doc, nil
}

// Len returns the number of keys.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set stores value under key. Existing keys keep their position.
func (d *Document) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Rewrite applies fn to the values of the listed keys that are present and
// reports whether any value changed. Absent keys are ignored.
func (d *Document) Rewrite(keys []string, fn func(string) string) bool {
	changed := false
	for _, key := range keys {
		old, ok := d.values[key]
		if !ok {
			continue
		}
		if updated := fn(old); updated != old {
			d.values[key] = updated
			changed = true
		}
	}
	return changed
}

// Marshal encodes the document as a JSON object indented with two spaces,
// without HTML escaping and without a trailing newline.
func (d *Document) Marshal() ([]byte, error) {
	if len(d.keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range d.keys {
		k, err := encodeString(key)
		if err != nil {
			return nil, err
		}
		v, err := encodeString(d.values[key])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		if i < len(d.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode manifest string: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
