// Package extract turns free-form model output into a structured record.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSpan means the text has no opening brace followed by a closing brace.
	ErrNoSpan = errors.New("no JSON object found in response")
	// ErrDecode means a candidate span was found but is not a JSON object.
	ErrDecode = errors.New("invalid JSON")
)

// Record is a decoded JSON object whose values are still raw.
type Record map[string]json.RawMessage

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Decode unmarshals the whole record into v.
func (r Record) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Span returns the text between the first '{' and the last '}' inclusive.
// No balancing is attempted: stray braces around or between objects are kept.
func Span(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Extract parses text as a JSON object. The whole text is tried first; if that
// fails the first-brace to last-brace span is tried. Any other failure is
// returned wrapped in ErrNoSpan or ErrDecode.
func Extract(text string) (Record, error) {
	if rec, err := decode(strings.TrimSpace(text)); err == nil {
		return rec, nil
	}

	span, ok := Span(text)
	if !ok {
		return nil, ErrNoSpan
	}

	rec, err := decode(span)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return rec, nil
}

func decode(s string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("not an object")
	}
	return rec, nil
}
