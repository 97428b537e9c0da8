// Package codec converts events and users to and from field-named records, the
// form in which every store backend persists them.
package codec

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is returned when a record cannot be turned back into an entity.
var ErrMalformed = errors.New("malformed record")

// Record is a field-named serialization of one entity. Values are strings or
// string lists; lists decoded from JSON arrive as []any.
type Record map[string]any

// ID returns the record's "id" field, or "" when it is absent or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns a text field. A missing or null field yields "". Numbers
// and booleans, as hand-edited JSON files may hold, are formatted as text.
func (r Record) String(key string) (string, error) {
	if r[key] == nil {
		return "", nil
	}
	s, ok := scalarText(r[key])
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformed, key, r[key])
	}
	return s, nil
}

// scalarText formats a JSON scalar. Objects and arrays are not text.
func scalarText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Strings returns a list field as a fresh slice. A missing or null field
// yields an empty, non-nil slice.
func (r Record) Strings(key string) ([]string, error) {
	switch v := r[key].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := scalarText(item)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T, want string", ErrMalformed, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: field %q is %T, want list", ErrMalformed, key, v)
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		switch list := v.(type) {
		case []string:
			out[k] = append([]string{}, list...)
		case []any:
			out[k] = append([]any{}, list...)
		default:
			out[k] = v
		}
	}
	return out
}

// fieldReader reads fields from a record and keeps the first error, so decoders
// can read every field and check once.
type fieldReader struct {
	rec Record
	err error
}

func (f *fieldReader) str(key string) string {
	if f.err != nil {
		return ""
	}
	s, err := f.rec.String(key)
	f.err = err
	return s
}

func (f *fieldReader) list(key string) []string {
	if f.err != nil {
		return nil
	}
	l, err := f.rec.Strings(key)
	f.err = err
	return l
}

func (f *fieldReader) id() string {
	id := f.str("id")
	if f.err == nil && id == "" {
		f.err = fmt.Errorf("%w: missing id", ErrMalformed)
	}
	return id
}
