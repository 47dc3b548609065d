package jsonutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Object is a decoded JSON object whose members are kept raw so each one can
// be decoded independently. A malformed member never fails the others.
type Object map[string]jsontext.Value

// lenient tolerates invalid UTF-8 (replaced with U+FFFD) and repeated member
// names (the last one wins).
var lenient = json.JoinOptions(
	jsontext.AllowInvalidUTF8(true),
	jsontext.AllowDuplicateNames(true),
)

// DecodeObject decodes data as a JSON object.
func DecodeObject(data []byte) (Object, error) {
	var obj Object
	if err := json.Unmarshal(data, &obj, lenient); err != nil {
		return nil, err
	}
	return obj, nil
}

// DecodeObjects decodes data as a JSON array of objects. Elements that are
// not objects are skipped.
func DecodeObjects(data []byte) ([]Object, error) {
	var raw []jsontext.Value
	if err := json.Unmarshal(data, &raw, lenient); err != nil {
		return nil, err
	}
	return objectsOf(raw), nil
}

func objectsOf(raw []jsontext.Value) []Object {
	out := make([]Object, 0, len(raw))
	for _, item := range raw {
		if item.Kind() != '{' {
			continue
		}
		var obj Object
		if err := json.Unmarshal(item, &obj, lenient); err == nil {
			out = append(out, obj)
		}
	}
	return out
}

// Has reports whether key is present and not null.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v.Kind() != 'n'
}

// String returns the member as a string. Numbers and booleans are rendered
// in their JSON form; null, arrays and objects report false.
func (o Object) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s, lenient); err != nil {
			return "", false
		}
		return s, true
	case '0', 't', 'f':
		return string(v), true
	}
	return "", false
}

// Int returns the member as an integer. Floats are rounded and numeric
// strings are parsed.
func (o Object) Int(key string) (int, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	var f float64
	switch v.Kind() {
	case '0':
		if err := json.Unmarshal(v, &f, lenient); err != nil {
			return 0, false
		}
	case '"':
		var s string
		if err := json.Unmarshal(v, &s, lenient); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}

// Strings returns the member as a list of strings, skipping non-string
// elements. A single string is returned as a one-element list.
func (o Object) Strings(key string) ([]string, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	switch v.Kind() {
	case '"':
		s, _ := o.String(key)
		return []string{s}, true
	case '[':
		var raw []jsontext.Value
		if err := json.Unmarshal(v, &raw, lenient); err != nil {
			return nil, false
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if item.Kind() != '"' {
				continue
			}
			var s string
			if err := json.Unmarshal(item, &s, lenient); err == nil {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// Objects returns the member as a list of objects, skipping elements that
// are not objects.
func (o Object) Objects(key string) ([]Object, bool) {
	v, ok := o[key]
	if !ok || v.Kind() != '[' {
		return nil, false
	}
	var raw []jsontext.Value
	if err := json.Unmarshal(v, &raw, lenient); err != nil {
		return nil, false
	}
	return objectsOf(raw), true
}
