// Package parsing detects the response shapes returned by the timeline endpoint and
// normalizes the tweet-like objects they carry into types.NormalizedTweet records.
package parsing

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	integerLiteral = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)$`)
	asciiDigits    = regexp.MustCompile(`^[0-9]+$`)
	signedDigits   = regexp.MustCompile(`^[+-]?[0-9]+$`)
)

// RawObject is a lazily decoded JSON object. Values stay raw until a typed accessor reads them,
// so a malformed field only affects lookups of that field.
type RawObject map[string]json.RawMessage

// member is one key/value pair of a JSON object in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// ParseObject decodes data as a JSON object. It reports false for any other JSON value.
func ParseObject(data json.RawMessage) (RawObject, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var obj RawObject
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// parseArray decodes data as a JSON array of raw elements.
func parseArray(data json.RawMessage) ([]json.RawMessage, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil || arr == nil {
		return nil, false
	}
	return arr, true
}

// parseOrderedObject decodes data as a JSON object, keeping the members in document order.
func parseOrderedObject(data json.RawMessage) ([]member, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var members []member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		members = append(members, member{Key: key, Value: value})
	}
	return members, true
}

// Raw returns the raw value for key. Absent keys and JSON null both report false.
func (o RawObject) Raw(key string) (json.RawMessage, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, false
	}
	return v, true
}

// Object returns the value for key when it is a JSON object.
func (o RawObject) Object(key string) (RawObject, bool) {
	v, ok := o.Raw(key)
	if !ok || v[0] != '{' {
		return nil, false
	}
	return ParseObject(v)
}

// Array returns the elements of the value for key when it is a JSON array.
func (o RawObject) Array(key string) ([]json.RawMessage, bool) {
	v, ok := o.Raw(key)
	if !ok || v[0] != '[' {
		return nil, false
	}
	return parseArray(v)
}

// String returns the value for key when it is a JSON string.
func (o RawObject) String(key string) (string, bool) {
	v, ok := o.Raw(key)
	if !ok || v[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// Text returns a non-empty string value, or the literal text of a non-zero number.
// Empty strings, zero, booleans and containers report false.
func (o RawObject) Text(key string) (string, bool) {
	if s, ok := o.String(key); ok {
		return s, s != ""
	}
	v, ok := o.Raw(key)
	if !ok || !isNumber(v) {
		return "", false
	}
	if f, err := strconv.ParseFloat(string(v), 64); err != nil || f == 0 {
		return "", false
	}
	return string(v), true
}

// Int returns the value for key when it is a JSON integer literal (no fraction or exponent).
func (o RawObject) Int(key string) (int, bool) {
	v, ok := o.Raw(key)
	if !ok || !integerLiteral.Match(v) {
		return 0, false
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Digits returns the value for key when it is a JSON integer or a string of ASCII digits.
func (o RawObject) Digits(key string) (int, bool) {
	if n, ok := o.Int(key); ok {
		return n, true
	}
	s, ok := o.String(key)
	if !ok || !asciiDigits.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Count coerces the value for key into a non-negative integer count.
// Numbers are truncated, signed digit strings parsed and booleans read as 0/1; negatives
// and everything else are 0.
func (o RawObject) Count(key string) int {
	return max(o.signedCount(key), 0)
}

func (o RawObject) signedCount(key string) int {
	v, ok := o.Raw(key)
	if !ok {
		return 0
	}
	switch {
	case isNumber(v):
		if n, err := strconv.Atoi(string(v)); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return int(f)
		}
	case v[0] == '"':
		s, _ := o.String(key)
		s = strings.TrimSpace(s)
		if signedDigits.MatchString(s) {
			if n, err := strconv.Atoi(s); err == nil {
				return n
			}
		}
	case bytes.Equal(v, []byte("true")):
		return 1
	}
	return 0
}

// Truthy reports whether the value for key is present and not an empty/zero/false value.
func (o RawObject) Truthy(key string) bool {
	v, ok := o.Raw(key)
	if !ok {
		return false
	}
	switch {
	case bytes.Equal(v, []byte("false")):
		return false
	case bytes.Equal(v, []byte(`""`)):
		return false
	case isNumber(v):
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f != 0
	case v[0] == '{':
		obj, ok := ParseObject(v)
		return ok && len(obj) > 0
	case v[0] == '[':
		arr, ok := parseArray(v)
		return ok && len(arr) > 0
	}
	return true
}

func isNumber(v json.RawMessage) bool {
	return len(v) > 0 && (v[0] == '-' || (v[0] >= '0' && v[0] <= '9'))
}
