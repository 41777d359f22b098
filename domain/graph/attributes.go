package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known attribute names shared by the citation and vote graphs.
const (
	AttrYear         = "year"
	AttrLastYear     = "last_year"
	AttrClass        = "class"
	AttrType         = "type"
	AttrTopic        = "topic"
	AttrName         = "name"
	AttrVotesFor     = "votes_for"
	AttrVotesAgainst = "votes_against"
	AttrAdHoc        = "ad_hoc"
	AttrWeight       = "weight"
)

// Node classes in the vote graph.
const (
	ClassJudge    = "judge"
	ClassDecision = "decision"
)

// Attributes is the named attribute mapping carried by nodes and edges. Values are
// int, float64, bool or string; loaders may also hand back numeric strings, which the
// typed accessors convert.
type Attributes map[string]any

// Clone returns a shallow copy; attribute values are immutable scalars.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Int returns key as an integer. Floats are accepted when integral.
func (a Attributes) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float returns key as a float64.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// String returns key as a string. Non-string scalars are formatted.
func (a Attributes) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// Bool returns key as a bool. Strings containing "true" (any case) count as true,
// matching how the authorship table records ad hoc positions.
func (a Attributes) Bool(key string) (bool, bool) {
	switch v := a[key].(type) {
	case bool:
		return v, true
	case string:
		return strings.Contains(strings.ToLower(v), "true"), true
	case int:
		return v != 0, true
	}
	return false, false
}

// Attribute value kinds used by the persistent stores. The names follow GraphML's
// attr.type vocabulary.
const (
	KindLong    = "long"
	KindDouble  = "double"
	KindBoolean = "boolean"
	KindString  = "string"
)

// KindOf classifies an attribute value.
func KindOf(v any) string {
	switch v.(type) {
	case int, int32, int64:
		return KindLong
	case float32, float64:
		return KindDouble
	case bool:
		return KindBoolean
	}
	return KindString
}

// FormatValue renders an attribute value as text; ParseValue reverses it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// ParseValue converts text to a value of the given kind. "int" and "float" are accepted
// as aliases; unknown kinds yield the text unchanged.
func ParseValue(kind, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch kind {
	case KindLong, "int":
		return strconv.Atoi(text)
	case KindDouble, "float":
		return strconv.ParseFloat(text, 64)
	case KindBoolean:
		return strconv.ParseBool(strings.ToLower(text))
	}
	return text, nil
}
