// Package features assembles the long-format entity-year feature tables consumed by the
// modeling step: network independent variables, forward citation counts, lagged
// dependent variables and contextual covariates.
package features

import (
	"strconv"
)

type kind uint8

const (
	kindInt kind = iota
	kindFloat
	kindText
)

// Value is one cell of a feature table: an integer, a real number or a category label.
type Value struct {
	kind kind
	num  float64
	text string
}

// Int returns an integer value.
func Int(n int) Value { return Value{kind: kindInt, num: float64(n)} }

// Float returns a real value.
func Float(f float64) Value { return Value{kind: kindFloat, num: f} }

// Text returns a categorical value.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// Flag returns a boolean rendered as the category "True" or "False".
func Flag(b bool) Value {
	if b {
		return Text("True")
	}
	return Text("False")
}

// Number returns the numeric value; ok is false for categories.
func (v Value) Number() (float64, bool) {
	if v.kind == kindText {
		return 0, false
	}
	return v.num, true
}

// IsText reports whether v is categorical.
func (v Value) IsText() bool { return v.kind == kindText }

// String renders v the way it is written to a table cell.
func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(int64(v.num), 10)
	case kindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// ParseValue reads a table cell back: integers first, then reals, else a category.
func ParseValue(s string) Value {
	if n, err := strconv.Atoi(s); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	return Text(s)
}

// Row maps variable names to values for one entity (and year).
type Row map[string]Value

// Merge copies every entry of other into r, overwriting duplicates.
func (r Row) Merge(other Row) {
	for k, v := range other {
		r[k] = v
	}
}

// Interface returns v as an int, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case kindInt:
		return int(v.num)
	case kindFloat:
		return v.num
	}
	return v.text
}
