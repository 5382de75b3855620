package model

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind identifies the variant held by a Value
type ValueKind int

const (
	KindNone   ValueKind = iota // Zero value, never produced by a parser
	KindScalar                  // Floating point number
	KindText                    // Literal text (bare word, date token or quoted string)
	KindVector                  // Ordered sequence of values
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindText:
		return "text"
	case KindVector:
		return "vector"
	default:
		return "none"
	}
}

// Value is the right-hand side of a kernel assignment
type Value struct {
	kind  ValueKind
	num   float64
	text  string
	elems []Value
}

// Scalar wraps a number
func Scalar(f float64) Value {
	return Value{kind: KindScalar, num: f}
}

// Text wraps a literal string
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Vector wraps an ordered sequence. A nil or empty argument list yields an
// empty, non-nil vector.
func Vector(elems ...Value) Value {
	out := make([]Value, len(elems))
	copy(out, elems)
	return Value{kind: KindVector, elems: out}
}

// Floats builds a vector of scalars
func Floats(fs ...float64) Value {
	elems := make([]Value, len(fs))
	for i, f := range fs {
		elems[i] = Scalar(f)
	}
	return Value{kind: KindVector, elems: elems}
}

// numberPattern accepts decimal literals with an optional exponent. The
// Fortran style D exponent is common in older kernels.
var numberPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eEdD][+-]?\d+)?$`)

// ParseToken classifies a single token as Scalar when the whole token is a
// number and as Text otherwise. Partial numeric prefixes ("12abc") are Text.
func ParseToken(tok string) Value {
	tok = strings.TrimSpace(tok)
	if !numberPattern.MatchString(tok) {
		return Text(tok)
	}

	normalized := strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, tok)

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Text(tok)
	}
	return Scalar(f)
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsScalar() bool { return v.kind == KindScalar }
func (v Value) IsText() bool   { return v.kind == KindText }
func (v Value) IsVector() bool { return v.kind == KindVector }

// AsFloat returns the number held by a Scalar
func (v Value) AsFloat() (float64, bool) {
	return v.num, v.kind == KindScalar
}

// AsText returns the string held by a Text
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// Elems returns the elements of a Vector, or nil for other kinds
func (v Value) Elems() []Value {
	if v.kind != KindVector {
		return nil
	}
	return v.elems
}

// Len is the element count of a Vector and 1 for any other non-empty value
func (v Value) Len() int {
	switch v.kind {
	case KindVector:
		return len(v.elems)
	case KindNone:
		return 0
	default:
		return 1
	}
}

// Floats returns the numbers of an all-scalar Vector (or a lone Scalar as a
// one-element slice). Mixed vectors report false.
func (v Value) Floats() ([]float64, bool) {
	switch v.kind {
	case KindScalar:
		return []float64{v.num}, true
	case KindVector:
		out := make([]float64, 0, len(v.elems))
		for _, e := range v.elems {
			f, ok := e.AsFloat()
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}

// Append returns a Vector holding v's elements followed by more. A non-vector
// v is promoted to a one-element vector first.
func (v Value) Append(more Value) Value {
	var elems []Value
	switch v.kind {
	case KindVector:
		elems = append(elems, v.elems...)
	case KindNone:
	default:
		elems = append(elems, v)
	}

	if more.kind == KindVector {
		elems = append(elems, more.elems...)
	} else if more.kind != KindNone {
		elems = append(elems, more)
	}
	return Vector(elems...)
}

// Equal compares kind and content. NaN scalars compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindText:
		return v.text == o.text
	case KindVector:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindVector:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return ""
	}
}

// MarshalJSON renders scalars as numbers, text as strings and vectors as
// arrays. Non-finite numbers have no JSON form and are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindVector:
		return json.Marshal(v.elems)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON for yaml.v3 encoders
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindScalar:
		return v.num, nil
	case KindText:
		return v.text, nil
	case KindVector:
		return v.elems, nil
	default:
		return nil, nil
	}
}
