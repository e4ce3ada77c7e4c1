package expr

import (
	"fmt"
	"strings"
)

// Value is a sealed interface over the types an expression may produce.
// Only Null, Str, Int, Bool, and List implement it. There is no float
// variant: all numeric game quantities (ages, counts, scores) are integers,
// and floats would break determinism guarantees.
type Value interface {
	exprValue() // sealed
}

// Null is the absence of a value: an unresolvable property, a function
// that has nothing to return.
type Null struct{}

func (Null) exprValue() {}

// Str is a string value (card ids, player ids, colors, icons).
type Str string

func (Str) exprValue() {}

// Int is an integer value. Always int64.
type Int int64

func (Int) exprValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) exprValue() {}

// List is an ordered collection of values (e.g. a player-id list bound to
// a loop source).
type List []Value

func (List) exprValue() {}

// AsInt reports v as an int64 when it is numeric.
func AsInt(v Value) (int64, bool) {
	n, ok := v.(Int)
	return int64(n), ok
}

// AsString reports v as a string when it is one.
func AsString(v Value) (string, bool) {
	s, ok := v.(Str)
	return string(s), ok
}

// Truthy converts a value to a condition result. Null is false, zero is
// false, the empty string is false, an empty list is false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case Str:
		return val != ""
	case List:
		return len(val) > 0
	default:
		return false
	}
}

// Equal compares two values structurally. Values of different kinds are
// never equal, except that two Nulls are.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Contains reports whether a list value contains the given element.
// Non-list values never contain anything.
func Contains(v Value, elem Value) bool {
	list, ok := v.(List)
	if !ok {
		return false
	}
	for _, item := range list {
		if Equal(item, elem) {
			return true
		}
	}
	return false
}

// Format renders a value for prompts and log lines.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Str:
		return string(val)
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	case List:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
