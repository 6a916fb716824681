package value

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the stored value types.
// Only Null, Bool, Int, Float, String, Array, and Object implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents a JSON null. In the store it also means "delete".
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an integral number. Counters live here.
type Int int64

func (Int) value() {}

// Float represents a non-integral number.
type Float float64

func (Float) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) value() {}

// Object represents a mapping of unique string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Kind names the variant of a Value.
type Kind string

const (
	KindNull   Kind = "null"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// KindOf returns the variant name of v. A nil interface reports KindNull.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil, Null:
		return KindNull
	case Bool:
		return KindBool
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case String:
		return KindString
	case Array:
		return KindArray
	case Object:
		return KindObject
	default:
		panic(fmt.Sprintf("value: unknown variant %T", v))
	}
}

// IsNull reports whether v is Null or a nil interface.
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is shorthand for Pair.
// Example: NewObject(O("pings", Int(5)), O("name", String("chloe")))
func O(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// NewObject creates an Object from key-value pairs. Later pairs win.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// NewArray creates an Array from values.
func NewArray(vals ...Value) Array {
	return Array(vals)
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's default string ordering is by UTF-8 bytes and differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// Clone returns a deep copy of obj.
func (obj Object) Clone() Object {
	out := make(Object, len(obj))
	for k, elem := range obj {
		out[k] = Clone(elem)
	}
	return out
}

// Equal reports whether a and b hold the same data.
// Int and Float compare numerically, so Int(2) equals Float(2).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		return IsNull(b)
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv
		case Int:
			return float64(av) == float64(bv)
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, present := bv[k]
			if !present || !Equal(elem, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// AsInt extracts an integer from v. Floats with an integral value convert;
// anything else reports false.
func AsInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case Int:
		return int64(val), true
	case Float:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), true
		}
	}
	return 0, false
}

// AsString extracts a string from v.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}
