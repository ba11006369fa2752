package panel

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface over the types a row field may carry.
// Only Float, Int, String, Bool, and NA implement it.
//
// NA is a first-class member, not an absence: merge policies need to
// distinguish "this source reported nothing yet" (field absent) from
// "this source's value is explicitly unknown at this version" (NA).
type Value interface {
	panelValue() // Sealed - only these types implement it
}

// Float represents a floating-point measurement.
type Float float64

func (Float) panelValue() {}

// Int represents an integer measurement.
type Int int64

func (Int) panelValue() {}

// String represents a categorical or free-form field value.
type String string

func (String) panelValue() {}

// Bool represents a boolean field value.
type Bool bool

func (Bool) panelValue() {}

// NA is the explicit missing-value marker. It serializes as JSON null.
type NA struct{}

func (NA) panelValue() {}

// Equal reports whether two values are the same kind and the same value.
// Float and Int never compare equal, even for the same numeric value;
// a revision that changes a field's type is a real revision.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case NA:
		_, ok := b.(NA)
		return ok
	default:
		return false
	}
}

// FromAny converts a dynamically typed value (YAML, CUE, or JSON decoding
// output) into a Value. Nil converts to NA. Returns an error for types
// outside the sealed set.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NA{}, nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	default:
		return nil, fmt.Errorf("unsupported field value type %T", v)
	}
}

// ValueString renders a value for human-readable output.
// NA renders as "NA"; floats use the shortest round-trip representation.
func ValueString(v Value) string {
	switch x := v.(type) {
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case String:
		return string(x)
	case Bool:
		return strconv.FormatBool(bool(x))
	case NA:
		return "NA"
	default:
		return fmt.Sprintf("%v", v)
	}
}
