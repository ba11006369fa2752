package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MarshalCanonical encodes a field map as canonical JSON: keys sorted,
// no insignificant whitespace, and numbers written so the Int/Float
// distinction survives a round trip (floats always carry a '.' or
// exponent). The same bytes are produced for equal field maps, which is
// what persistence and golden comparison rely on.
func MarshalCanonical(f Fields) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("marshal field name %q: %w", name, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if err := writeCanonicalValue(&buf, f[name]); err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeCanonicalValue(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case Float:
		// JSON has no encoding for non-finite numbers; letting one
		// through would store bytes no decoder can read back.
		if math.IsInf(float64(x), 0) || math.IsNaN(float64(x)) {
			return fmt.Errorf("non-finite float %v has no canonical JSON form", float64(x))
		}
		s := strconv.FormatFloat(float64(x), 'g', -1, 64)
		buf.WriteString(s)
		// Keep floats distinguishable from ints after a round trip.
		if !strings.ContainsAny(s, ".eE") {
			buf.WriteString(".0")
		}
		return nil
	case Int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
		return nil
	case String:
		b, err := json.Marshal(string(x))
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(x)))
		return nil
	case NA:
		buf.WriteString("null")
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// UnmarshalFields decodes a canonical JSON object back into a field map.
// Numbers with a fractional part or exponent decode as Float, others as
// Int; null decodes as NA.
func UnmarshalFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		val, err := valueFromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func valueFromJSON(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NA{}, nil
	case json.Number:
		s := x.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := x.Float64()
			if err != nil {
				return nil, err
			}
			return Float(f), nil
		}
		n, err := x.Int64()
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %T", v)
	}
}

// SortRows orders rows in canonical (location, time, version) order.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		return CompareKey(rows[i].Key(), rows[j].Key()) < 0
	})
}
