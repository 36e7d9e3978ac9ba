package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    json.Number
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integral number value.
func Int(i int64) Value {
	return Value{kind: KindNumber, n: json.Number(strconv.FormatInt(i, 10))}
}

// Float returns a number value. NaN and infinities become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, n: json.Number(strconv.FormatFloat(f, 'f', -1, 64))}
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array value holding a copy of items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// Object returns an object value holding a copy of fields.
func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp}
}

// StringMap returns an object whose members are all strings.
func StringMap(m map[string]string) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = String(v)
	}
	return Value{kind: KindObject, obj: cp}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// StringOr returns the string held by v, or def when v is not a string.
func (v Value) StringOr(def string) string {
	if v.kind == KindString {
		return v.s
	}
	return def
}

// AsInt64 returns v as an integer; fractional numbers are rejected.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := v.n.Int64()
	return i, err == nil
}

// AsFloat64 returns v as a float.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.n.Float64()
	return f, err == nil
}

// AsArray returns the items of an array value. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// Items returns the items of an array value, nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// AsObject returns a copy of the members of an object value.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	cp := make(map[string]Value, len(v.obj))
	for k, m := range v.obj {
		cp[k] = m
	}
	return cp, true
}

// IsObject reports whether v is an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// Len returns the number of items or members, 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Has reports whether v is an object containing key.
func (v Value) Has(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Get returns the member named key, or null.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Null()
	}
	return v.obj[key]
}

// Index returns the i-th item of an array, or null.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null()
	}
	return v.arr[i]
}

// Path walks nested objects by key.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
		if cur.IsNull() {
			return cur
		}
	}
	return cur
}

// Keys returns the member names of an object in ascending order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the object v with key set to member.
// A non-object v is treated as an empty object.
func (v Value) With(key string, member Value) Value {
	cp := make(map[string]Value, len(v.obj)+1)
	if v.kind == KindObject {
		for k, m := range v.obj {
			cp[k] = m
		}
	}
	cp[key] = member
	return Value{kind: KindObject, obj: cp}
}

// Pick returns an object holding only the listed members of v that exist.
func (v Value) Pick(keys ...string) Value {
	cp := make(map[string]Value, len(keys))
	if v.kind == KindObject {
		for _, k := range keys {
			if m, ok := v.obj[k]; ok {
				cp[k] = m
			}
		}
	}
	return Value{kind: KindObject, obj: cp}
}

// StringMapOf returns the string members of an object, skipping other kinds.
// Numbers and booleans are rendered with their JSON text.
func (v Value) StringMapOf() map[string]string {
	if v.kind != KindObject {
		return nil
	}
	out := make(map[string]string, len(v.obj))
	for k, m := range v.obj {
		switch m.kind {
		case KindString:
			out[k] = m.s
		case KindNumber:
			out[k] = m.n.String()
		case KindBool:
			out[k] = strconv.FormatBool(m.b)
		}
	}
	return out
}

// Interface converts v into plain Go values: nil, bool, int64 or float64,
// string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if i, err := v.n.Int64(); err == nil {
			return i
		}
		f, _ := v.n.Float64()
		return f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, m := range v.obj {
			out[k] = m.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same JSON value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		a, errA := v.n.Float64()
		b, errB := other.n.Float64()
		if errA != nil || errB != nil {
			return v.n == other.n
		}
		return a == b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, m := range v.obj {
			om, ok := other.obj[k]
			if !ok || !m.Equal(om) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts plain Go values (as produced by encoding/json) into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Value{kind: KindNumber, n: t}, nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case string:
		return String(t), nil
	case map[string]string:
		return StringMap(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			iv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			items[i] = iv
		}
		return Value{kind: KindArray, arr: items}, nil
	case map[string]any:
		members := make(map[string]Value, len(t))
		for k, item := range t {
			mv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			members[k] = mv
		}
		return Value{kind: KindObject, obj: members}, nil
	default:
		return Null(), fmt.Errorf("jsonvalue: unsupported type %T", x)
	}
}

// Parse decodes a single JSON document.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Null(), fmt.Errorf("jsonvalue: decode: %w", err)
	}
	if dec.More() {
		return Null(), fmt.Errorf("jsonvalue: unexpected data after top-level value")
	}
	return FromAny(raw)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if v.n == "" {
			return []byte("0"), nil
		}
		return []byte(v.n), nil
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("jsonvalue: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String renders v as compact JSON text.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
