package cantus

import (
	"fmt"
	"strings"

	"github.com/cantus-lang/cantus/internal/bignum"
	"github.com/cantus-lang/cantus/internal/object"
)

// Value represents a Cantus value. Use the type assertion or helper
// functions below to access the underlying Go value.
type Value interface {
	// Type returns the Cantus type name (e.g. "Number", "Text", "Matrix").
	Type() string
	// String returns a rendered representation of the value.
	String() string
	// GoValue returns the closest native Go equivalent.
	GoValue() interface{}

	toInternal() object.Value
}

// =====================================
// Concrete Value types
// =====================================

// NilValue represents Cantus's "undefined" identifier sentinel.
type NilValue struct{}

func (v NilValue) Type() string           { return "Undefined" }
func (v NilValue) String() string         { return "undefined" }
func (v NilValue) GoValue() interface{}   { return nil }
func (v NilValue) toInternal() object.Value { return object.NewIdentifier("undefined") }

// Nil is the singleton undefined value.
var Nil Value = NilValue{}

// BoolValue represents a Cantus Boolean.
type BoolValue struct{ value bool }

func (v BoolValue) Type() string         { return object.TypeBoolean }
func (v BoolValue) String() string       { return fmt.Sprintf("%v", v.value) }
func (v BoolValue) GoValue() interface{} { return v.value }
func (v BoolValue) Bool() bool           { return v.value }
func (v BoolValue) toInternal() object.Value { return object.NewBoolean(v.value) }

// True and False are the singleton bool values.
var (
	True  Value = BoolValue{value: true}
	False Value = BoolValue{value: false}
)

// NumberValue represents a Cantus Number (arbitrary-precision decimal).
type NumberValue struct{ value *bignum.Decimal }

func (v NumberValue) Type() string         { return object.TypeNumber }
func (v NumberValue) String() string       { return v.value.String() }
func (v NumberValue) GoValue() interface{} { return v.value }
func (v NumberValue) Decimal() *bignum.Decimal { return v.value }
func (v NumberValue) Int() (int64, bool)   { return v.value.AsInt() }
func (v NumberValue) toInternal() object.Value { return object.NewNumber(v.value) }

// TextValue represents a Cantus Text.
type TextValue struct{ value string }

func (v TextValue) Type() string         { return object.TypeText }
func (v TextValue) String() string       { return v.value }
func (v TextValue) GoValue() interface{} { return v.value }
func (v TextValue) Str() string          { return v.value }
func (v TextValue) toInternal() object.Value { return object.NewText(v.value) }

// MatrixValue represents a Cantus Matrix (an ordered, resizable sequence).
type MatrixValue struct{ items []Value }

func (v MatrixValue) Type() string { return object.TypeMatrix }
func (v MatrixValue) String() string {
	return renderElements(v.items, "[", "]")
}
func (v MatrixValue) GoValue() interface{} {
	out := make([]interface{}, len(v.items))
	for i, it := range v.items {
		out[i] = it.GoValue()
	}
	return out
}
func (v MatrixValue) Items() []Value { return v.items }
func (v MatrixValue) Len() int       { return len(v.items) }
func (v MatrixValue) Get(i int) Value {
	if i >= 0 && i < len(v.items) {
		return v.items[i]
	}
	return Nil
}
func (v MatrixValue) toInternal() object.Value {
	items := make([]object.Value, len(v.items))
	for i, it := range v.items {
		items[i] = toInternal(it)
	}
	return object.NewMatrix(items)
}

// TupleValue represents a Cantus Tuple (a fixed-arity sequence).
type TupleValue struct{ items []Value }

func (v TupleValue) Type() string { return object.TypeTuple }
func (v TupleValue) String() string {
	return renderElements(v.items, "(", ")")
}
func (v TupleValue) GoValue() interface{} {
	out := make([]interface{}, len(v.items))
	for i, it := range v.items {
		out[i] = it.GoValue()
	}
	return out
}
func (v TupleValue) Items() []Value { return v.items }
func (v TupleValue) Len() int       { return len(v.items) }
func (v TupleValue) toInternal() object.Value {
	items := make([]object.Value, len(v.items))
	for i, it := range v.items {
		items[i] = toInternal(it)
	}
	return object.NewTuple(items)
}

// DictValue represents a Cantus Dictionary, keyed by each key's rendered
// string form. Cantus dictionaries allow any Value as a key; this API
// surface narrows that to string keys for Go ergonomics.
type DictValue struct{ items map[string]Value }

func (v DictValue) Type() string { return object.TypeDictionary }
func (v DictValue) String() string {
	parts := make([]string, 0, len(v.items))
	for k, val := range v.items {
		parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (v DictValue) GoValue() interface{} {
	out := make(map[string]interface{}, len(v.items))
	for k, val := range v.items {
		out[k] = val.GoValue()
	}
	return out
}
func (v DictValue) Items() map[string]Value { return v.items }
func (v DictValue) Len() int                { return len(v.items) }
func (v DictValue) Get(key string) Value {
	if val, ok := v.items[key]; ok {
		return val
	}
	return Nil
}
func (v DictValue) toInternal() object.Value {
	d := object.NewDictionary()
	for k, val := range v.items {
		d.Set(object.NewText(k), toInternal(val))
	}
	return d
}

// FunctionValue represents a Cantus Lambda (for introspection only — call
// it through State.Eval/EvalExpr, not directly from Go).
type FunctionValue struct{ lam *object.Lambda }

func (v FunctionValue) Type() string         { return object.TypeLambda }
func (v FunctionValue) String() string       { return "<lambda>" }
func (v FunctionValue) GoValue() interface{} { return v.lam }
func (v FunctionValue) toInternal() object.Value { return v.lam }

// OpaqueValue round-trips a Cantus value this package has no dedicated
// wrapper for (DateTime, Complex, Set, HashSet, LinkedList) without
// exposing its structure: it can be read back out and passed back into
// Cantus source unchanged, just not inspected from Go.
type OpaqueValue struct{ inner object.Value }

func (v OpaqueValue) Type() string           { return v.inner.Type() }
func (v OpaqueValue) String() string         { return v.inner.String() }
func (v OpaqueValue) GoValue() interface{}   { return v.inner }
func (v OpaqueValue) toInternal() object.Value { return v.inner }

// =====================================
// Value constructors
// =====================================

// Bool creates a Cantus Boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int creates a Cantus Number value from a Go integer.
func Int(v int64) Value { return NumberValue{value: bignum.NewFromInt(v)} }

// Float creates a Cantus Number value from a Go float.
func Float(v float64) Value { return NumberValue{value: bignum.NewFromFloat(v)} }

// Number wraps an already-constructed bignum.Decimal as a Cantus Number.
func Number(d *bignum.Decimal) Value { return NumberValue{value: d} }

// String creates a Cantus Text value.
func String(v string) Value { return TextValue{value: v} }

// Matrix creates a Cantus Matrix from Values.
func Matrix(items ...Value) Value { return MatrixValue{items: items} }

// Tuple creates a Cantus Tuple from Values.
func Tuple(items ...Value) Value { return TupleValue{items: items} }

// Dict creates a Cantus Dictionary from string-keyed pairs.
func Dict(pairs ...interface{}) Value {
	items := make(map[string]Value)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		if val, ok := pairs[i+1].(Value); ok {
			items[key] = val
		} else {
			items[key] = FromGo(pairs[i+1])
		}
	}
	return DictValue{items: items}
}

// FromGo converts a native Go value to a Cantus Value.
func FromGo(v interface{}) Value {
	if v == nil {
		return Nil
	}
	switch val := v.(type) {
	case Value:
		return val
	case bool:
		return Bool(val)
	case int:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int64:
		return Int(val)
	case uint:
		return Int(int64(val))
	case uint32:
		return Int(int64(val))
	case uint64:
		return Int(int64(val))
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case string:
		return String(val)
	case []interface{}:
		items := make([]Value, len(val))
		for i, it := range val {
			items[i] = FromGo(it)
		}
		return MatrixValue{items: items}
	case map[string]interface{}:
		items := make(map[string]Value, len(val))
		for k, it := range val {
			items[k] = FromGo(it)
		}
		return DictValue{items: items}
	default:
		return Nil
	}
}

func renderElements(items []Value, open, close string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return open + strings.Join(parts, ", ") + close
}

// =====================================
// Type checking / assertion helpers
// =====================================

func IsNil(v Value) bool    { _, ok := v.(NilValue); return ok }
func IsBool(v Value) bool   { _, ok := v.(BoolValue); return ok }
func IsNumber(v Value) bool { _, ok := v.(NumberValue); return ok }
func IsString(v Value) bool { _, ok := v.(TextValue); return ok }
func IsMatrix(v Value) bool { _, ok := v.(MatrixValue); return ok }
func IsTuple(v Value) bool  { _, ok := v.(TupleValue); return ok }
func IsDict(v Value) bool   { _, ok := v.(DictValue); return ok }
func IsObject(v Value) bool { _, ok := v.(Object); return ok }

func AsBool(v Value) (bool, bool) {
	if bv, ok := v.(BoolValue); ok {
		return bv.value, true
	}
	return false, false
}

func AsNumber(v Value) (*bignum.Decimal, bool) {
	if nv, ok := v.(NumberValue); ok {
		return nv.value, true
	}
	return nil, false
}

func AsString(v Value) (string, bool) {
	if tv, ok := v.(TextValue); ok {
		return tv.value, true
	}
	return "", false
}

func AsMatrix(v Value) ([]Value, bool) {
	if mv, ok := v.(MatrixValue); ok {
		return mv.items, true
	}
	return nil, false
}

func AsTuple(v Value) ([]Value, bool) {
	if tv, ok := v.(TupleValue); ok {
		return tv.items, true
	}
	return nil, false
}

func AsDict(v Value) (map[string]Value, bool) {
	if dv, ok := v.(DictValue); ok {
		return dv.items, true
	}
	return nil, false
}

// =====================================
// Internal conversion
// =====================================

// toInternal converts a Value into the internal/object.Value it wraps.
func toInternal(v Value) object.Value {
	if v == nil {
		return object.NewIdentifier("undefined")
	}
	return v.toInternal()
}

// fromInternal converts an internal/object.Value into the Value a caller
// of this package sees, collapsing reference indirection first.
func fromInternal(v object.Value) Value {
	if v == nil {
		return Nil
	}
	switch val := object.ResolveObj(v).(type) {
	case *object.Identifier:
		return Nil
	case *object.Boolean:
		return Bool(val.Value)
	case *object.Number:
		return NumberValue{value: val.Value}
	case *object.Text:
		return TextValue{value: val.Value}
	case *object.Matrix:
		items := make([]Value, len(val.Items))
		for i, it := range val.Items {
			items[i] = fromInternal(it)
		}
		return MatrixValue{items: items}
	case *object.Tuple:
		items := make([]Value, len(val.Items))
		for i, it := range val.Items {
			items[i] = fromInternal(it)
		}
		return TupleValue{items: items}
	case *object.Dictionary:
		items := make(map[string]Value, val.Len())
		for _, k := range val.Keys() {
			dv, _ := val.Get(k)
			items[k.String()] = fromInternal(dv)
		}
		return DictValue{items: items}
	case *object.Lambda:
		return FunctionValue{lam: val}
	case *object.ClassInstance:
		return Object{inst: val}
	case nil:
		return Nil
	default:
		return OpaqueValue{inner: val}
	}
}
