package vm

import (
	"fmt"
	"strconv"
)

// ValueType represents the type of a Value.
type ValueType uint8

const (
	TypeUndefined ValueType = iota // Default/uninitialized/implicit return
	TypeNull                       // Explicit null value
	TypeBool
	TypeNumber  // float64 payload
	TypeInteger // exact int32 payload, used for counters and dispatch encodings
	TypeString
	TypeObject // Represents *Object (plain objects, functions, promises, generators)
)

// Value represents a value in the VM.
// We use a tagged union approach for performance.
type Value struct {
	typ ValueType
	as  struct {
		boolean bool
		number  float64
		integer int32
		str     string
		obj     *Object
	}
}

// Constructors

func Undefined() Value {
	return Value{typ: TypeUndefined}
}

func Null() Value {
	return Value{typ: TypeNull}
}

func Bool(value bool) Value {
	v := Value{typ: TypeBool}
	v.as.boolean = value
	return v
}

func Number(value float64) Value {
	v := Value{typ: TypeNumber}
	v.as.number = value
	return v
}

// Integer creates an exact integer Value. Integer values never lose
// precision on a round trip, which dispatch encodings rely on.
func Integer(value int32) Value {
	v := Value{typ: TypeInteger}
	v.as.integer = value
	return v
}

func String(value string) Value {
	v := Value{typ: TypeString}
	v.as.str = value
	return v
}

// ObjectValue wraps an *Object into a Value.
// The `obj` argument must be non-nil.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		panic("Attempted to create Value from nil Object pointer")
	}
	v := Value{typ: TypeObject}
	v.as.obj = obj
	return v
}

// Type Checkers

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBool() bool      { return v.typ == TypeBool }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsInteger() bool   { return v.typ == TypeInteger }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// IsCallable reports whether the value is an object that can be invoked.
func (v Value) IsCallable() bool {
	return v.typ == TypeObject && v.as.obj.Callable()
}

// Accessors

func (v Value) AsBool() bool       { return v.as.boolean }
func (v Value) AsNumber() float64  { return v.as.number }
func (v Value) AsInteger() int32   { return v.as.integer }
func (v Value) AsString() string   { return v.as.str }

// AsObject returns the object payload, or nil if the value is not an object.
func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		return nil
	}
	return v.as.obj
}

// IsTruthy implements the usual dynamic-language truthiness rules.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return false
	case TypeBool:
		return v.as.boolean
	case TypeNumber:
		return v.as.number != 0
	case TypeInteger:
		return v.as.integer != 0
	case TypeString:
		return v.as.str != ""
	default:
		return true
	}
}

// Is reports strict equality between two values (same type, same payload;
// objects compare by identity).
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBool:
		return v.as.boolean == other.as.boolean
	case TypeNumber:
		return v.as.number == other.as.number
	case TypeInteger:
		return v.as.integer == other.as.integer
	case TypeString:
		return v.as.str == other.as.str
	case TypeObject:
		return v.as.obj == other.as.obj
	default:
		return false
	}
}

// Inspect returns a debug representation of the value.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBool:
		return strconv.FormatBool(v.as.boolean)
	case TypeNumber:
		return strconv.FormatFloat(v.as.number, 'g', -1, 64)
	case TypeInteger:
		return strconv.FormatInt(int64(v.as.integer), 10)
	case TypeString:
		return fmt.Sprintf("%q", v.as.str)
	case TypeObject:
		return v.as.obj.Inspect()
	default:
		return fmt.Sprintf("<unknown value type %d>", v.typ)
	}
}
