// Package value implements the dynamically-typed runtime datum of the language
// together with the operations the VM performs on it.
package value

import (
	"fmt"
	"hash/maphash"
	"math"
	"strconv"

	"joy/pkg/joyerr"
)

type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindObject
	KindTable
	KindString
	KindFunction
	KindNativeFunction
	KindReference
	KindLabel
	KindAddress
	KindAddressRef
	KindOpCode
)

var kindNames = [...]string{
	KindNil:            "Nil",
	KindBool:           "Bool",
	KindInt:            "Int",
	KindFloat:          "Float",
	KindObject:         "Object",
	KindTable:          "Table",
	KindString:         "String",
	KindFunction:       "Function",
	KindNativeFunction: "NativeFunction",
	KindReference:      "Reference",
	KindLabel:          "Label",
	KindAddress:        "Address",
	KindAddressRef:     "AddressRef",
	KindOpCode:         "OpCode",
}

// String returns the name of the kind
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// maxResolveDepth bounds Reference chains; longer chains are treated as cycles.
const maxResolveDepth = 64

// Registers is anything a Reference can point into, in practice a VM frame.
type Registers interface {
	GetRegister(index int) Value
}

// Value is a tagged union. Only the payload belonging to kind is ever set, which
// keeps Go's == on Value identical to Equals and makes Value usable as a map key.
// Floats are held as their bit pattern so NaN equals itself.
type Value struct {
	kind Kind

	b   bool    // Bool
	i   int32   // Int, OpCode, Reference register index
	f   uint32  // Float, as IEEE 754 bits
	s   string  // String, Label, Address, AddressRef
	tbl *Table  // Table
	obj *Object // Object
	fn  *Native // Function, NativeFunction
	reg Registers
}

// Nil is the zero Value.
var Nil = Value{}

var (
	True  = Bool(true)
	False = Bool(false)
)

// Bool creates a new boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int creates a new integer Value.
func Int(i int32) Value {
	return Value{kind: KindInt, i: i}
}

// Float creates a new floating point Value.
func Float(f float32) Value {
	return Value{kind: KindFloat, f: math.Float32bits(f)}
}

// String creates a new string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Label creates a named marker. Labels have no runtime effect.
func Label(name string) Value {
	return Value{kind: KindLabel, s: name}
}

// Address marks a jump target; it resolves to the offset of the next instruction.
func Address(name string) Value {
	return Value{kind: KindAddress, s: name}
}

// AddressRef refers to the Address with the same name and is replaced by its
// absolute offset when the program is loaded.
func AddressRef(name string) Value {
	return Value{kind: KindAddressRef, s: name}
}

// Op wraps an opcode so it can be placed in a program.
func Op(op OpCode) Value {
	return Value{kind: KindOpCode, i: int32(op)}
}

// Ref creates a Reference to register index of regs.
func Ref(regs Registers, index int) Value {
	return Value{kind: KindReference, reg: regs, i: int32(index)}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNil reports whether the value is Nil.
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// AsBool returns the Bool payload.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt returns the Int payload.
func (v Value) AsInt() int32 {
	if v.kind != KindInt {
		return 0
	}
	return v.i
}

// AsFloat returns the Float payload.
func (v Value) AsFloat() float32 {
	return math.Float32frombits(v.f)
}

// AsString returns the String payload, or the name of a Label, Address or AddressRef.
func (v Value) AsString() string {
	return v.s
}

// Table returns the Table payload, nil for any other kind.
func (v Value) Table() *Table {
	return v.tbl
}

// Object returns the Object payload, nil for any other kind.
func (v Value) Object() *Object {
	return v.obj
}

// Native returns the callable behind a Function or NativeFunction.
func (v Value) Native() *Native {
	return v.fn
}

// OpCode returns the opcode payload.
func (v Value) OpCode() OpCode {
	if v.kind != KindOpCode {
		return OpNOP
	}
	return OpCode(v.i)
}

// IsCallable reports whether the value is a host callable.
func (v Value) IsCallable() bool {
	return v.kind == KindFunction || v.kind == KindNativeFunction
}

// Resolve follows Reference indirections. The result is never a Reference.
func (v Value) Resolve() Value {
	for depth := 0; v.kind == KindReference; depth++ {
		if depth >= maxResolveDepth || v.reg == nil {
			return Nil
		}
		v = v.reg.GetRegister(int(v.i))
	}

	return v
}

// Equals compares tags first, then payloads. References are compared as
// references; resolve them first to compare what they point to.
func (v Value) Equals(o Value) bool {
	return v == o
}

// Hash returns a hash of the resolved value, consistent with Equals.
func (v Value) Hash(seed maphash.Seed) uint64 {
	return maphash.Comparable(seed, v.Resolve())
}

// Truthy converts the value to a condition.
func (v Value) Truthy() (bool, error) {
	v = v.Resolve()

	switch v.kind {
	case KindNil:
		return false, nil
	case KindBool:
		return v.b, nil
	case KindInt, KindFloat, KindString:
		return true, nil
	case KindObject:
		return v.obj != nil && v.obj.handle != nil, nil
	case KindTable, KindFunction, KindNativeFunction:
		return true, nil
	}

	return false, joyerr.TypeMismatch.New("Invalid Value type can't be cast to bool: %s", v.kind)
}

// String renders the value as text.
func (v Value) String() string {
	v = v.Resolve()

	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(int64(v.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.AsFloat()), 'g', -1, 32)
	case KindString:
		return v.s
	case KindTable:
		return "table"
	case KindObject:
		return fmt.Sprintf("[Object: %v]", v.obj.handle)
	case KindFunction, KindNativeFunction:
		return "[Function: " + v.fn.name + "]"
	case KindLabel:
		return "[Label: " + v.s + "]"
	case KindAddress:
		return "[Address: " + v.s + "]"
	case KindAddressRef:
		return "[AddressRef: " + v.s + "]"
	case KindOpCode:
		return "[OpCode: " + OpCode(v.i).String() + "]"
	default:
		return "??"
	}
}

// GoString is used by %#v and makes test failures readable.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("String(%q)", v.s)
	}

	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}
