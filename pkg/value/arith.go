package value

import (
	"math"

	"joy/pkg/joyerr"
)

// Binary operations take a, the top of the stack, and b, the value beneath it,
// and compute a op b. Both operands are resolved first.

func unsupported(op string, a, b Value) error {
	return joyerr.TypeMismatch.New("Operation %s %s %s not supported", a.kind, op, b.kind)
}

// Add adds two numbers or concatenates strings. A String on top of a number
// yields the number's text followed by the string; a number on top of a String
// is rejected.
func Add(a, b Value) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i + b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(a.AsFloat() + b.AsFloat()), nil
	case a.kind == KindInt && b.kind == KindFloat:
		return Float(float32(a.i) + b.AsFloat()), nil
	case a.kind == KindFloat && b.kind == KindInt:
		return Float(a.AsFloat() + float32(b.i)), nil
	case a.kind == KindString && b.kind == KindString:
		return String(a.s + b.s), nil
	case a.kind == KindString && (b.kind == KindInt || b.kind == KindFloat):
		return String(b.String() + a.s), nil
	}

	return Nil, unsupported("+", a, b)
}

// Sub computes a - b.
func Sub(a, b Value) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i - b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(a.AsFloat() - b.AsFloat()), nil
	}

	return Nil, unsupported("-", a, b)
}

// Mul computes a * b.
func Mul(a, b Value) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i * b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(a.AsFloat() * b.AsFloat()), nil
	}

	return Nil, unsupported("*", a, b)
}

// Div computes a / b. Integer division by zero is an error.
func Div(a, b Value) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Nil, joyerr.TypeMismatch.New("Division by zero")
		}
		return Int(a.i / b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(a.AsFloat() / b.AsFloat()), nil
	}

	return Nil, unsupported("/", a, b)
}

// Mod computes a % b. Integer modulo by zero is an error.
func Mod(a, b Value) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Nil, joyerr.TypeMismatch.New("Division by zero")
		}
		return Int(a.i % b.i), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(float32(math.Mod(float64(a.AsFloat()), float64(b.AsFloat())))), nil
	}

	return Nil, unsupported("%", a, b)
}

// Neg negates a number.
func Neg(a Value) (Value, error) {
	a = a.Resolve()

	switch a.kind {
	case KindInt:
		return Int(-a.i), nil
	case KindFloat:
		return Float(-a.AsFloat()), nil
	}

	return Nil, joyerr.TypeMismatch.New("Operation -%s not supported", a.kind)
}

// Inc adds one to a number, keeping its kind.
func Inc(a Value) (Value, error) {
	a = a.Resolve()

	switch a.kind {
	case KindInt:
		return Int(a.i + 1), nil
	case KindFloat:
		return Float(a.AsFloat() + 1), nil
	}

	return Nil, joyerr.TypeMismatch.New("Operation %s++ not supported", a.kind)
}

// Dec subtracts one from a number, keeping its kind.
func Dec(a Value) (Value, error) {
	a = a.Resolve()

	switch a.kind {
	case KindInt:
		return Int(a.i - 1), nil
	case KindFloat:
		return Float(a.AsFloat() - 1), nil
	}

	return Nil, joyerr.TypeMismatch.New("Operation %s-- not supported", a.kind)
}

// Equal compares two resolved values. It never fails.
func Equal(a, b Value) Value {
	return Bool(a.Resolve().Equals(b.Resolve()))
}

func compare(op string, a, b Value, ints func(x, y int32) bool, floats func(x, y float32) bool) (Value, error) {
	a, b = a.Resolve(), b.Resolve()

	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Bool(ints(a.i, b.i)), nil
	case a.kind == KindFloat && b.kind == KindFloat:
		return Bool(floats(a.AsFloat(), b.AsFloat())), nil
	}

	return Nil, unsupported(op, a, b)
}

// LowerThan computes a < b.
func LowerThan(a, b Value) (Value, error) {
	return compare("<", a, b,
		func(x, y int32) bool { return x < y },
		func(x, y float32) bool { return x < y })
}

// LowerEqualThan computes a <= b.
func LowerEqualThan(a, b Value) (Value, error) {
	return compare("<=", a, b,
		func(x, y int32) bool { return x <= y },
		func(x, y float32) bool { return x <= y })
}

// GreaterThan computes a > b.
func GreaterThan(a, b Value) (Value, error) {
	return compare(">", a, b,
		func(x, y int32) bool { return x > y },
		func(x, y float32) bool { return x > y })
}

// GreaterEqualThan computes a >= b.
func GreaterEqualThan(a, b Value) (Value, error) {
	return compare(">=", a, b,
		func(x, y int32) bool { return x >= y },
		func(x, y float32) bool { return x >= y })
}
