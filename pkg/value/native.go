package value

import (
	"math"

	"joy/pkg/joyerr"
)

// Variadic is the arity of a native that accepts any number of arguments.
const Variadic = -1

// HostFunc is the Value-level signature of every host callable.
type HostFunc func(args []Value) ([]Value, error)

// Native is a host function callable from a program.
type Native struct {
	name   string
	arity  int
	invoke HostFunc
}

// NewNative creates a host function with the given arity.
func NewNative(name string, arity int, fn HostFunc) *Native {
	return &Native{name: name, arity: arity, invoke: fn}
}

// Name returns the name the native was registered with.
func (n *Native) Name() string {
	return n.name
}

// Arity returns the declared parameter count, or Variadic.
func (n *Native) Arity() int {
	return n.arity
}

// Value wraps the native as a NativeFunction value.
func (n *Native) Value() Value {
	return Value{kind: KindNativeFunction, fn: n}
}

// Invoke calls the native. Missing arguments are padded with Nil; surplus
// arguments are an error.
func (n *Native) Invoke(args []Value) ([]Value, error) {
	if n.arity != Variadic {
		if len(args) > n.arity {
			return nil, joyerr.Arity.New("Function %s takes %d arguments, got %d", n.name, n.arity, len(args))
		}
		if len(args) < n.arity {
			padded := make([]Value, n.arity)
			copy(padded, args)
			args = padded
		}
	}

	results, err := n.invoke(args)
	if err != nil {
		return nil, joyerr.WrapHost(err, n.name)
	}

	return results, nil
}

// Function creates a raw host function value working directly on Values.
func Function(name string, arity int, fn HostFunc) Value {
	return Value{kind: KindFunction, fn: NewNative(name, arity, fn)}
}

// Param lists the Go types a typed native can take or return.
type Param interface {
	bool | int | int32 | int64 | float32 | float64 | string | *string
}

// FromValue converts v to the Go type T. Nil becomes the zero value, or a nil
// pointer for *string.
func FromValue[T Param](v Value) (T, error) {
	var out T
	v = v.Resolve()

	switch p := any(&out).(type) {
	case *bool:
		b, err := v.Truthy()
		if err != nil {
			return out, err
		}
		*p = b
	case *int:
		n, err := toInt64(v)
		*p = int(n)
		return out, err
	case *int32:
		n, err := toInt64(v)
		*p = int32(n)
		return out, err
	case *int64:
		n, err := toInt64(v)
		*p = n
		return out, err
	case *float32:
		f, err := toFloat64(v)
		*p = float32(f)
		return out, err
	case *float64:
		f, err := toFloat64(v)
		*p = f
		return out, err
	case *string:
		if !v.IsNil() {
			*p = v.String()
		}
	case **string:
		if !v.IsNil() {
			s := v.String()
			*p = &s
		}
	}

	return out, nil
}

// ToValue converts a Go value to a Value. A nil *string becomes Nil. int and
// int64 wrap around to int32; use Result to reject values out of range.
func ToValue[T Param](x T) Value {
	switch v := any(x).(type) {
	case bool:
		return Bool(v)
	case int:
		return Int(int32(v))
	case int32:
		return Int(v)
	case int64:
		return Int(int32(v))
	case float32:
		return Float(v)
	case float64:
		return Float(float32(v))
	case string:
		return String(v)
	case *string:
		if v == nil {
			return Nil
		}
		return String(*v)
	}

	return Nil
}

// Result converts a host result like ToValue, but fails for int and int64
// values outside the int32 range.
func Result[T Param](x T) (Value, error) {
	var n int64
	switch v := any(x).(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return ToValue(x), nil
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return Nil, joyerr.TypeMismatch.New("Result %d overflows %s", n, KindInt)
	}

	return Int(int32(n)), nil
}

func results[R Param](r R) ([]Value, error) {
	v, err := Result(r)
	if err != nil {
		return nil, err
	}

	return []Value{v}, nil
}

func toInt64(v Value) (int64, error) {
	switch v.kind {
	case KindNil:
		return 0, nil
	case KindInt:
		return int64(v.i), nil
	case KindFloat:
		return int64(v.AsFloat()), nil
	}

	return 0, joyerr.TypeMismatch.New("Value is %s, expected a number", v.kind)
}

func toFloat64(v Value) (float64, error) {
	switch v.kind {
	case KindNil:
		return 0, nil
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return float64(v.AsFloat()), nil
	}

	return 0, joyerr.TypeMismatch.New("Value is %s, expected a number", v.kind)
}

// Action0 wraps a host function without parameters or results.
func Action0(name string, fn func()) *Native {
	return NewNative(name, 0, func([]Value) ([]Value, error) {
		fn()
		return nil, nil
	})
}

// Action1 wraps a host function with one parameter.
func Action1[A Param](name string, fn func(A)) *Native {
	return NewNative(name, 1, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}

		fn(a)
		return nil, nil
	})
}

// Action2 wraps a host function with two parameters.
func Action2[A, B Param](name string, fn func(A, B)) *Native {
	return NewNative(name, 2, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}
		b, err := FromValue[B](args[1])
		if err != nil {
			return nil, err
		}

		fn(a, b)
		return nil, nil
	})
}

// Action3 wraps a host function with three parameters.
func Action3[A, B, C Param](name string, fn func(A, B, C)) *Native {
	return NewNative(name, 3, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}
		b, err := FromValue[B](args[1])
		if err != nil {
			return nil, err
		}
		c, err := FromValue[C](args[2])
		if err != nil {
			return nil, err
		}

		fn(a, b, c)
		return nil, nil
	})
}

// Func0 wraps a host function returning one result.
func Func0[R Param](name string, fn func() R) *Native {
	return NewNative(name, 0, func([]Value) ([]Value, error) {
		return results(fn())
	})
}

// Func1 wraps a host function with one parameter and one result.
func Func1[A, R Param](name string, fn func(A) R) *Native {
	return NewNative(name, 1, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}

		return results(fn(a))
	})
}

// Func2 wraps a host function with two parameters and one result.
func Func2[A, B, R Param](name string, fn func(A, B) R) *Native {
	return NewNative(name, 2, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}
		b, err := FromValue[B](args[1])
		if err != nil {
			return nil, err
		}

		return results(fn(a, b))
	})
}

// Func3 wraps a host function with three parameters and one result.
func Func3[A, B, C, R Param](name string, fn func(A, B, C) R) *Native {
	return NewNative(name, 3, func(args []Value) ([]Value, error) {
		a, err := FromValue[A](args[0])
		if err != nil {
			return nil, err
		}
		b, err := FromValue[B](args[1])
		if err != nil {
			return nil, err
		}
		c, err := FromValue[C](args[2])
		if err != nil {
			return nil, err
		}

		return results(fn(a, b, c))
	})
}
