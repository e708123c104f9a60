// Package joyerr defines the error taxonomy shared by the compiler and the VM.
package joyerr

import (
	"errors"
	"fmt"

	"github.com/joomcode/errorx"
)

var (
	namespace = errorx.NewNamespace("joy")

	// Syntax errors are raised by the compiler and carry the source line and column.
	Syntax = namespace.NewType("syntax").ApplyModifiers(errorx.TypeModifierOmitStackTrace)

	// Execution errors are raised while loading or running a program and carry the
	// offset of the failing instruction once they leave the VM.
	Execution = namespace.NewType("execution").ApplyModifiers(errorx.TypeModifierOmitStackTrace)

	// ValueAccess errors are raised by table operations on non-table values.
	ValueAccess = namespace.NewType("value_access").ApplyModifiers(errorx.TypeModifierOmitStackTrace)
)

// Execution subtypes
var (
	StackUnderflow  = Execution.NewSubtype("stack_underflow")
	TypeMismatch    = Execution.NewSubtype("type_mismatch")
	NotCallable     = Execution.NewSubtype("not_callable")
	UndefinedMethod = Execution.NewSubtype("undefined_method")
	StepLimit       = Execution.NewSubtype("step_limit")
	CallDepth       = Execution.NewSubtype("call_depth")
	UndefinedLabel  = Execution.NewSubtype("undefined_label")
	InvalidProgram  = Execution.NewSubtype("invalid_program")
	Arity           = Execution.NewSubtype("arity")
	Native          = Execution.NewSubtype("native")
)

var (
	PropertyLine   = errorx.RegisterPrintableProperty("line")
	PropertyColumn = errorx.RegisterPrintableProperty("column")
	PropertyOffset = errorx.RegisterPrintableProperty("offset")
)

// SyntaxAt builds a syntax error positioned at the given line and column.
func SyntaxAt(line, column int, format string, args ...any) error {
	return Syntax.New("Line %d --- %s", line, fmt.Sprintf(format, args...)).
		WithProperty(PropertyLine, line).
		WithProperty(PropertyColumn, column)
}

// AtOffset annotates err with the offset of the instruction that produced it.
// Errors that already carry an offset are returned unchanged.
func AtOffset(err error, offset int) error {
	if err == nil {
		return nil
	}
	if _, ok := Offset(err); ok {
		return err
	}

	if errorx.Cast(err) == nil {
		err = Execution.Wrap(err, "unexpected failure")
	}

	return errorx.Decorate(err, "Error @%d", offset).WithProperty(PropertyOffset, offset)
}

// WrapHost wraps an error returned by host code as a native execution error.
// Errors that already belong to the taxonomy pass through unchanged.
func WrapHost(err error, name string) error {
	if err == nil || errorx.Cast(err) != nil {
		return err
	}

	return Native.Wrap(err, "native %s failed", name)
}

// Line returns the source line attached to a syntax error.
func Line(err error) (int, bool) {
	return intProperty(err, PropertyLine)
}

// Column returns the source column attached to a syntax error.
func Column(err error) (int, bool) {
	return intProperty(err, PropertyColumn)
}

// Offset returns the instruction offset attached to an execution error.
func Offset(err error) (int, bool) {
	return intProperty(err, PropertyOffset)
}

// Is reports whether err, or an error it wraps, belongs to the given error type
// or one of its subtypes.
func Is(err error, t *errorx.Type) bool {
	e := cast(err)
	return e != nil && e.IsOfType(t)
}

// cast finds the outermost errorx error in the chain of err.
func cast(err error) *errorx.Error {
	var e *errorx.Error
	if errors.As(err, &e) {
		return e
	}

	return nil
}

func intProperty(err error, p errorx.Property) (int, bool) {
	e := cast(err)
	if e == nil {
		return 0, false
	}

	v, ok := e.Property(p)
	if !ok {
		return 0, false
	}

	n, ok := v.(int)
	return n, ok
}
