package vm

import "joy/pkg/value"

// Frame is a call frame. Its registers double as the operand stack: Push and
// Pop work on the top of the register bank.
type Frame struct {
	registers []value.Value // register bank, index 0 at the bottom
	parent    *Frame        // caller frame, nil for the root
	depth     int           // number of frames below this one
}

// NewFrame creates a frame called from parent.
func NewFrame(parent *Frame) *Frame {
	f := &Frame{parent: parent}
	if parent != nil {
		f.depth = parent.depth + 1
	}

	return f
}

// Parent returns the caller frame, nil for the root.
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Depth returns the number of frames below this one.
func (f *Frame) Depth() int {
	return f.depth
}

// Len returns the number of registers in use.
func (f *Frame) Len() int {
	return len(f.registers)
}

// GetRegister returns register index, or Nil when it was never written.
func (f *Frame) GetRegister(index int) value.Value {
	if index < 0 || index >= len(f.registers) {
		return value.Nil
	}

	return f.registers[index]
}

// SetRegister writes register index, growing the bank with Nil as needed.
func (f *Frame) SetRegister(index int, v value.Value) {
	if index < 0 {
		return
	}

	for len(f.registers) <= index {
		f.registers = append(f.registers, value.Nil)
	}

	f.registers[index] = v
}

// Push appends v on top of the register bank.
func (f *Frame) Push(v value.Value) {
	f.registers = append(f.registers, v)
}

// Pop removes and returns the top value, or Nil when the frame is empty.
func (f *Frame) Pop() value.Value {
	if len(f.registers) == 0 {
		return value.Nil
	}

	l := len(f.registers) - 1
	v := f.registers[l]
	f.registers[l] = value.Nil
	f.registers = f.registers[:l]

	return v
}

// PopN removes the top n values and returns them bottom first.
func (f *Frame) PopN(n int) []value.Value {
	if n > len(f.registers) {
		n = len(f.registers)
	}
	if n <= 0 {
		return nil
	}

	l := len(f.registers) - n
	out := make([]value.Value, n)
	copy(out, f.registers[l:])
	clear(f.registers[l:])
	f.registers = f.registers[:l]

	return out
}

// Peek returns the value fromBack positions below the top, or Nil.
func (f *Frame) Peek(fromBack int) value.Value {
	return f.GetRegister(len(f.registers) - 1 - fromBack)
}

// Values returns a copy of the register bank, bottom first.
func (f *Frame) Values() []value.Value {
	return append([]value.Value(nil), f.registers...)
}
