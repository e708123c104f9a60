package vm

import (
	"joy/pkg/joyerr"
	"joy/pkg/stack"
	"joy/pkg/value"
)

// FrameStack is the call stack. It always holds at least the root frame.
type FrameStack struct {
	frames   *stack.Stack[*Frame]
	maxDepth int // maximum number of nested calls (0 = unlimited)
}

// NewFrameStack creates a call stack holding only a root frame.
func NewFrameStack(maxDepth int) *FrameStack {
	return &FrameStack{
		frames:   stack.NewStack(NewFrame(nil)),
		maxDepth: maxDepth,
	}
}

// Current returns the innermost frame.
func (s *FrameStack) Current() *Frame {
	return s.frames.Peek()
}

// Depth returns the number of active calls above the root frame.
func (s *FrameStack) Depth() int {
	return s.frames.Size() - 1
}

// PushCall enters a new frame seeded with copies of the caller's top argCount
// values and leaves returnIP on the caller as the return sentinel.
func (s *FrameStack) PushCall(argCount, returnIP int) error {
	caller := s.Current()

	if s.maxDepth > 0 && s.Depth() >= s.maxDepth {
		return joyerr.CallDepth.New("Call depth exceeded: %d", s.maxDepth)
	}
	if argCount < 0 || argCount > caller.Len() {
		return joyerr.StackUnderflow.New("Stack underflow: call needs %d arguments, frame holds %d", argCount, caller.Len())
	}

	callee := NewFrame(caller)
	for i := argCount - 1; i >= 0; i-- {
		callee.Push(caller.Peek(i))
	}

	caller.Push(value.Int(int32(returnIP)))
	s.frames.Push(callee)

	return nil
}

// PopCall leaves the current frame, moving its top retCount values onto the
// caller, and returns the instruction pointer saved by PushCall.
func (s *FrameStack) PopCall(retCount int) (int, error) {
	if s.Depth() == 0 {
		return 0, joyerr.InvalidProgram.New("Can't return from the root frame")
	}

	callee := s.Current()
	if retCount < 0 || retCount > callee.Len() {
		return 0, joyerr.StackUnderflow.New("Stack underflow: return needs %d values, frame holds %d", retCount, callee.Len())
	}

	caller := callee.Parent()
	sentinel := caller.Peek(0)
	if sentinel.Kind() != value.KindInt {
		return 0, joyerr.InvalidProgram.New("Return address is %s, expected %s", sentinel.Kind(), value.KindInt)
	}

	results := callee.PopN(retCount)
	s.frames.Pop()
	caller.Pop()
	for _, v := range results {
		caller.Push(v)
	}

	return int(sentinel.AsInt()), nil
}
