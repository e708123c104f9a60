package vm_test

import (
	"testing"

	"joy/pkg/joyerr"
	"joy/pkg/value"
	"joy/pkg/vm"
)

func TestFrameRegisters(t *testing.T) {
	f := vm.NewFrame(nil)
	f.SetRegister(4, value.Int(9))

	if f.Len() != 5 {
		t.Fatalf("expected the bank to grow to 5, got %d", f.Len())
	}
	if got := f.GetRegister(4); !got.Equals(value.Int(9)) {
		t.Errorf("expected 9, got %#v", got)
	}

	for _, j := range []int{0, 3, 5, 100, -1} {
		if got := f.GetRegister(j); !got.IsNil() {
			t.Errorf("register %d: expected Nil, got %#v", j, got)
		}
	}
}

func TestFrameStackOps(t *testing.T) {
	f := vm.NewFrame(nil)

	if got := f.Pop(); !got.IsNil() {
		t.Errorf("expected Nil from an empty frame, got %#v", got)
	}

	f.Push(value.Int(1))
	f.Push(value.Int(2))
	f.Push(value.Int(3))

	if got := f.Peek(0); !got.Equals(value.Int(3)) {
		t.Errorf("Peek(0): expected 3, got %#v", got)
	}
	if got := f.Peek(2); !got.Equals(value.Int(1)) {
		t.Errorf("Peek(2): expected 1, got %#v", got)
	}
	if got := f.Peek(3); !got.IsNil() {
		t.Errorf("Peek(3): expected Nil, got %#v", got)
	}

	popped := f.PopN(2)
	if len(popped) != 2 || !popped[0].Equals(value.Int(2)) || !popped[1].Equals(value.Int(3)) {
		t.Errorf("expected [2 3] bottom first, got %v", popped)
	}
	if f.Len() != 1 {
		t.Errorf("expected 1 value left, got %d", f.Len())
	}
}

func TestFrameDepth(t *testing.T) {
	root := vm.NewFrame(nil)
	child := vm.NewFrame(root)
	grandchild := vm.NewFrame(child)

	if root.Depth() != 0 || child.Depth() != 1 || grandchild.Depth() != 2 {
		t.Errorf("unexpected depths %d %d %d", root.Depth(), child.Depth(), grandchild.Depth())
	}
	if grandchild.Parent() != child || root.Parent() != nil {
		t.Errorf("unexpected parent links")
	}

	root.SetRegister(0, value.Int(1))
	if got := child.GetRegister(0); !got.IsNil() {
		t.Errorf("expected no lookup through the parent, got %#v", got)
	}
}

func TestPushPopCall(t *testing.T) {
	s := vm.NewFrameStack(0)
	caller := s.Current()
	caller.Push(value.Int(10))
	caller.Push(value.Int(20))

	if err := s.PushCall(2, 42); err != nil {
		t.Fatalf("push call failed: %v", err)
	}

	callee := s.Current()
	if callee == caller || s.Depth() != 1 {
		t.Fatalf("expected a new frame at depth 1")
	}
	if !callee.GetRegister(0).Equals(value.Int(10)) || !callee.GetRegister(1).Equals(value.Int(20)) {
		t.Errorf("expected arguments copied in order, got %v", callee.Values())
	}
	if got := caller.Peek(0); !got.Equals(value.Int(42)) {
		t.Errorf("expected the return sentinel on the caller, got %#v", got)
	}

	callee.Push(value.String("result"))
	ip, err := s.PopCall(1)
	if err != nil {
		t.Fatalf("pop call failed: %v", err)
	}
	if ip != 42 {
		t.Errorf("expected return ip 42, got %d", ip)
	}
	if s.Current() != caller {
		t.Errorf("expected to be back in the caller")
	}

	want := []value.Value{value.Int(10), value.Int(20), value.String("result")}
	got := caller.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Errorf("value %d: expected %#v, got %#v", i, want[i], got[i])
		}
	}
}

func TestPopCallErrors(t *testing.T) {
	s := vm.NewFrameStack(0)
	if _, err := s.PopCall(0); !joyerr.Is(err, joyerr.InvalidProgram) {
		t.Errorf("expected an error when leaving the root frame, got %v", err)
	}

	if err := s.PushCall(0, 7); err != nil {
		t.Fatalf("push call failed: %v", err)
	}
	if _, err := s.PopCall(3); !joyerr.Is(err, joyerr.StackUnderflow) {
		t.Errorf("expected a stack underflow, got %v", err)
	}
	if s.Depth() != 1 {
		t.Errorf("expected the failed return to keep the frame, depth %d", s.Depth())
	}
}

func TestPushCallLimits(t *testing.T) {
	s := vm.NewFrameStack(2)

	for i := 0; i < 2; i++ {
		if err := s.PushCall(0, i); err != nil {
			t.Fatalf("push call %d failed: %v", i, err)
		}
	}

	if err := s.PushCall(0, 2); !joyerr.Is(err, joyerr.CallDepth) {
		t.Errorf("expected a call depth error, got %v", err)
	}
	if err := vm.NewFrameStack(0).PushCall(1, 0); !joyerr.Is(err, joyerr.StackUnderflow) {
		t.Errorf("expected a stack underflow for missing arguments, got %v", err)
	}
}
