package vm

import (
	"joy/pkg/joyerr"
	"joy/pkg/value"
)

// exec is the main single-step execution function. Every case validates its
// operands before the first pop so failures leave the frame untouched.
func (vm *VM) exec() error {
	in := vm.program[vm.ip]
	if in.Kind() != value.KindOpCode {
		return joyerr.InvalidProgram.New("Expected an instruction, got %s", in.Kind())
	}

	op := in.OpCode()
	f := vm.frames.Current()
	next := vm.ip + 1 + op.Operands()

	switch op {
	case value.OpNOP, value.OpLabel:

	case value.OpPop:
		if err := need(f, op); err != nil {
			return err
		}
		f.Pop()

	case value.OpPushValueLiteral:
		f.Push(vm.operand(1))

	case value.OpPushValue:
		reg, err := intOperand(op, vm.operand(1))
		if err != nil {
			return err
		}
		f.Push(f.GetRegister(reg))

	case value.OpDuplicateTop:
		if err := need(f, op); err != nil {
			return err
		}
		f.Push(f.Peek(0))

	case value.OpStoreRegister:
		reg, err := intOperand(op, vm.operand(1))
		if err != nil {
			return err
		}
		if err := need(f, op); err != nil {
			return err
		}
		f.SetRegister(reg, f.Pop())

	case value.OpPushReference:
		reg, err := intOperand(op, vm.operand(1))
		if err != nil {
			return err
		}
		f.Push(value.Ref(f, reg))

	case value.OpNewTable:
		f.Push(value.NewTable())

	case value.OpLoadTableKey:
		if err := need(f, op); err != nil {
			return err
		}
		v, err := f.Peek(1).GetValue(f.Peek(0))
		if err != nil {
			return err
		}
		f.Pop()
		f.Push(v)

	case value.OpStoreTableKey:
		if err := need(f, op); err != nil {
			return err
		}
		if err := f.Peek(2).SetValue(f.Peek(1), f.Peek(0)); err != nil {
			return err
		}
		f.PopN(2)

	case value.OpLoadTableKeyLiteral:
		if err := need(f, op); err != nil {
			return err
		}
		v, err := f.Peek(0).GetValue(vm.operand(1))
		if err != nil {
			return err
		}
		f.Push(v)

	case value.OpStoreTableKeyLiteral:
		if err := need(f, op); err != nil {
			return err
		}
		if err := f.Peek(1).SetValue(vm.operand(1), f.Peek(0)); err != nil {
			return err
		}
		f.Pop()

	case value.OpStoreTableKVLiteral:
		if err := need(f, op); err != nil {
			return err
		}
		if err := f.Peek(0).SetValue(vm.operand(1), vm.operand(2)); err != nil {
			return err
		}

	case value.OpLoadGlobalKey:
		if err := need(f, op); err != nil {
			return err
		}
		f.Push(vm.globals.Table().Get(f.Pop()))

	case value.OpStoreGlobalKey:
		if err := need(f, op); err != nil {
			return err
		}
		kv := f.PopN(2)
		vm.globals.Table().Set(kv[0], kv[1])

	case value.OpLoadGlobalKeyLiteral:
		f.Push(vm.globals.Table().Get(vm.operand(1)))

	case value.OpStoreGlobalKeyLiteral:
		if err := need(f, op); err != nil {
			return err
		}
		vm.globals.Table().Set(vm.operand(1), f.Pop())

	case value.OpStoreGlobalKVLiteral:
		vm.globals.Table().Set(vm.operand(1), vm.operand(2))

	case value.OpJump:
		addr, err := vm.addressOperand(op, vm.operand(1))
		if err != nil {
			return err
		}
		next = addr

	case value.OpJumpIf:
		addr, err := vm.addressOperand(op, vm.operand(1))
		if err != nil {
			return err
		}
		if err := need(f, op); err != nil {
			return err
		}
		cond, err := f.Peek(0).Truthy()
		if err != nil {
			return err
		}
		f.Pop()
		if cond {
			next = addr
		}

	case value.OpCall:
		addr, err := vm.call(f)
		if err != nil {
			return err
		}
		next = addr

	case value.OpCallMethod:
		if err := vm.callMethod(f); err != nil {
			return err
		}

	case value.OpReturn:
		addr, err := vm.ret(f)
		if err != nil {
			return err
		}
		next = addr

	case value.OpAdd, value.OpSub, value.OpMul, value.OpDiv, value.OpMod,
		value.OpLowerThan, value.OpLowerEqualThan, value.OpGreaterThan, value.OpGreaterEqualThan:
		if err := binary(f, op, binaryOps[op]); err != nil {
			return err
		}

	case value.OpEqual:
		if err := need(f, op); err != nil {
			return err
		}
		ab := f.PopN(2)
		f.Push(value.Equal(ab[1], ab[0]))

	case value.OpNeg, value.OpInc, value.OpDec:
		if err := unary(f, op, unaryOps[op]); err != nil {
			return err
		}

	default:
		return joyerr.InvalidProgram.New("Unknown opcode %s", op)
	}

	vm.ip = next
	return nil
}

// operand returns the n-th inline operand of the current instruction. Load
// guarantees that it exists.
func (vm *VM) operand(n int) value.Value {
	return vm.program[vm.ip+n]
}

func (vm *VM) addressOperand(op value.OpCode, v value.Value) (int, error) {
	addr, err := intOperand(op, v)
	if err != nil {
		return 0, err
	}
	if addr > len(vm.program) {
		return 0, joyerr.InvalidProgram.New("%s target %d is outside the program", op, addr)
	}

	return addr, nil
}

// call pops the argument count and the callee. Code addresses enter a new frame;
// host functions run immediately and push their results.
func (vm *VM) call(f *Frame) (int, error) {
	if err := require(f, value.OpCall, 2); err != nil {
		return 0, err
	}
	argc, err := countOperand(value.OpCall, f.Peek(0))
	if err != nil {
		return 0, err
	}
	if err := require(f, value.OpCall, 2+argc); err != nil {
		return 0, err
	}

	callee := f.Peek(1).Resolve()
	switch {
	case callee.Kind() == value.KindInt:
		target, err := vm.addressOperand(value.OpCall, callee)
		if err != nil {
			return 0, err
		}

		saved := f.PopN(2)
		if err := vm.frames.PushCall(argc, vm.ip+1); err != nil {
			f.Push(saved[0])
			f.Push(saved[1])
			return 0, err
		}

		vm.logger.Debug("Call", "target", target, "args", argc, "depth", vm.frames.Depth())
		return target, nil

	case callee.IsCallable():
		values := f.Values()
		args := values[len(values)-2-argc : len(values)-2]

		results, err := callee.Native().Invoke(args)
		if err != nil {
			return 0, err
		}

		f.PopN(2 + argc)
		for _, r := range results {
			f.Push(r)
		}

		return vm.ip + 1, nil
	}

	return 0, joyerr.NotCallable.New("Value %s is not callable", callee.Kind())
}

// callMethod pops the argument count, the receiver, the method name and the
// arguments, then pushes the method's results.
func (vm *VM) callMethod(f *Frame) error {
	op := value.OpCallMethod
	if err := require(f, op, 3); err != nil {
		return err
	}
	argc, err := countOperand(op, f.Peek(0))
	if err != nil {
		return err
	}
	if err := require(f, op, 3+argc); err != nil {
		return err
	}

	receiver := f.Peek(1).Resolve()
	if receiver.Kind() != value.KindObject {
		return joyerr.NotCallable.New("Can't call a method on %s", receiver.Kind())
	}
	name := f.Peek(2).Resolve()
	if name.Kind() != value.KindString {
		return joyerr.TypeMismatch.New("Method name is %s, expected %s", name.Kind(), value.KindString)
	}

	values := f.Values()
	args := values[len(values)-3-argc : len(values)-3]

	results, err := receiver.Object().CallMethod(name.AsString(), args)
	if err != nil {
		return err
	}

	f.PopN(3 + argc)
	for _, r := range results {
		f.Push(r)
	}

	return nil
}

// ret pops the return count and leaves the current frame.
func (vm *VM) ret(f *Frame) (int, error) {
	if err := require(f, value.OpReturn, 1); err != nil {
		return 0, err
	}
	count, err := countOperand(value.OpReturn, f.Peek(0))
	if err != nil {
		return 0, err
	}

	saved := f.Pop()
	addr, err := vm.frames.PopCall(count)
	if err != nil {
		f.Push(saved)
		return 0, err
	}

	vm.logger.Debug("Return", "to", addr, "values", count, "depth", vm.frames.Depth())
	return addr, nil
}

var binaryOps = map[value.OpCode]func(a, b value.Value) (value.Value, error){
	value.OpAdd:              value.Add,
	value.OpSub:              value.Sub,
	value.OpMul:              value.Mul,
	value.OpDiv:              value.Div,
	value.OpMod:              value.Mod,
	value.OpLowerThan:        value.LowerThan,
	value.OpLowerEqualThan:   value.LowerEqualThan,
	value.OpGreaterThan:      value.GreaterThan,
	value.OpGreaterEqualThan: value.GreaterEqualThan,
}

var unaryOps = map[value.OpCode]func(a value.Value) (value.Value, error){
	value.OpNeg: value.Neg,
	value.OpInc: value.Inc,
	value.OpDec: value.Dec,
}

// binary computes a op b, a being the top of the stack.
func binary(f *Frame, op value.OpCode, fn func(a, b value.Value) (value.Value, error)) error {
	if err := need(f, op); err != nil {
		return err
	}

	r, err := fn(f.Peek(0), f.Peek(1))
	if err != nil {
		return err
	}

	f.PopN(2)
	f.Push(r)

	return nil
}

func unary(f *Frame, op value.OpCode, fn func(a value.Value) (value.Value, error)) error {
	if err := need(f, op); err != nil {
		return err
	}

	r, err := fn(f.Peek(0))
	if err != nil {
		return err
	}

	f.Pop()
	f.Push(r)

	return nil
}

// need checks that the frame holds the values op consumes.
func need(f *Frame, op value.OpCode) error {
	info, _ := op.Info()
	return require(f, op, info.Pop)
}

func require(f *Frame, op value.OpCode, n int) error {
	if f.Len() < n {
		return joyerr.StackUnderflow.New("Stack underflow: %s needs %d values, frame holds %d", op, n, f.Len())
	}

	return nil
}

func intOperand(op value.OpCode, v value.Value) (int, error) {
	if v.Kind() != value.KindInt || v.AsInt() < 0 {
		return 0, joyerr.InvalidProgram.New("%s operand is %s, expected a non-negative %s", op, v, value.KindInt)
	}

	return int(v.AsInt()), nil
}

func countOperand(op value.OpCode, v value.Value) (int, error) {
	v = v.Resolve()
	if v.Kind() != value.KindInt || v.AsInt() < 0 {
		return 0, joyerr.TypeMismatch.New("%s count is %s, expected a non-negative %s", op, v, value.KindInt)
	}

	return int(v.AsInt()), nil
}
