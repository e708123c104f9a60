// Package vm executes loaded programs on a stack of register frames.
package vm

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"joy/pkg/joyerr"
	"joy/pkg/value"
)

const (
	DefaultMaxSteps     = 1000
	DefaultMaxCallDepth = 256
)

// VM runs a single program at a time. It is not safe for concurrent use, but
// separate VMs share no state.
type VM struct {
	id      uuid.UUID     // instance id, reported in log output
	program []value.Value // loaded program, free of symbolic values
	ip      int           // offset of the next instruction
	globals value.Value   // global table
	frames  *FrameStack   // call stack

	maxSteps     int // maximum steps per Execute (0 = unlimited)
	maxCallDepth int // maximum nested calls (0 = unlimited)
	steps        int // steps executed since the last Execute

	logger *log.Logger
}

type Option func(*VM)

// WithMaxSteps sets the step budget of Execute. Zero disables the limit.
func WithMaxSteps(n int) Option {
	return func(vm *VM) { vm.maxSteps = n }
}

// WithMaxCallDepth sets the maximum number of nested calls. Zero disables the limit.
func WithMaxCallDepth(n int) Option {
	return func(vm *VM) { vm.maxCallDepth = n }
}

// WithLogger sets the logger used for debug output
func WithLogger(l *log.Logger) Option {
	return func(vm *VM) { vm.logger = l }
}

// New creates a new VM instance with an empty global table
func New(opts ...Option) *VM {
	vm := &VM{
		id:           uuid.New(),
		globals:      value.NewTable(),
		maxSteps:     DefaultMaxSteps,
		maxCallDepth: DefaultMaxCallDepth,
	}

	for _, o := range opts {
		o(vm)
	}

	if vm.logger == nil {
		vm.logger = log.Default()
	}

	vm.logger = vm.logger.With("vm", vm.id.String())
	vm.frames = NewFrameStack(vm.maxCallDepth)

	return vm
}

// ID returns the instance id
func (vm *VM) ID() uuid.UUID {
	return vm.id
}

// SetGlobal stores v in the global table under name
func (vm *VM) SetGlobal(name string, v value.Value) {
	vm.globals.Table().Set(value.String(name), v)
}

// GetGlobal reads name from the global table
func (vm *VM) GetGlobal(name string) value.Value {
	return vm.globals.Table().Get(value.String(name))
}

// Globals returns the global table
func (vm *VM) Globals() *value.Table {
	return vm.globals.Table()
}

// Program returns the loaded program
func (vm *VM) Program() []value.Value {
	return vm.program
}

// Steps returns the number of instructions executed since the last Execute
func (vm *VM) Steps() int {
	return vm.steps
}

// IP returns the offset of the next instruction
func (vm *VM) IP() int {
	return vm.ip
}

// Load copies program and resolves its addresses. Address markers resolve to
// the offset of the instruction that follows them; every AddressRef is replaced
// by the Int offset of its Address. Markers are replaced by NOP. On failure the
// previously loaded program is kept.
func (vm *VM) Load(program []value.Value) error {
	prog := append([]value.Value(nil), program...)
	addresses := make(map[string]int)

	for i := 0; i < len(prog); {
		v := prog[i]

		switch v.Kind() {
		case value.KindAddress:
			if _, dup := addresses[v.AsString()]; dup {
				return joyerr.AtOffset(joyerr.InvalidProgram.New("Duplicate address %s", v.AsString()), i)
			}
			addresses[v.AsString()] = i + 1
			prog[i] = value.Op(value.OpNOP)
			i++

		case value.KindLabel:
			prog[i] = value.Op(value.OpNOP)
			i++

		case value.KindOpCode:
			info, ok := v.OpCode().Info()
			if !ok {
				return joyerr.AtOffset(joyerr.InvalidProgram.New("Unknown opcode %s", info.Name), i)
			}
			if i+info.Operands >= len(prog) {
				return joyerr.AtOffset(joyerr.InvalidProgram.New("%s expects %d operands", info.Name, info.Operands), i)
			}
			for n := 1; n <= info.Operands; n++ {
				if k := prog[i+n].Kind(); k == value.KindAddress || k == value.KindLabel {
					return joyerr.AtOffset(joyerr.InvalidProgram.New("%s can't be used as an operand", k), i+n)
				}
			}
			i += 1 + info.Operands

		default:
			return joyerr.AtOffset(joyerr.InvalidProgram.New("Expected an instruction, got %s", v.Kind()), i)
		}
	}

	for i, v := range prog {
		if v.Kind() != value.KindAddressRef {
			continue
		}

		target, ok := addresses[v.AsString()]
		if !ok {
			return joyerr.AtOffset(joyerr.UndefinedLabel.New("Undefined address %s", v.AsString()), i)
		}
		prog[i] = value.Int(int32(target))
	}

	vm.program = prog
	vm.ip = 0
	vm.logger.Debug("Program loaded", "size", len(prog), "addresses", len(addresses))

	return nil
}

// Execute runs the loaded program from the start until it ends or fails
func (vm *VM) Execute() error {
	vm.ip = 0
	vm.steps = 0

	for {
		halted, err := vm.Step()
		if err != nil {
			vm.logger.Debug("Execution failed", "steps", vm.steps, "error", err)
			return err
		}

		if halted {
			vm.logger.Debug("Execution finished", "steps", vm.steps)
			return nil
		}
	}
}

// Step executes a single instruction, returning (halted, error). A failing
// instruction leaves the operand stack and the instruction pointer unchanged.
func (vm *VM) Step() (bool, error) {
	if vm.ip < 0 || vm.ip >= len(vm.program) {
		return true, nil
	}

	if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
		err := joyerr.StepLimit.New("endless loop: step budget of %d exhausted", vm.maxSteps)
		return false, joyerr.AtOffset(err, vm.ip)
	}

	at := vm.ip
	err := vm.exec()
	vm.steps++

	if err != nil {
		vm.ip = at
		return false, joyerr.AtOffset(err, at)
	}

	return vm.ip >= len(vm.program), nil
}

// GetCurrentFrame returns the innermost frame
func (vm *VM) GetCurrentFrame() *Frame {
	return vm.frames.Current()
}

// CallDepth returns the number of active calls above the root frame
func (vm *VM) CallDepth() int {
	return vm.frames.Depth()
}

// GetTop returns the value fromBack positions below the top of the current frame
func (vm *VM) GetTop(fromBack int) value.Value {
	return vm.frames.Current().Peek(fromBack)
}

// Pop removes amount values from the current frame and returns the topmost one
func (vm *VM) Pop(amount int) value.Value {
	if amount < 1 {
		amount = 1
	}

	f := vm.frames.Current()
	top := f.Peek(0)
	f.PopN(amount)

	return top
}
