package value

import "fmt"

// OpCode is a VM instruction. Programs are flat Value sequences in which every
// OpCode is followed by its inline operands.
type OpCode byte

const (
	// Markers and stack manipulation (0x00-0x0F)
	OpNOP              OpCode = 0x00 // No operation
	OpLabel            OpCode = 0x01 // Marker, no runtime effect
	OpPop              OpCode = 0x02 // Discard top of stack
	OpPushValueLiteral OpCode = 0x03 // Push inline operand: OpPushValueLiteral <value>
	OpPushValue        OpCode = 0x04 // Push copy of register: OpPushValue <reg>
	OpDuplicateTop     OpCode = 0x05 // Push copy of top of stack
	OpStoreRegister    OpCode = 0x06 // Pop into register: OpStoreRegister <reg>
	OpPushReference    OpCode = 0x07 // Push a Reference to a register: OpPushReference <reg>
	OpNewTable         OpCode = 0x08 // Push a fresh empty table

	// Table access (0x10-0x1F), the table stays on the stack
	OpLoadTableKey         OpCode = 0x10 // table key -> table value
	OpStoreTableKey        OpCode = 0x11 // table key value -> table
	OpLoadTableKeyLiteral  OpCode = 0x12 // table -> table value: OpLoadTableKeyLiteral <key>
	OpStoreTableKeyLiteral OpCode = 0x13 // table value -> table: OpStoreTableKeyLiteral <key>
	OpStoreTableKVLiteral  OpCode = 0x14 // table -> table: OpStoreTableKVLiteral <key> <value>

	// Global table access (0x20-0x2F)
	OpLoadGlobalKey         OpCode = 0x20 // key -> value
	OpStoreGlobalKey        OpCode = 0x21 // key value ->
	OpLoadGlobalKeyLiteral  OpCode = 0x22 // -> value: OpLoadGlobalKeyLiteral <key>
	OpStoreGlobalKeyLiteral OpCode = 0x23 // value ->: OpStoreGlobalKeyLiteral <key>
	OpStoreGlobalKVLiteral  OpCode = 0x24 // OpStoreGlobalKVLiteral <key> <value>

	// Control flow (0x30-0x3F)
	OpJump       OpCode = 0x30 // OpJump <addr>
	OpJumpIf     OpCode = 0x31 // Pop condition, jump if truthy: OpJumpIf <addr>
	OpCall       OpCode = 0x32 // args... callee argc -> results...
	OpCallMethod OpCode = 0x33 // args... name receiver argc -> results...
	OpReturn     OpCode = 0x34 // values... count -> (in caller) values...

	// Arithmetic (0x40-0x4F)
	OpAdd OpCode = 0x40
	OpSub OpCode = 0x41
	OpNeg OpCode = 0x42
	OpMul OpCode = 0x43
	OpDiv OpCode = 0x44
	OpMod OpCode = 0x45
	OpInc OpCode = 0x46
	OpDec OpCode = 0x47

	// Relations (0x50-0x5F)
	OpEqual            OpCode = 0x50
	OpLowerThan        OpCode = 0x51
	OpLowerEqualThan   OpCode = 0x52
	OpGreaterThan      OpCode = 0x53
	OpGreaterEqualThan OpCode = 0x54
)

// OpCodeInfo describes an opcode for validation and disassembly.
type OpCodeInfo struct {
	Name     string // Human-readable name
	Operands int    // Number of inline operand Values following the opcode
	Pop      int    // Values the opcode needs on the stack (-1 = variable)
}

var opCodeInfoTable = map[OpCode]OpCodeInfo{
	OpNOP:              {"NOP", 0, 0},
	OpLabel:            {"Label", 0, 0},
	OpPop:              {"Pop", 0, 1},
	OpPushValueLiteral: {"PushValueLiteral", 1, 0},
	OpPushValue:        {"PushValue", 1, 0},
	OpDuplicateTop:     {"DuplicateTop", 0, 1},
	OpStoreRegister:    {"StoreRegister", 1, 1},
	OpPushReference:    {"PushReference", 1, 0},
	OpNewTable:         {"NewTable", 0, 0},

	OpLoadTableKey:         {"LoadTableKey", 0, 2},
	OpStoreTableKey:        {"StoreTableKey", 0, 3},
	OpLoadTableKeyLiteral:  {"LoadTableKeyLiteral", 1, 1},
	OpStoreTableKeyLiteral: {"StoreTableKeyLiteral", 1, 2},
	OpStoreTableKVLiteral:  {"StoreTableKVLiteral", 2, 1},

	OpLoadGlobalKey:         {"LoadGlobalKey", 0, 1},
	OpStoreGlobalKey:        {"StoreGlobalKey", 0, 2},
	OpLoadGlobalKeyLiteral:  {"LoadGlobalKeyLiteral", 1, 0},
	OpStoreGlobalKeyLiteral: {"StoreGlobalKeyLiteral", 1, 1},
	OpStoreGlobalKVLiteral:  {"StoreGlobalKVLiteral", 2, 0},

	OpJump:       {"Jump", 1, 0},
	OpJumpIf:     {"JumpIf", 1, 1},
	OpCall:       {"Call", 0, -1},
	OpCallMethod: {"CallMethod", 0, -1},
	OpReturn:     {"Return", 0, -1},

	OpAdd: {"Add", 0, 2},
	OpSub: {"Sub", 0, 2},
	OpNeg: {"Neg", 0, 1},
	OpMul: {"Mul", 0, 2},
	OpDiv: {"Div", 0, 2},
	OpMod: {"Mod", 0, 2},
	OpInc: {"Inc", 0, 1},
	OpDec: {"Dec", 0, 1},

	OpEqual:            {"Equal", 0, 2},
	OpLowerThan:        {"LowerThan", 0, 2},
	OpLowerEqualThan:   {"LowerEqualThan", 0, 2},
	OpGreaterThan:      {"GreaterThan", 0, 2},
	OpGreaterEqualThan: {"GreaterEqualThan", 0, 2},
}

// Info returns the metadata of an opcode and whether the opcode is defined.
func (op OpCode) Info() (OpCodeInfo, bool) {
	info, ok := opCodeInfoTable[op]
	if !ok {
		return OpCodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}, false
	}

	return info, true
}

// String returns the human-readable name of an opcode.
func (op OpCode) String() string {
	info, _ := op.Info()
	return info.Name
}

// Operands returns the number of inline operands of an opcode.
func (op OpCode) Operands() int {
	info, _ := op.Info()
	return info.Operands
}

// OpCodes returns every defined opcode.
func OpCodes() []OpCode {
	ops := make([]OpCode, 0, len(opCodeInfoTable))
	for op := range opCodeInfoTable {
		ops = append(ops, op)
	}

	return ops
}
