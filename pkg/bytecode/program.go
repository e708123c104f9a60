// Package bytecode holds the compiled program representation, its textual
// listing and its binary encoding.
package bytecode

import (
	"fmt"
	"strings"

	"joy/pkg/value"
)

// Program is a flat instruction stream: opcodes, their inline operands and,
// before loading, Label and Address markers.
type Program []value.Value

// Append adds values to the end of the program
func (p *Program) Append(values ...value.Value) {
	*p = append(*p, values...)
}

// Emit appends an instruction together with its operands
func (p *Program) Emit(op value.OpCode, operands ...value.Value) {
	p.Append(value.Op(op))
	p.Append(operands...)
}

// Line is one entry of a program listing
type Line struct {
	Offset   int           // offset of the instruction or marker
	Value    value.Value   // opcode or marker
	Operands []value.Value // inline operands
}

// Lines splits the program into instructions. Values that are neither opcodes
// nor markers are listed on their own.
func (p Program) Lines() []Line {
	var lines []Line

	for i := 0; i < len(p); {
		line := Line{Offset: i, Value: p[i]}
		i++

		if p[i-1].Kind() == value.KindOpCode {
			n := min(p[i-1].OpCode().Operands(), len(p)-i)
			line.Operands = p[i : i+n]
			i += n
		}

		lines = append(lines, line)
	}

	return lines
}

// String formats the line the way Disassemble lists it
func (l Line) String() string {
	return fmt.Sprintf("%04d  %s", l.Offset, l.Text())
}

// Text formats the instruction and its operands without the offset
func (l Line) Text() string {
	var sb strings.Builder

	switch l.Value.Kind() {
	case value.KindOpCode:
		sb.WriteString(l.Value.OpCode().String())
	case value.KindAddress:
		sb.WriteString(l.Value.AsString() + ":")
	default:
		sb.WriteString(l.Value.String())
	}

	for _, o := range l.Operands {
		sb.WriteByte(' ')
		sb.WriteString(formatOperand(o))
	}

	return sb.String()
}

func formatOperand(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return fmt.Sprintf("%q", v.AsString())
	case value.KindAddressRef:
		return "@" + v.AsString()
	}

	return v.String()
}

// Disassemble returns a listing with one instruction per line
func (p Program) Disassemble() string {
	lines := p.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}

	return strings.Join(out, "\n")
}
