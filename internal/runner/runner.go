// Package runner drives the joy command: it reads a script or a bytecode file,
// optionally lists or writes the program, and runs it.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joomcode/errorx"

	"joy/internal/config"
	"joy/pkg/bytecode"
	"joy/pkg/color"
	"joy/pkg/compiler"
	"joy/pkg/joyerr"
	"joy/pkg/value"
	"joy/pkg/vm"
)

// BytecodeExt marks files holding an encoded program instead of source text.
const BytecodeExt = ".jbc"

type Runner struct {
	Config     *config.Config // limits and logging options
	SourceFile string         // script or bytecode file to run
	OutputFile string         // write the encoded program here instead of running it
	Listing    bool           // print the disassembled program before running
	Stdout     io.Writer      // program output
	Stderr     io.Writer      // diagnostics
}

// Run loads the input file, then either writes the encoded program or executes it.
func (r *Runner) Run() error {
	if r.Config == nil {
		r.Config = config.Default()
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}

	log.Info("Processing file", "file", r.SourceFile)

	program, err := r.load()
	if err != nil {
		return err
	}

	if r.Listing {
		r.list(program)
	}

	if r.OutputFile != "" {
		return r.write(program)
	}

	return r.execute(program)
}

func (r *Runner) load() (bytecode.Program, error) {
	input, err := os.ReadFile(r.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.SourceFile, err)
	}

	if strings.EqualFold(filepath.Ext(r.SourceFile), BytecodeExt) {
		program, err := bytecode.Unmarshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", r.SourceFile, err)
		}
		return program, nil
	}

	c := compiler.New(compiler.WithMaxScan(r.Config.Compiler.MaxScan), compiler.WithLogger(log.Default()))
	program, err := c.Compile(string(input))
	if err != nil {
		r.reportSyntax(string(input), err)
		return nil, fmt.Errorf("compilation of %s failed: %w", r.SourceFile, err)
	}

	return program, nil
}

func (r *Runner) reportSyntax(source string, err error) {
	line, _ := joyerr.Line(err)
	column, _ := joyerr.Column(err)

	message := err.Error()
	if e := errorx.Cast(err); e != nil {
		message = e.Message()
	}

	context := ""
	if lines := strings.Split(source, "\n"); line > 0 && line <= len(lines) {
		context = strings.TrimRight(lines[line-1], "\r")
	}

	fmt.Fprintln(r.Stderr, color.BrightRedText("=== Syntax Error ==="))
	fmt.Fprintln(r.Stderr, color.ErrorWithPosition(line, column, message, context))
}

// list prints one instruction per line: offset, opcode, operands.
func (r *Runner) list(program bytecode.Program) {
	fmt.Fprintln(r.Stdout, color.GreenText("=== Bytecode ==="))
	if len(program) == 0 {
		fmt.Fprintln(r.Stdout, color.GrayText("No code generated."))
		return
	}

	for _, l := range program.Lines() {
		name, operands, _ := strings.Cut(l.Text(), " ")

		fmt.Fprintf(r.Stdout, "%s  %s %s\n",
			color.CyanText(fmt.Sprintf("%04d", l.Offset)),
			color.YellowText(name),
			color.BlueText(operands))
	}
}

func (r *Runner) write(program bytecode.Program) error {
	data, err := bytecode.Marshal(program)
	if err != nil {
		return fmt.Errorf("failed to encode program: %w", err)
	}

	if err := os.WriteFile(r.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.OutputFile, err)
	}

	log.Info("Bytecode written", "file", r.OutputFile, "bytes", len(data))
	fmt.Fprintln(r.Stderr, color.Success(fmt.Sprintf("wrote %s", r.OutputFile)))

	return nil
}

func (r *Runner) execute(program bytecode.Program) error {
	opts := append(r.Config.VMOptions(), vm.WithLogger(log.Default()))
	m := vm.New(opts...)
	r.registerBuiltins(m)

	if err := m.Load(program); err != nil {
		fmt.Fprintln(r.Stderr, color.Error(err.Error()))
		return fmt.Errorf("failed to load program: %w", err)
	}

	if err := m.Execute(); err != nil {
		fmt.Fprintln(r.Stderr, color.Error(err.Error()))
		return fmt.Errorf("execution failed: %w", err)
	}

	log.Debug("Run complete", "vm", m.ID(), "steps", m.Steps())
	return nil
}

// registerBuiltins installs the host functions available to every script.
func (r *Runner) registerBuiltins(m *vm.VM) {
	m.SetGlobal("print", value.NewNative("print", value.Variadic, func(args []value.Value) ([]value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}

		_, err := fmt.Fprintln(r.Stdout, strings.Join(parts, "\t"))
		return nil, err
	}).Value())
}
