// Package compiler translates source text into a bytecode.Program with a
// single-pass recursive descent over the lexer.
package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"joy/pkg/bytecode"
	"joy/pkg/joyerr"
	"joy/pkg/lexer"
	"joy/pkg/value"
)

// Keywords are reserved and can't be used as identifiers.
var Keywords = []string{
	"if", "then", "else", "elseif", "end", "function", "goto", "for", "while", "do", "until",
}

type Compiler struct {
	lexer   *lexer.Lexer     // scanner over the current source
	program bytecode.Program // program under construction
	maxScan int              // scan guard handed to the lexer
	logger  *log.Logger
}

type Option func(*Compiler)

// WithMaxScan sets the lexer scan guard. Zero disables it.
func WithMaxScan(n int) Option {
	return func(c *Compiler) { c.maxScan = n }
}

// WithLogger sets the logger used for debug output
func WithLogger(l *log.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New creates a new Compiler instance
func New(opts ...Option) *Compiler {
	c := &Compiler{maxScan: lexer.DefaultMaxScan}
	for _, o := range opts {
		o(c)
	}

	if c.logger == nil {
		c.logger = log.Default()
	}

	c.lexer = lexer.NewLexer("", lexer.WithMaxScan(c.maxScan))
	return c
}

// Compile translates text with a default compiler
func Compile(text string) (bytecode.Program, error) {
	return New().Compile(text)
}

// Compile translates text into a program. On error no program is returned.
func (c *Compiler) Compile(text string) (bytecode.Program, error) {
	c.lexer.Load(text)
	c.program = bytecode.Program{}

	if _, err := c.compileBlock(nil); err != nil {
		return nil, err
	}

	program := c.program
	c.program = nil

	c.logger.Debug("Compiled", "size", len(program), "lines", c.lexer.Line())
	return program, nil
}

// compileBlock compiles statements until the input ends or one of the
// terminators is read, and returns the terminator. Compile passes none;
// terminators are for block constructs such as if ... end.
func (c *Compiler) compileBlock(terminators []string) (string, error) {
	c.logger.Debug("Compile block", "until", strings.Join(terminators, "|"))

	for {
		ch := c.lexer.SkipWhitespace()
		if c.lexer.Done() {
			if c.lexer.Exhausted() || len(terminators) > 0 {
				return "", c.errorf("Unexpected block termination, expected: %s", strings.Join(terminators, " | "))
			}

			c.logger.Debug("Block terminated", "line", c.lexer.Line())
			return "", nil
		}

		identifier, ok := c.lexer.NextToken(lexer.IdentStart, lexer.IdentContinue)
		if !ok {
			return "", c.errorf("Unexpected character %q, expected a statement", ch)
		}

		if slices.Contains(terminators, identifier) {
			return identifier, nil
		}
		if isKeyword(identifier) {
			return "", c.errorf("Unexpected keyword %s", identifier)
		}

		c.logger.Debug("Statement", "identifier", identifier, "line", c.lexer.Line())
		if err := c.compileStatement(identifier); err != nil {
			return "", err
		}
	}
}

// compileStatement compiles an assignment or a call to identifier.
func (c *Compiler) compileStatement(identifier string) error {
	switch ch := c.lexer.SkipWhitespace(); ch {
	case '=':
		c.lexer.Advance()
		if err := c.compileExpression(); err != nil {
			return err
		}
		c.program.Emit(value.OpStoreGlobalKeyLiteral, value.String(identifier))

	case '(':
		c.lexer.Advance()
		argc, err := c.compileArguments()
		if err != nil {
			return err
		}
		c.program.Emit(value.OpLoadGlobalKeyLiteral, value.String(identifier))
		c.program.Emit(value.OpPushValueLiteral, value.Int(int32(argc)))
		c.program.Emit(value.OpCall)

	default:
		if c.lexer.Done() {
			return c.errorf("Unexpected end of input after %s", identifier)
		}
		return c.errorf("Unexpected character %q after %s", ch, identifier)
	}

	return nil
}

// compileArguments compiles a comma separated expression list up to and
// including the closing parenthesis.
func (c *Compiler) compileArguments() (int, error) {
	if c.lexer.SkipWhitespace() == ')' {
		c.lexer.Advance()
		return 0, nil
	}

	argc := 0
	for {
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		argc++

		switch ch := c.lexer.SkipWhitespace(); ch {
		case ',':
			c.lexer.Advance()
		case ')':
			c.lexer.Advance()
			return argc, nil
		default:
			if c.lexer.Done() {
				return 0, c.errorf("Unexpected end of input, expected )")
			}
			return 0, c.errorf("Unexpected character %q, expected , or )", ch)
		}
	}
}

func (c *Compiler) compileExpression() error {
	ch := c.lexer.SkipWhitespace()
	if c.lexer.Done() {
		return c.errorf("Unexpected end of expression")
	}

	switch {
	case ch == '"':
		s, err := c.readString()
		if err != nil {
			return err
		}
		c.program.Emit(value.OpPushValueLiteral, value.String(s))

	case ch == '(':
		c.lexer.Advance()
		if err := c.compileExpression(); err != nil {
			return err
		}
		if c.lexer.SkipWhitespace() != ')' {
			return c.errorf("Expected )")
		}
		c.lexer.Advance()

	case ch == ')':
		return c.errorf("Unexpected )")

	case strings.IndexByte(lexer.NumberStart, ch) >= 0:
		v, err := c.readNumber()
		if err != nil {
			return err
		}
		c.program.Emit(value.OpPushValueLiteral, v)

	default:
		token, ok := c.lexer.NextToken(lexer.IdentStart, lexer.IdentContinue)
		if !ok {
			return c.errorf("Expected identifier, got %q", ch)
		}

		switch {
		case token == "true":
			c.program.Emit(value.OpPushValueLiteral, value.True)
		case token == "false":
			c.program.Emit(value.OpPushValueLiteral, value.False)
		case token == "nil":
			c.program.Emit(value.OpPushValueLiteral, value.Nil)
		case isKeyword(token):
			return c.errorf("Unexpected keyword %s", token)
		default:
			c.program.Emit(value.OpLoadGlobalKeyLiteral, value.String(token))
		}
	}

	return nil
}

func (c *Compiler) readNumber() (value.Value, error) {
	text, _ := c.lexer.NextToken(lexer.NumberStart, lexer.NumberContinue)

	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return value.Nil, c.errorf("Invalid number %s", text)
		}
		return value.Float(float32(f)), nil
	}

	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return value.Nil, c.errorf("Invalid number %s", text)
	}

	return value.Int(int32(n)), nil
}

// readString reads a string literal starting at the opening quote.
func (c *Compiler) readString() (string, error) {
	var sb strings.Builder

	for {
		ch := c.lexer.Advance()
		if c.lexer.Done() {
			return "", c.errorf("Unterminated string sequence")
		}

		switch ch {
		case '"':
			c.lexer.Advance()
			return sb.String(), nil

		case '\\':
			esc := c.lexer.Advance()
			if c.lexer.Done() {
				return "", c.errorf("Unterminated string sequence")
			}

			switch esc {
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}

		default:
			sb.WriteByte(ch)
		}
	}
}

func (c *Compiler) errorf(format string, args ...any) error {
	pos := c.lexer.Position()
	if c.lexer.Exhausted() {
		return joyerr.SyntaxAt(pos.Line, pos.Column, "Scan limit exceeded at offset %d", pos.Offset)
	}

	return joyerr.SyntaxAt(pos.Line, pos.Column, format, args...)
}

func isKeyword(s string) bool {
	return slices.Contains(Keywords, s)
}
