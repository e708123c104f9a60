// Package lexer provides the character scanner used by the compiler. Tokens are
// recognised by allow-lists of bytes rather than by a fixed token grammar.
package lexer

import "strings"

const (
	IdentStart     = "_abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	IdentContinue  = IdentStart + Digits
	Digits         = "0123456789"
	NumberStart    = "-" + Digits
	NumberContinue = Digits + "."
)

// DefaultMaxScan bounds the number of Done checks per loaded input.
const DefaultMaxScan = 1_000_000

type Lexer struct {
	input     string // input string to be scanned
	length    int    // length of the input string
	position  int    // current position in the input string
	line      int    // current line number for error reporting
	column    int    // current column number for error reporting
	maxScan   int    // Done checks allowed per Load (0 = unlimited)
	scans     int    // Done checks since the last Load
	exhausted bool   // scan guard tripped
}

type Option func(*Lexer)

// WithMaxScan sets the scan guard. Zero disables it.
func WithMaxScan(n int) Option {
	return func(l *Lexer) { l.maxScan = n }
}

// Create a new lexer instance
func NewLexer(s string, opts ...Option) *Lexer {
	l := &Lexer{maxScan: DefaultMaxScan}
	for _, o := range opts {
		o(l)
	}

	l.Load(s)
	return l
}

// Load replaces the input and rewinds to its first byte
func (l *Lexer) Load(s string) {
	l.input = s
	l.length = len(s)
	l.position = 0
	l.line = 1
	l.column = 1
	l.scans = 0
	l.exhausted = false
}

// Peek returns the current byte, or 0 at the end of the input
func (l *Lexer) Peek() byte {
	if l.position >= l.length {
		return 0
	}

	return l.input[l.position]
}

// Advance consumes the current byte and returns the next one
func (l *Lexer) Advance() byte {
	if l.position >= l.length {
		return 0
	}

	if l.input[l.position] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.position++
	return l.Peek()
}

// SkipWhitespace advances past control characters and spaces and returns the
// first byte after them
func (l *Lexer) SkipWhitespace() byte {
	for l.position < l.length && l.input[l.position] <= ' ' {
		l.Advance()
	}

	return l.Peek()
}

// Done reports whether scanning must stop, either because the input is
// consumed or because the scan guard tripped. Every call counts against the guard.
func (l *Lexer) Done() bool {
	l.scans++
	if l.maxScan > 0 && l.scans > l.maxScan {
		l.exhausted = true
	}

	return l.exhausted || l.position >= l.length
}

// Exhausted reports whether Done stopped because of the scan guard
func (l *Lexer) Exhausted() bool {
	return l.exhausted
}

// NextToken skips whitespace and reads a run of bytes that starts with a byte
// from startSet and continues with bytes from continueSet. The start byte need
// not be in continueSet, so "-" opens a number but can't repeat inside one.
func (l *Lexer) NextToken(startSet, continueSet string) (string, bool) {
	ch := l.SkipWhitespace()
	if l.Done() || strings.IndexByte(startSet, ch) < 0 {
		return "", false
	}

	start := l.position
	l.Advance()
	for !l.Done() && strings.IndexByte(continueSet, l.Peek()) >= 0 {
		l.Advance()
	}

	return l.input[start:l.position], true
}

// Line returns the current line number
func (l *Lexer) Line() int {
	return l.line
}

// Position returns the current position of the lexer
func (l *Lexer) Position() Position {
	return NewPosition(l.line, l.column, l.position)
}
