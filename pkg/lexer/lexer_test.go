package lexer_test

import (
	"testing"

	"joy/pkg/lexer"
)

func TestNextToken(t *testing.T) {
	l := lexer.NewLexer("  print(x1)\n\tvalue = -12.5 _tmp")

	tests := []struct {
		start, cont string
		want        string
		ok          bool
	}{
		{lexer.IdentStart, lexer.IdentContinue, "print", true},
		{lexer.IdentStart, lexer.IdentContinue, "", false}, // '('
	}

	for i, tt := range tests {
		got, ok := l.NextToken(tt.start, tt.cont)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Token %d: expected (%q, %v), got (%q, %v)", i, tt.want, tt.ok, got, ok)
		}
	}

	if ch := l.Peek(); ch != '(' {
		t.Fatalf("expected a failed match not to consume input, at %q", ch)
	}
	l.Advance()

	if got, _ := l.NextToken(lexer.IdentStart, lexer.IdentContinue); got != "x1" {
		t.Errorf("expected x1, got %q", got)
	}
	l.Advance()

	if got, _ := l.NextToken(lexer.IdentStart, lexer.IdentContinue); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if ch := l.SkipWhitespace(); ch != '=' {
		t.Errorf("expected '=', got %q", ch)
	}
	l.Advance()

	if got, _ := l.NextToken(lexer.NumberStart, lexer.NumberContinue); got != "-12.5" {
		t.Errorf("expected -12.5, got %q", got)
	}
	if got, _ := l.NextToken(lexer.IdentStart, lexer.IdentContinue); got != "_tmp" {
		t.Errorf("expected _tmp, got %q", got)
	}
	if got, ok := l.NextToken(lexer.IdentStart, lexer.IdentContinue); ok {
		t.Errorf("expected no token at the end, got %q", got)
	}
	if !l.Done() || l.Exhausted() {
		t.Errorf("expected the input to be consumed without tripping the guard")
	}
}

func TestPositions(t *testing.T) {
	l := lexer.NewLexer("ab\ncd\n\n  ef")

	tests := []struct {
		want lexer.Position
	}{
		{lexer.NewPosition(1, 1, 0)},
		{lexer.NewPosition(2, 1, 3)},
		{lexer.NewPosition(4, 3, 9)},
	}

	for i, tt := range tests {
		got := l.Position()
		if got != tt.want {
			t.Errorf("Position %d: expected %s, got %s", i, tt.want, got)
		}
		l.NextToken(lexer.IdentStart, lexer.IdentContinue)
		l.SkipWhitespace()
	}

	if l.Line() != 4 {
		t.Errorf("expected line 4, got %d", l.Line())
	}
}

func TestPeekAndAdvance(t *testing.T) {
	l := lexer.NewLexer("a\nb")

	if l.Peek() != 'a' {
		t.Errorf("expected 'a', got %q", l.Peek())
	}
	if ch := l.Advance(); ch != '\n' {
		t.Errorf("expected newline, got %q", ch)
	}
	if ch := l.Advance(); ch != 'b' || l.Line() != 2 {
		t.Errorf("expected 'b' on line 2, got %q on line %d", ch, l.Line())
	}
	if ch := l.Advance(); ch != 0 {
		t.Errorf("expected the 0 sentinel at the end, got %q", ch)
	}
	if ch := l.Advance(); ch != 0 {
		t.Errorf("expected Advance past the end to stay at 0, got %q", ch)
	}
}

func TestLoadResets(t *testing.T) {
	l := lexer.NewLexer("one\ntwo")
	l.NextToken(lexer.IdentStart, lexer.IdentContinue)
	l.NextToken(lexer.IdentStart, lexer.IdentContinue)

	l.Load("three")
	if l.Position() != lexer.NewPosition(1, 1, 0) {
		t.Errorf("expected a rewound position, got %s", l.Position())
	}
	if got, _ := l.NextToken(lexer.IdentStart, lexer.IdentContinue); got != "three" {
		t.Errorf("expected three, got %q", got)
	}
}

func TestScanGuard(t *testing.T) {
	l := lexer.NewLexer("aaaaaaaaaaaaaaaaaaaa", lexer.WithMaxScan(5))

	got, ok := l.NextToken(lexer.IdentStart, lexer.IdentContinue)
	if !ok || len(got) >= 20 {
		t.Errorf("expected a truncated token, got %q (%v)", got, ok)
	}
	if !l.Done() || !l.Exhausted() {
		t.Errorf("expected the guard to report exhaustion")
	}

	l.Load("aaaa")
	if l.Exhausted() {
		t.Errorf("expected Load to reset the guard")
	}

	unlimited := lexer.NewLexer("", lexer.WithMaxScan(0))
	for i := 0; i < 2*lexer.DefaultMaxScan; i++ {
		unlimited.Done()
	}
	if unlimited.Exhausted() {
		t.Errorf("expected a zero guard to be disabled")
	}
}

func TestStartByteOutsideContinueSet(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"-", "-", true},
		{"-7", "-7", true},
		{"--7", "-", true},
		{"7-3", "7", true},
		{".5", "", false},
	}

	for _, tt := range tests {
		l := lexer.NewLexer(tt.input)
		got, ok := l.NextToken(lexer.NumberStart, lexer.NumberContinue)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%q: expected (%q, %v), got (%q, %v)", tt.input, tt.want, tt.ok, got, ok)
		}
	}
}
