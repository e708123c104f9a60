package stack

// Stack is a LIFO collection. Popping or peeking an empty stack yields the zero value.
type Stack[T any] struct {
	a []T
}

// NewStack creates a new stack instance
func NewStack[T any](elm ...T) *Stack[T] {
	stack := Stack[T]{
		a: make([]T, 0, len(elm)),
	}

	stack.a = append(stack.a, elm...)
	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() T {
	var zero T
	if len(s.a) < 1 {
		return zero
	}

	l := len(s.a) - 1
	elm := s.a[l]
	s.a[l] = zero
	s.a = s.a[:l]

	return elm
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() T {
	return s.PeekAt(0)
}

// PeekAt returns the element fromBack positions below the top
func (s *Stack[T]) PeekAt(fromBack int) T {
	var zero T
	idx := len(s.a) - 1 - fromBack
	if fromBack < 0 || idx < 0 {
		return zero
	}

	return s.a[idx]
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Array returns the underlying array of the stack, bottom first
func (s *Stack[T]) Array() []T {
	return s.a
}
