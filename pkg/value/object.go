package value

import "joy/pkg/joyerr"

type methodKey struct {
	name  string
	arity int
}

// Object wraps a host handle together with the methods a program may call on it.
type Object struct {
	handle  any
	methods map[methodKey]*Native
}

// NewObject creates an Object value. Methods are dispatched by name and arity;
// a Variadic method matches any argument count not claimed by a fixed one.
func NewObject(handle any, methods ...*Native) Value {
	obj := &Object{handle: handle, methods: make(map[methodKey]*Native, len(methods))}
	for _, m := range methods {
		obj.methods[methodKey{m.name, m.arity}] = m
	}

	return Value{kind: KindObject, obj: obj}
}

// Handle returns the wrapped host value.
func (o *Object) Handle() any {
	return o.handle
}

// Method looks up the method called name that accepts argc arguments.
func (o *Object) Method(name string, argc int) (*Native, bool) {
	if m, ok := o.methods[methodKey{name, argc}]; ok {
		return m, true
	}

	m, ok := o.methods[methodKey{name, Variadic}]
	return m, ok
}

// CallMethod invokes the method called name with args.
func (o *Object) CallMethod(name string, args []Value) ([]Value, error) {
	m, ok := o.Method(name, len(args))
	if !ok {
		return nil, joyerr.UndefinedMethod.New("Can't call method %s with %d arguments on %v", name, len(args), o.handle)
	}

	return m.Invoke(args)
}
