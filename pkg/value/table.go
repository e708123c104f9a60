package value

import "joy/pkg/joyerr"

// Table is the only mutable aggregate. Values of kind Table share one *Table,
// so writes through any copy are visible through all of them.
type Table struct {
	entries map[Value]Value
}

// NewTable creates a Value holding a fresh, empty table.
func NewTable() Value {
	return Value{kind: KindTable, tbl: &Table{entries: make(map[Value]Value)}}
}

// Get returns the value stored under key, or Nil.
func (t *Table) Get(key Value) Value {
	if v, ok := t.entries[key.Resolve()]; ok {
		return v
	}

	return Nil
}

// Set stores val under key. Storing Nil removes the key.
func (t *Table) Set(key, val Value) {
	key = key.Resolve()
	if val.IsNil() {
		delete(t.entries, key)
		return
	}

	t.entries[key] = val
}

// Len returns the number of keys with a non-nil value.
func (t *Table) Len() int {
	return len(t.entries)
}

// Range calls fn for each entry until fn returns false. Order is unspecified.
func (t *Table) Range(fn func(key, val Value) bool) {
	for k, v := range t.entries {
		if !fn(k, v) {
			return
		}
	}
}

// GetValue reads key from the table held by v.
func (v Value) GetValue(key Value) (Value, error) {
	t := v.Resolve()
	if t.kind != KindTable {
		return Nil, joyerr.ValueAccess.New("Value is %s, expected %s", t.kind, KindTable)
	}

	return t.tbl.Get(key), nil
}

// SetValue writes key into the table held by v.
func (v Value) SetValue(key, val Value) error {
	t := v.Resolve()
	if t.kind != KindTable {
		return joyerr.ValueAccess.New("Value is %s, expected %s", t.kind, KindTable)
	}

	t.tbl.Set(key, val)
	return nil
}
