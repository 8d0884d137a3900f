package vm

// Registers is a frame's register window: a borrowed view into the shared
// value stack covering [rp, rp+K). Like any stack view it must be re-derived
// after an operation that can grow the stack.
type Registers struct {
	slots []Value
}

// Get reads register i. Register indices are fixed at compile time, so an
// out-of-range index is an engine bug, not a script error.
func (r *Registers) Get(i uint32) Value {
	if int(i) >= len(r.slots) {
		panic("register read out of range")
	}
	return r.slots[i]
}

// Set writes register i.
func (r *Registers) Set(i uint32, v Value) {
	if int(i) >= len(r.slots) {
		panic("register write out of range")
	}
	r.slots[i] = v
}

// Len returns the window size.
func (r *Registers) Len() int {
	return len(r.slots)
}
