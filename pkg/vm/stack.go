package vm

// ValueStack is the single shared execution stack. Every frame's prologue,
// arguments, and register window live in it; frames address their slots
// relative to their register pointer. Only one frame executes at a time, so
// the stack never has concurrent writers.
type ValueStack struct {
	values []Value
}

// Len returns the current number of live slots.
func (s *ValueStack) Len() int {
	return len(s.values)
}

// Get reads the slot at the given index.
func (s *ValueStack) Get(index int) Value {
	if index < 0 || index >= len(s.values) {
		panic("value stack read out of bounds")
	}
	return s.values[index]
}

// Set writes the slot at the given index.
func (s *ValueStack) Set(index int, v Value) {
	if index < 0 || index >= len(s.values) {
		panic("value stack write out of bounds")
	}
	s.values[index] = v
}

// Push appends a value on top of the stack.
func (s *ValueStack) Push(v Value) {
	s.values = append(s.values, v)
}

// Grow appends n undefined slots, returning the index of the first one.
func (s *ValueStack) Grow(n int) int {
	base := len(s.values)
	for i := 0; i < n; i++ {
		s.values = append(s.values, Undefined())
	}
	return base
}

// Truncate discards every slot at or above length.
func (s *ValueStack) Truncate(length int) {
	if length < 0 || length > len(s.values) {
		panic("value stack truncated out of bounds")
	}
	s.values = s.values[:length]
}

// Slice returns a borrowed view of [lo, hi). The view is invalidated by any
// operation that can grow the stack; callers must not retain it across one.
func (s *ValueStack) Slice(lo, hi int) []Value {
	if lo < 0 || hi < lo || hi > len(s.values) {
		panic("value stack slice out of bounds")
	}
	return s.values[lo:hi]
}
