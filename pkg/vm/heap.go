package vm

import "fmt"

// Heap is the realm-owned global variable table. Frames reach globals
// through small integer handles rather than raw references, so the table is
// the single externally-owned root the frame core needs to know about.
type Heap struct {
	values []Value // The actual global values
	size   int     // Current size of the heap
	// optional name -> index map to enable lookup by name
	nameToIndex map[string]int
}

// NewHeap creates a new heap with the specified initial capacity.
func NewHeap(initialCapacity int) *Heap {
	return &Heap{
		values: make([]Value, initialCapacity),
		size:   0,
	}
}

// Size returns the number of live global slots.
func (h *Heap) Size() int {
	return h.size
}

// Resize ensures the heap can accommodate at least the specified size.
func (h *Heap) Resize(newSize int) {
	if newSize > len(h.values) {
		// Grow the slice, preserving existing values
		newValues := make([]Value, newSize)
		copy(newValues, h.values)
		for i := len(h.values); i < newSize; i++ {
			newValues[i] = Undefined()
		}
		h.values = newValues
	}
	if newSize > h.size {
		h.size = newSize
	}
}

// Get retrieves a value from the heap at the specified index.
func (h *Heap) Get(index int) (Value, bool) {
	if index < 0 || index >= h.size {
		return Undefined(), false
	}
	return h.values[index], true
}

// Set stores a value in the heap at the specified index.
func (h *Heap) Set(index int, value Value) error {
	if index < 0 {
		return fmt.Errorf("heap index cannot be negative: %d", index)
	}

	// Auto-resize if needed
	if index >= len(h.values) {
		h.Resize(index + 1)
	}
	if index >= h.size {
		h.size = index + 1
	}

	h.values[index] = value
	return nil
}

// Define allocates a named global slot and returns its handle. Defining a
// name twice returns the existing handle.
func (h *Heap) Define(name string, value Value) int {
	if h.nameToIndex == nil {
		h.nameToIndex = make(map[string]int)
	}
	if idx, ok := h.nameToIndex[name]; ok {
		h.values[idx] = value
		return idx
	}
	idx := h.size
	h.Resize(idx + 1)
	h.values[idx] = value
	h.nameToIndex[name] = idx
	return idx
}

// Lookup resolves a named global slot to its handle.
func (h *Heap) Lookup(name string) (int, bool) {
	idx, ok := h.nameToIndex[name]
	return idx, ok
}

// Trace visits every live global value.
func (h *Heap) Trace(visit func(Value)) {
	for i := 0; i < h.size; i++ {
		visit(h.values[i])
	}
}
