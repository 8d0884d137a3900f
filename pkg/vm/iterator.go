package vm

// IteratorRecord tracks an open iterator that a frame must close if its
// execution completes abruptly. Closing honors the iterator's `[[Done]]`
// contract: a record is closed at most once, and closing invokes the
// iterator's "return" method when one is present and callable.
type IteratorRecord struct {
	iterator   Value
	nextMethod Value
	done       bool
}

// NewIteratorRecord creates an open-iterator record.
func NewIteratorRecord(iterator, nextMethod Value) IteratorRecord {
	return IteratorRecord{iterator: iterator, nextMethod: nextMethod}
}

// Iterator returns the iterator object value.
func (r *IteratorRecord) Iterator() Value { return r.iterator }

// NextMethod returns the iterator's next method value.
func (r *IteratorRecord) NextMethod() Value { return r.nextMethod }

// Done reports whether the iterator has already been closed or exhausted.
func (r *IteratorRecord) Done() bool { return r.done }

// SetDone marks the iterator as exhausted, making Close a no-op.
func (r *IteratorRecord) SetDone() { r.done = true }

// Close invokes the iterator's "return" method if the record is still live.
// Errors from the return method are swallowed: close runs on abrupt-completion
// paths where the original completion must win.
func (r *IteratorRecord) Close(vm *VM) {
	if r.done {
		return
	}
	r.done = true

	obj := r.iterator.AsObject()
	if obj == nil {
		return
	}
	ret, ok := obj.Get("return")
	if !ok || !ret.IsCallable() {
		return
	}
	_, _ = vm.Call(ret, r.iterator, nil)
}
