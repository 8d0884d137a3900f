package vm

import "sync/atomic"

var realmIDCounter atomic.Int64

// Realm represents an isolated execution environment: a global object, its
// intrinsics, and the heap of global slots. Frames carry their realm as an
// opaque reference; this core never interprets it beyond identity and the
// heap handle.
type Realm struct {
	// Identity
	id int64

	// Global environment
	GlobalObject *Object
	Heap         *Heap

	// Built-in prototypes
	ObjectPrototype         Value
	FunctionPrototype       Value
	GeneratorPrototype      Value
	AsyncGeneratorPrototype Value
	PromisePrototype        Value
}

// NewRealm creates a realm with fresh intrinsics and an empty heap.
func NewRealm() *Realm {
	r := &Realm{
		id:           realmIDCounter.Add(1),
		GlobalObject: NewPlainObject(),
		Heap:         NewHeap(16),
	}
	r.ObjectPrototype = ObjectValue(NewPlainObject())
	r.FunctionPrototype = ObjectValue(NewPlainObject())
	r.GeneratorPrototype = ObjectValue(NewPlainObject())
	r.AsyncGeneratorPrototype = ObjectValue(NewPlainObject())
	r.PromisePrototype = ObjectValue(NewPlainObject())
	return r
}

// ID returns the unique realm identifier.
func (r *Realm) ID() int64 {
	return r.id
}
