package vm

import "fmt"

// ObjectKind discriminates the object shapes the frame core works with.
// Property semantics beyond simple named slots live outside this package.
type ObjectKind uint8

const (
	KindPlain ObjectKind = iota
	KindFunction       // Compiled function, carries a *CodeBlock
	KindNative         // Host function implemented in Go
	KindPromise        // Carries a *Promise
	KindGenerator      // Carries a *GeneratorObject
	KindAsyncGenerator // Carries a *GeneratorObject
)

// NativeFn is the signature of host functions callable from bytecode.
type NativeFn func(vm *VM, this Value, args []Value) (Value, error)

// Object is the heap-allocated object representation.
type Object struct {
	kind  ObjectKind
	name  string
	props map[string]Value

	code      *CodeBlock       // KindFunction
	native    NativeFn         // KindNative
	promise   *Promise         // KindPromise
	generator *GeneratorObject // KindGenerator / KindAsyncGenerator
}

// NewPlainObject creates an ordinary object.
func NewPlainObject() *Object {
	return &Object{kind: KindPlain}
}

// NewFunctionObject creates a callable object backed by compiled code.
func NewFunctionObject(code *CodeBlock) *Object {
	if code == nil {
		panic("Cannot create function object with a nil CodeBlock")
	}
	return &Object{kind: KindFunction, name: code.Name, code: code}
}

// NewNativeFunction creates a callable object backed by a Go function.
func NewNativeFunction(name string, fn NativeFn) *Object {
	if fn == nil {
		panic("Cannot create native function with a nil implementation")
	}
	return &Object{kind: KindNative, name: name, native: fn}
}

func (o *Object) Kind() ObjectKind { return o.kind }
func (o *Object) Name() string     { return o.name }

// Callable reports whether the object can be invoked as a function.
func (o *Object) Callable() bool {
	return o.kind == KindFunction || o.kind == KindNative
}

// Code returns the compiled code of a function object, or nil.
func (o *Object) Code() *CodeBlock { return o.code }

// Promise returns the promise payload, or nil for non-promise objects.
func (o *Object) Promise() *Promise { return o.promise }

// Generator returns the generator payload, or nil for non-generator objects.
func (o *Object) Generator() *GeneratorObject { return o.generator }

// Get looks up a named slot on the object.
func (o *Object) Get(name string) (Value, bool) {
	if o.props == nil {
		return Undefined(), false
	}
	v, ok := o.props[name]
	return v, ok
}

// Set writes a named slot on the object.
func (o *Object) Set(name string, value Value) {
	if o.props == nil {
		o.props = make(map[string]Value)
	}
	o.props[name] = value
}

// Inspect returns a debug representation of the object.
func (o *Object) Inspect() string {
	switch o.kind {
	case KindFunction:
		return fmt.Sprintf("<function %s>", o.name)
	case KindNative:
		return fmt.Sprintf("<native %s>", o.name)
	case KindPromise:
		return fmt.Sprintf("<promise %s>", o.promise.Status)
	case KindGenerator:
		return fmt.Sprintf("<generator %s>", o.name)
	case KindAsyncGenerator:
		return fmt.Sprintf("<async generator %s>", o.name)
	default:
		return "<object>"
	}
}
