package vm

// CallFrameFlags are per-activation booleans packed into a bitset.
type CallFrameFlags uint8

const (
	// FlagExitEarly stops the outer run loop when this frame returns or
	// unwinds, leaving any remaining frames untouched. Used for bounded
	// "run until this frame completes" invocations.
	FlagExitEarly CallFrameFlags = 1 << iota

	// FlagConstruct marks a frame created through a constructor invocation.
	FlagConstruct

	// FlagRegistersPushed marks a frame whose register slots were allocated
	// before the push operation, so PushFrame must not allocate again.
	FlagRegistersPushed

	// FlagThisCached marks that the `this` value has been resolved and
	// cached in the prologue slot.
	FlagThisCached
)

// Has reports whether all bits of flag are set.
func (f CallFrameFlags) Has(flag CallFrameFlags) bool {
	return f&flag == flag
}

// RunnableKind classifies the unit of execution that originated a call.
type RunnableKind uint8

const (
	RunnableScript RunnableKind = iota
	RunnableModule
)

// ActiveRunnable identifies the script or module a frame was invoked from.
// Host-invoked frames carry none.
type ActiveRunnable struct {
	Kind RunnableKind
	Name string
}

// Stack layout constants. These are a fixed ABI shared with the bytecode
// compiler: any code generator targeting this VM computes register indices
// against them at compile time.
//
// The position of the prologue elements is relative to the register pointer:
//
//	                     Setup by the caller
//	  ┌─────────────────────────────────────────────────────────┐ ┌───── register pointer
//	  ▼                                                         ▼ ▼
//	| -(2 + N): this | -(1 + N): func | -N: arg1 | ... | -1: argN | 0: reg1 | ... | K: regK |
//	  ▲                              ▲   ▲                      ▲   ▲                     ▲
//	  └──────────────────────────────┘   └──────────────────────┘   └─────────────────────┘
//	        function prologue                    arguments             Setup by the callee
//	  ▲
//	  └─ Frame pointer
//
// The caller that set up a stack region is solely responsible for popping
// it; a callee never touches slots below its own frame pointer.
const (
	// FunctionPrologue is the number of caller-pushed slots before the
	// arguments: the `this` value and the function reference.
	FunctionPrologue uint32 = 2
	// ThisPosition is the backward offset of the `this` slot from the start
	// of the arguments.
	ThisPosition uint32 = 2
	// FunctionPosition is the backward offset of the function-reference slot
	// from the start of the arguments.
	FunctionPosition uint32 = 1
)

// Reserved register indices for async and async-generator functions. The
// compiler must not allocate ordinary locals in these slots for any function
// whose code block is async.
const (
	PromiseRegister        uint32 = 0
	ResolveRegister        uint32 = 1
	RejectRegister         uint32 = 2
	AsyncGeneratorRegister uint32 = 3

	// ReservedRegisters is the size of the reserved low register window.
	ReservedRegisters = 4
)

// CallFrame holds the state of a single function activation on the shared
// execution stack. Ordinary frames live only while their call is on the
// stack; generator and async frames are frozen on suspension and owned by
// their generator object until resumed or closed.
type CallFrame struct {
	code     *CodeBlock
	pc       uint32 // Next-instruction offset into code.Chunk.Code
	rp       uint32 // Register pointer: stack index of the first register slot
	argCount uint32 // Number of actual arguments passed at call time
	envFP    uint32 // Where this frame's lexical environments begin

	// Iterators that must be closed when an abrupt completion unwinds this
	// frame, in insertion order.
	iterators []IteratorRecord

	// The stack of bindings being updated. Plain value data, no traversal.
	bindingStack []BindingLocator

	// Per-local "has been initialized" flags, cloned from the code block's
	// template at frame creation. Length never changes afterwards.
	localsInitialized []bool

	// How many iterations a loop has done.
	loopIterationCount uint64

	// The script or module that originated this call, nil for host calls.
	activeRunnable *ActiveRunnable

	environments *EnvironmentStack
	realm        *Realm

	flags CallFrameFlags
}

// NewCallFrame creates a frame for the given code block. The frame is not
// yet associated with the execution stack: pc, rp, and argCount start at
// zero and the builder methods below may adjust it until it is pushed.
func NewCallFrame(code *CodeBlock, runnable *ActiveRunnable, environments *EnvironmentStack, realm *Realm) *CallFrame {
	return &CallFrame{
		code:              code,
		localsInitialized: code.localsTemplate(),
		activeRunnable:    runnable,
		environments:      environments,
		realm:             realm,
	}
}

// WithArgCount sets the actual-argument count. Must be called before the
// frame is pushed onto the execution stack; once the push has fixed rp, the
// layout arithmetic depends on this value staying put.
func (f *CallFrame) WithArgCount(count uint32) *CallFrame {
	f.argCount = count
	return f
}

// WithEnvFP records where this frame's lexical environments begin. Must be
// called before the frame is pushed.
func (f *CallFrame) WithEnvFP(envFP uint32) *CallFrame {
	f.envFP = envFP
	return f
}

// WithFlags replaces the frame's flags. Must be called before the frame is
// pushed.
func (f *CallFrame) WithFlags(flags CallFrameFlags) *CallFrame {
	f.flags = flags
	return f
}

// Code returns the code block of this call frame.
func (f *CallFrame) Code() *CodeBlock { return f.code }

// PC returns the next-instruction offset.
func (f *CallFrame) PC() uint32 { return f.pc }

// SetPC updates the next-instruction offset.
func (f *CallFrame) SetPC(pc uint32) { f.pc = pc }

// RP returns the register pointer.
func (f *CallFrame) RP() uint32 { return f.rp }

// SetRegisterPointer fixes the frame's register pointer. Called by the push
// operation once the frame's stack region is in place.
func (f *CallFrame) SetRegisterPointer(pointer uint32) {
	f.rp = pointer
}

// ArgCount returns the number of actual arguments passed at call time.
func (f *CallFrame) ArgCount() uint32 { return f.argCount }

// EnvFP returns the environment-stack index this frame unwinds to.
func (f *CallFrame) EnvFP() uint32 { return f.envFP }

// ActiveRunnable returns the originating script or module, or nil.
func (f *CallFrame) ActiveRunnable() *ActiveRunnable { return f.activeRunnable }

// Environments returns the lexical-environment stack of this activation.
func (f *CallFrame) Environments() *EnvironmentStack { return f.environments }

// Realm returns the realm this activation runs under.
func (f *CallFrame) Realm() *Realm { return f.realm }

// FP derives the frame pointer from rp and the argument count. It is the
// stack index of the `this` prologue slot.
//
// Precondition (here and for This/Function below): the frame's prologue has
// been pushed, i.e. rp >= argCount + FunctionPrologue. Calling layout
// accessors on a frame whose region is not on the stack yet is an engine
// bug.
func (f *CallFrame) FP() uint32 {
	if f.rp < f.argCount+FunctionPrologue {
		panic("call frame underflow: register pointer below prologue")
	}
	return f.rp - f.argCount - FunctionPrologue
}

// This reads the activation's `this` value from the shared stack.
func (f *CallFrame) This(vm *VM) Value {
	if f.rp < f.argCount+ThisPosition {
		panic("call frame underflow: register pointer below prologue")
	}
	thisIndex := f.rp - f.argCount - ThisPosition
	return vm.stack.Get(int(thisIndex))
}

// Function returns the callable object in the frame's function slot. The
// second result is false when the slot does not hold an object, which is the
// case for synthetic frames whose function slot was never populated.
func (f *CallFrame) Function(vm *VM) (*Object, bool) {
	if f.rp < f.argCount+FunctionPosition {
		panic("call frame underflow: register pointer below prologue")
	}
	functionIndex := f.rp - f.argCount - FunctionPosition
	if obj := vm.stack.Get(int(functionIndex)).AsObject(); obj != nil {
		return obj, true
	}
	return nil, false
}

// Arguments returns the actual arguments as a borrowed view of the shared
// stack. The view is invalidated by any operation that can grow the stack.
func (f *CallFrame) Arguments(vm *VM) []Value {
	rp := int(f.rp)
	argCount := int(f.argCount)
	return vm.stack.Slice(rp-argCount, rp)
}

// Argument returns the actual argument at index, or false if the call
// supplied fewer arguments.
func (f *CallFrame) Argument(index int, vm *VM) (Value, bool) {
	args := f.Arguments(vm)
	if index < 0 || index >= len(args) {
		return Undefined(), false
	}
	return args[index], true
}

// RestoreStack truncates the shared stack down to this frame's frame
// pointer, discarding its prologue, arguments, and registers. Must be called
// exactly once, when the frame is permanently retired; calling it on a
// still-live frame corrupts the stack.
func (f *CallFrame) RestoreStack(vm *VM) {
	vm.stack.Truncate(int(f.FP()))
}

// --- Flag accessors ---

// ExitEarly reports the FlagExitEarly bit.
func (f *CallFrame) ExitEarly() bool {
	return f.flags.Has(FlagExitEarly)
}

// SetExitEarly sets or clears the FlagExitEarly bit. Unlike the other flags
// this one may be toggled while the frame is live, to re-drive the same
// frame through bounded invocations.
func (f *CallFrame) SetExitEarly(exitEarly bool) {
	if exitEarly {
		f.flags |= FlagExitEarly
	} else {
		f.flags &^= FlagExitEarly
	}
}

// Construct reports whether this frame was created via constructor
// invocation.
func (f *CallFrame) Construct() bool {
	return f.flags.Has(FlagConstruct)
}

// RegistersAlreadyPushed reports whether the push operation must skip
// register allocation for this frame.
func (f *CallFrame) RegistersAlreadyPushed() bool {
	return f.flags.Has(FlagRegistersPushed)
}

// HasThisValueCached reports whether the `this` value has been resolved and
// cached in the prologue slot.
func (f *CallFrame) HasThisValueCached() bool {
	return f.flags.Has(FlagThisCached)
}

func (f *CallFrame) cacheThisValue() {
	f.flags |= FlagThisCached
}

// --- Open iterators ---

// PushIterator records an iterator that must be closed if this frame
// completes abruptly.
func (f *CallFrame) PushIterator(record IteratorRecord) {
	f.iterators = append(f.iterators, record)
}

// PopIterator removes and returns the newest open-iterator record.
func (f *CallFrame) PopIterator() (IteratorRecord, bool) {
	if len(f.iterators) == 0 {
		return IteratorRecord{}, false
	}
	rec := f.iterators[len(f.iterators)-1]
	f.iterators = f.iterators[:len(f.iterators)-1]
	return rec, true
}

// CurrentIterator returns a pointer to the newest open-iterator record.
func (f *CallFrame) CurrentIterator() (*IteratorRecord, bool) {
	if len(f.iterators) == 0 {
		return nil, false
	}
	return &f.iterators[len(f.iterators)-1], true
}

// closeIterators closes every open iterator in insertion order and empties
// the list. Called on the abrupt-completion path.
func (f *CallFrame) closeIterators(vm *VM) {
	for i := range f.iterators {
		f.iterators[i].Close(vm)
	}
	f.iterators = f.iterators[:0]
}

// --- Pending bindings ---

// PushBinding records a pending binding-update locator.
func (f *CallFrame) PushBinding(locator BindingLocator) {
	f.bindingStack = append(f.bindingStack, locator)
}

// PopBinding removes and returns the newest pending binding locator.
func (f *CallFrame) PopBinding() (BindingLocator, bool) {
	if len(f.bindingStack) == 0 {
		return BindingLocator{}, false
	}
	loc := f.bindingStack[len(f.bindingStack)-1]
	f.bindingStack = f.bindingStack[:len(f.bindingStack)-1]
	return loc, true
}

// --- Locals ---

// LocalInitialized reports whether local i has been initialized.
func (f *CallFrame) LocalInitialized(i int) bool {
	if i < 0 || i >= len(f.localsInitialized) {
		panic("local index out of range")
	}
	return f.localsInitialized[i]
}

// InitializeLocal marks local i as initialized.
func (f *CallFrame) InitializeLocal(i int) {
	if i < 0 || i >= len(f.localsInitialized) {
		panic("local index out of range")
	}
	f.localsInitialized[i] = true
}

// --- Loop bookkeeping ---

// IncrementLoopIteration counts a loop iteration and returns the new total.
func (f *CallFrame) IncrementLoopIteration() uint64 {
	f.loopIterationCount++
	return f.loopIterationCount
}

// LoopIterationCount returns the number of loop iterations this frame has
// performed.
func (f *CallFrame) LoopIterationCount() uint64 {
	return f.loopIterationCount
}

// --- Capability threading ---

// AsyncGeneratorObject returns the async-generator object stored in the
// reserved register, if this frame's function is an async generator and the
// slot holds an object.
func (f *CallFrame) AsyncGeneratorObject(registers *Registers) (*Object, bool) {
	if !f.code.IsAsyncGenerator() {
		return nil, false
	}
	if obj := registers.Get(AsyncGeneratorRegister).AsObject(); obj != nil {
		return obj, true
	}
	return nil, false
}

// PromiseCapability reads the capability triple from the reserved registers.
// It returns false unless the frame's function is async, the promise slot
// holds an object, and both resolving slots hold callable objects; a
// partially-populated triple is never returned.
func (f *CallFrame) PromiseCapability(registers *Registers) (PromiseCapability, bool) {
	if !f.code.IsAsync() {
		return PromiseCapability{}, false
	}

	promise := registers.Get(PromiseRegister).AsObject()
	if promise == nil {
		return PromiseCapability{}, false
	}
	resolve := registers.Get(ResolveRegister).AsObject()
	if resolve == nil || !resolve.Callable() {
		return PromiseCapability{}, false
	}
	reject := registers.Get(RejectRegister).AsObject()
	if reject == nil || !reject.Callable() {
		return PromiseCapability{}, false
	}

	return PromiseCapability{
		Promise: promise,
		Resolve: resolve,
		Reject:  reject,
	}, true
}

// SetPromiseCapability writes the capability triple into the reserved
// registers, or undefined placeholders if capability is nil. Only async
// functions have a promise capability; calling this on any other frame is an
// engine bug and panics, since it would clobber registers a non-async
// function uses for ordinary locals.
func (f *CallFrame) SetPromiseCapability(registers *Registers, capability *PromiseCapability) {
	if !f.code.IsAsync() {
		panic("only async functions have a promise capability")
	}

	if capability == nil {
		registers.Set(PromiseRegister, Undefined())
		registers.Set(ResolveRegister, Undefined())
		registers.Set(RejectRegister, Undefined())
		return
	}
	registers.Set(PromiseRegister, ObjectValue(capability.Promise))
	registers.Set(ResolveRegister, ObjectValue(capability.Resolve))
	registers.Set(RejectRegister, ObjectValue(capability.Reject))
}

// --- Traversal ---

// Trace visits every heap-reachable value this frame holds outside the
// shared stack: open iterator records and lexical-environment bindings.
// A suspended generator frame may be the only thing keeping these alive
// across turns of the host's task queue, so memory reclamation must walk
// them. Binding locators, the locals bitmap, counters, and flags are plain
// value data and are skipped. Register contents are traced by the owner of
// the saved register snapshot, not here, since a live frame's registers
// belong to the shared stack.
func (f *CallFrame) Trace(visit func(Value)) {
	for i := range f.iterators {
		visit(f.iterators[i].iterator)
		visit(f.iterators[i].nextMethod)
	}
	if f.environments != nil {
		f.environments.Trace(visit)
	}
}
