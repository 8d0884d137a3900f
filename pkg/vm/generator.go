package vm

// GeneratorState represents the execution state of a generator.
type GeneratorState int

const (
	GeneratorSuspendedStart GeneratorState = iota // Created, body not yet entered
	GeneratorSuspendedYield                       // Suspended at a yield expression
	GeneratorExecuting                            // Currently executing
	GeneratorCompleted                            // Completed (returned or threw)
)

// String returns a human-readable name for the generator state.
func (gs GeneratorState) String() string {
	switch gs {
	case GeneratorSuspendedStart:
		return "SuspendedStart"
	case GeneratorSuspendedYield:
		return "SuspendedYield"
	case GeneratorExecuting:
		return "Executing"
	case GeneratorCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// GeneratorObject owns a suspended activation. Suspension does not destroy
// the call frame: the frame object is frozen together with a snapshot of its
// stack region, and resumption re-enters the interpreter with the very same
// frame. While suspended, this object is the only thing keeping the frame
// and everything it references alive.
type GeneratorObject struct {
	obj   *Object
	state GeneratorState

	// The suspended frame, nil once completed.
	frame *CallFrame

	// Snapshot of the frame's stack region [fp, rp+K): prologue, arguments,
	// and registers. Restored onto the shared stack on resumption.
	saved []Value

	// Registers the suspend point communicates through: valueReg carries the
	// yielded value out and the sent value back in, resumeReg receives the
	// encoded resume kind.
	valueReg  uint32
	resumeReg uint32

	returnValue Value
}

// newGeneratorObject freezes a not-yet-started activation for the given
// code. The snapshot holds the prologue, the arguments, and an undefined
// register window, exactly what PushFrame would have laid out.
func newGeneratorObject(code *CodeBlock, fn Value, this Value, args []Value, frame *CallFrame) *GeneratorObject {
	kind := KindGenerator
	if code.IsAsyncGenerator() {
		kind = KindAsyncGenerator
	}

	saved := make([]Value, 0, int(FunctionPrologue)+len(args)+code.RegisterSize)
	saved = append(saved, this, fn)
	saved = append(saved, args...)
	for i := 0; i < code.RegisterSize; i++ {
		saved = append(saved, Undefined())
	}

	gen := &GeneratorObject{
		state:       GeneratorSuspendedStart,
		frame:       frame,
		saved:       saved,
		returnValue: Undefined(),
	}
	gen.obj = &Object{kind: kind, name: code.Name, generator: gen}
	return gen
}

// setSavedRegister writes a register slot of the frozen snapshot. Used at
// creation time to seed the reserved async-generator register.
func (g *GeneratorObject) setSavedRegister(i uint32, v Value) {
	base := int(FunctionPrologue) + int(g.frame.ArgCount())
	g.saved[base+int(i)] = v
}

// Object returns the script-visible generator object.
func (g *GeneratorObject) Object() *Object { return g.obj }

// State returns the generator's execution state.
func (g *GeneratorObject) State() GeneratorState { return g.state }

// Frame returns the suspended call frame, or nil once completed.
func (g *GeneratorObject) Frame() *CallFrame { return g.frame }

// Done reports whether the generator is exhausted.
func (g *GeneratorObject) Done() bool { return g.state == GeneratorCompleted }

// ReturnValue returns the generator's final value once completed.
func (g *GeneratorObject) ReturnValue() Value { return g.returnValue }

// complete retires the generator and releases the suspended frame.
func (g *GeneratorObject) complete(result Value) {
	g.state = GeneratorCompleted
	g.frame = nil
	g.saved = nil
	g.returnValue = result
}

// Trace visits every value the suspended activation still holds: the saved
// stack snapshot plus everything reachable from the frame itself. Long-lived
// suspended generators are traced through here by memory reclamation.
func (g *GeneratorObject) Trace(visit func(Value)) {
	for _, v := range g.saved {
		visit(v)
	}
	if g.frame != nil {
		g.frame.Trace(visit)
	}
}
