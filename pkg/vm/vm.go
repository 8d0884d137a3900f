package vm

import (
	"fmt"

	"github.com/charmbracelet/log"

	"starling/pkg/errors"
)

const MaxFrames = 1024      // Max call stack depth
const maxStackSlots = 65536 // Max slots on the shared value stack

// activation is the VM-side bookkeeping for one pushed frame: where the
// caller wants the return value, and which generator or capability the
// frame's completion must feed.
type activation struct {
	frame      *CallFrame
	target     uint32 // Caller register receiving the return value
	hasTarget  bool
	generator  *GeneratorObject   // Set while a generator frame is executing
	capability *PromiseCapability // Set for async function frames
}

// VM owns the shared execution stack and the activation stack. Exactly one
// frame is running at any instant; suspension hands control back to the
// caller of run without touching any other frame.
type VM struct {
	stack  ValueStack
	frames []activation
	realm  *Realm

	runnable *ActiveRunnable // Unit of execution currently being driven

	trace      bool
	loopBudget uint64 // 0 means unlimited
}

// NewVM creates a VM with a fresh realm.
func NewVM() *VM {
	return &VM{realm: NewRealm()}
}

// Realm returns the VM's execution realm.
func (vm *VM) Realm() *Realm { return vm.realm }

// Stack exposes the shared value stack.
func (vm *VM) Stack() *ValueStack { return &vm.stack }

// Depth returns the number of live activations.
func (vm *VM) Depth() int { return len(vm.frames) }

// SetTrace toggles frame-transition debug logging.
func (vm *VM) SetTrace(enabled bool) { vm.trace = enabled }

// SetLoopBudget caps per-frame loop iterations; 0 disables the cap.
func (vm *VM) SetLoopBudget(budget uint64) { vm.loopBudget = budget }

// CurrentFrame returns the running frame, or nil when the VM is idle.
func (vm *VM) CurrentFrame() *CallFrame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1].frame
}

// PushFrame registers a frame with the execution stack and allocates its
// register window on top of the caller's, unless the frame's registers were
// pre-allocated (generator resumption, tail-call shapes). After this the
// frame is live and its builder methods must not be used.
func (vm *VM) PushFrame(frame *CallFrame) errors.EngineError {
	if len(vm.frames) >= MaxFrames {
		return &errors.LimitError{
			Position: vm.currentPos(),
			Msg:      fmt.Sprintf("stack overflow (max call depth %d)", MaxFrames),
		}
	}
	code := frame.Code()
	if frame.RegistersAlreadyPushed() {
		frame.SetRegisterPointer(uint32(vm.stack.Len() - code.RegisterSize))
	} else {
		if vm.stack.Len()+code.RegisterSize > maxStackSlots {
			return &errors.LimitError{
				Position: vm.currentPos(),
				Msg:      fmt.Sprintf("register stack overflow (needed %d, available %d)", code.RegisterSize, maxStackSlots-vm.stack.Len()),
			}
		}
		rp := vm.stack.Grow(code.RegisterSize)
		frame.SetRegisterPointer(uint32(rp))
	}
	vm.frames = append(vm.frames, activation{frame: frame})
	if vm.trace {
		log.Debug("push frame", "fn", code.Name, "rp", frame.RP(), "args", frame.ArgCount(), "depth", len(vm.frames))
	}
	return nil
}

// PopFrame removes the top activation and returns its frame. The frame's
// stack region is not reclaimed; that is RestoreStack's job, owned by
// whoever retires the frame.
func (vm *VM) PopFrame() *CallFrame {
	if len(vm.frames) == 0 {
		panic("pop on empty frame stack")
	}
	act := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.trace {
		log.Debug("pop frame", "fn", act.frame.Code().Name, "depth", len(vm.frames))
	}
	return act.frame
}

// RegistersFor derives the register window of a live frame. The window is a
// borrowed view; re-derive it after anything that can grow the stack.
func (vm *VM) RegistersFor(frame *CallFrame) *Registers {
	rp := int(frame.RP())
	return &Registers{slots: vm.stack.Slice(rp, rp+frame.Code().RegisterSize)}
}

// Interpret runs a top-level code block as a script and returns its result.
func (vm *VM) Interpret(code *CodeBlock) (Value, []errors.EngineError) {
	prev := vm.runnable
	vm.runnable = &ActiveRunnable{Kind: RunnableScript, Name: code.Name}
	defer func() { vm.runnable = prev }()

	fn := ObjectValue(NewFunctionObject(code))
	result, err := vm.Call(fn, Undefined(), nil)
	if err != nil {
		return result, []errors.EngineError{err}
	}
	return result, nil
}

// Call invokes a callable value with the given `this` and arguments, running
// the interpreter until the new frame completes. Generator functions return
// their generator object without entering the body; async functions return
// their promise.
func (vm *VM) Call(fn Value, this Value, args []Value) (Value, errors.EngineError) {
	obj := fn.AsObject()
	if obj == nil || !obj.Callable() {
		return Undefined(), &errors.RuntimeError{
			Position: vm.currentPos(),
			Msg:      fmt.Sprintf("%s is not a function", fn.Inspect()),
		}
	}

	if obj.Kind() == KindNative {
		result, err := obj.native(vm, this, args)
		if err != nil {
			return Undefined(), &errors.RuntimeError{Position: vm.currentPos(), Msg: err.Error()}
		}
		return result, nil
	}

	code := obj.Code()
	if code.IsGenerator() {
		gen := vm.makeGenerator(fn, code, this, args)
		return ObjectValue(gen.Object()), nil
	}

	frame, pushErr := vm.pushCall(fn, this, args, FlagExitEarly)
	if pushErr != nil {
		return Undefined(), pushErr
	}

	if code.IsAsync() {
		cap := vm.attachCapability(frame)
		if _, runErr := vm.run(); runErr != nil {
			return Undefined(), runErr
		}
		return ObjectValue(cap.Promise), nil
	}

	result, runErr := vm.run()
	if runErr != nil {
		return Undefined(), runErr
	}
	return result, nil
}

// pushCall lays out the prologue and arguments for a compiled-function call
// and pushes the callee frame on top of them.
func (vm *VM) pushCall(fn Value, this Value, args []Value, flags CallFrameFlags) (*CallFrame, errors.EngineError) {
	code := fn.AsObject().Code()

	// Caller-side setup: this, function reference, then arguments in call
	// order. The caller also owns popping this region (RestoreStack).
	base := vm.stack.Len()
	vm.stack.Push(this)
	vm.stack.Push(fn)
	for _, arg := range args {
		vm.stack.Push(arg)
	}

	frame := NewCallFrame(code, vm.runnable, NewEnvironmentStack(), vm.realm).
		WithArgCount(uint32(len(args))).
		WithFlags(flags)

	if err := vm.PushFrame(frame); err != nil {
		vm.stack.Truncate(base)
		return nil, err
	}
	return frame, nil
}

// attachCapability creates a promise capability for an async frame and
// threads it through the reserved registers.
func (vm *VM) attachCapability(frame *CallFrame) *PromiseCapability {
	cap := NewPromiseCapability()
	frame.SetPromiseCapability(vm.RegistersFor(frame), &cap)
	vm.frames[len(vm.frames)-1].capability = &cap
	return &cap
}

// makeGenerator freezes a call to a generator function into a suspended
// activation without entering the body.
func (vm *VM) makeGenerator(fn Value, code *CodeBlock, this Value, args []Value) *GeneratorObject {
	frame := NewCallFrame(code, vm.runnable, NewEnvironmentStack(), vm.realm).
		WithArgCount(uint32(len(args))).
		WithFlags(FlagRegistersPushed | FlagExitEarly)
	gen := newGeneratorObject(code, fn, this, args, frame)
	if code.IsAsyncGenerator() {
		gen.setSavedRegister(AsyncGeneratorRegister, ObjectValue(gen.Object()))
	}
	if vm.trace {
		log.Debug("create generator", "fn", code.Name, "state", gen.State())
	}
	return gen
}

// ResumeGenerator re-enters a suspended generator with the given resume
// kind. It returns the yielded or final value and whether the generator is
// now done. Resuming an executing generator is a script error; resuming a
// completed one follows the iterator protocol (Normal reports done, Throw
// propagates, Return echoes the sent value).
func (vm *VM) ResumeGenerator(gen *GeneratorObject, kind ResumeKind, sent Value) (Value, bool, errors.EngineError) {
	switch gen.State() {
	case GeneratorExecuting:
		return Undefined(), false, &errors.RuntimeError{
			Position: vm.currentPos(),
			Msg:      "generator is already running",
		}
	case GeneratorCompleted:
		switch kind {
		case ResumeThrow:
			return Undefined(), true, &errors.RuntimeError{
				Position: vm.currentPos(),
				Msg:      "uncaught exception: " + sent.Inspect(),
			}
		case ResumeReturn:
			return sent, true, nil
		default:
			return Undefined(), true, nil
		}
	}

	frame := gen.frame
	code := frame.Code()
	if vm.stack.Len()+len(gen.saved) > maxStackSlots {
		return Undefined(), false, &errors.LimitError{
			Position: vm.currentPos(),
			Msg:      "register stack overflow on generator resumption",
		}
	}

	// Restore the frozen stack region: prologue, arguments, registers. The
	// registers are already in place, so the push must not allocate again.
	for _, v := range gen.saved {
		vm.stack.Push(v)
	}
	frame.SetExitEarly(true)
	if err := vm.PushFrame(frame); err != nil {
		vm.stack.Truncate(vm.stack.Len() - len(gen.saved))
		return Undefined(), false, err
	}
	vm.frames[len(vm.frames)-1].generator = gen

	atYield := gen.State() == GeneratorSuspendedYield
	gen.state = GeneratorExecuting
	if vm.trace {
		log.Debug("resume generator", "fn", code.Name, "kind", kind, "atYield", atYield)
	}

	regs := vm.RegistersFor(frame)
	if atYield {
		// Thread the resume kind through the suspend point's registers; the
		// dispatch path below decodes it back out of the register file.
		regs.Set(gen.resumeReg, kind.ToValue())
		switch ToResumeKind(regs.Get(gen.resumeReg)) {
		case ResumeThrow:
			// throwValue unwinds the generator frame (closing its open
			// iterators) and completes the generator.
			resume, err := vm.throwValue(sent)
			if resume {
				panic("generator resume-throw crossed its own frame boundary")
			}
			if !gen.Done() {
				gen.complete(Undefined())
			}
			return Undefined(), true, err
		case ResumeReturn:
			// Forced return: honor the open iterators' [[Done]] contract on
			// the way out, then complete with the sent value.
			vm.unwindTop()
			gen.complete(sent)
			return sent, true, nil
		default:
			regs.Set(gen.valueReg, sent)
		}
	} else {
		switch kind {
		case ResumeThrow:
			vm.unwindTop()
			gen.complete(Undefined())
			return Undefined(), true, &errors.RuntimeError{
				Position: vm.currentPos(),
				Msg:      "uncaught exception: " + sent.Inspect(),
			}
		case ResumeReturn:
			vm.unwindTop()
			gen.complete(sent)
			return sent, true, nil
		}
	}

	result, runErr := vm.run()
	if runErr != nil {
		if !gen.Done() {
			gen.complete(Undefined())
		}
		return Undefined(), true, runErr
	}
	if gen.Done() {
		return gen.ReturnValue(), true, nil
	}
	// Suspended at a yield point.
	return result, false, nil
}

// unwindTop abruptly retires the top frame: open iterators are closed in
// insertion order while the frame's stack region is still intact, then the
// lexical environments and the stack region are reclaimed.
func (vm *VM) unwindTop() activation {
	act := vm.frames[len(vm.frames)-1]
	frame := act.frame
	frame.closeIterators(vm)
	frame.Environments().TruncateTo(int(frame.EnvFP()))
	frame.RestoreStack(vm)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.trace {
		log.Debug("unwind frame", "fn", frame.Code().Name, "depth", len(vm.frames))
	}
	return act
}

// throwValue propagates a script-level exception outward from the current
// frame. Async frames absorb the exception into their promise. The first
// result reports whether execution can resume in a surviving caller frame;
// otherwise the returned error is the uncaught completion.
func (vm *VM) throwValue(exc Value) (bool, errors.EngineError) {
	for len(vm.frames) > 0 {
		act := vm.unwindTop()
		if act.generator != nil && !act.generator.Done() {
			act.generator.complete(Undefined())
		}
		if act.capability != nil {
			// An async activation converts the abrupt completion into a
			// rejected promise; its caller continues normally.
			_, _ = vm.Call(ObjectValue(act.capability.Reject), Undefined(), []Value{exc})
			if act.frame.ExitEarly() {
				return false, nil
			}
			return true, nil
		}
		if act.frame.ExitEarly() {
			return false, &errors.RuntimeError{
				Position: vm.currentPos(),
				Msg:      "uncaught exception: " + exc.Inspect(),
			}
		}
	}
	return false, &errors.RuntimeError{
		Position: errors.Position{Function: "<host>"},
		Msg:      "uncaught exception: " + exc.Inspect(),
	}
}

func (vm *VM) currentPos() errors.Position {
	if frame := vm.CurrentFrame(); frame != nil {
		return errors.Position{Function: frame.Code().Name, PC: int(frame.PC())}
	}
	return errors.Position{Function: "<host>"}
}

// run is the main execution loop. It executes frames until the activation
// that carries FlagExitEarly retires (by return, throw, or suspension) and
// returns the value that activation produced.
func (vm *VM) run() (Value, errors.EngineError) {
frameLoop:
	for {
		if len(vm.frames) == 0 {
			return Undefined(), nil
		}
		act := &vm.frames[len(vm.frames)-1]
		frame := act.frame
		code := frame.Code()
		chunk := code.Chunk
		regs := vm.RegistersFor(frame)
		ip := int(frame.PC())

		for {
			if ip >= len(chunk.Code) {
				// Fell off the end of the instruction stream: implicit
				// undefined return.
				frame.SetPC(uint32(ip))
				if result, exit := vm.returnFromFrame(Undefined()); exit {
					return result, nil
				}
				continue frameLoop
			}

			op := OpCode(chunk.Code[ip])
			ip++

			switch op {
			case OpLoadConst:
				dest := uint32(chunk.Code[ip])
				constIdx := chunk.readUint16(ip + 1)
				ip += 3
				regs.Set(dest, chunk.Constants[constIdx])

			case OpLoadUndefined:
				regs.Set(uint32(chunk.Code[ip]), Undefined())
				ip++

			case OpLoadTrue:
				regs.Set(uint32(chunk.Code[ip]), Bool(true))
				ip++

			case OpLoadFalse:
				regs.Set(uint32(chunk.Code[ip]), Bool(false))
				ip++

			case OpMove:
				dest := uint32(chunk.Code[ip])
				src := uint32(chunk.Code[ip+1])
				ip += 2
				regs.Set(dest, regs.Get(src))

			case OpAdd, OpSubtract, OpLess:
				dest := uint32(chunk.Code[ip])
				left := regs.Get(uint32(chunk.Code[ip+1]))
				right := regs.Get(uint32(chunk.Code[ip+2]))
				ip += 3
				result, ok := numericOp(op, left, right)
				if !ok {
					frame.SetPC(uint32(ip))
					resume, err := vm.throwValue(String(fmt.Sprintf("unsupported operand types for %s: %s and %s", op, left.Inspect(), right.Inspect())))
					if resume {
						continue frameLoop
					}
					return Undefined(), err
				}
				regs.Set(dest, result)

			case OpLoadThis:
				dest := uint32(chunk.Code[ip])
				ip++
				this := frame.This(vm)
				if !frame.HasThisValueCached() {
					// Resolution writes the value back into the prologue
					// slot so later accesses skip it.
					vm.stack.Set(int(frame.FP()), this)
					frame.cacheThisValue()
				}
				regs.Set(dest, this)

			case OpGetArg:
				dest := uint32(chunk.Code[ip])
				argIdx := int(chunk.Code[ip+1])
				ip += 2
				v, _ := frame.Argument(argIdx, vm)
				regs.Set(dest, v)

			case OpGetGlobal:
				dest := uint32(chunk.Code[ip])
				idx := int(chunk.readUint16(ip + 1))
				ip += 3
				v, ok := frame.Realm().Heap.Get(idx)
				if !ok {
					frame.SetPC(uint32(ip))
					resume, err := vm.throwValue(String(fmt.Sprintf("undefined global slot %d", idx)))
					if resume {
						continue frameLoop
					}
					return Undefined(), err
				}
				regs.Set(dest, v)

			case OpSetGlobal:
				idx := int(chunk.readUint16(ip))
				src := uint32(chunk.Code[ip+2])
				ip += 3
				_ = frame.Realm().Heap.Set(idx, regs.Get(src))

			case OpInitLocal:
				frame.InitializeLocal(int(chunk.Code[ip]))
				ip++

			case OpCheckLocal:
				localIdx := int(chunk.Code[ip])
				nameIdx := chunk.readUint16(ip + 1)
				ip += 3
				if !frame.LocalInitialized(localIdx) {
					frame.SetPC(uint32(ip))
					name := chunk.Constants[nameIdx].AsString()
					resume, err := vm.throwValue(String(fmt.Sprintf("cannot access %q before initialization", name)))
					if resume {
						continue frameLoop
					}
					return Undefined(), err
				}

			case OpPushEnv:
				slots := int(chunk.Code[ip])
				ip++
				frame.Environments().Push(NewEnvironment(slots))

			case OpPopEnv:
				frame.Environments().Pop()

			case OpPushBinding:
				nameIdx := chunk.readUint16(ip)
				slot := int(chunk.Code[ip+2])
				ip += 3
				frame.PushBinding(BindingLocator{
					Name:             chunk.Constants[nameIdx].AsString(),
					EnvironmentIndex: frame.Environments().Len() - 1,
					Slot:             slot,
				})

			case OpResolveBinding:
				src := uint32(chunk.Code[ip])
				ip++
				loc, ok := frame.PopBinding()
				if !ok {
					panic("binding resolution without a pending locator")
				}
				frame.Environments().At(loc.EnvironmentIndex).SetBinding(loc.Slot, regs.Get(src))

			case OpIterPush:
				src := uint32(chunk.Code[ip])
				ip++
				iter := regs.Get(src)
				obj := iter.AsObject()
				if obj == nil {
					frame.SetPC(uint32(ip))
					resume, err := vm.throwValue(String(fmt.Sprintf("%s is not an iterator object", iter.Inspect())))
					if resume {
						continue frameLoop
					}
					return Undefined(), err
				}
				next, _ := obj.Get("next")
				frame.PushIterator(NewIteratorRecord(iter, next))

			case OpIterDone:
				if rec, ok := frame.CurrentIterator(); ok {
					rec.SetDone()
				}

			case OpIterPop:
				frame.PopIterator()

			case OpCall:
				dest := uint32(chunk.Code[ip])
				fnReg := uint32(chunk.Code[ip+1])
				argCount := int(chunk.Code[ip+2])
				ip += 3
				frame.SetPC(uint32(ip))

				fn := regs.Get(fnReg)
				args := make([]Value, argCount)
				for i := 0; i < argCount; i++ {
					args[i] = regs.Get(fnReg + 1 + uint32(i))
				}
				if result, exit := vm.dispatchCall(dest, fn, args); exit != nil {
					if exit.resume {
						continue frameLoop
					}
					return result, exit.err
				}
				continue frameLoop

			case OpReturn:
				src := uint32(chunk.Code[ip])
				ip++
				frame.SetPC(uint32(ip))
				if result, exit := vm.returnFromFrame(regs.Get(src)); exit {
					return result, nil
				}
				continue frameLoop

			case OpReturnUndefined:
				frame.SetPC(uint32(ip))
				if result, exit := vm.returnFromFrame(Undefined()); exit {
					return result, nil
				}
				continue frameLoop

			case OpThrow:
				src := uint32(chunk.Code[ip])
				ip++
				frame.SetPC(uint32(ip))
				resume, err := vm.throwValue(regs.Get(src))
				if resume {
					continue frameLoop
				}
				return Undefined(), err

			case OpJump:
				offset := int(int16(chunk.readUint16(ip)))
				ip += 2
				ip += offset

			case OpJumpIfFalse:
				cond := regs.Get(uint32(chunk.Code[ip]))
				offset := int(int16(chunk.readUint16(ip + 1)))
				ip += 3
				if !cond.IsTruthy() {
					ip += offset
				}

			case OpLoopNext:
				offset := int(int16(chunk.readUint16(ip)))
				ip += 2
				count := frame.IncrementLoopIteration()
				if vm.loopBudget > 0 && count > vm.loopBudget {
					frame.SetPC(uint32(ip))
					return Undefined(), &errors.LimitError{
						Position: errors.Position{Function: code.Name, PC: ip},
						Msg:      fmt.Sprintf("loop iteration budget exceeded (%d)", vm.loopBudget),
					}
				}
				ip += offset

			case OpYield:
				valueReg := uint32(chunk.Code[ip])
				resumeReg := uint32(chunk.Code[ip+1])
				ip += 2
				frame.SetPC(uint32(ip))

				gen := act.generator
				if gen == nil {
					resume, err := vm.throwValue(String("yield outside of a generator activation"))
					if resume {
						continue frameLoop
					}
					return Undefined(), err
				}
				yielded := regs.Get(valueReg)
				vm.suspendGenerator(gen, frame, valueReg, resumeReg)
				if frame.ExitEarly() {
					return yielded, nil
				}
				continue frameLoop

			default:
				panic(fmt.Sprintf("unknown opcode %d at %s@%04d", uint8(op), code.Name, ip-1))
			}
		}
	}
}

// callOutcome signals how dispatchCall left the interpreter: resume the
// frame loop, or stop the run with an error.
type callOutcome struct {
	resume bool
	err    errors.EngineError
}

// dispatchCall performs the callee-kind dispatch for OpCall. A nil outcome
// means a new frame was pushed (or a result was written) and the frame loop
// should re-enter normally.
func (vm *VM) dispatchCall(dest uint32, fn Value, args []Value) (Value, *callOutcome) {
	caller := vm.CurrentFrame()
	callerRegs := func() *Registers { return vm.RegistersFor(caller) }

	obj := fn.AsObject()
	if obj == nil || !obj.Callable() {
		resume, err := vm.throwValue(String(fmt.Sprintf("%s is not a function", fn.Inspect())))
		return Undefined(), &callOutcome{resume: resume, err: err}
	}

	switch obj.Kind() {
	case KindNative:
		result, err := obj.native(vm, Undefined(), args)
		if err != nil {
			resume, terr := vm.throwValue(String(err.Error()))
			return Undefined(), &callOutcome{resume: resume, err: terr}
		}
		callerRegs().Set(dest, result)
		return Undefined(), nil

	default:
		code := obj.Code()
		if code.IsGenerator() {
			gen := vm.makeGenerator(fn, code, Undefined(), args)
			callerRegs().Set(dest, ObjectValue(gen.Object()))
			return Undefined(), nil
		}

		frame, pushErr := vm.pushCall(fn, Undefined(), args, 0)
		if pushErr != nil {
			return Undefined(), &callOutcome{err: pushErr}
		}
		if code.IsAsync() {
			cap := vm.attachCapability(frame)
			// The caller observes the promise immediately; the body settles
			// it on completion.
			callerRegs().Set(dest, ObjectValue(cap.Promise))
		} else {
			top := &vm.frames[len(vm.frames)-1]
			top.target = dest
			top.hasTarget = true
		}
		return Undefined(), nil
	}
}

// returnFromFrame retires the top frame with a normal completion. It reports
// whether the run loop should stop because the retired frame carried
// FlagExitEarly.
func (vm *VM) returnFromFrame(result Value) (Value, bool) {
	act := vm.frames[len(vm.frames)-1]
	frame := act.frame

	frame.Environments().TruncateTo(int(frame.EnvFP()))
	frame.RestoreStack(vm)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.trace {
		log.Debug("return", "fn", frame.Code().Name, "value", result.Inspect(), "depth", len(vm.frames))
	}

	if act.generator != nil {
		act.generator.complete(result)
	}
	if act.capability != nil {
		_, _ = vm.Call(ObjectValue(act.capability.Resolve), Undefined(), []Value{result})
	}
	if frame.ExitEarly() {
		return result, true
	}
	if act.hasTarget && len(vm.frames) > 0 {
		caller := vm.frames[len(vm.frames)-1].frame
		vm.RegistersFor(caller).Set(act.target, result)
	}
	return result, false
}

// suspendGenerator freezes the top frame at a yield point: the frame's whole
// stack region is snapshotted into the generator object, then the region is
// reclaimed and the activation popped. The frame object itself stays alive,
// owned by the generator.
func (vm *VM) suspendGenerator(gen *GeneratorObject, frame *CallFrame, valueReg, resumeReg uint32) {
	gen.valueReg = valueReg
	gen.resumeReg = resumeReg

	fp := int(frame.FP())
	top := int(frame.RP()) + frame.Code().RegisterSize
	region := vm.stack.Slice(fp, top)
	gen.saved = append(gen.saved[:0], region...)
	gen.state = GeneratorSuspendedYield

	vm.stack.Truncate(fp)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if vm.trace {
		log.Debug("suspend generator", "fn", frame.Code().Name, "pc", frame.PC(), "depth", len(vm.frames))
	}
}

// numericOp implements the arithmetic subset of the dispatch loop.
func numericOp(op OpCode, left, right Value) (Value, bool) {
	if left.IsInteger() && right.IsInteger() {
		l, r := left.AsInteger(), right.AsInteger()
		switch op {
		case OpAdd:
			return Integer(l + r), true
		case OpSubtract:
			return Integer(l - r), true
		case OpLess:
			return Bool(l < r), true
		}
	}
	lf, lok := asNumeric(left)
	rf, rok := asNumeric(right)
	if !lok || !rok {
		return Undefined(), false
	}
	switch op {
	case OpAdd:
		return Number(lf + rf), true
	case OpSubtract:
		return Number(lf - rf), true
	case OpLess:
		return Bool(lf < rf), true
	}
	return Undefined(), false
}

func asNumeric(v Value) (float64, bool) {
	switch v.Type() {
	case TypeNumber:
		return v.AsNumber(), true
	case TypeInteger:
		return float64(v.AsInteger()), true
	default:
		return 0, false
	}
}
