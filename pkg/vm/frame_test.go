package vm

import (
	"testing"
)

// layoutFrame builds the canonical layout scenario: two filler slots below,
// then [this, func, arg1, arg2] at indices 2..6 with rp=6.
func layoutFrame(t *testing.T, fnVal Value) (*VM, *CallFrame) {
	t.Helper()
	machine := NewVM()
	machine.stack.Push(String("outer0"))
	machine.stack.Push(String("outer1"))
	machine.stack.Push(String("this-value"))
	machine.stack.Push(fnVal)
	machine.stack.Push(Integer(10))
	machine.stack.Push(Integer(20))

	code := NewCodeBlock("f", FuncNormal, 2)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), machine.Realm()).WithArgCount(2)
	frame.SetRegisterPointer(6)
	return machine, frame
}

func TestCallFrame_LayoutArithmetic(t *testing.T) {
	fn := NewFunctionObject(NewCodeBlock("callee", FuncNormal, 1))
	machine, frame := layoutFrame(t, ObjectValue(fn))

	if got := frame.FP(); got != 2 {
		t.Errorf("Expected fp 2, got %d", got)
	}
	if got := frame.This(machine); !got.Is(String("this-value")) {
		t.Errorf("Expected this at index 2, got %s", got.Inspect())
	}
	obj, ok := frame.Function(machine)
	if !ok || obj != fn {
		t.Errorf("Expected function slot at index 3 to resolve, got %v (ok=%t)", obj, ok)
	}
	args := frame.Arguments(machine)
	if len(args) != 2 {
		t.Fatalf("Expected 2 arguments, got %d", len(args))
	}
	if !args[0].Is(Integer(10)) || !args[1].Is(Integer(20)) {
		t.Errorf("Arguments out of order: %s, %s", args[0].Inspect(), args[1].Inspect())
	}
}

func TestCallFrame_FunctionAbsentForNonObjectSlot(t *testing.T) {
	machine, frame := layoutFrame(t, Number(3.14))
	if _, ok := frame.Function(machine); ok {
		t.Error("Expected absent function for a non-object function slot")
	}
}

func TestCallFrame_ArgumentBoundsChecked(t *testing.T) {
	machine, frame := layoutFrame(t, Undefined())
	if v, ok := frame.Argument(1, machine); !ok || !v.Is(Integer(20)) {
		t.Errorf("Expected argument 1 to be 20, got %s (ok=%t)", v.Inspect(), ok)
	}
	if _, ok := frame.Argument(2, machine); ok {
		t.Error("Expected absent result for out-of-range argument index")
	}
	if _, ok := frame.Argument(-1, machine); ok {
		t.Error("Expected absent result for negative argument index")
	}
}

func TestCallFrame_RestoreStackTruncatesToFP(t *testing.T) {
	machine, frame := layoutFrame(t, Undefined())
	frame.RestoreStack(machine)
	if got := machine.stack.Len(); got != 2 {
		t.Errorf("Expected stack truncated to fp (2), got %d", got)
	}
}

func TestCallFrame_UnderflowIsFatal(t *testing.T) {
	machine := NewVM()
	code := NewCodeBlock("bad", FuncNormal, 1)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), machine.Realm()).WithArgCount(3)
	frame.SetRegisterPointer(2) // rp < argCount + prologue

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on prologue underflow")
		}
	}()
	frame.This(machine)
}

func TestCallFrame_NewFrameDefaults(t *testing.T) {
	code := NewCodeBlock("fresh", FuncNormal, 4)
	code.LocalsInitialized = []bool{true, false, false}
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), NewRealm())

	if frame.PC() != 0 || frame.RP() != 0 || frame.ArgCount() != 0 || frame.EnvFP() != 0 {
		t.Error("Expected zeroed pc/rp/argCount/envFP on a fresh frame")
	}
	if frame.LoopIterationCount() != 0 {
		t.Error("Expected zero loop iterations on a fresh frame")
	}
	if !frame.LocalInitialized(0) || frame.LocalInitialized(1) {
		t.Error("Expected locals template cloned from the code block")
	}

	// Mutating the frame's copy must not leak into the template.
	frame.InitializeLocal(1)
	if code.LocalsInitialized[1] {
		t.Error("Frame local initialization leaked into the code block template")
	}

	other := NewCallFrame(code, nil, NewEnvironmentStack(), NewRealm())
	if other.LocalInitialized(1) {
		t.Error("Second frame saw the first frame's local initialization")
	}
}

func TestCallFrame_Builders(t *testing.T) {
	code := NewCodeBlock("b", FuncNormal, 1)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), NewRealm()).
		WithArgCount(5).
		WithEnvFP(3).
		WithFlags(FlagConstruct | FlagRegistersPushed)

	if frame.ArgCount() != 5 {
		t.Errorf("Expected argCount 5, got %d", frame.ArgCount())
	}
	if frame.EnvFP() != 3 {
		t.Errorf("Expected envFP 3, got %d", frame.EnvFP())
	}
	if !frame.Construct() || !frame.RegistersAlreadyPushed() {
		t.Error("Expected construct and registers-pushed flags set")
	}
	if frame.ExitEarly() || frame.HasThisValueCached() {
		t.Error("Unrelated flags must stay clear")
	}
}

func TestCallFrameFlags_Independence(t *testing.T) {
	code := NewCodeBlock("flags", FuncNormal, 1)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), NewRealm())

	frame.SetExitEarly(true)
	if !frame.ExitEarly() {
		t.Error("SetExitEarly(true) not observed")
	}
	if frame.Construct() || frame.RegistersAlreadyPushed() || frame.HasThisValueCached() {
		t.Error("Setting exit-early perturbed another flag")
	}

	frame.SetExitEarly(false)
	if frame.ExitEarly() {
		t.Error("SetExitEarly(false) not observed")
	}

	frame = frame.WithFlags(FlagConstruct | FlagThisCached)
	frame.SetExitEarly(true)
	frame.SetExitEarly(false)
	if !frame.Construct() || !frame.HasThisValueCached() {
		t.Error("Toggling exit-early cleared other flags")
	}
}

func TestCallFrame_BindingStack(t *testing.T) {
	code := NewCodeBlock("bindings", FuncNormal, 1)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), NewRealm())

	if _, ok := frame.PopBinding(); ok {
		t.Error("Expected empty binding stack on a fresh frame")
	}
	frame.PushBinding(BindingLocator{Name: "a", Slot: 0})
	frame.PushBinding(BindingLocator{Name: "b", Slot: 1})
	loc, ok := frame.PopBinding()
	if !ok || loc.Name != "b" {
		t.Errorf("Expected newest binding 'b', got %q", loc.Name)
	}
	loc, _ = frame.PopBinding()
	if loc.Name != "a" {
		t.Errorf("Expected binding 'a', got %q", loc.Name)
	}
}

func TestCallFrame_TraceVisitsIteratorsAndEnvironments(t *testing.T) {
	code := NewCodeBlock("traced", FuncNormal, 1)
	envs := NewEnvironmentStack()
	env := NewEnvironment(2)
	bound := ObjectValue(NewPlainObject())
	env.SetBinding(1, bound)
	envs.Push(env)

	frame := NewCallFrame(code, nil, envs, NewRealm())
	iter := ObjectValue(NewPlainObject())
	next := ObjectValue(NewNativeFunction("next", func(vm *VM, this Value, args []Value) (Value, error) {
		return Undefined(), nil
	}))
	frame.PushIterator(NewIteratorRecord(iter, next))

	seen := map[*Object]bool{}
	frame.Trace(func(v Value) {
		if obj := v.AsObject(); obj != nil {
			seen[obj] = true
		}
	})
	for name, v := range map[string]Value{"iterator": iter, "next method": next, "binding": bound} {
		if !seen[v.AsObject()] {
			t.Errorf("Trace did not visit the %s", name)
		}
	}
}
