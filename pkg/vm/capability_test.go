package vm

import (
	"testing"
)

// pushedFrame pushes a fresh frame for code onto a fresh machine and hands
// back its register window.
func pushedFrame(t *testing.T, kind FunctionKind, registerSize int) (*VM, *CallFrame, *Registers) {
	t.Helper()
	machine := NewVM()
	code := NewCodeBlock("capfn", kind, registerSize)
	frame := NewCallFrame(code, nil, NewEnvironmentStack(), machine.Realm())
	if err := machine.PushFrame(frame); err != nil {
		t.Fatalf("PushFrame failed: %v", err)
	}
	return machine, frame, machine.RegistersFor(frame)
}

func TestPromiseCapability_SetThenGet(t *testing.T) {
	_, frame, regs := pushedFrame(t, FuncAsync, 8)

	capability := NewPromiseCapability()
	frame.SetPromiseCapability(regs, &capability)

	got, ok := frame.PromiseCapability(regs)
	if !ok {
		t.Fatal("Expected a capability after SetPromiseCapability")
	}
	if got.Promise != capability.Promise || got.Resolve != capability.Resolve || got.Reject != capability.Reject {
		t.Error("Capability read back does not match the one written")
	}
}

func TestPromiseCapability_ClearWithNil(t *testing.T) {
	_, frame, regs := pushedFrame(t, FuncAsync, 8)

	capability := NewPromiseCapability()
	frame.SetPromiseCapability(regs, &capability)
	frame.SetPromiseCapability(regs, nil)

	if _, ok := frame.PromiseCapability(regs); ok {
		t.Error("Expected no capability after clearing")
	}
	for i := PromiseRegister; i <= RejectRegister; i++ {
		if !regs.Get(i).IsUndefined() {
			t.Errorf("Expected register %d to hold undefined after clearing", i)
		}
	}
}

func TestPromiseCapability_AbsentOnNonAsyncFrame(t *testing.T) {
	_, frame, regs := pushedFrame(t, FuncNormal, 8)

	// Even with capability-shaped values in registers 0..2, a non-async
	// frame must report no capability: those registers are ordinary locals.
	capability := NewPromiseCapability()
	regs.Set(PromiseRegister, ObjectValue(capability.Promise))
	regs.Set(ResolveRegister, ObjectValue(capability.Resolve))
	regs.Set(RejectRegister, ObjectValue(capability.Reject))

	if _, ok := frame.PromiseCapability(regs); ok {
		t.Error("Non-async frame reported a promise capability")
	}
}

func TestPromiseCapability_NeverPartial(t *testing.T) {
	capability := NewPromiseCapability()
	cases := []struct {
		name    string
		promise Value
		resolve Value
		reject  Value
	}{
		{"no promise", Undefined(), ObjectValue(capability.Resolve), ObjectValue(capability.Reject)},
		{"non-object promise", Integer(1), ObjectValue(capability.Resolve), ObjectValue(capability.Reject)},
		{"missing resolve", ObjectValue(capability.Promise), Undefined(), ObjectValue(capability.Reject)},
		{"non-callable resolve", ObjectValue(capability.Promise), ObjectValue(NewPlainObject()), ObjectValue(capability.Reject)},
		{"missing reject", ObjectValue(capability.Promise), ObjectValue(capability.Resolve), Undefined()},
		{"non-callable reject", ObjectValue(capability.Promise), ObjectValue(capability.Resolve), ObjectValue(NewPlainObject())},
	}
	for _, tc := range cases {
		_, frame, regs := pushedFrame(t, FuncAsync, 8)
		regs.Set(PromiseRegister, tc.promise)
		regs.Set(ResolveRegister, tc.resolve)
		regs.Set(RejectRegister, tc.reject)
		if _, ok := frame.PromiseCapability(regs); ok {
			t.Errorf("%s: expected no capability from a partial triple", tc.name)
		}
	}
}

func TestSetPromiseCapability_PanicsOnNonAsyncFrame(t *testing.T) {
	_, frame, regs := pushedFrame(t, FuncGenerator, 8)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic writing a capability into a generator frame")
		}
	}()
	capability := NewPromiseCapability()
	frame.SetPromiseCapability(regs, &capability)
}

func TestAsyncGeneratorObject_Accessor(t *testing.T) {
	_, frame, regs := pushedFrame(t, FuncAsyncGenerator, 8)

	if _, ok := frame.AsyncGeneratorObject(regs); ok {
		t.Error("Expected no async generator object before the slot is seeded")
	}

	genObj := NewPlainObject()
	regs.Set(AsyncGeneratorRegister, ObjectValue(genObj))
	got, ok := frame.AsyncGeneratorObject(regs)
	if !ok || got != genObj {
		t.Errorf("Expected seeded async generator object, got %v (ok=%t)", got, ok)
	}

	regs.Set(AsyncGeneratorRegister, Integer(7))
	if _, ok := frame.AsyncGeneratorObject(regs); ok {
		t.Error("Expected no async generator object from a non-object slot")
	}
}

func TestAsyncGeneratorObject_AbsentOnOtherKinds(t *testing.T) {
	for _, kind := range []FunctionKind{FuncNormal, FuncGenerator, FuncAsync} {
		_, frame, regs := pushedFrame(t, kind, 8)
		regs.Set(AsyncGeneratorRegister, ObjectValue(NewPlainObject()))
		if _, ok := frame.AsyncGeneratorObject(regs); ok {
			t.Errorf("Function kind %d reported an async generator object", kind)
		}
	}
}

func TestNewPromiseCapability_FirstSettlementWins(t *testing.T) {
	machine := NewVM()
	capability := NewPromiseCapability()

	if _, err := machine.Call(ObjectValue(capability.Resolve), Undefined(), []Value{Integer(1)}); err != nil {
		t.Fatalf("resolve call failed: %v", err)
	}
	if _, err := machine.Call(ObjectValue(capability.Reject), Undefined(), []Value{String("late")}); err != nil {
		t.Fatalf("reject call failed: %v", err)
	}

	promise := capability.Promise.promise
	if promise.Status != PromiseFulfilled {
		t.Errorf("Expected fulfilled promise, got %s", promise.Status)
	}
	if !promise.Result.Is(Integer(1)) {
		t.Errorf("Expected result 1, got %s", promise.Result.Inspect())
	}
}
