package vm

// PromiseStatus is the settlement state of a promise.
type PromiseStatus uint8

const (
	PromisePending PromiseStatus = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseStatus) String() string {
	switch s {
	case PromisePending:
		return "pending"
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Promise is the minimal promise payload the frame core needs: a settlement
// state and a result. Reaction scheduling belongs to the host's event loop.
type Promise struct {
	Status PromiseStatus
	Result Value
}

// NewPromiseObject creates a pending promise object.
func NewPromiseObject() *Object {
	return &Object{kind: KindPromise, promise: &Promise{Status: PromisePending, Result: Undefined()}}
}

// PromiseCapability is the (promise, resolve, reject) triple associated with
// an async function's eventual result. Resolve and Reject are callable.
type PromiseCapability struct {
	Promise *Object
	Resolve *Object
	Reject  *Object
}

// NewPromiseCapability creates a pending promise together with resolving
// functions that settle it. Settling is first-call-wins; later calls are
// ignored.
func NewPromiseCapability() PromiseCapability {
	promiseObj := NewPromiseObject()
	promise := promiseObj.promise

	resolve := NewNativeFunction("resolve", func(vm *VM, this Value, args []Value) (Value, error) {
		if promise.Status == PromisePending {
			promise.Status = PromiseFulfilled
			promise.Result = argOrUndefined(args, 0)
		}
		return Undefined(), nil
	})
	reject := NewNativeFunction("reject", func(vm *VM, this Value, args []Value) (Value, error) {
		if promise.Status == PromisePending {
			promise.Status = PromiseRejected
			promise.Result = argOrUndefined(args, 0)
		}
		return Undefined(), nil
	})

	return PromiseCapability{Promise: promiseObj, Resolve: resolve, Reject: reject}
}

func argOrUndefined(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined()
}
