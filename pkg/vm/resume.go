package vm

import "fmt"

// ResumeKind indicates how a suspended generator or async activation is
// being re-entered.
type ResumeKind uint8

const (
	// ResumeNormal continues execution with the sent value as the result of
	// the suspend point.
	ResumeNormal ResumeKind = iota
	// ResumeThrow raises the sent value as an exception at the suspend point.
	ResumeThrow
	// ResumeReturn forces a return at the suspend point, still unwinding
	// through open-iterator closes on the way out.
	ResumeReturn
)

func (k ResumeKind) String() string {
	switch k {
	case ResumeNormal:
		return "Normal"
	case ResumeThrow:
		return "Throw"
	case ResumeReturn:
		return "Return"
	default:
		return fmt.Sprintf("ResumeKind(%d)", uint8(k))
	}
}

// ToValue encodes the resume kind as an integer Value for threading through
// registers and the dispatch loop.
func (k ResumeKind) ToValue() Value {
	return Integer(int32(k))
}

// ToResumeKind decodes a resume kind from a Value. Only integer values in
// {0,1,2} are valid: anything else means corrupted bytecode or an internal
// dispatch bug, so decoding it panics rather than surfacing a script error.
func ToResumeKind(v Value) ResumeKind {
	if v.IsInteger() {
		switch v.AsInteger() {
		case 0:
			return ResumeNormal
		case 1:
			return ResumeThrow
		case 2:
			return ResumeReturn
		default:
			panic(fmt.Sprintf("resume kind must be an integer between 0..=2, got %d", v.AsInteger()))
		}
	}
	panic(fmt.Sprintf("resume kind must be an integer value, got %s", v.Inspect()))
}
