package vm

import (
	"testing"
)

func TestResumeKind_RoundTrip(t *testing.T) {
	for _, kind := range []ResumeKind{ResumeNormal, ResumeThrow, ResumeReturn} {
		v := kind.ToValue()
		if !v.IsInteger() {
			t.Errorf("Expected %s to encode as an integer, got %s", kind, v.Inspect())
		}
		if got := ToResumeKind(v); got != kind {
			t.Errorf("Round trip of %s produced %s", kind, got)
		}
	}
}

func TestResumeKind_Encoding(t *testing.T) {
	if !ResumeNormal.ToValue().Is(Integer(0)) {
		t.Error("Expected normal resume to encode as 0")
	}
	if !ResumeThrow.ToValue().Is(Integer(1)) {
		t.Error("Expected throw resume to encode as 1")
	}
	if !ResumeReturn.ToValue().Is(Integer(2)) {
		t.Error("Expected return resume to encode as 2")
	}
}

func TestToResumeKind_RejectsOutOfRange(t *testing.T) {
	for _, v := range []Value{Integer(3), Integer(-1), Integer(255)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic decoding %s", v.Inspect())
				}
			}()
			ToResumeKind(v)
		}()
	}
}

func TestToResumeKind_RejectsNonInteger(t *testing.T) {
	for _, v := range []Value{Undefined(), Null(), Number(1), String("1"), Bool(true)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic decoding %s", v.Inspect())
				}
			}()
			ToResumeKind(v)
		}()
	}
}
