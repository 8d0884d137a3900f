package vm

import (
	"strings"
	"testing"
)

func TestChunk_Uint16RoundTrip(t *testing.T) {
	c := NewChunk()
	c.WriteOpCode(OpJump, 1)
	c.WriteUint16(0x1234)

	if got := c.readUint16(1); got != 0x1234 {
		t.Errorf("Expected 0x1234, got 0x%04x", got)
	}
	if got := int(int16(c.readUint16(1))); got != 0x1234 {
		t.Errorf("Signed reinterpretation changed a positive offset: %d", got)
	}

	c.WriteOpCode(OpLoopNext, 2)
	c.WriteInt16(-22)
	if got := int(int16(c.readUint16(4))); got != -22 {
		t.Errorf("Expected -22 back, got %d", got)
	}
	if c.Code[4] != 0xFF || c.Code[5] != 0xEA {
		t.Errorf("Expected two's-complement bytes FF EA, got %02X %02X", c.Code[4], c.Code[5])
	}
}

func TestChunk_AddConstantDeduplicates(t *testing.T) {
	c := NewChunk()
	a := c.AddConstant(Integer(42))
	b := c.AddConstant(Integer(42))
	if a != b {
		t.Errorf("Expected the same handle for equal constants, got %d and %d", a, b)
	}
	other := c.AddConstant(Number(42))
	if other == a {
		t.Error("Integer and float constants must not collapse")
	}
	if len(c.Constants) != 2 {
		t.Errorf("Expected 2 constants, got %d", len(c.Constants))
	}
}

func TestChunk_GetLine(t *testing.T) {
	c := NewChunk()
	c.WriteOpCode(OpLoadTrue, 7)
	c.WriteByte(0)
	if got := c.GetLine(0); got != 7 {
		t.Errorf("Expected line 7 for the opcode byte, got %d", got)
	}
}

func TestNewCodeBlock_ReservesAsyncRegisters(t *testing.T) {
	plain := NewCodeBlock("p", FuncNormal, 1)
	if plain.RegisterSize != 1 {
		t.Errorf("Normal function register size changed to %d", plain.RegisterSize)
	}
	for _, kind := range []FunctionKind{FuncAsync, FuncAsyncGenerator} {
		code := NewCodeBlock("a", kind, 1)
		if code.RegisterSize < int(ReservedRegisters) {
			t.Errorf("Kind %d register size %d is below the reserved window", kind, code.RegisterSize)
		}
	}
}

func TestOpCode_String(t *testing.T) {
	if OpCall.String() != "OpCall" {
		t.Errorf("Expected OpCall, got %s", OpCall.String())
	}
	if !strings.HasPrefix(OpCode(250).String(), "OpUnknown") {
		t.Errorf("Expected unknown marker, got %s", OpCode(250).String())
	}
}

func TestDisassemble_EveryOperandFormat(t *testing.T) {
	code := NewCodeBlock("demo", FuncNormal, 3)
	c := code.Chunk
	k := c.AddConstant(Integer(1))

	// One instruction of every operand shape, in opcode order. The listing
	// must stay in lockstep with the interpreter's operand widths: a single
	// mis-sized decode desyncs everything after it.
	write := func(op OpCode, operands ...func()) {
		c.WriteOpCode(op, 1)
		for _, operand := range operands {
			operand()
		}
	}
	reg := func(r byte) func() { return func() { c.WriteByte(r) } }
	u16 := func(v uint16) func() { return func() { c.WriteUint16(v) } }

	write(OpLoadConst, reg(0), u16(k))
	write(OpLoadUndefined, reg(0))
	write(OpLoadTrue, reg(0))
	write(OpLoadFalse, reg(0))
	write(OpMove, reg(1), reg(0))
	write(OpAdd, reg(2), reg(0), reg(1))
	write(OpSubtract, reg(2), reg(0), reg(1))
	write(OpLess, reg(2), reg(0), reg(1))
	write(OpLoadThis, reg(0))
	write(OpGetArg, reg(0), reg(0))
	write(OpGetGlobal, reg(0), u16(0))
	write(OpSetGlobal, u16(0), reg(0))
	write(OpInitLocal, reg(0))
	write(OpCheckLocal, reg(0), u16(k))
	write(OpPushEnv, reg(1))
	write(OpPopEnv)
	write(OpPushBinding, u16(k), reg(0))
	write(OpResolveBinding, reg(0))
	write(OpIterPush, reg(0))
	write(OpIterDone)
	write(OpIterPop)
	write(OpCall, reg(2), reg(0), reg(1))
	write(OpThrow, reg(0))
	write(OpJump, u16(3))
	write(OpJumpIfFalse, reg(0), u16(3))
	write(OpLoopNext, u16(3))
	write(OpYield, reg(0), reg(1))
	write(OpReturn, reg(0))
	write(OpReturnUndefined)

	out := code.Disassemble()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	const instructions = 29
	if len(lines) != instructions+1 { // header + one line per instruction
		t.Fatalf("Expected %d listing lines, got %d:\n%s", instructions+1, len(lines), out)
	}
	for i, want := range []string{
		"OpLoadConst", "OpLoadUndefined", "OpLoadTrue", "OpLoadFalse",
		"OpMove", "OpAdd", "OpSubtract", "OpLess", "OpLoadThis", "OpGetArg",
		"OpGetGlobal", "OpSetGlobal", "OpInitLocal", "OpCheckLocal",
		"OpPushEnv", "OpPopEnv", "OpPushBinding", "OpResolveBinding",
		"OpIterPush", "OpIterDone", "OpIterPop", "OpCall", "OpThrow",
		"OpJump", "OpJumpIfFalse", "OpLoopNext", "OpYield", "OpReturn",
		"OpReturnUndefined",
	} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("Line %d: expected %s, got %q", i+1, want, lines[i+1])
		}
	}
}

func TestDisassemble_ResolveBindingWidth(t *testing.T) {
	code := NewCodeBlock("demo", FuncNormal, 1)
	c := code.Chunk
	c.WriteOpCode(OpResolveBinding, 1)
	c.WriteByte(0)
	c.WriteOpCode(OpReturnUndefined, 1)

	out := code.Disassemble()
	if !strings.Contains(out, "OpReturnUndefined") {
		t.Errorf("A mis-sized decode swallowed the following instruction:\n%s", out)
	}
	if strings.Contains(out, "R0, R") {
		t.Errorf("Expected a single register operand:\n%s", out)
	}
}
