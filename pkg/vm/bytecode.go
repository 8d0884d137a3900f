package vm

import (
	"fmt"
	"strings"
)

// OpCode defines the type for bytecode instructions.
type OpCode uint8

// Enum for Opcodes (Register Machine)
const (
	// Format: OpCode <DestReg> <Operand1> <Operand2> ...
	// Operands can be registers or immediate values (like constant indices)

	OpLoadConst     OpCode = iota // Rx ConstIdx(16bit): Load constant Constants[ConstIdx] into register Rx.
	OpLoadUndefined               // Rx: Load undefined value into register Rx.
	OpLoadTrue                    // Rx: Load boolean true into register Rx.
	OpLoadFalse                   // Rx: Load boolean false into register Rx.
	OpMove                        // Rx Ry: Move value from register Ry into register Rx.

	// Arithmetic / comparison (Dest, Left, Right)
	OpAdd      // Rx Ry Rz: Rx = Ry + Rz
	OpSubtract // Rx Ry Rz: Rx = Ry - Rz
	OpLess     // Rx Ry Rz: Rx = (Ry < Rz)

	// Frame prologue access
	OpLoadThis // Rx: Load the frame's `this` value into Rx, caching it in the prologue slot.
	OpGetArg   // Rx ArgIdx: Load actual argument ArgIdx into Rx (undefined if out of range).

	// Globals (realm heap)
	OpGetGlobal // Rx GlobalIdx(16bit): Rx = heap[GlobalIdx]
	OpSetGlobal // GlobalIdx(16bit) Ry: heap[GlobalIdx] = Ry

	// Locals (temporal dead zone bookkeeping)
	OpInitLocal  // LocalIdx: Mark local LocalIdx as initialized.
	OpCheckLocal // LocalIdx ConstIdx(16bit): Throw if local LocalIdx is not yet initialized; ConstIdx names it.

	// Lexical environments and pending bindings
	OpPushEnv        // SlotCount: Push a new declarative environment with SlotCount binding slots.
	OpPopEnv         // No operands: Pop the innermost environment.
	OpPushBinding    // NameIdx(16bit) Slot: Push a pending binding locator for the innermost environment.
	OpResolveBinding // Ry: Pop the newest pending binding locator and store Ry into its slot.

	// Open iterators
	OpIterPush // Rx: Push an open-iterator record for the iterator object in Rx.
	OpIterDone // No operands: Mark the newest open iterator as done.
	OpIterPop  // No operands: Pop the newest open-iterator record (normal loop completion).

	// Function/call related
	OpCall            // Rx FuncReg ArgCount: Call function in FuncReg with ArgCount args (in FuncReg+1..), result in Rx
	OpReturn          // Rx: Return value from register Rx.
	OpReturnUndefined // No operands: Return undefined value from current function.
	OpThrow           // Rx: Throw the value in Rx as an exception.

	// Control Flow
	OpJump        // Offset(16bit): Unconditionally jump by signed Offset.
	OpJumpIfFalse // Rx Offset(16bit): Jump by signed Offset if Rx is falsey.
	OpLoopNext    // Offset(16bit): Count a loop iteration, then jump back by signed Offset.

	// Suspension
	OpYield // Rv Rk: Suspend, yielding the value in Rv. On resumption Rk
	//         receives the encoded resume kind and Rv the sent value.
)

var opNames = [...]string{
	OpLoadConst:      "OpLoadConst",
	OpLoadUndefined:  "OpLoadUndefined",
	OpLoadTrue:       "OpLoadTrue",
	OpLoadFalse:      "OpLoadFalse",
	OpMove:           "OpMove",
	OpAdd:            "OpAdd",
	OpSubtract:       "OpSubtract",
	OpLess:           "OpLess",
	OpLoadThis:       "OpLoadThis",
	OpGetArg:         "OpGetArg",
	OpGetGlobal:      "OpGetGlobal",
	OpSetGlobal:      "OpSetGlobal",
	OpInitLocal:      "OpInitLocal",
	OpCheckLocal:     "OpCheckLocal",
	OpPushEnv:        "OpPushEnv",
	OpPopEnv:         "OpPopEnv",
	OpPushBinding:    "OpPushBinding",
	OpResolveBinding: "OpResolveBinding",
	OpIterPush:       "OpIterPush",
	OpIterDone:       "OpIterDone",
	OpIterPop:        "OpIterPop",
	OpCall:           "OpCall",
	OpReturn:         "OpReturn",
	OpReturnUndefined: "OpReturnUndefined",
	OpThrow:          "OpThrow",
	OpJump:           "OpJump",
	OpJumpIfFalse:    "OpJumpIfFalse",
	OpLoopNext:       "OpLoopNext",
	OpYield:          "OpYield",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("OpUnknown(%d)", uint8(op))
}

// FunctionKind classifies a code block's calling convention.
type FunctionKind uint8

const (
	FuncNormal FunctionKind = iota
	FuncGenerator
	FuncAsync
	FuncAsyncGenerator
)

// Chunk holds a linear run of bytecode and its constant pool.
type Chunk struct {
	Code      []byte  // The bytecode instructions (OpCodes and operands)
	Constants []Value // Constant pool
	Lines     []int   // Line number corresponding to the start of each instruction
}

// NewChunk creates a new, empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0),
		Constants: make([]Value, 0),
		Lines:     make([]int, 0),
	}
}

// GetLine returns the source line number corresponding to a given bytecode offset.
func (c *Chunk) GetLine(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// WriteOpCode adds an opcode to the chunk.
func (c *Chunk) WriteOpCode(op OpCode, line int) {
	c.Code = append(c.Code, byte(op))
	c.Lines = append(c.Lines, line)
}

// WriteByte adds a raw byte (operand) to the chunk.
// Note: Line number is not tracked per operand, only per opcode.
func (c *Chunk) WriteByte(b byte) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, 0)
}

// WriteUint16 adds a 16-bit unsigned integer operand (e.g., for larger
// constant indices or jump offsets). Encoded as Big Endian.
func (c *Chunk) WriteUint16(val uint16) {
	c.WriteByte(byte(val >> 8))
	c.WriteByte(byte(val & 0xff))
}

// WriteInt16 adds a signed 16-bit operand (backward jump offsets). Encoded
// as the two's-complement Big Endian bytes.
func (c *Chunk) WriteInt16(val int16) {
	c.WriteUint16(uint16(val))
}

// AddConstant adds a value to the chunk's constant pool and returns its index.
// Returns a uint16 as we might need more than 256 constants.
// Deduplicates constants to avoid storing the same value multiple times.
func (c *Chunk) AddConstant(v Value) uint16 {
	for i, existing := range c.Constants {
		if existing.Is(v) {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, v)
	idx := len(c.Constants) - 1
	if idx > 65535 {
		panic("Too many constants in one chunk.")
	}
	return uint16(idx)
}

// readUint16 decodes a big-endian operand at the given offset.
func (c *Chunk) readUint16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// CodeBlock is the immutable compiled-function metadata shared between the
// compiler, the interpreter, and every frame invoking the same function.
// Instances are created once and never mutated afterwards; frames and closure
// objects hold shared references to them.
type CodeBlock struct {
	Name         string
	Arity        int          // Number of declared parameters
	RegisterSize int          // Number of registers needed for a frame of this function
	Kind         FunctionKind // Calling convention classification

	// Template of per-local "has been initialized" flags; cloned into every
	// frame at creation time for temporal-dead-zone enforcement.
	LocalsInitialized []bool

	Chunk *Chunk
}

// NewCodeBlock creates a code block. Async and async-generator functions
// reserve the low capability registers, so their register size is padded to
// cover them.
func NewCodeBlock(name string, kind FunctionKind, registerSize int) *CodeBlock {
	if kind == FuncAsync || kind == FuncAsyncGenerator {
		if registerSize < ReservedRegisters {
			registerSize = ReservedRegisters
		}
	}
	return &CodeBlock{
		Name:         name,
		Kind:         kind,
		RegisterSize: registerSize,
		Chunk:        NewChunk(),
	}
}

// IsAsync reports whether frames of this function thread a promise
// capability through their reserved registers. Async generators are async.
func (c *CodeBlock) IsAsync() bool {
	return c.Kind == FuncAsync || c.Kind == FuncAsyncGenerator
}

// IsGenerator reports whether calls to this function produce a suspendable
// activation instead of running to completion.
func (c *CodeBlock) IsGenerator() bool {
	return c.Kind == FuncGenerator || c.Kind == FuncAsyncGenerator
}

// IsAsyncGenerator reports whether frames of this function keep their
// async-generator object in the reserved register.
func (c *CodeBlock) IsAsyncGenerator() bool {
	return c.Kind == FuncAsyncGenerator
}

// localsTemplate clones the initialized-locals template for a new frame.
func (c *CodeBlock) localsTemplate() []bool {
	if len(c.LocalsInitialized) == 0 {
		return nil
	}
	out := make([]bool, len(c.LocalsInitialized))
	copy(out, c.LocalsInitialized)
	return out
}

// --- Disassembly ---

// Disassemble returns a human-readable string representation of the block.
func (c *CodeBlock) Disassemble() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("== %s ==\n", c.Name))
	chunk := c.Chunk
	offset := 0
	for offset < len(chunk.Code) {
		offset = chunk.disassembleInstruction(&builder, offset)
	}
	return builder.String()
}

// disassembleInstruction appends the string representation of a single
// instruction to the builder and returns the offset of the next instruction.
func (c *Chunk) disassembleInstruction(builder *strings.Builder, offset int) int {
	builder.WriteString(fmt.Sprintf("%04d      ", offset))

	if offset >= len(c.Code) {
		builder.WriteString("Attempt to disassemble beyond code boundary\n")
		return offset + 1 // Avoid infinite loop if offset is already bad
	}

	instruction := OpCode(c.Code[offset])
	name := instruction.String()
	switch instruction {
	case OpLoadConst:
		return c.registerConstantInstruction(builder, name, offset)
	case OpLoadUndefined, OpLoadTrue, OpLoadFalse, OpReturn, OpThrow, OpLoadThis:
		return c.registerInstruction(builder, name, offset) // Rx
	case OpMove, OpYield:
		return c.registerRegisterInstruction(builder, name, offset) // Rx, Ry
	case OpAdd, OpSubtract, OpLess:
		return c.registerRegisterRegisterInstruction(builder, name, offset) // Rx, Ry, Rz
	case OpGetArg:
		return c.registerByteInstruction(builder, name, offset, "ArgIdx")
	case OpGetGlobal:
		return c.registerUint16Instruction(builder, name, offset, "GlobalIdx")
	case OpSetGlobal:
		return c.uint16RegisterInstruction(builder, name, offset, "GlobalIdx")
	case OpInitLocal, OpPushEnv:
		return c.byteInstruction(builder, name, offset)
	case OpCheckLocal:
		return c.byteUint16Instruction(builder, name, offset, "NameIdx")
	case OpPushBinding:
		return c.uint16ByteInstruction(builder, name, offset, "NameIdx", "Slot")
	case OpIterPush, OpResolveBinding:
		return c.registerInstruction(builder, name, offset)
	case OpPopEnv, OpIterDone, OpIterPop, OpReturnUndefined:
		return c.simpleInstruction(builder, name, offset)
	case OpCall:
		return c.callInstruction(builder, name, offset)
	case OpJump, OpLoopNext:
		return c.jumpInstruction(builder, name, offset, false)
	case OpJumpIfFalse:
		return c.jumpInstruction(builder, name, offset, true)
	default:
		builder.WriteString(fmt.Sprintf("Unknown opcode %d\n", instruction))
		return offset + 1
	}
}

func (c *Chunk) simpleInstruction(builder *strings.Builder, name string, offset int) int {
	builder.WriteString(fmt.Sprintf("%s\n", name))
	return offset + 1
}

func (c *Chunk) registerInstruction(builder *strings.Builder, name string, offset int) int {
	reg := c.Code[offset+1]
	builder.WriteString(fmt.Sprintf("%-18s R%d\n", name, reg))
	return offset + 2
}

func (c *Chunk) byteInstruction(builder *strings.Builder, name string, offset int) int {
	operand := c.Code[offset+1]
	builder.WriteString(fmt.Sprintf("%-18s %d\n", name, operand))
	return offset + 2
}

func (c *Chunk) registerRegisterInstruction(builder *strings.Builder, name string, offset int) int {
	r1 := c.Code[offset+1]
	r2 := c.Code[offset+2]
	builder.WriteString(fmt.Sprintf("%-18s R%d, R%d\n", name, r1, r2))
	return offset + 3
}

func (c *Chunk) registerRegisterRegisterInstruction(builder *strings.Builder, name string, offset int) int {
	r1 := c.Code[offset+1]
	r2 := c.Code[offset+2]
	r3 := c.Code[offset+3]
	builder.WriteString(fmt.Sprintf("%-18s R%d, R%d, R%d\n", name, r1, r2, r3))
	return offset + 4
}

func (c *Chunk) registerByteInstruction(builder *strings.Builder, name string, offset int, operandName string) int {
	reg := c.Code[offset+1]
	operand := c.Code[offset+2]
	builder.WriteString(fmt.Sprintf("%-18s R%d, %s=%d\n", name, reg, operandName, operand))
	return offset + 3
}

func (c *Chunk) registerConstantInstruction(builder *strings.Builder, name string, offset int) int {
	reg := c.Code[offset+1]
	constIdx := c.readUint16(offset + 2)
	constant := "<out of range>"
	if int(constIdx) < len(c.Constants) {
		constant = c.Constants[constIdx].Inspect()
	}
	builder.WriteString(fmt.Sprintf("%-18s R%d, ConstIdx=%d (%s)\n", name, reg, constIdx, constant))
	return offset + 4
}

func (c *Chunk) registerUint16Instruction(builder *strings.Builder, name string, offset int, operandName string) int {
	reg := c.Code[offset+1]
	operand := c.readUint16(offset + 2)
	builder.WriteString(fmt.Sprintf("%-18s R%d, %s=%d\n", name, reg, operandName, operand))
	return offset + 4
}

func (c *Chunk) uint16RegisterInstruction(builder *strings.Builder, name string, offset int, operandName string) int {
	operand := c.readUint16(offset + 1)
	reg := c.Code[offset+3]
	builder.WriteString(fmt.Sprintf("%-18s %s=%d, R%d\n", name, operandName, operand, reg))
	return offset + 4
}

func (c *Chunk) byteUint16Instruction(builder *strings.Builder, name string, offset int, operandName string) int {
	b := c.Code[offset+1]
	operand := c.readUint16(offset + 2)
	builder.WriteString(fmt.Sprintf("%-18s %d, %s=%d\n", name, b, operandName, operand))
	return offset + 4
}

func (c *Chunk) uint16ByteInstruction(builder *strings.Builder, name string, offset int, operandName, byteName string) int {
	operand := c.readUint16(offset + 1)
	b := c.Code[offset+3]
	builder.WriteString(fmt.Sprintf("%-18s %s=%d, %s=%d\n", name, operandName, operand, byteName, b))
	return offset + 4
}

func (c *Chunk) callInstruction(builder *strings.Builder, name string, offset int) int {
	dest := c.Code[offset+1]
	funcReg := c.Code[offset+2]
	argCount := c.Code[offset+3]
	builder.WriteString(fmt.Sprintf("%-18s R%d, FuncReg=R%d, ArgCount=%d\n", name, dest, funcReg, argCount))
	return offset + 4
}

func (c *Chunk) jumpInstruction(builder *strings.Builder, name string, offset int, hasRegister bool) int {
	if hasRegister {
		reg := c.Code[offset+1]
		jump := int16(c.readUint16(offset + 2))
		builder.WriteString(fmt.Sprintf("%-18s R%d, Offset=%d (to %d)\n", name, reg, jump, offset+4+int(jump)))
		return offset + 4
	}
	jump := int16(c.readUint16(offset + 1))
	builder.WriteString(fmt.Sprintf("%-18s Offset=%d (to %d)\n", name, jump, offset+3+int(jump)))
	return offset + 3
}
