// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ir

import "math/big"

// Builder provides a mechanical means of constructing a Function: registers
// are allocated one at a time, and instructions are appended referencing
// previously allocated registers.  There is no textual parser; this is the
// construction path used by the CLI's sample function and by tests.
type Builder struct {
	name   string
	layout DataLayout
	frames FrameInfo
	regs   []Register
	instrs []Instruction
}

// NewBuilder constructs an empty function builder for the named function
// over the given data layout.  Its frame-info oracle defaults to
// NullFrameInfo; attach a different one with WithFrames.
func NewBuilder(name string, layout DataLayout) *Builder {
	return &Builder{name: name, layout: layout, frames: NullFrameInfo{}}
}

// WithFrames attaches a non-trivial FrameInfo collaborator to this builder,
// consulted by the alignment query for any FrameIndex register it declares.
// Returns the builder itself, for chaining.
func (b *Builder) WithFrames(frames FrameInfo) *Builder {
	b.frames = frames
	return b
}

// Scalar allocates a new scalar integer register of the given width.
func (b *Builder) Scalar(name string, width uint) RegisterId {
	return b.declare(NewScalarRegister(name, width))
}

// Pointer allocates a new pointer register in the given address space,
// resolving its index width from the builder's data layout.
func (b *Builder) Pointer(name string, addressSpace uint) RegisterId {
	width := b.layout.IndexWidth(addressSpace)
	return b.declare(NewPointerRegister(name, addressSpace, width))
}

// Vector allocates a new vector register; the known-bits analysis always
// treats these as fully-unknown.
func (b *Builder) Vector(name string, lanes uint, laneWidth uint) RegisterId {
	return b.declare(NewVectorRegister(name, lanes, laneWidth))
}

func (b *Builder) declare(reg Register) RegisterId {
	id := NewRegisterId(uint(len(b.regs)))
	b.regs = append(b.regs, reg)
	//
	return id
}

// Emit appends a fully-formed instruction.  Prefer the opcode-specific
// helpers below where one exists; Emit remains available for instructions
// (such as target opcodes, or operands with a sub-field selector) that no
// helper builds.
func (b *Builder) Emit(insn Instruction) {
	b.instrs = append(b.instrs, insn)
}

// Const emits a ConstInt definition of the given register with the given
// value.
func (b *Builder) Const(dst RegisterId, value big.Int) {
	b.Emit(Instruction{Opcode: ConstInt, Results: []RegisterId{dst}, Operands: []Operand{NewConstantOperand(value)}})
}

// Binary emits a two-operand instruction (add/sub/and/or/xor/mul/smin/smax
// /umin/umax) defining dst from lhs and rhs.
func (b *Builder) Binary(op Opcode, dst, lhs, rhs RegisterId) {
	b.Emit(Instruction{Opcode: op, Results: []RegisterId{dst},
		Operands: []Operand{NewRegisterOperand(lhs), NewRegisterOperand(rhs)}})
}

// BinaryNSW emits an add/sub annotated as not overflowing in the signed
// sense.
func (b *Builder) BinaryNSW(op Opcode, dst, lhs, rhs RegisterId) {
	b.Emit(Instruction{Opcode: op, Results: []RegisterId{dst}, NoSignedWrap: true,
		Operands: []Operand{NewRegisterOperand(lhs), NewRegisterOperand(rhs)}})
}

// Unary emits a one-operand instruction (copy/sext/zext/anyext/trunc/
// inttoptr/ptrtoint/bswap/bitreverse) defining dst from src.
func (b *Builder) Unary(op Opcode, dst, src RegisterId) {
	b.Emit(Instruction{Opcode: op, Results: []RegisterId{dst}, Operands: []Operand{NewRegisterOperand(src)}})
}

// Shift emits a shl/lshr/ashr defining dst from value shifted by amount.
func (b *Builder) Shift(op Opcode, dst, value, amount RegisterId) {
	b.Emit(Instruction{Opcode: op, Results: []RegisterId{dst},
		Operands: []Operand{NewRegisterOperand(value), NewRegisterOperand(amount)}})
}

// Select emits a select(cond, whenTrue, whenFalse).
func (b *Builder) Select(dst, cond, whenTrue, whenFalse RegisterId) {
	b.Emit(Instruction{Opcode: Select, Results: []RegisterId{dst},
		Operands: []Operand{NewRegisterOperand(cond), NewRegisterOperand(whenTrue), NewRegisterOperand(whenFalse)}})
}

// Phi emits a phi merging the given (block, value) incoming pairs.
func (b *Builder) Phi(dst RegisterId, incoming ...struct {
	Block uint
	Value RegisterId
}) {
	var ops []Operand
	//
	for _, in := range incoming {
		ops = append(ops, NewBlockOperand(in.Block), NewRegisterOperand(in.Value))
	}
	//
	b.Emit(Instruction{Opcode: Phi, Results: []RegisterId{dst}, Operands: ops})
}

// Load emits a load of the given memory size (in bits) into dst from the
// pointer addr, optionally constrained by range metadata.
func (b *Builder) Load(dst, addr RegisterId, memSize uint, meta *RangeMetadata) {
	var ops = []Operand{NewRegisterOperand(addr)}
	if meta != nil {
		ops = append(ops, NewMetadataOperand(meta))
	}
	//
	b.Emit(Instruction{Opcode: Load, Results: []RegisterId{dst}, Operands: ops, MemSize: memSize})
}

// ExtendingLoad emits a sextload/zextload of the given memory size into dst.
func (b *Builder) ExtendingLoad(op Opcode, dst, addr RegisterId, memSize uint) {
	b.Emit(Instruction{Opcode: op, Results: []RegisterId{dst},
		Operands: []Operand{NewRegisterOperand(addr)}, MemSize: memSize})
}

// Merge emits a merge-values packing the given parts, of the given
// per-part width, into dst (in declared low-to-high order).
func (b *Builder) Merge(dst RegisterId, partWidth uint, parts ...RegisterId) {
	var ops []Operand
	for _, p := range parts {
		ops = append(ops, NewRegisterOperand(p))
	}
	//
	b.Emit(Instruction{Opcode: MergeValues, Results: []RegisterId{dst}, Operands: ops, PartWidth: partWidth})
}

// Unmerge emits an unmerge-values splitting src into the given destination
// registers, each of the given per-part width.
func (b *Builder) Unmerge(partWidth uint, src RegisterId, dsts ...RegisterId) {
	b.Emit(Instruction{Opcode: UnmergeValues, Results: dsts,
		Operands: []Operand{NewRegisterOperand(src)}, PartWidth: partWidth})
}

// FrameIndex emits a frame-index reference to stack slot index, resolved
// by the target oracle (or, for its alignment, by the builder's FrameInfo).
func (b *Builder) FrameIndex(dst RegisterId, index uint) {
	b.Emit(Instruction{Opcode: FrameIndex, Results: []RegisterId{dst},
		Operands: []Operand{NewConstantOperand(*big.NewInt(int64(index)))}})
}

// Build finalises the function, wiring every instruction's results into the
// def-use map.
func (b *Builder) Build() *Function {
	fn := NewFunction(b.name, NewArrayRegisterMap(b.regs), b.layout, b.frames)
	//
	for _, insn := range b.instrs {
		fn.AddInstruction(insn)
	}
	//
	return fn
}
