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

import "strings"

// DataLayout is the data-layout oracle consulted whenever a pointer
// register's index width, or an address space's integral-ness, is needed.
type DataLayout interface {
	// IndexWidth returns the pointer index width, in bits, used by the given
	// address space.
	IndexWidth(addressSpace uint) uint
	// IsNonIntegral reports whether pointer-to-integer arithmetic has no
	// well-defined bit-level meaning in the given address space.  Arithmetic
	// on such pointers yields fully-unknown.
	IsNonIntegral(addressSpace uint) bool
}

// FlatDataLayout is the simplest possible DataLayout: every address space
// shares one index width, and none are non-integral unless explicitly
// listed.
type FlatDataLayout struct {
	DefaultIndexWidth uint
	NonIntegralSpaces map[uint]bool
}

// IndexWidth implementation for DataLayout.
func (d FlatDataLayout) IndexWidth(uint) uint {
	return d.DefaultIndexWidth
}

// IsNonIntegral implementation for DataLayout.
func (d FlatDataLayout) IsNonIntegral(addressSpace uint) bool {
	return d.NonIntegralSpaces[addressSpace]
}

// FrameInfo is the collaborator consulted when resolving the guaranteed
// alignment of a stack-slot (frame-index) value.  It is kept separate from
// DataLayout because alignment is a property of the individual slot, not of
// an address space, and is only ever consulted by the alignment query.
type FrameInfo interface {
	// ObjectAlignment returns the guaranteed alignment, as a power of two,
	// of the stack slot at the given frame index.
	ObjectAlignment(frameIndex uint) uint
}

// NullFrameInfo is the trivial FrameInfo: every frame index is only
// guaranteed aligned to 1, i.e. no guarantee at all.
type NullFrameInfo struct{}

// ObjectAlignment implementation for FrameInfo.
func (NullFrameInfo) ObjectAlignment(uint) uint {
	return 1
}

// Function is a single machine-IR function: a flat register map together
// with its defining instructions.  Control flow (basic-block structure) is
// not modelled explicitly; only the def-use relationship the known-bits
// analysis needs is retained, with Phi operands interleaving incoming block
// references and incoming values.
type Function struct {
	// Name of this function, for debug printing only.
	Name string
	// Registers declared by this function.
	Registers RegisterMap
	// Layout is the data-layout oracle for this function's target.
	Layout DataLayout
	// Frames is the frame-info oracle consulted by the alignment query for
	// this function's target.
	Frames FrameInfo
	// instrs lists every instruction in this function, in an arbitrary but
	// fixed order (definitions always precede no particular position, since
	// SSA here is not tied to a linear schedule - only Phi is cycle-capable).
	instrs []Instruction
	// defs maps a register to the index, within instrs, of its (unique)
	// defining instruction.
	defs map[RegisterId]int
}

// NewFunction constructs an (initially empty) function over the given
// register map, data layout, and frame-info oracle.
func NewFunction(name string, regs RegisterMap, layout DataLayout, frames FrameInfo) *Function {
	return &Function{name, regs, layout, frames, nil, make(map[RegisterId]int)}
}

// AddInstruction appends an instruction to this function, recording it as
// the defining instruction for each of its declared results.
func (f *Function) AddInstruction(insn Instruction) {
	idx := len(f.instrs)
	f.instrs = append(f.instrs, insn)
	//
	for _, r := range insn.Results {
		f.defs[r] = idx
	}
}

// Instructions returns every instruction declared in this function.
func (f *Function) Instructions() []Instruction {
	return f.instrs
}

// DefiningInstruction returns the unique instruction which defines the given
// register, and true; or a zero Instruction and false if no definition is
// recorded (which the analysis treats as an invalid-type base case).
func (f *Function) DefiningInstruction(reg RegisterId) (Instruction, bool) {
	idx, ok := f.defs[reg]
	if !ok {
		return Instruction{}, false
	}
	//
	return f.instrs[idx], true
}

func (f *Function) String() string {
	var builder strings.Builder
	//
	builder.WriteString("function ")
	builder.WriteString(f.Name)
	builder.WriteString(" {\n")
	//
	for _, insn := range f.instrs {
		builder.WriteString("  ")
		builder.WriteString(insn.String(f.Registers))
		builder.WriteString("\n")
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
