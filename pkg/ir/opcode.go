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

// Opcode identifies the operation performed by an Instruction.  Only generic
// opcodes are listed here: those the known-bits dispatcher understands
// natively, plus SExtLoad and SExtInReg, which only the sign-bits query
// handles (the known-bits dispatcher forwards them to the target lowering
// oracle).  Anything else is a target opcode and is forwarded to the target
// lowering oracle.
type Opcode struct {
	tag     uint8
	generic bool
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	//
	return "target-op"
}

var opcodeNames = map[Opcode]string{}

func register(tag uint8, name string) Opcode {
	op := Opcode{tag, true}
	opcodeNames[op] = name
	//
	return op
}

var (
	// Copy is a pass-through assignment, possibly crossing register classes.
	Copy = register(1, "copy")
	// Phi merges values from multiple control-flow predecessors.
	Phi = register(2, "phi")
	// ConstInt materialises a known integer constant.
	ConstInt = register(3, "const")
	// FrameIndex references a stack slot; resolved by the target oracle.
	FrameIndex = register(4, "frame-index")
	// Add computes lhs + rhs.
	Add = register(5, "add")
	// PtrAdd computes a pointer plus an integer offset.
	PtrAdd = register(6, "ptr-add")
	// Sub computes lhs - rhs.
	Sub = register(7, "sub")
	// And computes the bitwise conjunction of its operands.
	And = register(8, "and")
	// Or computes the bitwise disjunction of its operands.
	Or = register(9, "or")
	// Xor computes the bitwise exclusive-or of its operands.
	Xor = register(10, "xor")
	// Mul computes lhs * rhs.
	Mul = register(11, "mul")
	// Select chooses between two values based on a boolean condition.
	Select = register(12, "select")
	// Smin computes the signed minimum of its operands.
	Smin = register(13, "smin")
	// Smax computes the signed maximum of its operands.
	Smax = register(14, "smax")
	// Umin computes the unsigned minimum of its operands.
	Umin = register(15, "umin")
	// Umax computes the unsigned maximum of its operands.
	Umax = register(16, "umax")
	// ICmp computes an integer comparison, producing a boolean result.
	ICmp = register(17, "icmp")
	// FCmp computes a floating-point comparison, producing a boolean result.
	FCmp = register(18, "fcmp")
	// SExt sign-extends its source to a wider destination width.
	SExt = register(19, "sext")
	// ZExt zero-extends its source to a wider destination width.
	ZExt = register(20, "zext")
	// AnyExt extends its source to a wider width, leaving new bits unknown.
	AnyExt = register(21, "anyext")
	// Trunc drops high bits of its source to produce a narrower value.
	Trunc = register(22, "trunc")
	// IntToPtr casts an integer to a pointer.
	IntToPtr = register(23, "inttoptr")
	// PtrToInt casts a pointer to an integer.
	PtrToInt = register(24, "ptrtoint")
	// Load reads a value from memory, optionally constrained by range
	// metadata.
	Load = register(25, "load")
	// SExtLoad reads a narrower value from memory and sign-extends it.
	SExtLoad = register(26, "sextload")
	// ZExtLoad reads a narrower value from memory and zero-extends it.
	ZExtLoad = register(27, "zextload")
	// Shl computes a logical left shift.
	Shl = register(28, "shl")
	// Lshr computes a logical right shift.
	Lshr = register(29, "lshr")
	// Ashr computes an arithmetic right shift.
	Ashr = register(30, "ashr")
	// MergeValues packs several contiguous parts into one wider register.
	MergeValues = register(31, "merge-values")
	// UnmergeValues splits a register into several contiguous parts.
	UnmergeValues = register(32, "unmerge-values")
	// ByteSwap reverses the byte order of its source.
	ByteSwap = register(33, "bswap")
	// BitReverse reverses the bit order of its source.
	BitReverse = register(34, "bitreverse")
	// SExtInReg sign-extends the low PartWidth bits of its source back out
	// to the full register width, without changing that width (unlike
	// SExt, which widens).
	SExtInReg = register(35, "sext-inreg")
)

// IsGeneric determines whether this is one of the generic opcodes declared
// above, as opposed to a target opcode built by NewTargetOpcode.
func (o Opcode) IsGeneric() bool {
	return o.generic
}

// NewTargetOpcode constructs an opcode outside the generic set, identified
// purely by its tag.  The dispatcher forwards any instruction bearing one of
// these straight to the target lowering oracle.
func NewTargetOpcode(tag uint8) Opcode {
	return Opcode{tag, false}
}
