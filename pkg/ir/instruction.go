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

import (
	"fmt"
	"strings"
)

// Instruction is a single SSA operation: an opcode, its ordered operand
// list, and zero or more results.  The analysis assumes strict SSA, so every
// register named in Results is defined here and nowhere else.
type Instruction struct {
	// Opcode performed by this instruction.
	Opcode Opcode
	// Results lists the registers defined by this instruction, in order.
	// Most instructions define exactly one; MergeValues/UnmergeValues may
	// define (or consume) several.
	Results []RegisterId
	// Operands lists the instruction's inputs, in declared order.
	Operands []Operand
	// NoSignedWrap records whether an add/sub instruction was annotated as
	// never overflowing in the signed sense.
	NoSignedWrap bool
	// MemSize is the width, in bits, of the memory access performed by a
	// Load/SExtLoad/ZExtLoad instruction (may be narrower than the result
	// register for extending loads).
	MemSize uint
	// PartWidth is the width, in bits, of each contiguous part named by a
	// MergeValues/UnmergeValues instruction.
	PartWidth uint
}

// Result returns the sole result register of this instruction.  Panics if
// the instruction does not have exactly one result, matching the core's
// "single-result" entry contract.
func (i Instruction) Result() RegisterId {
	if len(i.Results) != 1 {
		panic(fmt.Sprintf("instruction %s does not have a single result", i.Opcode))
	}
	//
	return i.Results[0]
}

// IndexOfResult returns the position of the given register amongst this
// instruction's declared results.  Used by UnmergeValues to know which
// slice of the source it should extract.
func (i Instruction) IndexOfResult(reg RegisterId) uint {
	for idx, r := range i.Results {
		if r == reg {
			return uint(idx)
		}
	}
	//
	panic("register is not a result of this instruction")
}

func (i Instruction) String(regs RegisterMap) string {
	var builder strings.Builder
	//
	for idx, r := range i.Results {
		if idx != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(r.String())
	}
	//
	if len(i.Results) != 0 {
		builder.WriteString(" = ")
	}
	//
	builder.WriteString(i.Opcode.String())
	//
	for _, op := range i.Operands {
		builder.WriteString(" ")
		builder.WriteString(OperandString(op))
	}
	//
	return builder.String()
}
