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
package kb

import (
	"github.com/mirkb/mirkb/pkg/ir"
	"github.com/mirkb/mirkb/pkg/util/collection/bit"
)

// NumSignBits returns a lower bound on the number of identical leading bits
// of a register (always >= 1).  This is a fresh top-level query: the
// known-bits cache must be empty on entry, and is cleared again on exit.
func (a *Analyzer) NumSignBits(reg ir.RegisterId) uint {
	if len(a.cache) != 0 {
		panic("analyzer cache not empty on entry to top-level query")
	}
	//
	a.cache = make(map[ir.RegisterId]KnownBits)
	result := a.numSignBits(reg, scalarDemand(), 0)
	a.cache = nil
	//
	return result
}

// numSignBits is the recursive implementation of the sign-bits query,
// sharing the known-bits cache and depth cap with compute.
func (a *Analyzer) numSignBits(reg ir.RegisterId, demanded bit.Set, depth uint) uint {
	regInfo := a.fn.Registers.Register(reg)
	width := regInfo.Width
	//
	if !regInfo.IsValid() || regInfo.IsVector() || depth >= a.maxDepth || demanded.IsEmpty() {
		return 1
	}
	//
	insn, hasDef := a.fn.DefiningInstruction(reg)
	//
	var answer uint = 1
	//
	if !hasDef {
		answer = 1
	} else {
		switch insn.Opcode {
		case ir.ConstInt:
			value := ir.AsConstant(insn.Operands[0])
			answer = MaskFromBigInt(width, &value).numSignBitsOfValue()
		case ir.Copy:
			answer = a.operandSignBits(insn.Operands[0], demanded, depth)
		case ir.SExt:
			use := ir.AsRegister(insn.Operands[0])
			srcWidth := a.fn.Registers.Register(use.Id).Width
			answer = a.operandSignBits(insn.Operands[0], demanded, depth+1) + (width - srcWidth)
		case ir.SExtInReg:
			s := insn.PartWidth
			src := a.operandSignBits(insn.Operands[0], demanded, depth+1)
			answer = max(src, width-s+1)
		case ir.SExtLoad:
			answer = width - insn.MemSize + 1
		case ir.ZExtLoad:
			answer = width - insn.MemSize
		case ir.Trunc:
			use := ir.AsRegister(insn.Operands[0])
			srcWidth := a.fn.Registers.Register(use.Id).Width
			src := a.operandSignBits(insn.Operands[0], demanded, depth+1)
			//
			if src > srcWidth-width {
				answer = src - (srcWidth - width)
			} else {
				answer = a.defaultNumSignBits(reg, demanded, depth)
			}
		case ir.Select:
			whenFalse := a.operandSignBits(insn.Operands[2], demanded, depth+1)
			//
			if whenFalse == 1 {
				answer = 1
			} else {
				whenTrue := a.operandSignBits(insn.Operands[1], demanded, depth+1)
				answer = min(whenTrue, whenFalse)
			}
		default:
			answer = a.defaultNumSignBits(reg, demanded, depth)
		}
	}
	//
	known := a.compute(reg, demanded, depth)
	//
	var mask Mask
	//
	switch {
	case known.IsNonNegative():
		mask = known.Zero
	case known.IsNegative():
		mask = known.One
	default:
		return answer
	}
	//
	fromKnown := mask.ShiftLeft(mask.Width() - width).LeadingOnes()
	//
	return max(answer, fromKnown)
}

// operandSignBits recurses into a register operand, treating a sub-field
// selector or an invalid-type source pessimistically (one sign bit known).
func (a *Analyzer) operandSignBits(op ir.Operand, demanded bit.Set, depth uint) uint {
	use := ir.AsRegister(op)
	regInfo := a.fn.Registers.Register(use.Id)
	//
	if use.Selector || !regInfo.IsValid() {
		return 1
	}
	//
	return a.numSignBits(use.Id, demanded, depth)
}

// defaultNumSignBits consults the target oracle for an opcode the generic
// dispatch table does not otherwise recognise.
func (a *Analyzer) defaultNumSignBits(reg ir.RegisterId, demanded bit.Set, depth uint) uint {
	return max(1, a.oracle.ComputeNumSignBitsForTargetInstr(reg, demanded, depth))
}

// numSignBitsOfValue counts the number of leading bits of this mask's value
// which equal its own sign bit: the standard leading-ones/leading-zeros
// count used for a materialised constant.
func (m Mask) numSignBitsOfValue() uint {
	if m.width == 0 {
		return 1
	}
	//
	if m.Test(m.width - 1) {
		return m.LeadingOnes()
	}
	//
	return m.LeadingZeros()
}
