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
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/mirkb/mirkb/pkg/ir"
	"github.com/mirkb/mirkb/pkg/util/collection/bit"
)

// Analyzer runs the known-bits (and, via signbits.go, the sign-bits) query
// over a single Function.  It owns a per-top-level-query cache which must
// be empty on entry and is cleared again on exit; multiple Analyzer
// instances may coexist over the same or different functions, but must
// never share a cache.
type Analyzer struct {
	fn       *ir.Function
	oracle   TargetOracle
	decoder  RangeDecoder
	maxDepth uint
	cache    map[ir.RegisterId]KnownBits
}

// NewAnalyzer constructs an analyzer bound to the given function, target
// oracle and range-metadata decoder, with the given recursion depth cap.
func NewAnalyzer(fn *ir.Function, oracle TargetOracle, decoder RangeDecoder, maxDepth uint) *Analyzer {
	return &Analyzer{fn: fn, oracle: oracle, decoder: decoder, maxDepth: maxDepth}
}

// scalarDemand is the canonical "demanded elements" mask for a scalar
// query: lane zero only.
func scalarDemand() bit.Set {
	return bit.NewSingletonSet(0)
}

// KnownBitsOf computes the KnownBits of a register, as a fresh top-level
// query.
func (a *Analyzer) KnownBitsOf(reg ir.RegisterId) KnownBits {
	if len(a.cache) != 0 {
		panic("analyzer cache not empty on entry to top-level query")
	}
	//
	a.cache = make(map[ir.RegisterId]KnownBits)
	result := a.compute(reg, scalarDemand(), 0)
	a.cache = nil
	//
	return result
}

// KnownBitsOfInstruction computes the KnownBits of the sole result of an
// instruction.  Panics if the instruction does not have exactly one
// result.
func (a *Analyzer) KnownBitsOfInstruction(insn ir.Instruction) KnownBits {
	return a.KnownBitsOf(insn.Result())
}

// KnownZeros returns the known-zero mask of a register.
func (a *Analyzer) KnownZeros(reg ir.RegisterId) Mask {
	return a.KnownBitsOf(reg).Zero
}

// KnownOnes returns the known-one mask of a register.
func (a *Analyzer) KnownOnes(reg ir.RegisterId) Mask {
	return a.KnownBitsOf(reg).One
}

// SignBitIsZero determines whether the register's unsigned maximum is
// strictly less than 1 << (width-1), i.e. whether its sign bit is known
// zero.
func (a *Analyzer) SignBitIsZero(reg ir.RegisterId) bool {
	known := a.KnownBitsOf(reg)
	return known.IsNonNegative()
}

// ComputeKnownAlignment computes a lower bound, as a power of two, on the
// guaranteed alignment of a register.  Unlike KnownBitsOf this is not routed
// through the per-query cache: it is a narrow, independent traversal that
// only ever follows Copy and FrameIndex definitions itself, deferring to the
// target oracle for everything else (including every other generic
// opcode — this query does not derive alignment from known-bits the way
// NumSignBits derives its answer from KnownBits). As with the known-bits
// traversal, a Copy does not consume the recursion depth budget.
func (a *Analyzer) ComputeKnownAlignment(reg ir.RegisterId, depth uint) uint {
	if depth >= a.maxDepth {
		return 1
	}
	//
	insn, hasDef := a.fn.DefiningInstruction(reg)
	if !hasDef {
		return 1
	}
	//
	switch insn.Opcode {
	case ir.Copy:
		return a.ComputeKnownAlignment(ir.AsRegister(insn.Operands[0]).Id, depth)
	case ir.FrameIndex:
		idx := ir.AsConstant(insn.Operands[0])
		return a.fn.Frames.ObjectAlignment(uint(idx.Uint64()))
	default:
		return a.oracle.ComputeKnownAlignForTargetInstr(reg, depth+1)
	}
}

// compute is the recursive implementation shared by every entry point. It
// returns a KnownBits of the register's width.
func (a *Analyzer) compute(reg ir.RegisterId, demanded bit.Set, depth uint) KnownBits {
	regInfo := a.fn.Registers.Register(reg)
	//
	if !regInfo.IsValid() {
		return NewUnknown(max(regInfo.Width, 1))
	} else if regInfo.IsVector() {
		return NewUnknown(regInfo.Width)
	} else if depth >= a.maxDepth {
		return NewUnknown(regInfo.Width)
	} else if demanded.IsEmpty() {
		return NewUnknown(regInfo.Width)
	} else if known, ok := a.cache[reg]; ok {
		return known
	}
	//
	var (
		width = regInfo.Width
		known = NewUnknown(width)
	)
	//
	insn, hasDef := a.fn.DefiningInstruction(reg)
	if !hasDef {
		log.Debugf("known-bits: %s has no defining instruction", reg)
		a.cache[reg] = known
		//
		return known
	}
	//
	switch insn.Opcode {
	case ir.Copy:
		known = a.operandKnownBits(insn.Operands[0], demanded, depth)
	case ir.Phi:
		known = a.computePhi(reg, insn, demanded, depth, width)
	case ir.ConstInt:
		known = NewConstant(width, ir.AsConstant(insn.Operands[0]))
	case ir.FrameIndex:
		idx := ir.AsConstant(insn.Operands[0])
		known = a.oracle.ComputeKnownBitsForFrameIndex(uint(idx.Uint64()), a.fn)
	case ir.Add, ir.Sub:
		lhs := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		rhs := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
		known = AddSub(insn.Opcode == ir.Add, insn.NoSignedWrap, lhs, rhs)
	case ir.PtrAdd:
		known = a.computePtrAdd(reg, insn, demanded, depth, width)
	case ir.And, ir.Or, ir.Xor:
		rhs := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
		lhs := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		//
		switch insn.Opcode {
		case ir.And:
			known = And(lhs, rhs)
		case ir.Or:
			known = Or(lhs, rhs)
		default:
			known = Xor(lhs, rhs)
		}
	case ir.Mul:
		lhs := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		rhs := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
		known = ComputeForMul(lhs, rhs)
	case ir.Select:
		known = a.computeSelect(insn, demanded, depth)
	case ir.Smin, ir.Smax, ir.Umin, ir.Umax:
		lhs := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		rhs := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
		//
		switch insn.Opcode {
		case ir.Smin:
			known = Smin(lhs, rhs)
		case ir.Smax:
			known = Smax(lhs, rhs)
		case ir.Umin:
			known = Umin(lhs, rhs)
		default:
			known = Umax(lhs, rhs)
		}
	case ir.ICmp, ir.FCmp:
		known = a.computeCompare(width, insn.Opcode == ir.FCmp)
	case ir.SExt, ir.ZExt, ir.AnyExt:
		src := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		//
		switch insn.Opcode {
		case ir.SExt:
			known = src.SExt(width)
		case ir.ZExt:
			known = src.ZExt(width)
		default:
			known = src.AnyExt(width)
		}
	case ir.Trunc, ir.IntToPtr, ir.PtrToInt:
		known = a.computeTruncOrPtrCast(insn, width, demanded, depth)
	case ir.Load:
		known = a.computeLoad(insn, width)
	case ir.ZExtLoad:
		known = a.computeZExtLoad(insn, width)
	case ir.Shl, ir.Lshr, ir.Ashr:
		known = a.computeShift(insn, width, demanded, depth)
	case ir.MergeValues:
		known = a.computeMerge(insn, width, demanded, depth)
	case ir.UnmergeValues:
		known = a.computeUnmerge(reg, insn, width, demanded, depth)
	case ir.ByteSwap:
		src := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		known = src.ByteSwap()
	case ir.BitReverse:
		src := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
		known = src.BitReverse()
	default:
		known = a.oracle.ComputeKnownBitsForTargetInstr(reg, demanded, depth)
	}
	//
	if known.HasConflict() {
		panic("known-bits conflict: a position is asserted both zero and one")
	}
	//
	a.cache[reg] = known
	//
	return known
}

// operandKnownBits recurses into a register operand, treating a sub-field
// selector or an invalid-type source pessimistically as fully-unknown.
func (a *Analyzer) operandKnownBits(op ir.Operand, demanded bit.Set, depth uint) KnownBits {
	use := ir.AsRegister(op)
	regInfo := a.fn.Registers.Register(use.Id)
	//
	if use.Selector || !regInfo.IsValid() {
		return NewUnknown(max(regInfo.Width, 1))
	}
	//
	return a.compute(use.Id, demanded, depth)
}

func (a *Analyzer) computePhi(reg ir.RegisterId, insn ir.Instruction, demanded bit.Set, depth uint, width uint) KnownBits {
	// Insert a provisional fully-unknown entry before recursing, so that a
	// cycle through this phi terminates rather than looping forever.
	a.cache[reg] = NewUnknown(width)
	//
	var (
		acc   KnownBits
		first = true
	)
	//
	for _, op := range insn.Operands {
		if ir.IsBlock(op) {
			continue
		}
		//
		kb := a.operandKnownBits(op, demanded, depth+1)
		//
		if first {
			acc, first = kb, false
		} else {
			acc = KnownBits{acc.Zero.And(kb.Zero), acc.One.And(kb.One)}
		}
		//
		if acc.Zero.IsZero() && acc.One.IsZero() {
			break
		}
	}
	//
	if first {
		return NewUnknown(width)
	}
	//
	return acc
}

func (a *Analyzer) computePtrAdd(reg ir.RegisterId, insn ir.Instruction, demanded bit.Set, depth uint, width uint) KnownBits {
	ptrReg := a.fn.Registers.Register(ir.AsRegister(insn.Operands[0]).Id)
	if a.fn.Layout.IsNonIntegral(ptrReg.AddressSpace) {
		return NewUnknown(width)
	}
	//
	lhs := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
	rhs := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
	//
	return AddSub(true, insn.NoSignedWrap, lhs, rhs)
}

func (a *Analyzer) computeSelect(insn ir.Instruction, demanded bit.Set, depth uint) KnownBits {
	whenFalse := a.operandKnownBits(insn.Operands[2], demanded, depth+1)
	//
	if whenFalse.Zero.IsZero() && whenFalse.One.IsZero() {
		return whenFalse
	}
	//
	whenTrue := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
	//
	return KnownBits{whenFalse.Zero.And(whenTrue.Zero), whenFalse.One.And(whenTrue.One)}
}

func (a *Analyzer) computeCompare(width uint, isFloatCompare bool) KnownBits {
	bc := a.oracle.GetBooleanContents(false, isFloatCompare)
	//
	switch bc {
	case ZeroOrOneBooleanContents:
		return KnownBits{NewRangeOnes(width, 1, width), NewMask(width)}
	case ZeroOrNegativeOneBooleanContents:
		return NewUnknown(width)
	default:
		return NewUnknown(width)
	}
}

func (a *Analyzer) computeTruncOrPtrCast(insn ir.Instruction, destWidth uint, demanded bit.Set, depth uint) KnownBits {
	use := ir.AsRegister(insn.Operands[0])
	srcReg := a.fn.Registers.Register(use.Id)
	//
	var srcWidth uint
	if srcReg.IsPointer() {
		srcWidth = a.fn.Layout.IndexWidth(srcReg.AddressSpace)
	} else {
		srcWidth = srcReg.Width
	}
	//
	src := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
	//
	if destWidth <= srcWidth {
		return src.Trunc(destWidth)
	}
	// Destination wider than source (e.g. ptrtoint into a larger integer
	// register): the extra high bits are known zero.
	return src.ZExt(destWidth)
}

func (a *Analyzer) computeLoad(insn ir.Instruction, width uint) KnownBits {
	for _, op := range insn.Operands {
		if ir.IsMetadata(op) {
			return a.decoder.Decode(ir.AsMetadata(op), width)
		}
	}
	//
	return NewUnknown(width)
}

func (a *Analyzer) computeZExtLoad(insn ir.Instruction, width uint) KnownBits {
	if insn.MemSize >= width {
		return NewUnknown(width)
	}
	//
	return KnownBits{NewRangeOnes(width, insn.MemSize, width), NewMask(width)}
}

func (a *Analyzer) computeShift(insn ir.Instruction, width uint, demanded bit.Set, depth uint) KnownBits {
	amount := a.operandKnownBits(insn.Operands[1], demanded, depth+1)
	//
	amt, isConst := amount.ConstantValue()
	if !isConst || !fitsWidth(amt, width) {
		return NewUnknown(width)
	}
	//
	value := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
	shiftAmt := uint(amt.Uint64())
	//
	switch insn.Opcode {
	case ir.Shl:
		return Shl(value, amount)
	case ir.Lshr:
		return Lshr(value, amount)
	default:
		return Ashr(value, shiftAmt)
	}
}

func (a *Analyzer) computeMerge(insn ir.Instruction, width uint, demanded bit.Set, depth uint) KnownBits {
	known := NewUnknown(width)
	//
	for i, op := range insn.Operands {
		part := a.operandKnownBits(op, demanded, depth+1)
		offset := uint(i) * insn.PartWidth
		known = KnownBits{
			embedAt(known.Zero, part.Zero, offset),
			embedAt(known.One, part.One, offset),
		}
	}
	//
	return known
}

func (a *Analyzer) computeUnmerge(reg ir.RegisterId, insn ir.Instruction, width uint, demanded bit.Set, depth uint) KnownBits {
	use := ir.AsRegister(insn.Operands[0])
	srcReg := a.fn.Registers.Register(use.Id)
	//
	if srcReg.IsVector() {
		return NewUnknown(width)
	}
	//
	src := a.operandKnownBits(insn.Operands[0], demanded, depth+1)
	offset := insn.IndexOfResult(reg) * insn.PartWidth
	//
	return KnownBits{
		extractSlice(src.Zero, offset, width),
		extractSlice(src.One, offset, width),
	}
}

// embedAt places a narrower mask at a bit offset within a wider one,
// leaving bits outside that window untouched.
func embedAt(dst Mask, part Mask, offset uint) Mask {
	return dst.Or(part.Extend(dst.Width()).ShiftLeft(offset))
}

// extractSlice reads back a window of `width` bits starting at `offset`
// from a wider mask.
func extractSlice(m Mask, offset, width uint) Mask {
	return m.ShiftRightLogical(offset).Truncate(width)
}

// fitsWidth determines whether a non-negative integer names a valid (in
// range) shift amount for a register of the given width: the shift amount
// must be strictly less than the width itself, since an amount equal to or
// exceeding it is an oversized (undefined) shift.
func fitsWidth(v *big.Int, width uint) bool {
	if v.Sign() < 0 {
		return false
	}
	//
	return v.Cmp(new(big.Int).SetUint64(uint64(width))) < 0
}
