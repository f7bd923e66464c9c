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

	"github.com/mirkb/mirkb/pkg/ir"
	"github.com/mirkb/mirkb/pkg/util/collection/bit"
)

// BooleanContents captures a target's convention for how a boolean result
// (from an integer or float comparison) occupies its register: either only
// the low bit is meaningful, or the whole register is sign-extended from
// it.
type BooleanContents struct {
	tag uint8
}

var (
	// UndefinedBooleanContents signals that a target makes no promise about
	// the bits of a boolean result beyond the low bit.
	UndefinedBooleanContents = BooleanContents{0}
	// ZeroOrOneBooleanContents signals that a boolean result occupies only
	// its low bit, with every other bit known zero.
	ZeroOrOneBooleanContents = BooleanContents{1}
	// ZeroOrNegativeOneBooleanContents signals that a boolean result is
	// sign-extended: all-zero or all-one.
	ZeroOrNegativeOneBooleanContents = BooleanContents{2}
)

// TargetOracle is the collaborator consulted whenever the dispatcher
// encounters something outside the generic opcode set: a non-generic
// opcode, a frame-index value, an alignment query, or a boolean-result
// convention.
type TargetOracle interface {
	// ComputeKnownBitsForTargetInstr computes the KnownBits of a register
	// defined by a non-generic (target) opcode.
	ComputeKnownBitsForTargetInstr(reg ir.RegisterId, demandedElts bit.Set, depth uint) KnownBits
	// ComputeKnownBitsForFrameIndex computes the KnownBits of a frame-index
	// value (e.g. reflecting stack alignment), given the enclosing
	// function.
	ComputeKnownBitsForFrameIndex(frameIndex uint, fn *ir.Function) KnownBits
	// ComputeKnownAlignForTargetInstr computes a lower bound, as a power of
	// two, on the alignment of a register defined by a non-generic opcode.
	ComputeKnownAlignForTargetInstr(reg ir.RegisterId, depth uint) uint
	// ComputeNumSignBitsForTargetInstr computes a lower bound on the number
	// of leading sign bits of a register defined by a non-generic opcode.
	ComputeNumSignBitsForTargetInstr(reg ir.RegisterId, demandedElts bit.Set, depth uint) uint
	// GetBooleanContents reports how this target represents a boolean
	// result, for the given combination of vector-ness and comparison
	// kind.
	GetBooleanContents(isVector, isFloatCompare bool) BooleanContents
}

// NullOracle is a TargetOracle which knows nothing about any target opcode:
// every query returns fully-unknown (or the most conservative answer).  It
// is a convenient default for functions containing only generic opcodes.
type NullOracle struct{}

// ComputeKnownBitsForTargetInstr implementation for TargetOracle.
func (NullOracle) ComputeKnownBitsForTargetInstr(reg ir.RegisterId, _ bit.Set, _ uint) KnownBits {
	return NewUnknown(1)
}

// ComputeKnownBitsForFrameIndex implementation for TargetOracle.
func (NullOracle) ComputeKnownBitsForFrameIndex(_ uint, _ *ir.Function) KnownBits {
	return NewUnknown(1)
}

// ComputeKnownAlignForTargetInstr implementation for TargetOracle.
func (NullOracle) ComputeKnownAlignForTargetInstr(_ ir.RegisterId, _ uint) uint {
	return 1
}

// ComputeNumSignBitsForTargetInstr implementation for TargetOracle.
func (NullOracle) ComputeNumSignBitsForTargetInstr(_ ir.RegisterId, _ bit.Set, _ uint) uint {
	return 1
}

// GetBooleanContents implementation for TargetOracle.
func (NullOracle) GetBooleanContents(_, _ bool) BooleanContents {
	return UndefinedBooleanContents
}

// RangeDecoder decodes range metadata attached to a Load instruction into a
// KnownBits: the bits common to every value permitted by every listed
// [lo,hi) interval.
type RangeDecoder interface {
	Decode(meta *ir.RangeMetadata, width uint) KnownBits
}

// DefaultRangeDecoder is the natural RangeDecoder: for each interval it
// derives the bits common to every integer in that interval (the shared
// high prefix of its endpoints), then intersects those facts across every
// interval in the metadata, since the actual value may fall in any one of
// them.
type DefaultRangeDecoder struct{}

// Decode implementation for RangeDecoder.
func (DefaultRangeDecoder) Decode(meta *ir.RangeMetadata, width uint) KnownBits {
	if meta == nil || len(meta.Ranges) == 0 {
		return NewUnknown(width)
	}
	//
	acc := rangeKnownBits(&meta.Ranges[0].Left, &meta.Ranges[0].Right, width)
	//
	for _, pair := range meta.Ranges[1:] {
		cur := rangeKnownBits(&pair.Left, &pair.Right, width)
		acc = KnownBits{acc.Zero.And(cur.Zero), acc.One.And(cur.One)}
	}
	//
	return acc
}

// rangeKnownBits derives the KnownBits common to every integer in the
// half-open interval [lo,hiExclusive).
func rangeKnownBits(lo, hiExclusive *big.Int, width uint) KnownBits {
	hiInclusive := new(big.Int).Sub(hiExclusive, big.NewInt(1))
	//
	if lo.Cmp(hiInclusive) > 0 {
		return NewUnknown(width)
	} else if lo.Cmp(hiInclusive) == 0 {
		return NewConstant(width, *lo)
	}
	//
	var (
		diff       = new(big.Int).Xor(lo, hiInclusive)
		topDiffBit = uint(diff.BitLen())
		commonHigh = width - topDiffBit
		loMask     = MaskFromBigInt(width, lo)
	)
	//
	return KnownBits{loMask.Not().HiBits(commonHigh), loMask.HiBits(commonHigh)}
}
