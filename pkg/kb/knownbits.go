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

import "math/big"

// KnownBits records, for a fixed-width value, which bit positions are
// provably zero, which are provably one, and which remain unknown.  The
// invariant Zero & One == 0 must hold after every operation; a value is
// immutable and every combinator below returns a fresh instance.
type KnownBits struct {
	Zero Mask
	One  Mask
}

// NewUnknown constructs a KnownBits of the given width with every bit
// unknown.
func NewUnknown(width uint) KnownBits {
	return KnownBits{NewMask(width), NewMask(width)}
}

// NewConstant constructs a fully-known KnownBits equal to the given value.
func NewConstant(width uint, value big.Int) KnownBits {
	one := MaskFromBigInt(width, &value)
	//
	return KnownBits{one.Not(), one}
}

// Width returns the bit width shared by both masks.
func (k KnownBits) Width() uint {
	return k.Zero.Width()
}

// HasConflict determines whether this value violates the Zero & One == 0
// invariant; asserting this never holds is a post-condition of every
// dispatcher step.
func (k KnownBits) HasConflict() bool {
	return !k.Zero.And(k.One).IsZero()
}

// IsConstant determines whether every bit position is known.
func (k KnownBits) IsConstant() bool {
	return k.Zero.Or(k.One).PopCount() == k.Width()
}

// ConstantValue returns the concrete value of this KnownBits, and true, if
// it is fully known; otherwise returns (nil, false).
func (k KnownBits) ConstantValue() (*big.Int, bool) {
	if !k.IsConstant() {
		return nil, false
	}
	//
	v := k.One.BigInt()
	//
	return &v, true
}

// IsNegative determines whether the sign bit is known one.
func (k KnownBits) IsNegative() bool {
	w := k.Width()
	return w > 0 && k.One.Test(w-1)
}

// IsNonNegative determines whether the sign bit is known zero.
func (k KnownBits) IsNonNegative() bool {
	w := k.Width()
	return w > 0 && k.Zero.Test(w-1)
}

// MinUnsignedValue returns the smallest value consistent with this
// KnownBits, interpreted as unsigned.
func (k KnownBits) MinUnsignedValue() Mask {
	return k.One
}

// MaxUnsignedValue returns the largest value consistent with this
// KnownBits, interpreted as unsigned.
func (k KnownBits) MaxUnsignedValue() Mask {
	return k.Zero.Not()
}

// MinLeadingZeros returns a lower bound on the number of leading zero bits
// of any concrete value matching this KnownBits.
func (k KnownBits) MinLeadingZeros() uint {
	return k.Zero.LeadingOnes()
}

// MinTrailingZeros returns a lower bound on the number of trailing zero
// bits of any concrete value matching this KnownBits.
func (k KnownBits) MinTrailingZeros() uint {
	return k.Zero.TrailingOnes()
}

// TrailingKnownBits returns the length of the longest prefix, starting from
// the least significant bit, in which every position is known (either zero
// or one).
func (k KnownBits) TrailingKnownBits() uint {
	return k.Zero.Or(k.One).TrailingOnes()
}

func (k KnownBits) requireSameWidth(o KnownBits) {
	if k.Width() != o.Width() {
		panic("mismatched KnownBits widths")
	}
}

// And computes the KnownBits of a bitwise conjunction.
func And(a, b KnownBits) KnownBits {
	a.requireSameWidth(b)
	return KnownBits{a.Zero.Or(b.Zero), a.One.And(b.One)}
}

// Or computes the KnownBits of a bitwise disjunction.
func Or(a, b KnownBits) KnownBits {
	a.requireSameWidth(b)
	return KnownBits{a.Zero.And(b.Zero), a.One.Or(b.One)}
}

// Xor computes the KnownBits of a bitwise exclusive-or.
func Xor(a, b KnownBits) KnownBits {
	a.requireSameWidth(b)
	//
	zero := a.Zero.And(b.Zero).Or(a.One.And(b.One))
	one := a.Zero.And(b.One).Or(a.One.And(b.Zero))
	//
	return KnownBits{zero, one}
}

// ZExt zero-extends this value to a wider width: the new high positions
// become known zero.
func (k KnownBits) ZExt(w2 uint) KnownBits {
	return KnownBits{k.Zero.ExtendWithHighOnes(w2), k.One.Extend(w2)}
}

// AnyExt extends this value to a wider width without asserting anything
// about the new high positions.
func (k KnownBits) AnyExt(w2 uint) KnownBits {
	return KnownBits{k.Zero.Extend(w2), k.One.Extend(w2)}
}

// SExt sign-extends this value to a wider width, replicating whatever is
// known of the source's sign bit into the new high positions.
func (k KnownBits) SExt(w2 uint) KnownBits {
	w := k.Width()
	if w == 0 {
		return k.AnyExt(w2)
	}
	//
	switch {
	case k.Zero.Test(w - 1):
		return KnownBits{k.Zero.ExtendWithHighOnes(w2), k.One.Extend(w2)}
	case k.One.Test(w - 1):
		return KnownBits{k.Zero.Extend(w2), k.One.ExtendWithHighOnes(w2)}
	default:
		return k.AnyExt(w2)
	}
}

// Trunc drops every bit at or above the new, narrower width.
func (k KnownBits) Trunc(w2 uint) KnownBits {
	return KnownBits{k.Zero.Truncate(w2), k.One.Truncate(w2)}
}

// AddCarry infers the KnownBits of lhs + rhs + carry, where the incoming
// carry is itself only partially known (carryZero and carryOne assert it is
// known 0 or known 1 respectively; both false means unknown; both true is a
// programming fault).
func AddCarry(lhs, rhs KnownBits, carryZero, carryOne bool) KnownBits {
	if carryZero && carryOne {
		panic("carry cannot be known both zero and one")
	}
	//
	lhs.requireSameWidth(rhs)
	//
	var (
		carryMayBeOne  uint64
		carryMustBeOne uint64
	)
	//
	if !carryZero {
		carryMayBeOne = 1
	}
	//
	if carryOne {
		carryMustBeOne = 1
	}
	//
	possibleSumMax := lhs.MaxUnsignedValue().Add(rhs.MaxUnsignedValue(), carryMayBeOne)
	possibleSumMin := lhs.MinUnsignedValue().Add(rhs.MinUnsignedValue(), carryMustBeOne)
	//
	carryKnownZero := possibleSumMax.Xor(lhs.Zero).Xor(rhs.Zero).Not()
	carryKnownOne := possibleSumMin.Xor(lhs.One).Xor(rhs.One)
	//
	known := lhs.Zero.Or(lhs.One).
		And(rhs.Zero.Or(rhs.One)).
		And(carryKnownZero.Or(carryKnownOne))
	//
	zero := possibleSumMax.Not().And(known)
	one := possibleSumMin.And(known)
	//
	return KnownBits{zero, one}
}

// AddSub computes the KnownBits of an add or subtract, optionally tightened
// by a no-signed-wrap annotation.
func AddSub(isAdd bool, noSignedWrap bool, lhs, rhs KnownBits) KnownBits {
	var result KnownBits
	//
	if isAdd {
		result = AddCarry(lhs, rhs, true, false)
	} else {
		flipped := KnownBits{rhs.One, rhs.Zero}
		result = AddCarry(lhs, flipped, false, true)
	}
	//
	w := result.Width()
	if w == 0 || !noSignedWrap || result.Zero.Test(w-1) || result.One.Test(w-1) {
		return result
	}
	//
	switch {
	case lhs.IsNonNegative() && rhs.IsNonNegative():
		result.Zero = result.Zero.WithBit(w-1, true)
	case lhs.IsNegative() && rhs.IsNegative():
		result.One = result.One.WithBit(w-1, true)
	}
	//
	return result
}

// ComputeForMul computes the KnownBits of lhs * rhs, combining a
// leading-zero estimate with an exact low-order chunk derived from each
// operand's known trailing bits.
func ComputeForMul(lhs, rhs KnownBits) KnownBits {
	lhs.requireSameWidth(rhs)
	//
	var (
		w               = lhs.Width()
		leadZLhs        = lhs.MinLeadingZeros()
		leadZRhs        = rhs.MinLeadingZeros()
		leadZ           = satSub(leadZLhs+leadZRhs, w)
		trailZLhs       = lhs.MinTrailingZeros()
		trailZRhs       = rhs.MinTrailingZeros()
		trailZ          = trailZLhs + trailZRhs
		trailKnownLhs   = lhs.TrailingKnownBits()
		trailKnownRhs   = rhs.TrailingKnownBits()
		smallest        = min(trailKnownLhs-trailZLhs, trailKnownRhs-trailZRhs)
		resultBitsKnown = min(smallest+trailZ, w)
		bottomKnown     = lhs.One.LoBits(trailKnownLhs).Mul(rhs.One.LoBits(trailKnownRhs))
	)
	//
	zero := NewRangeOnes(w, w-leadZ, w).Or(bottomKnown.Not().LoBits(resultBitsKnown))
	one := bottomKnown.LoBits(resultBitsKnown)
	//
	return KnownBits{zero, one}
}

func satSub(a, b uint) uint {
	if a <= b {
		return 0
	}
	//
	return a - b
}

// makeGE tightens k by asserting the underlying value is >= v: at the
// longest high prefix where k is already known <= v, any set bit of v
// forces a known one in the result.
func (k KnownBits) makeGE(v Mask) KnownBits {
	combined := k.Zero.Or(v)
	n := combined.LeadingOnes()
	maskedV := v.HiBits(n)
	//
	return KnownBits{k.Zero, k.One.Or(maskedV)}
}

func (k KnownBits) swapZeroOne() KnownBits {
	return KnownBits{k.One, k.Zero}
}

func (k KnownBits) flipSignBit() KnownBits {
	w := k.Width()
	if w == 0 {
		return k
	}
	//
	zBit, oBit := k.Zero.Test(w-1), k.One.Test(w-1)
	//
	return KnownBits{k.Zero.WithBit(w-1, oBit), k.One.WithBit(w-1, zBit)}
}

// Umax computes the KnownBits of the unsigned maximum of a and b.
func Umax(a, b KnownBits) KnownBits {
	a.requireSameWidth(b)
	//
	aMin, aMax := a.MinUnsignedValue().BigInt(), a.MaxUnsignedValue().BigInt()
	bMin, bMax := b.MinUnsignedValue().BigInt(), b.MaxUnsignedValue().BigInt()
	//
	if aMin.Cmp(&bMax) >= 0 {
		return a
	} else if bMin.Cmp(&aMax) >= 0 {
		return b
	}
	//
	ap := a.makeGE(b.MinUnsignedValue())
	bp := b.makeGE(a.MinUnsignedValue())
	//
	return KnownBits{ap.Zero.And(bp.Zero), ap.One.And(bp.One)}
}

// Umin computes the KnownBits of the unsigned minimum of a and b.
func Umin(a, b KnownBits) KnownBits {
	return Umax(a.swapZeroOne(), b.swapZeroOne()).swapZeroOne()
}

// Smax computes the KnownBits of the signed maximum of a and b.
func Smax(a, b KnownBits) KnownBits {
	return Umax(a.flipSignBit(), b.flipSignBit()).flipSignBit()
}

// Smin computes the KnownBits of the signed minimum of a and b.
func Smin(a, b KnownBits) KnownBits {
	af := a.swapZeroOne().flipSignBit()
	bf := b.swapZeroOne().flipSignBit()
	//
	return Umax(af, bf).flipSignBit().swapZeroOne()
}

// Abs computes the KnownBits of the absolute value of k.
func (k KnownBits) Abs() KnownBits {
	w := k.Width()
	//
	if k.IsNonNegative() || w == 0 {
		return k
	}
	//
	if k.IsConstant() {
		// Fully known and negative: the result is the exact two's-complement
		// negation (~v + 1), wrapping modulo 2^w.
		neg := k.One.Not().Add(NewMask(w), 1)
		return KnownBits{neg.Not(), neg}
	}
	//
	if !k.One.LoBits(w - 1).IsZero() {
		return KnownBits{NewMask(w).WithBit(w-1, true), NewMask(w)}
	}
	//
	return NewUnknown(w)
}

// ByteSwap computes the KnownBits of the byte-reversal of k.
func (k KnownBits) ByteSwap() KnownBits {
	return KnownBits{k.Zero.ByteSwap(), k.One.ByteSwap()}
}

// BitReverse computes the KnownBits of the bit-reversal of k.
func (k KnownBits) BitReverse() KnownBits {
	return KnownBits{k.Zero.BitReverse(), k.One.BitReverse()}
}

// Shl computes the KnownBits of lhs << rhs.  When rhs is a known constant
// smaller than the width, this shifts both masks exactly; otherwise it
// infers only the low known-zero bits implied by rhs's minimum value and by
// lhs's own trailing zeros.
func Shl(lhs, rhs KnownBits) KnownBits {
	w := lhs.Width()
	//
	if s, ok := rhs.ConstantValue(); ok && s.Cmp(new(big.Int).SetUint64(uint64(w))) < 0 {
		amt := uint(s.Uint64())
		zero := lhs.Zero.ShiftLeft(amt).Or(NewRangeOnes(w, 0, amt))
		one := lhs.One.ShiftLeft(amt)
		//
		return KnownBits{zero, one}
	}
	//
	var (
		minShift = rhs.MinUnsignedValue().BigInt()
		known    = uint(0)
	)
	//
	if minShift.Cmp(new(big.Int).SetUint64(uint64(w))) < 0 {
		known = uint(minShift.Uint64())
	}
	//
	zero := NewRangeOnes(w, 0, known).Or(NewRangeOnes(w, 0, lhs.MinTrailingZeros()))
	//
	return KnownBits{zero, NewMask(w)}
}

// Lshr computes the KnownBits of lhs >> rhs (logical).  Symmetric to Shl,
// but inferring known-zero bits from the high end.
func Lshr(lhs, rhs KnownBits) KnownBits {
	w := lhs.Width()
	//
	if s, ok := rhs.ConstantValue(); ok && s.Cmp(new(big.Int).SetUint64(uint64(w))) < 0 {
		amt := uint(s.Uint64())
		zero := lhs.Zero.ShiftRightLogical(amt).Or(NewRangeOnes(w, w-amt, w))
		one := lhs.One.ShiftRightLogical(amt)
		//
		return KnownBits{zero, one}
	}
	//
	var (
		minShift = rhs.MinUnsignedValue().BigInt()
		known    = uint(0)
	)
	//
	if minShift.Cmp(new(big.Int).SetUint64(uint64(w))) < 0 {
		known = uint(minShift.Uint64())
	}
	//
	zero := NewRangeOnes(w, w-known, w).Or(NewRangeOnes(w, w-lhs.MinLeadingZeros(), w))
	//
	return KnownBits{zero, NewMask(w)}
}

// Ashr computes the KnownBits of lhs >> rhs (arithmetic), for a known
// constant shift amount.  A non-constant shift amount is handled by the
// dispatcher, which conservatively returns fully-unknown rather than call
// this (see the design notes on non-constant ashr).
func Ashr(lhs KnownBits, amt uint) KnownBits {
	return KnownBits{lhs.Zero.ShiftRightArithmetic(amt), lhs.One.ShiftRightArithmetic(amt)}
}
