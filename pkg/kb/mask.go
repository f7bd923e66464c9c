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

// Package kb implements the known-bits dataflow analysis: a bit-level
// abstract interpretation of an SSA machine IR, plus a companion query for
// the number of leading sign bits of a value.
package kb

import "math/big"

// Mask is a fixed-width bit pattern, always held as a non-negative value in
// [0, 2^width).  It underlies both halves (zero-mask, one-mask) of a
// KnownBits value.  Arbitrary width is supported directly via math/big,
// since registers in this domain range from single-bit flags up through
// 256-bit machine words.
type Mask struct {
	width uint
	bits  big.Int
}

func bound(width uint) *big.Int {
	var b big.Int
	b.Lsh(big.NewInt(1), width)
	//
	return &b
}

func boundMask(width uint) *big.Int {
	b := bound(width)
	b.Sub(b, big.NewInt(1))
	//
	return b
}

// NewMask constructs an all-zero mask of the given width.
func NewMask(width uint) Mask {
	return Mask{width: width}
}

// AllOnes constructs a mask with every bit, of the given width, set.
func AllOnes(width uint) Mask {
	return Mask{width, *boundMask(width)}
}

// MaskFromUint64 constructs a mask of the given width from a uint64 value,
// reduced modulo 2^width.
func MaskFromUint64(width uint, v uint64) Mask {
	var bits big.Int
	//
	bits.SetUint64(v)
	bits.And(&bits, boundMask(width))
	//
	return Mask{width, bits}
}

// MaskFromBigInt constructs a mask of the given width from an arbitrary
// (possibly negative, possibly oversized) integer, reduced modulo 2^width.
func MaskFromBigInt(width uint, v *big.Int) Mask {
	var bits big.Int
	bits.Mod(v, bound(width))
	//
	return Mask{width, bits}
}

// NewRangeOnes constructs a mask of the given width with bits [lo,hi) set
// and all others clear.
func NewRangeOnes(width, lo, hi uint) Mask {
	if hi <= lo {
		return NewMask(width)
	}
	//
	var run big.Int
	run.Lsh(big.NewInt(1), hi-lo)
	run.Sub(&run, big.NewInt(1))
	run.Lsh(&run, lo)
	//
	return Mask{width, run}
}

// Width returns the bit width of this mask.
func (m Mask) Width() uint {
	return m.width
}

// BigInt returns a copy of the underlying non-negative integer value.
func (m Mask) BigInt() big.Int {
	var c big.Int
	c.Set(&m.bits)
	//
	return c
}

// IsZero determines whether every bit of this mask is clear.
func (m Mask) IsZero() bool {
	return m.bits.Sign() == 0
}

// Equal determines whether two masks of the same width hold the same bits.
func (m Mask) Equal(o Mask) bool {
	return m.width == o.width && m.bits.Cmp(&o.bits) == 0
}

// Test returns whether bit i is set.
func (m Mask) Test(i uint) bool {
	return m.bits.Bit(int(i)) == 1
}

// WithBit returns a copy of this mask with bit i forced to the given value.
func (m Mask) WithBit(i uint, val bool) Mask {
	var b big.Int
	b.Set(&m.bits)
	//
	if val {
		b.SetBit(&b, int(i), 1)
	} else {
		b.SetBit(&b, int(i), 0)
	}
	//
	return Mask{m.width, b}
}

// Not returns the bitwise complement of this mask, within its width.
func (m Mask) Not() Mask {
	var r big.Int
	r.Xor(boundMask(m.width), &m.bits)
	//
	return Mask{m.width, r}
}

func (m Mask) requireSameWidth(o Mask) {
	if m.width != o.width {
		panic("mismatched mask widths")
	}
}

// And returns the bitwise conjunction of two equal-width masks.
func (m Mask) And(o Mask) Mask {
	m.requireSameWidth(o)
	//
	var r big.Int
	r.And(&m.bits, &o.bits)
	//
	return Mask{m.width, r}
}

// Or returns the bitwise disjunction of two equal-width masks.
func (m Mask) Or(o Mask) Mask {
	m.requireSameWidth(o)
	//
	var r big.Int
	r.Or(&m.bits, &o.bits)
	//
	return Mask{m.width, r}
}

// Xor returns the bitwise exclusive-or of two equal-width masks.
func (m Mask) Xor(o Mask) Mask {
	m.requireSameWidth(o)
	//
	var r big.Int
	r.Xor(&m.bits, &o.bits)
	//
	return Mask{m.width, r}
}

// ShiftLeft returns this mask shifted left by amt, dropping bits which
// overflow the width and filling low positions with zero.
func (m Mask) ShiftLeft(amt uint) Mask {
	if amt >= m.width {
		return NewMask(m.width)
	}
	//
	var r big.Int
	r.Lsh(&m.bits, amt)
	r.And(&r, boundMask(m.width))
	//
	return Mask{m.width, r}
}

// ShiftRightLogical returns this mask shifted right by amt, filling high
// positions with zero.
func (m Mask) ShiftRightLogical(amt uint) Mask {
	if amt >= m.width {
		return NewMask(m.width)
	}
	//
	var r big.Int
	r.Rsh(&m.bits, amt)
	//
	return Mask{m.width, r}
}

// ShiftRightArithmetic treats this mask's own top bit as a sign bit and
// replicates it into the vacated high positions.  This is used, per the
// algebra's ashr rule, to shift the zero- and one-masks themselves as if
// they were the values they describe.
func (m Mask) ShiftRightArithmetic(amt uint) Mask {
	if m.width == 0 {
		return m
	}
	//
	fill := m.Test(m.width - 1)
	//
	if amt >= m.width {
		if fill {
			return AllOnes(m.width)
		}
		//
		return NewMask(m.width)
	} else if amt == 0 {
		return m
	}
	//
	var r big.Int
	r.Rsh(&m.bits, amt)
	//
	if fill {
		top := NewRangeOnes(m.width, m.width-amt, m.width)
		r.Or(&r, &top.bits)
	}
	//
	return Mask{m.width, r}
}

// LoBits keeps only the lowest n bits of this mask, clearing the rest.
func (m Mask) LoBits(n uint) Mask {
	if n >= m.width {
		return m
	}
	//
	var r big.Int
	r.And(&m.bits, boundMask(n))
	//
	return Mask{m.width, r}
}

// HiBits keeps only the top n bits of this mask, clearing the rest.
func (m Mask) HiBits(n uint) Mask {
	if n == 0 {
		return NewMask(m.width)
	} else if n >= m.width {
		return m
	}
	//
	var r big.Int
	r.Rsh(&m.bits, m.width-n)
	r.Lsh(&r, m.width-n)
	//
	return Mask{m.width, r}
}

// Extend returns this mask reinterpreted at a wider width, with the new
// high bits left clear (numerically unchanged, since the represented value
// was already < 2^width <= 2^newWidth).
func (m Mask) Extend(newWidth uint) Mask {
	var b big.Int
	b.Set(&m.bits)
	//
	return Mask{newWidth, b}
}

// ExtendWithHighOnes is as Extend, but additionally sets every new high bit.
func (m Mask) ExtendWithHighOnes(newWidth uint) Mask {
	r := m.Extend(newWidth)
	//
	if newWidth > m.width {
		top := NewRangeOnes(newWidth, m.width, newWidth)
		r.bits.Or(&r.bits, &top.bits)
	}
	//
	return r
}

// Truncate drops all bits at or above newWidth.
func (m Mask) Truncate(newWidth uint) Mask {
	var b big.Int
	b.And(&m.bits, boundMask(newWidth))
	//
	return Mask{newWidth, b}
}

// Add returns (this + other + carry) mod 2^width.
func (m Mask) Add(o Mask, carry uint64) Mask {
	m.requireSameWidth(o)
	//
	var sum big.Int
	sum.Add(&m.bits, &o.bits)
	sum.Add(&sum, new(big.Int).SetUint64(carry))
	sum.Mod(&sum, bound(m.width))
	//
	return Mask{m.width, sum}
}

// Mul returns (this * other) mod 2^width.
func (m Mask) Mul(o Mask) Mask {
	m.requireSameWidth(o)
	//
	var product big.Int
	product.Mul(&m.bits, &o.bits)
	product.Mod(&product, bound(m.width))
	//
	return Mask{m.width, product}
}

// LeadingZeros counts the number of consecutive clear bits starting from the
// most significant bit.
func (m Mask) LeadingZeros() uint {
	for i := int(m.width) - 1; i >= 0; i-- {
		if m.bits.Bit(i) != 0 {
			return m.width - 1 - uint(i)
		}
	}
	//
	return m.width
}

// LeadingOnes counts the number of consecutive set bits starting from the
// most significant bit.
func (m Mask) LeadingOnes() uint {
	for i := int(m.width) - 1; i >= 0; i-- {
		if m.bits.Bit(i) == 0 {
			return m.width - 1 - uint(i)
		}
	}
	//
	return m.width
}

// TrailingZeros counts the number of consecutive clear bits starting from
// the least significant bit.
func (m Mask) TrailingZeros() uint {
	for i := uint(0); i < m.width; i++ {
		if m.bits.Bit(int(i)) != 0 {
			return i
		}
	}
	//
	return m.width
}

// TrailingOnes counts the number of consecutive set bits starting from the
// least significant bit.
func (m Mask) TrailingOnes() uint {
	for i := uint(0); i < m.width; i++ {
		if m.bits.Bit(int(i)) == 0 {
			return i
		}
	}
	//
	return m.width
}

// PopCount counts the number of set bits in this mask.
func (m Mask) PopCount() uint {
	var count uint
	//
	for i := uint(0); i < m.width; i++ {
		if m.bits.Bit(int(i)) != 0 {
			count++
		}
	}
	//
	return count
}

// ByteSwap reverses the byte order of this mask.  Panics if the width is not
// a whole number of bytes.
func (m Mask) ByteSwap() Mask {
	if m.width%8 != 0 {
		panic("byte-swap requires a byte-aligned width")
	}
	//
	var (
		r      big.Int
		nbytes = m.width / 8
	)
	//
	for i := uint(0); i < nbytes; i++ {
		b := new(big.Int).Rsh(&m.bits, i*8)
		b.And(b, big.NewInt(0xff))
		b.Lsh(b, (nbytes-1-i)*8)
		r.Or(&r, b)
	}
	//
	return Mask{m.width, r}
}

// BitReverse reverses the bit order of this mask.
func (m Mask) BitReverse() Mask {
	var r big.Int
	//
	for i := uint(0); i < m.width; i++ {
		if m.bits.Bit(int(i)) != 0 {
			r.SetBit(&r, int(m.width-1-i), 1)
		}
	}
	//
	return Mask{m.width, r}
}

func (m Mask) String() string {
	return m.bits.Text(2)
}
