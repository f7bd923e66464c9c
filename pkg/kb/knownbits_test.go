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
	"testing"
)

// sampleValues8 enumerates a small but varied set of concrete values used to probe
// KnownBits combinators against the values they actually describe.
var sampleValues8 = []uint64{0, 1, 2, 15, 16, 85, 170, 200, 255}

func constantOf(width uint, v uint64) KnownBits {
	return NewConstant(width, *big.NewInt(int64(v)))
}

func requireNoConflict(t *testing.T, label string, k KnownBits) {
	t.Helper()
	if k.HasConflict() {
		t.Fatalf("%s: zero and one masks overlap", label)
	}
}

func Test_KnownBits_NewConstant_IsFullyKnown(t *testing.T) {
	for _, v := range sampleValues8 {
		k := constantOf(8, v)
		//
		if !k.IsConstant() {
			t.Errorf("value %d: expected IsConstant", v)
		}
		//
		got, ok := k.ConstantValue()
		if !ok || got.Uint64() != v {
			t.Errorf("value %d: round-trip mismatch, got %v", v, got)
		}
	}
}

func Test_KnownBits_NewUnknown_HasNoKnownBits(t *testing.T) {
	k := NewUnknown(8)
	//
	if k.IsConstant() {
		t.Errorf("expected fully-unknown value to not be constant")
	}
	//
	if k.TrailingKnownBits() != 0 {
		t.Errorf("expected zero known trailing bits")
	}
}

func Test_KnownBits_AndOrXor_Consistency(t *testing.T) {
	for _, a := range sampleValues8 {
		for _, b := range sampleValues8 {
			ka, kb := constantOf(8, a), constantOf(8, b)
			//
			and := And(ka, kb)
			or := Or(ka, kb)
			xor := Xor(ka, kb)
			//
			requireNoConflict(t, "and", and)
			requireNoConflict(t, "or", or)
			requireNoConflict(t, "xor", xor)
			//
			if v, _ := and.ConstantValue(); v.Uint64() != a&b {
				t.Errorf("and(%d,%d): expected %d, got %d", a, b, a&b, v.Uint64())
			}
			//
			if v, _ := or.ConstantValue(); v.Uint64() != a|b {
				t.Errorf("or(%d,%d): expected %d, got %d", a, b, a|b, v.Uint64())
			}
			//
			if v, _ := xor.ConstantValue(); v.Uint64() != a^b {
				t.Errorf("xor(%d,%d): expected %d, got %d", a, b, a^b, v.Uint64())
			}
		}
	}
}

func Test_KnownBits_ExtendTruncate_PreserveValue(t *testing.T) {
	k := constantOf(4, 0b1011)
	//
	zext := k.ZExt(8)
	if v, _ := zext.ConstantValue(); v.Uint64() != 0b1011 {
		t.Errorf("zext: expected unchanged low bits, got %d", v.Uint64())
	} else if !zext.Zero.Test(7) {
		t.Errorf("zext: expected new high bit known zero")
	}
	//
	sext := k.SExt(8)
	if v, _ := sext.ConstantValue(); v.Uint64() != 0xFB {
		t.Errorf("sext: expected sign-extended 0xFB, got %x", v.Uint64())
	}
	//
	trunc := constantOf(8, 0xFB).Trunc(4)
	if v, _ := trunc.ConstantValue(); v.Uint64() != 0b1011 {
		t.Errorf("trunc: expected 0b1011, got %d", v.Uint64())
	}
}

func Test_KnownBits_AddSub_MatchesArithmetic(t *testing.T) {
	for _, a := range sampleValues8 {
		for _, b := range sampleValues8 {
			ka, kb := constantOf(8, a), constantOf(8, b)
			//
			sum := AddSub(true, false, ka, kb)
			requireNoConflict(t, "add", sum)
			//
			if v, ok := sum.ConstantValue(); !ok || v.Uint64() != (a+b)%256 {
				t.Errorf("add(%d,%d): expected %d, got %v", a, b, (a+b)%256, v)
			}
			//
			diff := AddSub(false, false, ka, kb)
			requireNoConflict(t, "sub", diff)
			//
			want := (a - b) % 256
			if v, ok := diff.ConstantValue(); !ok || v.Uint64() != want {
				t.Errorf("sub(%d,%d): expected %d, got %v", a, b, want, v)
			}
		}
	}
}

func Test_KnownBits_ComputeForMul_ConstantsExact(t *testing.T) {
	for _, a := range sampleValues8 {
		for _, b := range sampleValues8 {
			ka, kb := constantOf(8, a), constantOf(8, b)
			product := ComputeForMul(ka, kb)
			//
			requireNoConflict(t, "mul", product)
			//
			if v, ok := product.ConstantValue(); !ok || v.Uint64() != (a*b)%256 {
				t.Errorf("mul(%d,%d): expected %d, got %v", a, b, (a*b)%256, v)
			}
		}
	}
}

func Test_KnownBits_ComputeForMul_PartialKnowledgeNeverConflicts(t *testing.T) {
	// An unknown times a known-even value still must know the low bit is 0,
	// and must never assert a position both zero and one.
	unknown := NewUnknown(8)
	even := constantOf(8, 6)
	product := ComputeForMul(unknown, even)
	//
	requireNoConflict(t, "mul partial", product)
	//
	if !product.Zero.Test(0) {
		t.Errorf("expected low bit of x*6 to be known zero")
	}
}

func Test_KnownBits_UminUmax_Duality(t *testing.T) {
	for _, a := range sampleValues8 {
		for _, b := range sampleValues8 {
			ka, kb := constantOf(8, a), constantOf(8, b)
			//
			umax := Umax(ka, kb)
			umin := Umin(ka, kb)
			//
			requireNoConflict(t, "umax", umax)
			requireNoConflict(t, "umin", umin)
			//
			wantMax, wantMin := a, b
			if b > a {
				wantMax = b
			}
			if b < a {
				wantMin = b
			}
			//
			if v, ok := umax.ConstantValue(); !ok || v.Uint64() != wantMax {
				t.Errorf("umax(%d,%d): expected %d, got %v", a, b, wantMax, v)
			}
			//
			if v, ok := umin.ConstantValue(); !ok || v.Uint64() != wantMin {
				t.Errorf("umin(%d,%d): expected %d, got %v", a, b, wantMin, v)
			}
		}
	}
}

func Test_KnownBits_SminSmax_SignedOrdering(t *testing.T) {
	// -1 (0xFF) vs 1: signed min is -1, signed max is 1; unsigned would
	// disagree (0xFF is the unsigned max).
	neg1 := constantOf(8, 0xFF)
	one := constantOf(8, 1)
	//
	smax := Smax(neg1, one)
	smin := Smin(neg1, one)
	//
	requireNoConflict(t, "smax", smax)
	requireNoConflict(t, "smin", smin)
	//
	if v, ok := smax.ConstantValue(); !ok || v.Uint64() != 1 {
		t.Errorf("expected smax(-1,1) == 1, got %v", v)
	}
	//
	if v, ok := smin.ConstantValue(); !ok || v.Uint64() != 0xFF {
		t.Errorf("expected smin(-1,1) == -1 (0xFF), got %v", v)
	}
}

func Test_KnownBits_Abs(t *testing.T) {
	neg1 := constantOf(8, 0xFF)
	abs := neg1.Abs()
	//
	if v, ok := abs.ConstantValue(); !ok || v.Uint64() != 1 {
		t.Errorf("expected |-1| == 1, got %v", v)
	}
	//
	pos := constantOf(8, 5)
	if v, ok := pos.Abs().ConstantValue(); !ok || v.Uint64() != 5 {
		t.Errorf("expected |5| == 5, got %v", v)
	}
}

func Test_KnownBits_ShlConstant_MatchesArithmetic(t *testing.T) {
	for amt := uint64(0); amt < 8; amt++ {
		lhs := constantOf(8, 0b00000101)
		rhs := constantOf(8, amt)
		//
		shifted := Shl(lhs, rhs)
		requireNoConflict(t, "shl", shifted)
		//
		want := (uint64(0b101) << amt) % 256
		if v, ok := shifted.ConstantValue(); !ok || v.Uint64() != want {
			t.Errorf("shl(5,%d): expected %d, got %v", amt, want, v)
		}
	}
}

func Test_KnownBits_LshrConstant_MatchesArithmetic(t *testing.T) {
	for amt := uint64(0); amt < 8; amt++ {
		lhs := constantOf(8, 0b11010000)
		rhs := constantOf(8, amt)
		//
		shifted := Lshr(lhs, rhs)
		requireNoConflict(t, "lshr", shifted)
		//
		want := uint64(0b11010000) >> amt
		if v, ok := shifted.ConstantValue(); !ok || v.Uint64() != want {
			t.Errorf("lshr(0xD0,%d): expected %d, got %v", amt, want, v)
		}
	}
}

func Test_KnownBits_Shl_NonConstant_InfersLowZeros(t *testing.T) {
	// lhs has 2 known trailing zeros, rhs's minimum value is 3: the shift
	// result must have at least max(2,3) == 3 known-zero low bits.
	lhs := KnownBits{Zero: MaskFromUint64(8, 0b00000011), One: NewMask(8)}
	rhs := KnownBits{Zero: MaskFromUint64(8, 0b00000000), One: MaskFromUint64(8, 0b00000011)}
	//
	shifted := Shl(lhs, rhs)
	requireNoConflict(t, "shl non-const", shifted)
	//
	if n := shifted.Zero.TrailingOnes(); n < 3 {
		t.Errorf("expected at least 3 known-zero low bits, got %d", n)
	}
}

func Test_KnownBits_Ashr_SignExtendsMasks(t *testing.T) {
	neg := constantOf(8, 0b10000000)
	shifted := Ashr(neg, 4)
	requireNoConflict(t, "ashr", shifted)
	//
	if v, ok := shifted.ConstantValue(); !ok || v.Uint64() != 0b11111000 {
		t.Errorf("expected 0xF8, got %v", v)
	}
}

func Test_KnownBits_ByteSwapBitReverse(t *testing.T) {
	k := constantOf(16, 0x1234)
	//
	if v, _ := k.ByteSwap().ConstantValue(); v.Uint64() != 0x3412 {
		t.Errorf("expected byte-swapped 0x3412, got %x", v.Uint64())
	}
	//
	rev := constantOf(4, 0b1000).BitReverse()
	if v, _ := rev.ConstantValue(); v.Uint64() != 0b0001 {
		t.Errorf("expected bit-reversed 0b0001, got %b", v.Uint64())
	}
}

func Test_KnownBits_RequireSameWidth_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on mismatched widths")
		}
	}()
	//
	And(NewUnknown(4), NewUnknown(8))
}

func Test_KnownBits_IsNegativeNonNegative(t *testing.T) {
	neg := constantOf(8, 0xFF)
	pos := constantOf(8, 0x7F)
	//
	if !neg.IsNegative() || neg.IsNonNegative() {
		t.Errorf("expected 0xFF to be known negative")
	}
	//
	if !pos.IsNonNegative() || pos.IsNegative() {
		t.Errorf("expected 0x7F to be known non-negative")
	}
}
