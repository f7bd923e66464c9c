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

	"github.com/mirkb/mirkb/pkg/ir"
)

// alignOracle is a TargetOracle stub which answers a fixed alignment for
// every target-opcode (or, here, every non-Copy/FrameIndex) register, so a
// test can tell whether ComputeKnownAlignment actually delegated to it
// rather than merely falling back to a conservative default.
type alignOracle struct {
	NullOracle
	align uint
}

func (o alignOracle) ComputeKnownAlignForTargetInstr(_ ir.RegisterId, _ uint) uint {
	return o.align
}

type stubFrameInfo struct {
	aligns map[uint]uint
}

func (s stubFrameInfo) ObjectAlignment(frameIndex uint) uint {
	return s.aligns[frameIndex]
}

func Test_ComputeKnownAlignment_DelegatesToOracle(t *testing.T) {
	b := newBuilder("f")
	x := b.Scalar("x", 8)
	b.Const(x, *big.NewInt(1))
	//
	fn := b.Build()
	a := NewAnalyzer(fn, alignOracle{align: 16}, DefaultRangeDecoder{}, 6)
	//
	if got := a.ComputeKnownAlignment(x, 0); got != 16 {
		t.Errorf("expected alignment 16 delegated from the target oracle, got %d", got)
	}
}

func Test_ComputeKnownAlignment_FrameIndex_ConsultsFrameInfo(t *testing.T) {
	b := newBuilder("f")
	slot := b.Pointer("slot", 0)
	b.WithFrames(stubFrameInfo{aligns: map[uint]uint{3: 8}})
	b.FrameIndex(slot, 3)
	//
	fn := b.Build()
	a := NewAnalyzer(fn, NullOracle{}, DefaultRangeDecoder{}, 6)
	//
	if got := a.ComputeKnownAlignment(slot, 0); got != 8 {
		t.Errorf("expected alignment 8 from frame-info lookup of slot 3, got %d", got)
	}
}

func Test_ComputeKnownAlignment_Copy_PassesThrough(t *testing.T) {
	b := newBuilder("f")
	slot := b.Pointer("slot", 0)
	alias := b.Pointer("alias", 0)
	b.WithFrames(stubFrameInfo{aligns: map[uint]uint{5: 32}})
	b.FrameIndex(slot, 5)
	b.Unary(ir.Copy, alias, slot)
	//
	fn := b.Build()
	a := NewAnalyzer(fn, NullOracle{}, DefaultRangeDecoder{}, 6)
	//
	if got := a.ComputeKnownAlignment(alias, 0); got != 32 {
		t.Errorf("expected a copy to pass through the frame slot's alignment, got %d", got)
	}
}

// Test_ComputeKnownAlignment_Copy_DoesNotConsumeDepthBudget mirrors
// Test_Analyzer_Copy_DoesNotConsumeDepthBudget for the alignment query: a
// chain of copies shares the caller's depth counter, so it still resolves
// under a depth cap that would stop any other opcode immediately.
func Test_ComputeKnownAlignment_Copy_DoesNotConsumeDepthBudget(t *testing.T) {
	b := newBuilder("f")
	slot := b.Pointer("slot", 0)
	b.WithFrames(stubFrameInfo{aligns: map[uint]uint{1: 4}})
	b.FrameIndex(slot, 1)
	//
	prev := slot
	for i := 0; i < 5; i++ {
		next := b.Pointer("alias", 0)
		b.Unary(ir.Copy, next, prev)
		prev = next
	}
	//
	fn := b.Build()
	a := NewAnalyzer(fn, NullOracle{}, DefaultRangeDecoder{}, 1)
	//
	if got := a.ComputeKnownAlignment(prev, 0); got != 4 {
		t.Errorf("expected copy chain to resolve frame alignment regardless of depth cap, got %d", got)
	}
}

func Test_ComputeKnownAlignment_DepthCap_ReturnsOne(t *testing.T) {
	b := newBuilder("f")
	x := b.Scalar("x", 8)
	b.Const(x, *big.NewInt(1))
	//
	fn := b.Build()
	a := NewAnalyzer(fn, alignOracle{align: 16}, DefaultRangeDecoder{}, 0)
	//
	if got := a.ComputeKnownAlignment(x, 0); got != 1 {
		t.Errorf("expected a zero-depth budget to short-circuit to alignment 1, got %d", got)
	}
}

func Test_ComputeKnownAlignment_NoDefinition_ReturnsOne(t *testing.T) {
	b := newBuilder("f")
	x := b.Scalar("x", 8) // never defined
	//
	fn := b.Build()
	a := NewAnalyzer(fn, NullOracle{}, DefaultRangeDecoder{}, 6)
	//
	if got := a.ComputeKnownAlignment(x, 0); got != 1 {
		t.Errorf("expected an undefined register to report alignment 1, got %d", got)
	}
}
