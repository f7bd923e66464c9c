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
	"github.com/mirkb/mirkb/pkg/util"
	"github.com/mirkb/mirkb/pkg/util/collection/bit"
)

func Test_NullOracle_IsMaximallyConservative(t *testing.T) {
	var o NullOracle
	//
	if known := o.ComputeKnownBitsForTargetInstr(ir.RegisterId{}, bit.NewSingletonSet(0), 0); known.IsConstant() {
		t.Errorf("expected NullOracle to never report a known constant")
	}
	//
	if n := o.ComputeNumSignBitsForTargetInstr(ir.RegisterId{}, bit.NewSingletonSet(0), 0); n != 1 {
		t.Errorf("expected exactly 1 guaranteed sign bit, got %d", n)
	}
	//
	if bc := o.GetBooleanContents(false, false); bc != UndefinedBooleanContents {
		t.Errorf("expected undefined boolean contents by default")
	}
}

func Test_DefaultRangeDecoder_SingleInterval(t *testing.T) {
	meta := ir.NewRangeMetadata(util.Pair[big.Int, big.Int]{Left: *big.NewInt(0x10), Right: *big.NewInt(0x20)})
	//
	known := DefaultRangeDecoder{}.Decode(meta, 8)
	requireNoConflict(t, "range decode", known)
	//
	// Every value in [0x10,0x20) shares the top nibble 0001.
	if !known.One.Test(4) || known.One.PopCount() != 1 {
		t.Errorf("expected only bit 4 known-one, got %s", known.One.String())
	}
}

func Test_DefaultRangeDecoder_SingletonInterval_IsConstant(t *testing.T) {
	meta := ir.NewRangeMetadata(util.Pair[big.Int, big.Int]{Left: *big.NewInt(7), Right: *big.NewInt(8)})
	//
	known := DefaultRangeDecoder{}.Decode(meta, 8)
	if v, ok := known.ConstantValue(); !ok || v.Uint64() != 7 {
		t.Errorf("expected a singleton interval to decode to the exact constant 7, got %v", v)
	}
}

func Test_DefaultRangeDecoder_MultipleIntervals_Intersects(t *testing.T) {
	meta := ir.NewRangeMetadata(
		util.Pair[big.Int, big.Int]{Left: *big.NewInt(0), Right: *big.NewInt(4)},
		util.Pair[big.Int, big.Int]{Left: *big.NewInt(252), Right: *big.NewInt(256)},
	)
	//
	known := DefaultRangeDecoder{}.Decode(meta, 8)
	requireNoConflict(t, "range decode multi", known)
	//
	// Neither interval alone pins any bit the other doesn't also allow to
	// vary, so the intersection should not assert more than each interval
	// alone (no conflict is the only thing guaranteed across disjoint
	// intervals).
	if known.IsConstant() {
		t.Errorf("did not expect disjoint wide intervals to yield a constant")
	}
}

func Test_DefaultRangeDecoder_NoMetadata_FullyUnknown(t *testing.T) {
	known := DefaultRangeDecoder{}.Decode(nil, 8)
	if known.IsConstant() {
		t.Errorf("expected nil metadata to yield fully-unknown")
	}
}
