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
	"math/big"

	"github.com/mirkb/mirkb/pkg/util"
)

// RangeMetadata attaches one or more "[lo,hi)" constraints to a Load
// instruction, as might be recovered from a source-level range annotation.
// A value loaded under this metadata is guaranteed to fall within the union
// of the listed half-open intervals.
type RangeMetadata struct {
	// Ranges lists the permitted half-open intervals.  A value satisfies the
	// metadata iff it falls within at least one of them.
	Ranges []util.Pair[big.Int, big.Int]
}

// NewRangeMetadata constructs range metadata from a sequence of [lo,hi)
// pairs.
func NewRangeMetadata(pairs ...util.Pair[big.Int, big.Int]) *RangeMetadata {
	return &RangeMetadata{pairs}
}
