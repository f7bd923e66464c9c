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
	"strings"
	"testing"
)

func Test_FlatDataLayout_DefaultsAndOverrides(t *testing.T) {
	layout := FlatDataLayout{DefaultIndexWidth: 32, NonIntegralSpaces: map[uint]bool{7: true}}
	//
	if layout.IndexWidth(0) != 32 || layout.IndexWidth(7) != 32 {
		t.Errorf("expected every address space to share the default index width")
	}
	//
	if layout.IsNonIntegral(0) {
		t.Errorf("expected address space 0 to be integral by default")
	}
	//
	if !layout.IsNonIntegral(7) {
		t.Errorf("expected address space 7 to be flagged non-integral")
	}
}

func Test_Function_DefiningInstruction_MissingIsReportedFalse(t *testing.T) {
	fn := NewFunction("f", NewArrayRegisterMap([]Register{NewScalarRegister("x", 8)}), FlatDataLayout{}, NullFrameInfo{})
	//
	if _, ok := fn.DefiningInstruction(NewRegisterId(0)); ok {
		t.Errorf("expected no defining instruction in a fresh function")
	}
}

func Test_Function_AddInstruction_WiresMultipleResults(t *testing.T) {
	fn := NewFunction("f", NewArrayRegisterMap([]Register{
		NewScalarRegister("src", 8), NewScalarRegister("d0", 4), NewScalarRegister("d1", 4),
	}), FlatDataLayout{}, NullFrameInfo{})
	//
	src, d0, d1 := NewRegisterId(0), NewRegisterId(1), NewRegisterId(2)
	fn.AddInstruction(Instruction{
		Opcode:   UnmergeValues,
		Results:  []RegisterId{d0, d1},
		Operands: []Operand{NewRegisterOperand(src)},
	})
	//
	insn0, ok0 := fn.DefiningInstruction(d0)
	insn1, ok1 := fn.DefiningInstruction(d1)
	//
	if !ok0 || !ok1 {
		t.Fatalf("expected both results to resolve to the same defining instruction")
	}
	//
	if insn0.Opcode != UnmergeValues || insn1.Opcode != UnmergeValues {
		t.Errorf("expected both to report the unmerge-values instruction")
	}
}

func Test_Function_String_IncludesEveryInstruction(t *testing.T) {
	fn := NewFunction("demo", NewArrayRegisterMap([]Register{NewScalarRegister("x", 8)}), FlatDataLayout{}, NullFrameInfo{})
	fn.AddInstruction(Instruction{
		Opcode:   ConstInt,
		Results:  []RegisterId{NewRegisterId(0)},
		Operands: []Operand{NewConstantOperand(*big.NewInt(1))},
	})
	//
	s := fn.String()
	//
	if !strings.Contains(s, "demo") || !strings.Contains(s, "const") {
		t.Errorf("expected function name and opcode in printed form, got %q", s)
	}
}
