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
package cmd

import (
	"math/big"

	"github.com/mirkb/mirkb/pkg/ir"
)

// buildSampleFunction constructs a small demonstration function exercising a
// cross-section of the generic opcode set: bitwise combination with a
// constant, multiplication, a constant shift, sign extension, a pointer
// address computation and a pair of mutually-recursive phis.  There is no
// textual front-end in this repository (parsing and instruction selection
// are external collaborators); this is the fixture both the analyze and
// explore commands report on.
func buildSampleFunction() *ir.Function {
	layout := ir.FlatDataLayout{DefaultIndexWidth: 64}
	b := ir.NewBuilder("sample", layout)
	//
	x := b.Scalar("x", 8)      // opaque 8-bit input
	y := b.Scalar("y", 4)      // opaque 4-bit input, sign-extended below
	c12 := b.Scalar("c12", 8)  // constant 12
	mask := b.Scalar("mask", 8)
	shiftAmt := b.Scalar("three", 8)
	masked := b.Scalar("masked", 8)
	collapsed := b.Scalar("collapsed", 8)
	squared := b.Scalar("squared", 8)
	shifted := b.Scalar("shifted", 8)
	extended := b.Scalar("extended", 8)
	base := b.Pointer("base", 0)
	offset := b.Scalar("offset", 64)
	addr := b.Pointer("addr", 0)
	loopA := b.Scalar("loopA", 8)
	loopB := b.Scalar("loopB", 8)
	fortyTwo := b.Scalar("fortyTwo", 8)
	//
	b.Const(c12, *big.NewInt(12))
	b.Const(mask, *big.NewInt(0x55))
	b.Const(shiftAmt, *big.NewInt(3))
	b.Const(offset, *big.NewInt(32))
	b.Const(fortyTwo, *big.NewInt(42))
	b.Binary(ir.And, masked, x, mask)
	b.Binary(ir.And, collapsed, c12, x)
	b.Binary(ir.Mul, squared, x, x)
	b.Shift(ir.Shl, shifted, x, shiftAmt)
	b.Unary(ir.SExt, extended, y)
	b.Binary(ir.PtrAdd, addr, base, offset)
	b.Phi(loopA, struct {
		Block uint
		Value ir.RegisterId
	}{0, loopB}, struct {
		Block uint
		Value ir.RegisterId
	}{1, fortyTwo})
	b.Phi(loopB, struct {
		Block uint
		Value ir.RegisterId
	}{0, loopA}, struct {
		Block uint
		Value ir.RegisterId
	}{1, fortyTwo})
	//
	return b.Build()
}
