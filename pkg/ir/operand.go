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
	"fmt"
	"math/big"

	"github.com/mirkb/mirkb/pkg/util"
)

// RegisterUse wraps a RegisterId as it appears within an operand list,
// additionally flagging whether the reference selects only a sub-field of
// the named register (as opposed to its entire value).  Sub-field selectors
// are handled pessimistically throughout the analysis.
type RegisterUse struct {
	Id       RegisterId
	Selector bool
}

// nonRegisterOperand is the "anything else" side of an Operand: an immediate
// constant, a basic-block reference (interleaved with register operands on a
// phi) or a metadata reference (range metadata attached to a load).
type nonRegisterOperand struct {
	kind  operandKind
	value big.Int
	block uint
	meta  *RangeMetadata
}

type operandKind uint8

const (
	immediateOperand operandKind = iota
	blockOperand
	metadataOperand
)

// Operand represents a single use within an Instruction's operand list: it
// is either a reference to another register (possibly sub-field selected),
// or an immediate/block/metadata reference.
type Operand = util.Union[RegisterUse, nonRegisterOperand]

// NewRegisterOperand constructs an operand referencing a whole register.
func NewRegisterOperand(id RegisterId) Operand {
	return util.Union1[RegisterUse, nonRegisterOperand](RegisterUse{id, false})
}

// NewSubfieldOperand constructs an operand referencing a sub-field of a
// register, forcing pessimistic (fully-unknown) treatment wherever it is
// consulted.
func NewSubfieldOperand(id RegisterId) Operand {
	return util.Union1[RegisterUse, nonRegisterOperand](RegisterUse{id, true})
}

// NewConstantOperand constructs an immediate integer operand.
func NewConstantOperand(value big.Int) Operand {
	return util.Union2[RegisterUse, nonRegisterOperand](nonRegisterOperand{kind: immediateOperand, value: value})
}

// NewBlockOperand constructs a basic-block reference, used to interleave
// incoming blocks with incoming values on a Phi instruction.
func NewBlockOperand(block uint) Operand {
	return util.Union2[RegisterUse, nonRegisterOperand](nonRegisterOperand{kind: blockOperand, block: block})
}

// NewMetadataOperand constructs a range-metadata reference, attached to Load
// instructions that carry a known-range annotation.
func NewMetadataOperand(meta *RangeMetadata) Operand {
	return util.Union2[RegisterUse, nonRegisterOperand](nonRegisterOperand{kind: metadataOperand, meta: meta})
}

// IsRegister determines whether this operand names a register.
func IsRegister(op Operand) bool {
	return op.HasFirst()
}

// IsBlock determines whether this operand is a basic-block reference.
func IsBlock(op Operand) bool {
	return op.HasSecond() && op.Second().kind == blockOperand
}

// IsMetadata determines whether this operand is a range-metadata reference.
func IsMetadata(op Operand) bool {
	return op.HasSecond() && op.Second().kind == metadataOperand
}

// AsRegister extracts the register reference from this operand.  Panics if
// the operand is not a register.
func AsRegister(op Operand) RegisterUse {
	return op.First()
}

// AsConstant extracts the immediate integer value from this operand.
// Panics if the operand does not hold a constant.
func AsConstant(op Operand) big.Int {
	return op.Second().value
}

// AsMetadata extracts the range metadata from this operand, or nil if none
// is attached.
func AsMetadata(op Operand) *RangeMetadata {
	return op.Second().meta
}

func OperandString(op Operand) string {
	if op.HasFirst() {
		reg := op.First()
		//
		if reg.Selector {
			return fmt.Sprintf("%s.sub", reg.Id)
		}
		//
		return reg.Id.String()
	}
	//
	switch snd := op.Second(); snd.kind {
	case blockOperand:
		return fmt.Sprintf("^bb%d", snd.block)
	case metadataOperand:
		return "!range"
	default:
		return snd.value.String()
	}
}
