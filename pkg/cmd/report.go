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
	"fmt"
	"strings"

	"github.com/mirkb/mirkb/pkg/ir"
	"github.com/mirkb/mirkb/pkg/kb"
	"github.com/mirkb/mirkb/pkg/util/termio"
)

// knownBitsLine renders a register's known-bits and sign-bit facts as a
// single plain-text line, most-significant bit first: '0' for known zero,
// '1' for known one, '?' for unknown.
func knownBitsLine(reg ir.RegisterId, width uint, known kb.KnownBits, signBits uint) string {
	var sb strings.Builder
	//
	for i := int(width) - 1; i >= 0; i-- {
		switch {
		case known.Zero.Test(uint(i)):
			sb.WriteByte('0')
		case known.One.Test(uint(i)):
			sb.WriteByte('1')
		default:
			sb.WriteByte('?')
		}
	}
	//
	return fmt.Sprintf("%-6s %2dw  %s  signbits=%d", reg, width, sb.String(), signBits)
}

// knownBitsFormatted renders the same bit string as knownBitsLine (without
// the register, width and sign-bit fields), colour-coded for an interactive
// terminal: green for known zero, red for known one, plain for unknown.
func knownBitsFormatted(width uint, known kb.KnownBits) []termio.FormattedText {
	var frags []termio.FormattedText
	//
	for i := int(width) - 1; i >= 0; i-- {
		switch {
		case known.Zero.Test(uint(i)):
			frags = append(frags, termio.NewColouredText("0", termio.NewAnsiEscape().FgColour(termio.TERM_GREEN)))
		case known.One.Test(uint(i)):
			frags = append(frags, termio.NewColouredText("1", termio.NewAnsiEscape().FgColour(termio.TERM_RED)))
		default:
			frags = append(frags, termio.NewText("?"))
		}
	}
	//
	return frags
}

func reportAllRegisters(fn *ir.Function, analyzer *kb.Analyzer) {
	for idx, reg := range fn.Registers.Registers() {
		id := ir.NewRegisterId(uint(idx))
		//
		if !reg.IsValid() || reg.IsVector() {
			continue
		}
		//
		known := analyzer.KnownBitsOf(id)
		signBits := analyzer.NumSignBits(id)
		line := knownBitsLine(id, reg.Width, known, signBits)
		//
		if reg.IsPointer() {
			line = fmt.Sprintf("%s  align=%d", line, analyzer.ComputeKnownAlignment(id, 0))
		}
		//
		fmt.Println(line)
	}
}
