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
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mirkb/mirkb/pkg/ir"
	"github.com/mirkb/mirkb/pkg/kb"
	"github.com/mirkb/mirkb/pkg/util/termio"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "interactively inspect known-bits of registers in the sample function, coloured by bit.",
	Long: `Starts a small terminal REPL over the bundled demonstration function.
Type a register name (e.g. "x") or index (e.g. "%3") to print its
known-bits string, coloured green for known-zero and red for known-one
positions.  Type "list" to print every register name, or "quit" to exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		runExplore(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command) {
	term, err := termio.NewTerminal()
	if err != nil {
		log.Errorf("explore requires an interactive terminal: %v", err)
		return
	}
	//
	defer term.Restore()
	//
	fn := buildSampleFunction()
	analyzer := kb.NewAnalyzer(fn, kb.NullOracle{}, kb.DefaultRangeDecoder{}, getUint(cmd, "max-depth"))
	_ = term.Write(termio.NewText("mirkb explorer: type a register name, \"list\", or \"quit\"\r\n"))
	//
	for {
		line, err := term.ReadLine()
		if err == io.EOF {
			return
		} else if err != nil {
			log.Errorf("reading input: %v", err)
			return
		}
		//
		line = strings.TrimSpace(line)
		//
		switch {
		case line == "quit" || line == "exit":
			return
		case line == "list":
			for _, reg := range fn.Registers.Registers() {
				_ = term.Write(termio.NewText(fmt.Sprintf("  %s\r\n", reg.Name)))
			}
		case line == "":
			// ignore
		default:
			exploreRegister(term, fn, analyzer, line)
		}
	}
}

func exploreRegister(term *termio.Terminal, fn *ir.Function, analyzer *kb.Analyzer, name string) {
	id, reg, ok := findRegister(fn, name)
	if !ok {
		_ = term.Write(termio.NewText(fmt.Sprintf("unknown register %q\r\n", name)))
		return
	}
	//
	if !reg.IsValid() || reg.IsVector() {
		_ = term.Write(termio.NewText("(vector or invalid register: always fully-unknown)\r\n"))
		return
	}
	//
	known := analyzer.KnownBitsOf(id)
	signBits := analyzer.NumSignBits(id)
	//
	_ = term.WriteWrapped(knownBitsFormatted(reg.Width, known))
	_ = term.Write(termio.NewText(fmt.Sprintf("  signbits=%d\r\n", signBits)))
	//
	if reg.IsPointer() {
		align := analyzer.ComputeKnownAlignment(id, 0)
		_ = term.Write(termio.NewText(fmt.Sprintf("  align=%d\r\n", align)))
	}
}

// findRegister resolves a register by its declared name, or by its index
// in the "%N" form registers are printed with.
func findRegister(fn *ir.Function, name string) (ir.RegisterId, ir.Register, bool) {
	regs := fn.Registers.Registers()
	//
	for idx, reg := range regs {
		if reg.Name == name {
			return ir.NewRegisterId(uint(idx)), reg, true
		}
	}
	//
	var idx uint
	if _, err := fmt.Sscanf(name, "%%%d", &idx); err == nil && idx < uint(len(regs)) {
		return ir.NewRegisterId(idx), regs[idx], true
	}
	//
	return ir.RegisterId{}, ir.Register{}, false
}
