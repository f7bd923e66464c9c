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

	"github.com/spf13/cobra"

	"github.com/mirkb/mirkb/pkg/kb"
	"github.com/mirkb/mirkb/pkg/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "print known-bits and sign-bit facts for every register of the sample function.",
	Long: `Builds the bundled demonstration function and runs the known-bits
dataflow analysis over every one of its registers, printing each result as a
fixed-width bit string (0/1/? per position) alongside its sign-bit count.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		fn := buildSampleFunction()
		analyzer := kb.NewAnalyzer(fn, kb.NullOracle{}, kb.DefaultRangeDecoder{}, getUint(cmd, "max-depth"))
		//
		fmt.Println(fn.String())
		fmt.Println()
		//
		stats := util.NewPerfStats()
		reportAllRegisters(fn, analyzer)
		stats.Log("known-bits traversal")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
