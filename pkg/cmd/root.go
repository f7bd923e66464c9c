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
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with make, but *not* when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "mirkb",
	Short: "A known-bits dataflow analyzer for a machine IR.",
	Long:  "Inspects the known-bits and sign-bit facts a dataflow analyzer can derive for a machine IR function.",
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("mirkb ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
			return
		}
		//
		fmt.Println(cmd.UsageString())
	},
}

// Execute adds all child commands to the root command and runs it.  Called
// once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().UintP("max-depth", "d", 6, "maximum recursion depth for the known-bits traversal")
}

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		r, err = cmd.PersistentFlags().GetBool(flag)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		r, err = cmd.PersistentFlags().GetUint(flag)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
