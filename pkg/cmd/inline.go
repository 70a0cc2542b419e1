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

	"github.com/silica-lang/go-silica/pkg/hdl/diag"
	"github.com/silica-lang/go-silica/pkg/hdl/inline"
	"github.com/silica-lang/go-silica/pkg/hdl/netlist"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var inlineCmd = &cobra.Command{
	Use:   "inline [flags] netlist_file",
	Short: "inline selected modules throughout a netlist.",
	Long: `Run the module inlining pass over a given netlist file, dissolving selected
	 modules into their instantiation sites, and print the rewritten netlist.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		config := inline.DefaultConfig()
		config.InlineMult = GetInt(cmd, "inline-mult")
		output := GetString(cmd, "output")
		// Parse netlist
		nl, err := netlist.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, errorColour(fmt.Sprintf("%s:%s", args[0], err)))
			os.Exit(1)
		}
		// Run the pass
		reporter := diag.NewReporter()
		inline.All(nl, config, reporter)
		// Report diagnostics (these do not stop the output being written)
		for _, e := range reporter.Errors() {
			fmt.Fprintln(os.Stderr, errorColour(e.Error()))
		}
		//
		if GetFlag(cmd, "verbose") {
			for name, count := range reporter.Stats() {
				log.Debugf("%s: %d", name, count)
			}
		}
		// Write out the rewritten netlist
		text := netlist.WriteString(nl)
		//
		if output == "" {
			fmt.Print(text)
		} else if err := os.WriteFile(output, []byte(text), 0644); err != nil {
			fmt.Fprintln(os.Stderr, errorColour(err.Error()))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inlineCmd)
	inlineCmd.Flags().StringP("output", "o", "", "write rewritten netlist to file rather than stdout.")
	inlineCmd.Flags().Int("inline-mult", 2000, "inline modules whose size times instantiations stays under this.")
}
