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

// Package inline implements the module inlining pass: selected modules are
// dissolved into their instantiation sites, with pin connections lowered to
// assignments or tracing aliases and hoisted identifiers renamed under the
// instance.  The pass runs after elaboration and before flattening.
package inline

import (
	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	"github.com/silica-lang/go-silica/pkg/hdl/diag"
	log "github.com/sirupsen/logrus"
)

// Config collects the tunables of the inlining pass.
type Config struct {
	// InlineMult bounds automatic inlining: a module is inlined when its
	// node count times its instantiation count stays under this.  A value
	// below one disables the bound, inlining everything allowed.
	InlineMult int
}

// DefaultConfig returns the default pass configuration.
func DefaultConfig() Config {
	return Config{InlineMult: 2000}
}

// All runs the complete inlining pass over a netlist: marking decides which
// modules to inline, transformation expands every instantiation of them, and
// a final sweep removes the now-uninstantiated modules themselves.  User
// diagnostics land in the reporter; the netlist is rewritten in place.
func All(netlist *ast.Netlist, config Config, rpt *diag.Reporter) {
	log.Debug("inline: begin")
	// Nodes detached mid-walk live until the pass returns
	var free ast.FreeList
	//
	marks := markModules(netlist, config, rpt, &free)
	//
	cells := transformNetlist(netlist, marks, rpt, &free)
	// Remove every module that was inlined.  Dead-code removal would also
	// clean these up, but intermediate tree dumps are far smaller without
	// the hugely exploded bodies.
	sweepModules(netlist, marks, &free)
	//
	rpt.AddStat("Optimizations, Inlined cells", cells)
	//
	log.Debug("inline: done, ", cells, " cells expanded, ",
		free.Size(), " nodes freed")
	//
	free.Drain()
}

// sweepModules detaches and deletes every module marked for inlining.  By
// this point no cell referring to one survives.
func sweepModules(netlist *ast.Netlist, marks map[*ast.Module]bool, free *ast.FreeList) {
	kept := netlist.Modules[:0]
	//
	for _, mod := range netlist.Modules {
		if marks[mod] {
			free.Push(mod)
		} else {
			kept = append(kept, mod)
		}
	}
	//
	netlist.Modules = kept
}
