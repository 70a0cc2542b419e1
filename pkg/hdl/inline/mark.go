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
package inline

import (
	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	"github.com/silica-lang/go-silica/pkg/hdl/diag"
	log "github.com/sirupsen/logrus"
)

// If a module has fewer nodes than this, it can always be inlined.
const inlineModsSmaller = 100

// marker decides, per module, whether it shall be inlined at every
// instantiation.  The decision combines explicit pragmas with a size
// heuristic: singletons, small modules and modules whose total duplicated
// size stays under the configured budget are inlined; public modules and
// modules carrying a no-inline pragma are excluded from the automatic case.
// Inline pragmas are consumed here.  As a side effect, variable and task
// cross-references are unlinked, since inlining invalidates them until the
// dotted-name resolution pass runs again.
type marker struct {
	// Modules the user requested be inlined.
	requested map[*ast.Module]bool
	// Modules which may legally be inlined automatically.
	allowed map[*ast.Module]bool
	// Number of cells referencing each module.
	refs map[*ast.Module]int
	// Node count of each module, excluding assignments.
	size map[*ast.Module]int
	// Module currently being walked.
	mod *ast.Module
	// Node count of the current module, excluding assignments.
	stmtCnt int
	//
	config Config
	rpt    *diag.Reporter
	free   *ast.FreeList
}

// markModules runs the marking phase, returning the set of modules to be
// inlined.
func markModules(netlist *ast.Netlist, config Config, rpt *diag.Reporter, free *ast.FreeList) map[*ast.Module]bool {
	m := &marker{
		requested: make(map[*ast.Module]bool),
		allowed:   make(map[*ast.Module]bool),
		refs:      make(map[*ast.Module]int),
		size:      make(map[*ast.Module]int),
		config:    config,
		rpt:       rpt,
		free:      free,
	}
	// Count references and collect pragmas across every module first, since
	// cells may reference modules appearing later in the netlist.
	for _, mod := range netlist.Modules {
		m.markModule(mod)
	}
	// Then decide each module.  The decision only reads whole-netlist
	// tallies, so a second sweep in netlist order is equivalent to deciding
	// as each module's walk completes.
	doit := make(map[*ast.Module]bool)
	//
	for _, mod := range netlist.Modules {
		doit[mod] = m.decide(mod)
	}
	//
	return doit
}

// markModule walks one module, tallying its size, consuming its pragmas and
// counting the instantiations it makes of other modules.
func (m *marker) markModule(mod *ast.Module) {
	m.mod = mod
	m.stmtCnt = 0
	// Optimistic until proven otherwise
	m.allowed[mod] = true
	//
	if mod.Public {
		m.forbid("modPublic")
	}
	//
	m.walkStmts(&mod.Stmts)
	//
	m.size[mod] = m.stmtCnt
	m.mod = nil
}

// decide applies the inlining heuristic to a module after the whole netlist
// has been tallied.
func (m *marker) decide(mod *ast.Module) bool {
	var (
		user    = m.requested[mod]
		allowed = m.allowed[mod]
		refs    = m.refs[mod]
		stmtCnt = m.size[mod]
		mult    = m.config.InlineMult
	)
	// A single instantiation duplicates nothing; small modules are always
	// worth it; a non-positive budget means inline everything allowed;
	// otherwise the duplicated size must stay under the budget.
	doit := user || (allowed && (refs == 1 ||
		stmtCnt < inlineModsSmaller ||
		mult < 1 ||
		refs*stmtCnt < mult))
	// Packages aren't really "under" anything, so they confuse this
	// algorithm.
	if mod.IsPackage {
		doit = false
	}
	//
	log.Debugf(" inline=%v possible=%v usr=%v refs=%d stmts=%d %s",
		doit, allowed, user, refs, stmtCnt, mod.Name)
	//
	return doit
}

// forbid marks the current module as not legal to inline automatically,
// logging the reason the first time.
func (m *marker) forbid(reason string) {
	if m.allowed[m.mod] {
		log.Debug("  no inline: ", reason, " ", m.mod.Name)
		m.allowed[m.mod] = false
	}
}

// walkStmts visits a statement list in declaration order.  Pragmas consumed
// by this phase are removed from the list in place.
func (m *marker) walkStmts(stmts *[]ast.Node) {
	for i := 0; i < len(*stmts); i++ {
		n := (*stmts)[i]
		//
		if p, ok := n.(*ast.Pragma); ok && m.walkPragma(p) {
			*stmts = append((*stmts)[:i], (*stmts)[i+1:]...)
			i--
			//
			continue
		}
		//
		m.walkNode(n)
	}
}

// walkPragma consumes an inline pragma, returning true if it should be
// removed from its parent so it does not propagate to an enclosing cell.
func (m *marker) walkPragma(p *ast.Pragma) bool {
	switch p.Kind {
	case ast.PragInlineModule:
		if m.mod == nil {
			m.rpt.Error(p.FileLine(), "Inline pragma not under a module")
		} else {
			m.requested[m.mod] = true
		}
	case ast.PragNoInlineModule:
		if m.mod == nil {
			m.rpt.Error(p.FileLine(), "Inline pragma not under a module")
		} else {
			m.forbid("Pragma NO_INLINE_MODULE")
		}
	default:
		return false
	}
	//
	m.free.Push(p)
	//
	return true
}

// walkNode visits one node, tallying size and counting references.  The
// tally counts nodes rather than source statements, with assignments (and
// everything under them) deliberately costing nothing: interconnect
// assignments almost always flatten away later, so they should not count
// against a module's inlining budget.
func (m *marker) walkNode(n ast.Node) {
	switch t := n.(type) {
	case *ast.Cell:
		m.refs[t.Target]++
		//
		m.walkChildren(n)
	case *ast.VarXRef:
		// Unlink until dotted-name resolution corrects it
		t.Target = nil
	case *ast.FTaskRef:
		// Unlink until dotted-name resolution corrects it
		if t.Pkg == nil {
			t.Target = nil
		}
		//
		m.walkChildren(n)
	case *ast.Always:
		m.walkStmts(&t.Stmts)
		m.stmtCnt++
	case *ast.FTask:
		m.walkStmts(&t.Stmts)
		m.stmtCnt++
	case *ast.AssignW, *ast.AssignAlias:
		// Still walked, as cross-references beneath must be unlinked.
		oldCnt := m.stmtCnt
		m.walkChildren(n)
		m.stmtCnt = oldCnt
	default:
		m.walkChildren(n)
		m.stmtCnt++
	}
}

func (m *marker) walkChildren(n ast.Node) {
	for _, child := range ast.Children(n) {
		m.walkNode(child)
	}
}
