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
	"testing"

	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	"github.com/silica-lang/go-silica/pkg/hdl/diag"
	"github.com/silica-lang/go-silica/pkg/util/assert"
)

func TestMark_Singleton(t *testing.T) {
	// One instantiation, arbitrarily big: always inlined.
	nl, big := markFixture(t, 500, 1)
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[big], "singleton module should be inlined")
}

func TestMark_Small(t *testing.T) {
	// Tiny module, many instantiations: always inlined.
	nl, small := markFixture(t, 10, 50)
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[small], "small module should be inlined")
}

func TestMark_UnderBudget(t *testing.T) {
	// 150 * 10 = 1500 < 2000.
	nl, mod := markFixture(t, 150, 10)
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[mod], "module under budget should be inlined")
}

func TestMark_OverBudget(t *testing.T) {
	// 200 * 50 = 10000 > 2000: too much duplication.
	nl, big := markFixture(t, 200, 50)
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.False(t, marks[big], "module over budget should not be inlined")
}

func TestMark_NoBudget(t *testing.T) {
	// Disabling the budget inlines everything allowed.
	nl, big := markFixture(t, 200, 50)
	//
	config := DefaultConfig()
	config.InlineMult = 0
	//
	marks := checkMark(t, nl, config)
	assert.True(t, marks[big], "disabled budget should inline everything allowed")
}

func TestMark_Public(t *testing.T) {
	nl, big := markFixture(t, 200, 50)
	big.Public = true
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.False(t, marks[big])
}

func TestMark_PublicSingleton(t *testing.T) {
	// Public forbids even the automatic singleton case.
	nl, mod := markFixture(t, 10, 1)
	mod.Public = true
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.False(t, marks[mod])
}

func TestMark_UserPragma(t *testing.T) {
	nl, big := markFixture(t, 200, 50)
	big.AddStmt(ast.NewPragma(fl(t), ast.PragInlineModule))
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[big], "user request should override the budget")
	// Pragma must have been consumed
	for _, stmt := range big.Stmts {
		if _, ok := stmt.(*ast.Pragma); ok {
			t.Fatal("inline pragma should have been removed")
		}
	}
}

func TestMark_PublicUserPragma(t *testing.T) {
	// A user request wins even on a public module.  Longstanding quirk of the
	// heuristic: the explicit request is honoured without consulting
	// legality.
	nl, mod := markFixture(t, 200, 50)
	mod.Public = true
	mod.AddStmt(ast.NewPragma(fl(t), ast.PragInlineModule))
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[mod])
}

func TestMark_NoInlinePragma(t *testing.T) {
	nl, mod := markFixture(t, 10, 5)
	mod.AddStmt(ast.NewPragma(fl(t), ast.PragNoInlineModule))
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.False(t, marks[mod], "no-inline pragma should forbid automatic inlining")
	//
	for _, stmt := range mod.Stmts {
		if _, ok := stmt.(*ast.Pragma); ok {
			t.Fatal("no-inline pragma should have been removed")
		}
	}
}

func TestMark_Package(t *testing.T) {
	nl, mod := markFixture(t, 10, 1)
	mod.IsPackage = true
	mod.AddStmt(ast.NewPragma(fl(t), ast.PragInlineModule))
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.False(t, marks[mod], "packages are never inlined")
}

func TestMark_AssignsAreFree(t *testing.T) {
	// Assignments don't count against the budget, as they flatten out.
	nl, mod := markFixture(t, 0, 50)
	//
	x := ast.NewVar(fl(t), "x", ast.DirLocal, 1)
	mod.AddStmt(x)
	//
	for i := 0; i < 500; i++ {
		mod.AddStmt(ast.NewAssignW(fl(t),
			ast.NewVarRef(fl(t), x, true),
			ast.NewVarRef(fl(t), x, false)))
	}
	//
	marks := checkMark(t, nl, DefaultConfig())
	assert.True(t, marks[mod], "assignment-only module should count as small")
}

func TestMark_UnlinksXRefs(t *testing.T) {
	nl, mod := markFixture(t, 10, 5)
	//
	xref := ast.NewVarXRef(fl(t), "sig", "sub.sig")
	xref.Target = ast.NewVar(fl(t), "sig", ast.DirLocal, 1)
	// Hide the xref under an assignment, which must still be walked
	mod.AddStmt(ast.NewAssignW(fl(t), xref, ast.NewConstUint(fl(t), 0, 1)))
	//
	tref := ast.NewFTaskRef(fl(t), "doit")
	tref.Target = ast.NewFTask(fl(t), "doit", false)
	mod.AddStmt(ast.NewAlways(fl(t), tref))
	//
	checkMark(t, nl, DefaultConfig())
	//
	assert.True(t, xref.Target == nil, "cross reference should be unlinked")
	assert.True(t, tref.Target == nil, "task reference should be unlinked")
}

func TestMark_KeepsPackageTaskRefs(t *testing.T) {
	nl, mod := markFixture(t, 10, 5)
	//
	pkg := ast.NewModule(fl(t), "pkg")
	pkg.IsPackage = true
	nl.AddModule(pkg)
	//
	task := ast.NewFTask(fl(t), "doit", false)
	pkg.AddStmt(task)
	//
	tref := ast.NewFTaskRef(fl(t), "doit")
	tref.Target = task
	tref.Pkg = pkg
	mod.AddStmt(ast.NewAlways(fl(t), tref))
	//
	checkMark(t, nl, DefaultConfig())
	//
	assert.True(t, tref.Target == task, "package-qualified task reference should stay bound")
}

// ===================================================================
// Test Helpers
// ===================================================================

// markFixture builds a netlist holding a public top module with refs cells
// instantiating a module of size (roughly) stmts, returning both.
func markFixture(t *testing.T, stmts int, refs int) (*ast.Netlist, *ast.Module) {
	nl := ast.NewNetlist(fl(t))
	//
	top := ast.NewModule(fl(t), "top")
	top.Public = true
	nl.AddModule(top)
	//
	mod := ast.NewModule(fl(t), "mod")
	nl.AddModule(mod)
	// Procedural blocks tally one node each
	for i := 0; i < stmts; i++ {
		mod.AddStmt(ast.NewAlways(fl(t)))
	}
	//
	for i := 0; i < refs; i++ {
		top.AddStmt(ast.NewCell(fl(t), "u", mod))
	}
	//
	return nl, mod
}

// checkMark runs the marking phase alone over a netlist.
func checkMark(t *testing.T, nl *ast.Netlist, config Config) map[*ast.Module]bool {
	var free ast.FreeList
	//
	rpt := diag.NewReporter()
	marks := markModules(nl, config, rpt, &free)
	//
	if len(rpt.Errors()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", rpt.Errors())
	}
	//
	return marks
}

func fl(t *testing.T) *ast.FileLine {
	return ast.NewFileLine(t.Name(), 1)
}
