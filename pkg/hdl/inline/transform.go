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
	"github.com/silica-lang/go-silica/pkg/hdl/inst"
	log "github.com/sirupsen/logrus"
)

// Delimiter joining a cell name to the identifiers hoisted out of it.
const dot = "__DOT__"

// inliner expands every instantiation of a marked module in place: the
// target is cloned, its identifiers rewritten to carry the instance name,
// its pins lowered to assignments or aliases, and its statements spliced
// into the instantiating module.
type inliner struct {
	// Modules to be inlined, from the marking phase.
	marks map[*ast.Module]bool
	// Module currently being rewritten into.
	mod *ast.Module
	// Cell currently being expanded, or nil outside a clone walk.
	cell *ast.Cell
	// Cell-side expression each cloned port variable is direct-connected
	// to.  Reset per cell.
	connect map[*ast.Var]ast.Node
	// Port variables which must stay signals in their own right: lowered
	// via a real assignment, never collapsed onto their connection.
	keepSig map[*ast.Var]bool
	// Number of cells expanded.
	statCells uint
	//
	rpt  *diag.Reporter
	free *ast.FreeList
}

// transformNetlist expands marked modules throughout the netlist.  Modules
// are visited backwards, in bottom-up order: a child module must be fully
// expanded before any parent splices it in.  Required!
func transformNetlist(netlist *ast.Netlist, marks map[*ast.Module]bool,
	rpt *diag.Reporter, free *ast.FreeList) uint {
	v := &inliner{marks: marks, rpt: rpt, free: free}
	//
	for i := len(netlist.Modules) - 1; i >= 0; i-- {
		v.mod = netlist.Modules[i]
		v.transformModule(v.mod)
	}
	//
	return v.statCells
}

// transformModule scans a module's statement list for cells targeting marked
// modules.  Statements spliced in by an expansion land at the end of the
// list and are scanned in turn, though by the bottom-up ordering any cell
// among them targets an unmarked module.
func (v *inliner) transformModule(mod *ast.Module) {
	for i := 0; i < len(mod.Stmts); i++ {
		if c, ok := mod.Stmts[i].(*ast.Cell); ok && v.marks[c.Target] {
			v.expandCell(c, i)
			// Cell removed; re-examine this index
			i--
		}
	}
}

// expandCell replaces the cell at stmts[index] of the current module with
// the body of its target.
func (v *inliner) expandCell(c *ast.Cell, index int) {
	log.Debug(" inline cell ", c.Name, " of ", c.Target.Name, " into ", v.mod.Name)
	//
	v.statCells++
	// Simplify pin connections first, so the rewrite below only ever sees a
	// constant or a direct reference.
	for _, pin := range c.Pins {
		if pin.Expr != nil {
			inst.PinReconnectSimple(pin, c, v.mod, false)
		}
	}
	// Clone the target; originals answer their copies via ClonePeer
	cloned := ast.CloneTree(c.Target).(*ast.Module)
	// Reset per-cell bindings
	v.connect = make(map[*ast.Var]ast.Node)
	v.keepSig = make(map[*ast.Var]bool)
	// Leave a breadcrumb for dotted-name resolution.  Must precede any
	// breadcrumbs hoisted out of the clone below.
	v.mod.AddInline(ast.NewCellInline(c.FileLine(), c.Name, c.Target.OrigName))
	// Bind pins to the cloned port variables
	for _, pin := range c.Pins {
		if pin.Expr != nil {
			v.bindPin(pin)
		}
	}
	// Rewrite the clone body.  The clone is detached, so it is walked
	// manually rather than through the netlist.
	v.cell = c
	v.rewriteClone(cloned)
	v.cell = nil
	// Splice the rewritten statements into the host
	v.mod.AddStmt(cloned.Stmts...)
	cloned.Stmts = nil
	// The clone shell (leftover port list, etc) is done with
	v.free.Push(cloned)
	// Remove the cell
	v.mod.Stmts = append(v.mod.Stmts[:index], v.mod.Stmts[index+1:]...)
	v.free.Push(c)
}

// bindPin records which cell-side expression a cloned port variable is
// direct-connected to, propagating attributes across the interconnect.
func (v *inliner) bindPin(pin *ast.Pin) {
	oldVar := pin.ModVar
	newVar := oldVar.ClonePeer()
	//
	switch pin.Expr.(type) {
	case *ast.Const, *ast.VarRef:
	default:
		diag.FatalSrc(pin.FileLine(), "unknown interconnect type; pin reconnect should have cleared up")
	}
	//
	if _, isConst := pin.Expr.(*ast.Const); isConst && newVar.IsOutOnly() {
		v.rpt.Error(pin.FileLine(), "Output port is connected to a constant pin, electrical short")
	}
	// Propagate any attributes across the interconnect
	newVar.PropagateAttrFrom(oldVar)
	//
	if ref, ok := pin.Expr.(*ast.VarRef); ok {
		ref.Target.PropagateAttrFrom(oldVar)
	}
	// One-to-one interconnect makes no temporary: the port variable becomes
	// a tracing alias of its connection.
	v.connect[newVar] = pin.Expr
	// A public output inside the cell must go via a real assignment.  Were
	// it aliased, external writes would land on the alias and the value to
	// be propagated upwards would be lost.  (Inputs are fine: the alias
	// itself carries the assignment.)
	v.keepSig[newVar] = newVar.PublicRW && newVar.IsOutOnly()
}

// rewriteClone rewrites the detached clone of a module body for splicing
// under the current cell.
func (v *inliner) rewriteClone(cloned *ast.Module) {
	// Hoist breadcrumbs recorded by earlier, deeper inlinings
	for _, inl := range cloned.Inlines {
		v.rewriteCellInline(inl)
	}
	//
	cloned.Inlines = nil
	//
	v.rewriteStmts(cloned.Stmts, cloned)
}

// rewriteStmts rewrites a statement list in place.
func (v *inliner) rewriteStmts(stmts []ast.Node, parent ast.Node) {
	for i, n := range stmts {
		stmts[i] = v.rewrite(n, parent)
	}
}

// rewrite rewrites one node of the clone body, returning its replacement
// (usually itself).  Behaviour specialises per node kind; anything not
// mentioned just recurses.
func (v *inliner) rewrite(n ast.Node, parent ast.Node) ast.Node {
	switch t := n.(type) {
	case *ast.Cell:
		v.rewriteCell(t)
	case *ast.CellInline:
		v.rewriteCellInline(t)
	case *ast.Var:
		v.rewriteVar(t)
	case *ast.VarRef:
		return v.rewriteVarRef(t, parent)
	case *ast.VarXRef:
		t.InlinedDots = prependDots(v.cell.Name, t.InlinedDots)
	case *ast.FTask:
		t.Name = v.cell.Name + dot + t.Name
		v.rewriteStmts(t.Stmts, t)
	case *ast.FTaskRef:
		t.InlinedDots = prependDots(v.cell.Name, t.InlinedDots)
		v.rewriteStmts(t.Args, t)
	case *ast.Typedef:
		t.Name = v.cell.Name + dot + t.Name
	case *ast.ScopeName:
		// Prepend the cell to the scope expansion, keeping whatever was
		// there after it so visual order stays correct.
		attr := []ast.Node{ast.NewText(t.FileLine(), dot+v.cell.Name)}
		t.ScopeAttr = append(attr, t.ScopeAttr...)
		v.rewriteStmts(t.ScopeAttr[1:], t)
	case *ast.CoverDecl:
		// Fix the path in coverage statements
		if t.Hier != "" {
			t.Hier = v.cell.PrettyName() + "." + t.Hier
		} else {
			t.Hier = v.cell.PrettyName()
		}
	case *ast.AssignW:
		t.Lhs = v.rewrite(t.Lhs, t)
		t.Rhs = v.rewrite(t.Rhs, t)
	case *ast.AssignAlias:
		t.Lhs = v.rewrite(t.Lhs, t)
		t.Rhs = v.rewrite(t.Rhs, t)
	case *ast.Always:
		v.rewriteStmts(t.Stmts, t)
	case *ast.Pin:
		if t.Expr != nil {
			t.Expr = v.rewrite(t.Expr, t)
		}
	}
	//
	return n
}

// rewriteCell renames an instantiation nested inside the clone, so it cannot
// conflict with a sibling of the same name elsewhere.  Bottom-up ordering
// guarantees the nested target was already expanded if it was marked.
func (v *inliner) rewriteCell(c *ast.Cell) {
	if v.marks[c.Target] {
		diag.FatalSrc(c.FileLine(), "cloning should have already been done bottom-up")
	}
	//
	c.Name = v.cell.Name + dot + c.Name
	//
	for _, pin := range c.Pins {
		v.rewrite(pin, c)
	}
}

// rewriteCellInline hoists a breadcrumb out of the clone into the host
// module, renamed under the current cell.
func (v *inliner) rewriteCellInline(inl *ast.CellInline) {
	inl.Name = v.cell.Name + dot + inl.Name
	//
	log.Debug("    inline ", inl.Name)
	//
	v.mod.AddInline(inl)
}

// rewriteVar lowers a bound port variable into the host module and renames
// the variable for locality.  The variable always remains declared: even
// when its uses collapse onto the connection, the signal itself must stay
// traceable.
func (v *inliner) rewriteVar(n *ast.Var) {
	if expr, ok := v.connect[n]; ok {
		fl := n.FileLine()
		//
		switch e := expr.(type) {
		case *ast.Const:
			v.mod.AddStmt(ast.NewAssignW(fl,
				ast.NewVarRef(fl, n, true),
				ast.CloneTree(e)))
		case *ast.VarRef:
			if v.keepSig[n] {
				// Public output at the lower end: changes must propagate both
				// ways, and an alias would lose the change detection on the
				// outer variable.
				if n.IsInput() {
					diag.FatalSrc(fl, "outputs only - inputs use AssignAlias")
				}
				//
				v.mod.AddStmt(ast.NewAssignW(fl,
					ast.NewVarRef(fl, e.Target, true),
					ast.NewVarRef(fl, n, false)))
			} else {
				v.mod.AddStmt(ast.NewAssignAlias(fl,
					ast.NewVarRef(fl, n, true),
					ast.NewVarRef(fl, e.Target, false)))
				// Aliased signals trace as one; their location state merges.
				fl.StateInherit(e.Target.FileLine())
				e.Target.FileLine().StateInherit(fl)
			}
		default:
			diag.FatalSrc(fl, "unknown interconnect type; pin reconnect should have cleared up")
		}
	}
	// Rename under the cell and clear I/O bits, as it is now local
	if !n.FuncLocal {
		n.InlineAttrReset(v.cell.Name + dot + n.Name)
	}
	//
	if n.Value != nil {
		n.Value = v.rewrite(n.Value, n)
	}
}

// rewriteVarRef collapses references to bound port variables onto their
// connections: constants propagate directly, references retarget to the
// outer signal.  References inside the alias we just made are left alone,
// as are keep-signal variables.  The textual name resyncs with the target
// either way.
func (v *inliner) rewriteVarRef(n *ast.VarRef, parent ast.Node) ast.Node {
	if expr, ok := v.connect[n.Target]; ok && !v.keepSig[n.Target] {
		if _, inAlias := parent.(*ast.AssignAlias); !inAlias {
			switch e := expr.(type) {
			case *ast.Const:
				v.free.Push(n)
				//
				return ast.CloneTree(e)
			case *ast.VarRef:
				n.Target = e.Target
			default:
				diag.FatalSrc(n.FileLine(), "null connection")
			}
		}
	}
	//
	n.Name = n.Target.Name
	//
	return n
}

// prependDots pushes a cell name onto the front of an inlined-scope path.
func prependDots(cell string, dots string) string {
	if dots != "" {
		return cell + "." + dots
	}
	//
	return cell
}
