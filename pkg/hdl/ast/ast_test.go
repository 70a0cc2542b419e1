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
package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClone_Correspondence(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	mod := NewModule(fl, "m")
	v := NewVar(fl, "x", DirInput, 8)
	mod.AddStmt(v)
	//
	clone := CloneTree(mod).(*Module)
	// Original answers its copy
	assert.Same(t, clone, mod.ClonePeer())
	assert.Same(t, clone.Stmts[0], v.ClonePeer())
	// The copy is fresh
	assert.NotSame(t, v, v.ClonePeer())
	assert.Equal(t, "x", v.ClonePeer().Name)
	assert.Equal(t, DirInput, v.ClonePeer().Dir)
}

func TestClone_RelinksInternalRefs(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	mod := NewModule(fl, "m")
	v := NewVar(fl, "x", DirLocal, 1)
	mod.AddStmt(v)
	mod.AddStmt(NewAssignW(fl, NewVarRef(fl, v, true), NewVarRef(fl, v, false)))
	//
	clone := CloneTree(mod).(*Module)
	//
	aw := clone.Stmts[1].(*AssignW)
	// References inside the clone follow the cloned variable, not the
	// original
	assert.Same(t, clone.Stmts[0], aw.Lhs.(*VarRef).Target)
	assert.Same(t, clone.Stmts[0], aw.Rhs.(*VarRef).Target)
}

func TestClone_KeepsExternalRefs(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	target := NewModule(fl, "sub")
	port := NewVar(fl, "i", DirInput, 1)
	target.AddStmt(port)
	//
	mod := NewModule(fl, "m")
	mod.AddStmt(NewCell(fl, "u", target, NewPin(fl, "i", port, nil)))
	//
	clone := CloneTree(mod).(*Module)
	//
	cell := clone.Stmts[0].(*Cell)
	// The instantiated module is referenced, not owned: it must not be
	// duplicated by cloning an instantiating module
	assert.Same(t, target, cell.Target)
	// The pin's port variable lives in the target, outside the clone
	assert.Same(t, port, cell.Pins[0].ModVar)
}

func TestClone_RefUnderBlockRelinked(t *testing.T) {
	fl := NewFileLine("test", 1)
	// References buried under nested statements follow their cloned
	// variable too.
	mod := NewModule(fl, "m")
	v := NewVar(fl, "x", DirOutput, 1)
	mod.AddStmt(v)
	mod.AddStmt(NewAlways(fl, NewVarRef(fl, v, true)))
	//
	clone := CloneTree(mod).(*Module)
	//
	ref := clone.Stmts[1].(*Always).Stmts[0].(*VarRef)
	assert.Same(t, clone.Stmts[0], ref.Target)
}

func TestClone_ConstIndependent(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	c := NewConstUint(fl, 42, 8)
	clone := CloneTree(c).(*Const)
	// Values must not share storage
	clone.Value.SetUint64(7)
	assert.Equal(t, uint64(42), c.Value.Uint64())
}

func TestFileLine_StateInherit(t *testing.T) {
	a := NewFileLine("a", 1)
	b := NewFileLine("b", 2)
	//
	b.SetTracingOn(false)
	// Disables propagate
	a.StateInherit(b)
	assert.False(t, a.TracingOn())
	assert.True(t, a.CoverageOn())
	// Enables do not
	b.StateInherit(NewFileLine("c", 3))
	assert.False(t, b.TracingOn())
}

func TestWalk_Order(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	mod := NewModule(fl, "m")
	v := NewVar(fl, "x", DirLocal, 1)
	mod.AddStmt(v)
	mod.AddStmt(NewAlways(fl, NewVarRef(fl, v, true)))
	mod.AddInline(NewCellInline(fl, "u", "sub"))
	//
	var kinds []string
	//
	Walk(mod, func(n Node) bool {
		switch n.(type) {
		case *Module:
			kinds = append(kinds, "module")
		case *CellInline:
			kinds = append(kinds, "inline")
		case *Var:
			kinds = append(kinds, "var")
		case *Always:
			kinds = append(kinds, "always")
		case *VarRef:
			kinds = append(kinds, "ref")
		}
		//
		return true
	})
	// Breadcrumbs come ahead of statements
	assert.Equal(t, []string{"module", "inline", "var", "always", "ref"}, kinds)
}

func TestCell_PrettyName(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	cell := NewCell(fl, "a__DOT__b__DOT__c", NewModule(fl, "m"))
	assert.Equal(t, "a.b.c", cell.PrettyName())
}

func TestFreeList(t *testing.T) {
	fl := NewFileLine("test", 1)
	//
	var free FreeList
	//
	free.Push(NewText(fl, "x"))
	free.Push(NewText(fl, "y"))
	assert.Equal(t, 2, free.Size())
	//
	free.Drain()
	assert.Equal(t, 0, free.Size())
}
