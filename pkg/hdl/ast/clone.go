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
	"fmt"
	"math/big"
)

// CloneTree deep-clones a subtree, recording clone correspondence: after the
// call, every node in the original answers its fresh copy via ClonePeer
// (valid until the next CloneTree touches it).  References internal to the
// cloned subtree (variable targets, pin port variables, task targets) are
// redirected to their clones; references to nodes outside the subtree, such
// as a cell's target module, are left pointing at the originals.
func CloneTree(n Node) Node {
	c := cloner{make(map[Node]Node)}
	// Copy structure, recording correspondence
	root := c.copy(n)
	// Redirect internal cross-references
	for _, clone := range c.peers {
		c.relink(clone)
	}
	//
	return root
}

// cloner tracks the correspondence between original nodes and their copies
// whilst a clone is under construction.
type cloner struct {
	peers map[Node]Node
}

// copy structurally duplicates a node, registering the copy as the
// original's peer.
//
//nolint:gocyclo
func (c *cloner) copy(n Node) Node {
	if n == nil {
		return nil
	}
	//
	var clone Node
	//
	switch t := n.(type) {
	case *Netlist:
		clone = &Netlist{base{t.fileline, nil}, c.copyModules(t.Modules)}
	case *Module:
		clone = &Module{base{t.fileline, nil}, t.Name, t.OrigName, t.Public, t.IsPackage,
			c.copyInlines(t.Inlines), c.copyAll(t.Stmts)}
	case *Cell:
		clone = &Cell{base{t.fileline, nil}, t.Name, t.Target, c.copyPins(t.Pins)}
	case *CellInline:
		clone = &CellInline{base{t.fileline, nil}, t.Name, t.OrigModName}
	case *Pin:
		clone = &Pin{base{t.fileline, nil}, t.Name, t.ModVar, c.copy(t.Expr)}
	case *Var:
		clone = &Var{base{t.fileline.Copy(), nil}, t.Name, t.Dir, t.Width,
			t.PublicRW, t.FuncLocal, c.copy(t.Value)}
	case *VarRef:
		clone = &VarRef{base{t.fileline, nil}, t.Name, t.Target, t.Write}
	case *VarXRef:
		clone = &VarXRef{base{t.fileline, nil}, t.Name, t.Dotted, t.InlinedDots, t.Target}
	case *FTask:
		clone = &FTask{base{t.fileline, nil}, t.Name, t.IsFunc, c.copyAll(t.Stmts)}
	case *FTaskRef:
		clone = &FTaskRef{base{t.fileline, nil}, t.Name, t.Target, t.Pkg,
			t.InlinedDots, c.copyAll(t.Args)}
	case *Typedef:
		clone = &Typedef{base{t.fileline, nil}, t.Name, t.Width}
	case *AssignW:
		clone = &AssignW{base{t.fileline, nil}, c.copy(t.Lhs), c.copy(t.Rhs)}
	case *AssignAlias:
		clone = &AssignAlias{base{t.fileline, nil}, c.copy(t.Lhs), c.copy(t.Rhs)}
	case *Always:
		clone = &Always{base{t.fileline, nil}, c.copyAll(t.Stmts)}
	case *Const:
		clone = &Const{base{t.fileline, nil}, new(big.Int).Set(t.Value), t.Width}
	case *Pragma:
		clone = &Pragma{base{t.fileline, nil}, t.Kind}
	case *ScopeName:
		clone = &ScopeName{base{t.fileline, nil}, c.copyAll(t.ScopeAttr)}
	case *Text:
		clone = &Text{base{t.fileline, nil}, t.Text}
	case *CoverDecl:
		clone = &CoverDecl{base{t.fileline, nil}, t.Name, t.Hier}
	default:
		panic(fmt.Sprintf("unknown node %T", n))
	}
	// Record correspondence on the original
	n.setClonePeer(clone)
	c.peers[n] = clone
	//
	return clone
}

// relink redirects any reference held by a cloned node which points at a node
// inside the cloned subtree.
func (c *cloner) relink(clone Node) {
	switch t := clone.(type) {
	case *Cell:
		// Target module deliberately not remapped: cells reference modules
		// owned by the netlist.
	case *Pin:
		if p, ok := c.peers[t.ModVar]; ok {
			t.ModVar = p.(*Var)
		}
	case *VarRef:
		if p, ok := c.peers[t.Target]; ok {
			t.Target = p.(*Var)
		}
	case *VarXRef:
		if t.Target != nil {
			if p, ok := c.peers[t.Target]; ok {
				t.Target = p.(*Var)
			}
		}
	case *FTaskRef:
		if t.Target != nil {
			if p, ok := c.peers[t.Target]; ok {
				t.Target = p.(*FTask)
			}
		}
	}
}

func (c *cloner) copyAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	//
	clones := make([]Node, len(nodes))
	for i, n := range nodes {
		clones[i] = c.copy(n)
	}
	//
	return clones
}

func (c *cloner) copyModules(modules []*Module) []*Module {
	clones := make([]*Module, len(modules))
	for i, m := range modules {
		clones[i] = c.copy(m).(*Module)
	}
	//
	return clones
}

func (c *cloner) copyInlines(inlines []*CellInline) []*CellInline {
	if inlines == nil {
		return nil
	}
	//
	clones := make([]*CellInline, len(inlines))
	for i, n := range inlines {
		clones[i] = c.copy(n).(*CellInline)
	}
	//
	return clones
}

func (c *cloner) copyPins(pins []*Pin) []*Pin {
	clones := make([]*Pin, len(pins))
	for i, p := range pins {
		clones[i] = c.copy(p).(*Pin)
	}
	//
	return clones
}
