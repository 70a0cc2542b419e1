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

// Children returns the child nodes of n in declaration order.  Passes use
// this for default recursion when a node kind needs no special handling.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *Netlist:
		children := make([]Node, len(t.Modules))
		for i, m := range t.Modules {
			children[i] = m
		}
		//
		return children
	case *Module:
		children := make([]Node, 0, len(t.Inlines)+len(t.Stmts))
		for _, inl := range t.Inlines {
			children = append(children, inl)
		}
		//
		return append(children, t.Stmts...)
	case *Cell:
		children := make([]Node, len(t.Pins))
		for i, p := range t.Pins {
			children[i] = p
		}
		//
		return children
	case *Pin:
		if t.Expr != nil {
			return []Node{t.Expr}
		}
	case *Var:
		if t.Value != nil {
			return []Node{t.Value}
		}
	case *FTask:
		return t.Stmts
	case *FTaskRef:
		return t.Args
	case *AssignW:
		return []Node{t.Lhs, t.Rhs}
	case *AssignAlias:
		return []Node{t.Lhs, t.Rhs}
	case *Always:
		return t.Stmts
	case *ScopeName:
		return t.ScopeAttr
	}
	// Leaf node
	return nil
}

// Walk visits n and every node beneath it in declaration order, calling fn on
// each.  Returning false from fn stops recursion below that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	//
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// FreeList collects nodes detached mid-walk, so they are not released whilst
// a sibling walker might still visit them.  It is drained once the owning
// pass returns.
type FreeList struct {
	nodes []Node
}

// Push schedules a detached node for deletion when the list is drained.
func (f *FreeList) Push(n Node) {
	f.nodes = append(f.nodes, n)
}

// Size returns the number of nodes awaiting deletion.
func (f *FreeList) Size() int {
	return len(f.nodes)
}

// Drain releases every pending node.
func (f *FreeList) Drain() {
	f.nodes = nil
}
