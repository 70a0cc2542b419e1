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
	"math/big"
	"strings"
)

// Node is implemented by every kind of node appearing in a netlist tree.
// Passes dispatch on the concrete type of a node using ordinary type
// switches.
type Node interface {
	// FileLine returns the source position this node was produced from.
	FileLine() *FileLine
	// clonePeer returns the most recent clone made of this node (if any).
	// Peers are recorded by CloneTree and remain valid until the next call.
	clonePeer() Node
	// setClonePeer records the most recent clone made of this node.
	setClonePeer(Node)
}

// base carries the state shared by all node kinds.  It is embedded (by
// pointer semantics) in every concrete node.
type base struct {
	fileline *FileLine
	// Most recent clone of this node, set by CloneTree.
	peer Node
}

// FileLine returns the source position this node was produced from.
func (b *base) FileLine() *FileLine { return b.fileline }

func (b *base) clonePeer() Node { return b.peer }

func (b *base) setClonePeer(n Node) { b.peer = n }

// ============================================================================
// Netlist / Module
// ============================================================================

// Netlist is the top-level ordered collection of all modules in a design.
type Netlist struct {
	base
	Modules []*Module
}

// NewNetlist constructs an empty netlist.
func NewNetlist(fl *FileLine) *Netlist {
	return &Netlist{base{fl, nil}, nil}
}

// AddModule appends a module to this netlist.
func (n *Netlist) AddModule(m *Module) {
	n.Modules = append(n.Modules, m)
}

// FindModule returns the module with the given name, or nil.
func (n *Netlist) FindModule(name string) *Module {
	for _, m := range n.Modules {
		if m.Name == name {
			return m
		}
	}
	//
	return nil
}

// Module is a unit of definition: an ordered list of declarations and
// statements, possibly containing cells which instantiate other modules.  A
// package is a module variant holding only declarations; it is never
// instantiated.
type Module struct {
	base
	// Current name of this module.
	Name string
	// Name the module had in the original source, before any renaming.
	OrigName string
	// Whether this module is visible to external code, in which case it
	// must be preserved as-is.
	Public bool
	// Whether this is the package variant.
	IsPackage bool
	// Breadcrumbs recording cells which were dissolved into this module.
	// Kept ahead of all statements so scopes can be reconstructed in
	// declaration order.
	Inlines []*CellInline
	// Declarations and statements, in declaration order.
	Stmts []Node
}

// NewModule constructs an empty module with the given name.
func NewModule(fl *FileLine, name string) *Module {
	return &Module{base{fl, nil}, name, name, false, false, nil, nil}
}

// AddStmt appends a declaration or statement to this module.
func (m *Module) AddStmt(stmts ...Node) {
	m.Stmts = append(m.Stmts, stmts...)
}

// AddInline appends a breadcrumb to this module.
func (m *Module) AddInline(inl *CellInline) {
	m.Inlines = append(m.Inlines, inl)
}

// ClonePeer returns the most recent clone made of this module.
func (m *Module) ClonePeer() *Module {
	if p, ok := m.clonePeer().(*Module); ok {
		return p
	}
	//
	return nil
}

// ============================================================================
// Cell / CellInline / Pin
// ============================================================================

// Cell is an instance of one module within another.  The target module is
// referenced, not owned; it remains a member of the netlist.
type Cell struct {
	base
	// Instance name.
	Name string
	// Module being instantiated.
	Target *Module
	// Port connections.
	Pins []*Pin
}

// NewCell constructs a cell instantiating the given module.
func NewCell(fl *FileLine, name string, target *Module, pins ...*Pin) *Cell {
	return &Cell{base{fl, nil}, name, target, pins}
}

// PrettyName returns the user-visible instance name, with the internal dot
// encoding mapped back to ".".
func (c *Cell) PrettyName() string {
	return strings.ReplaceAll(c.Name, "__DOT__", ".")
}

// CellInline records that a cell used to exist at this point.  Later name
// resolution consumes these to reconstruct dotted hierarchical paths.
type CellInline struct {
	base
	// Name the dissolved cell had.
	Name string
	// Original name of the module the cell instantiated.
	OrigModName string
}

// NewCellInline constructs a breadcrumb for a dissolved cell.
func NewCellInline(fl *FileLine, name string, origModName string) *CellInline {
	return &CellInline{base{fl, nil}, name, origModName}
}

// Pin is one port connection of a cell, binding a module-side variable to an
// expression in the instantiating module.  The expression may be nil for an
// unconnected port.
type Pin struct {
	base
	// Port name (matches ModVar's original name).
	Name string
	// Module-side variable in the cell's target module.
	ModVar *Var
	// Connection expression, or nil.
	Expr Node
}

// NewPin constructs a pin binding the given port variable to an expression.
func NewPin(fl *FileLine, name string, modvar *Var, expr Node) *Pin {
	return &Pin{base{fl, nil}, name, modvar, expr}
}

// ============================================================================
// Variables and references
// ============================================================================

// Dir gives the direction of a variable declaration.
type Dir uint8

const (
	// DirLocal is a module-local signal (no port direction).
	DirLocal Dir = iota
	// DirInput is an input port.
	DirInput
	// DirOutput is an output port.
	DirOutput
	// DirInout is a bidirectional port.
	DirInout
)

func (d Dir) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	default:
		return "local"
	}
}

// Var declares a signal (or function local) within a module.
type Var struct {
	base
	// Signal name.
	Name string
	// Port direction, or DirLocal.
	Dir Dir
	// Width in bits.
	Width uint
	// Whether external code may read and write this signal, in which case
	// its value transitions must remain observable.
	PublicRW bool
	// Whether this variable is local to a function or task, in which case
	// inlining never renames it.
	FuncLocal bool
	// Optional initial value.
	Value Node
}

// NewVar constructs a variable declaration.
func NewVar(fl *FileLine, name string, dir Dir, width uint) *Var {
	return &Var{base{fl, nil}, name, dir, width, false, false, nil}
}

// IsInput reports whether this variable is an input (or inout) port.
func (v *Var) IsInput() bool { return v.Dir == DirInput || v.Dir == DirInout }

// IsOutOnly reports whether this variable is an output and not also an input.
func (v *Var) IsOutOnly() bool { return v.Dir == DirOutput }

// ClonePeer returns the most recent clone made of this variable.
func (v *Var) ClonePeer() *Var {
	if p, ok := v.clonePeer().(*Var); ok {
		return p
	}
	//
	return nil
}

// PropagateAttrFrom copies interconnect-relevant attributes from another
// variable onto this one.
func (v *Var) PropagateAttrFrom(other *Var) {
	v.PublicRW = v.PublicRW || other.PublicRW
	//
	v.fileline.StateInherit(other.fileline)
}

// InlineAttrReset renames this variable and clears its port direction, making
// it an ordinary local signal of the enclosing module.
func (v *Var) InlineAttrReset(name string) {
	v.Name = name
	v.Dir = DirLocal
}

// VarRef is a read or write reference to a variable within the same module.
type VarRef struct {
	base
	// Textual name, kept in sync with the target's name.
	Name string
	// Variable being referenced.
	Target *Var
	// Whether this reference is an lvalue use.
	Write bool
}

// NewVarRef constructs a reference to the given variable.
func NewVarRef(fl *FileLine, target *Var, write bool) *VarRef {
	return &VarRef{base{fl, nil}, target.Name, target, write}
}

// VarXRef is a not-yet-resolved reference to a variable in another part of
// the hierarchy, named by a dotted path.  Resolution happens in a later pass;
// InlinedDots accumulates the scopes dissolved around it in the meantime.
type VarXRef struct {
	base
	// Variable name within the target scope.
	Name string
	// Dotted scope path, as written.
	Dotted string
	// Scopes this reference has been inlined through.
	InlinedDots string
	// Resolved target, if any.  Cleared by the inlining pass.
	Target *Var
}

// NewVarXRef constructs an unresolved cross-hierarchy reference.
func NewVarXRef(fl *FileLine, name string, dotted string) *VarXRef {
	return &VarXRef{base{fl, nil}, name, dotted, "", nil}
}

// ============================================================================
// Functions and tasks
// ============================================================================

// FTask declares a function or task within a module.
type FTask struct {
	base
	// Function or task name.
	Name string
	// Whether this is a function (has a return value) rather than a task.
	IsFunc bool
	// Body statements, including function-local variables.
	Stmts []Node
}

// NewFTask constructs a function or task declaration.
func NewFTask(fl *FileLine, name string, isFunc bool, stmts ...Node) *FTask {
	return &FTask{base{fl, nil}, name, isFunc, stmts}
}

// FTaskRef is a call of a function or task.
type FTaskRef struct {
	base
	// Name of the function or task being called.
	Name string
	// Resolved declaration, if any.  Cleared by the inlining pass unless the
	// call is package qualified.
	Target *FTask
	// Package qualifying the call, or nil.
	Pkg *Module
	// Scopes this call has been inlined through.
	InlinedDots string
	// Actual arguments.
	Args []Node
}

// NewFTaskRef constructs a call of the given function or task.
func NewFTaskRef(fl *FileLine, name string, args ...Node) *FTaskRef {
	return &FTaskRef{base{fl, nil}, name, nil, nil, "", args}
}

// Typedef declares a named type within a module.
type Typedef struct {
	base
	// Type name.
	Name string
	// Width of the defined type.
	Width uint
}

// NewTypedef constructs a type declaration.
func NewTypedef(fl *FileLine, name string, width uint) *Typedef {
	return &Typedef{base{fl, nil}, name, width}
}

// ============================================================================
// Statements and expressions
// ============================================================================

// AssignW is a directional continuous assignment.
type AssignW struct {
	base
	Lhs Node
	Rhs Node
}

// NewAssignW constructs a continuous assignment.
func NewAssignW(fl *FileLine, lhs Node, rhs Node) *AssignW {
	return &AssignW{base{fl, nil}, lhs, rhs}
}

// AssignAlias is a bidirectional tracing-preserving assignment: both sides
// name the same value and waveform viewers show both.
type AssignAlias struct {
	base
	Lhs Node
	Rhs Node
}

// NewAssignAlias constructs an aliasing assignment.
func NewAssignAlias(fl *FileLine, lhs Node, rhs Node) *AssignAlias {
	return &AssignAlias{base{fl, nil}, lhs, rhs}
}

// Always is a procedural block executed whenever its body's inputs change.
type Always struct {
	base
	Stmts []Node
}

// NewAlways constructs a procedural block.
func NewAlways(fl *FileLine, stmts ...Node) *Always {
	return &Always{base{fl, nil}, stmts}
}

// Const is a constant value of a given bit width.
type Const struct {
	base
	Value *big.Int
	Width uint
}

// NewConst constructs a constant from a given value and width.
func NewConst(fl *FileLine, value *big.Int, width uint) *Const {
	return &Const{base{fl, nil}, value, width}
}

// NewConstUint constructs a constant from a given unsigned value and width.
func NewConstUint(fl *FileLine, value uint64, width uint) *Const {
	return NewConst(fl, new(big.Int).SetUint64(value), width)
}

// PragmaKind enumerates the recognised pragma directives.
type PragmaKind uint8

const (
	// PragInlineModule requests the enclosing module be inlined at every
	// instantiation.
	PragInlineModule PragmaKind = iota
	// PragNoInlineModule forbids automatic inlining of the enclosing module.
	PragNoInlineModule
)

// Pragma is a compiler directive attached to the enclosing module.
type Pragma struct {
	base
	Kind PragmaKind
}

// NewPragma constructs a pragma of the given kind.
func NewPragma(fl *FileLine, kind PragmaKind) *Pragma {
	return &Pragma{base{fl, nil}, kind}
}

// ScopeName expands to the name of the enclosing scope (the "%m" of display
// statements).  ScopeAttr holds the text fragments making up the expansion.
type ScopeName struct {
	base
	ScopeAttr []Node
}

// NewScopeName constructs a scope-name expansion point.
func NewScopeName(fl *FileLine, attrs ...Node) *ScopeName {
	return &ScopeName{base{fl, nil}, attrs}
}

// Text is a literal text fragment, used inside scope-name expansions.
type Text struct {
	base
	Text string
}

// NewText constructs a literal text fragment.
func NewText(fl *FileLine, text string) *Text {
	return &Text{base{fl, nil}, text}
}

// CoverDecl declares a coverage point, recording the hierarchical path it
// sits under for reporting.
type CoverDecl struct {
	base
	// Coverage point name.
	Name string
	// Hierarchical path of enclosing scopes, dot separated.
	Hier string
}

// NewCoverDecl constructs a coverage point declaration.
func NewCoverDecl(fl *FileLine, name string) *CoverDecl {
	return &CoverDecl{base{fl, nil}, name, ""}
}
