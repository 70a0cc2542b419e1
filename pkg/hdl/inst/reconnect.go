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

// Package inst provides helpers for working with module instantiations,
// notably the pin reconnection simplifier used ahead of inlining.
package inst

import (
	"fmt"

	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	log "github.com/sirupsen/logrus"
)

// PinReconnectSimple reduces a pin's connection so that downstream rewrites
// only ever see a constant, a plain variable reference, or no connection at
// all.  Connections already in one of those forms are left alone.  Anything
// richer is detached onto a fresh intermediate signal in mod, with a
// continuous assignment carrying the value across, and the pin reconnected to
// that signal.  With elideUnused set, a complex connection on an output pin
// nobody reads is simply dropped instead.
func PinReconnectSimple(pin *ast.Pin, cell *ast.Cell, mod *ast.Module, elideUnused bool) {
	switch pin.Expr.(type) {
	case nil:
		return
	case *ast.Const, *ast.VarRef:
		// Already simple
		return
	}
	//
	if elideUnused && pin.ModVar.IsOutOnly() {
		pin.Expr = nil
		return
	}
	//
	var prefix string
	//
	if pin.ModVar.IsOutOnly() {
		prefix = "__Vcellout"
	} else {
		prefix = "__Vcellinp"
	}
	// Make an intermediate signal carrying the pin's value
	name := fmt.Sprintf("%s__%s__%s", prefix, cell.Name, pin.Name)
	tmp := ast.NewVar(pin.FileLine(), name, ast.DirLocal, pin.ModVar.Width)
	//
	log.Debug("pin reconnect ", cell.Name, ".", pin.Name, " via ", name)
	//
	expr := pin.Expr
	//
	if pin.ModVar.IsOutOnly() {
		// Cell drives the intermediate; the original expression receives it.
		pin.Expr = ast.NewVarRef(pin.FileLine(), tmp, true)
		mod.AddStmt(tmp, ast.NewAssignW(pin.FileLine(), expr, ast.NewVarRef(pin.FileLine(), tmp, false)))
	} else {
		pin.Expr = ast.NewVarRef(pin.FileLine(), tmp, false)
		mod.AddStmt(tmp, ast.NewAssignW(pin.FileLine(), ast.NewVarRef(pin.FileLine(), tmp, true), expr))
	}
}
