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
package netlist

import (
	"fmt"
	"strings"

	"github.com/silica-lang/go-silica/pkg/hdl/ast"
)

// WriteString renders a netlist back into the textual format, one module per
// top-level form.  Breadcrumbs left by inlining are included, so pass output
// can be inspected (and snapshotted in tests) directly.
func WriteString(netlist *ast.Netlist) string {
	var w writer
	//
	for i, mod := range netlist.Modules {
		if i != 0 {
			w.out.WriteString("\n")
		}
		//
		w.writeModule(mod)
	}
	//
	return w.out.String()
}

type writer struct {
	out strings.Builder
}

func (w *writer) writeModule(mod *ast.Module) {
	keyword := "module"
	if mod.IsPackage {
		keyword = "package"
	}
	//
	w.out.WriteString(fmt.Sprintf("(%s %s", keyword, mod.Name))
	//
	if mod.Public {
		w.out.WriteString(" (public)")
	}
	//
	for _, inl := range mod.Inlines {
		w.out.WriteString(fmt.Sprintf("\n  (cellinline %s %s)", inl.Name, inl.OrigModName))
	}
	//
	for _, stmt := range mod.Stmts {
		w.out.WriteString("\n  ")
		w.writeNode(stmt, "  ")
	}
	//
	w.out.WriteString(")\n")
}

//nolint:gocyclo
func (w *writer) writeNode(n ast.Node, indent string) {
	switch t := n.(type) {
	case *ast.Var:
		w.writeVar(t)
	case *ast.Cell:
		w.out.WriteString(fmt.Sprintf("(cell %s %s", t.Name, t.Target.Name))
		//
		for _, pin := range t.Pins {
			w.out.WriteString(fmt.Sprintf(" (pin %s", pin.Name))
			//
			if pin.Expr != nil {
				w.out.WriteString(" ")
				w.writeNode(pin.Expr, indent)
			}
			//
			w.out.WriteString(")")
		}
		//
		w.out.WriteString(")")
	case *ast.AssignW:
		w.writePair("assignw", t.Lhs, t.Rhs, indent)
	case *ast.AssignAlias:
		w.writePair("assignalias", t.Lhs, t.Rhs, indent)
	case *ast.Always:
		w.out.WriteString("(always")
		w.writeBlock(t.Stmts, indent)
	case *ast.FTask:
		keyword := "task"
		if t.IsFunc {
			keyword = "func"
		}
		//
		w.out.WriteString(fmt.Sprintf("(%s %s", keyword, t.Name))
		w.writeBlock(t.Stmts, indent)
	case *ast.FTaskRef:
		w.out.WriteString(fmt.Sprintf("(taskref %s", t.Name))
		//
		for _, arg := range t.Args {
			w.out.WriteString(" ")
			w.writeNode(arg, indent)
		}
		//
		if t.InlinedDots != "" {
			w.out.WriteString(fmt.Sprintf(" (dots %s)", t.InlinedDots))
		}
		//
		w.out.WriteString(")")
	case *ast.Typedef:
		w.out.WriteString(fmt.Sprintf("(typedef %s %d)", t.Name, t.Width))
	case *ast.Pragma:
		if t.Kind == ast.PragInlineModule {
			w.out.WriteString("(pragma inline)")
		} else {
			w.out.WriteString("(pragma no-inline)")
		}
	case *ast.ScopeName:
		w.out.WriteString("(scopename")
		//
		for _, attr := range t.ScopeAttr {
			if text, ok := attr.(*ast.Text); ok {
				w.out.WriteString(" " + text.Text)
			}
		}
		//
		w.out.WriteString(")")
	case *ast.CoverDecl:
		if t.Hier != "" {
			w.out.WriteString(fmt.Sprintf("(coverdecl %s %s)", t.Name, t.Hier))
		} else {
			w.out.WriteString(fmt.Sprintf("(coverdecl %s)", t.Name))
		}
	case *ast.Const:
		w.out.WriteString(fmt.Sprintf("(const %s %d)", t.Value.String(), t.Width))
	case *ast.VarRef:
		w.out.WriteString(fmt.Sprintf("(ref %s)", t.Name))
	case *ast.VarXRef:
		if t.InlinedDots != "" {
			w.out.WriteString(fmt.Sprintf("(xref %s %s (dots %s))", t.Name, t.Dotted, t.InlinedDots))
		} else {
			w.out.WriteString(fmt.Sprintf("(xref %s %s)", t.Name, t.Dotted))
		}
	default:
		w.out.WriteString(fmt.Sprintf("(?%T)", n))
	}
}

func (w *writer) writeVar(v *ast.Var) {
	w.out.WriteString(fmt.Sprintf("(var %s", v.Name))
	//
	if v.Dir != ast.DirLocal {
		w.out.WriteString(fmt.Sprintf(" (%s)", v.Dir.String()))
	}
	//
	w.out.WriteString(fmt.Sprintf(" (width %d)", v.Width))
	//
	if v.PublicRW {
		w.out.WriteString(" (public-rw)")
	}
	//
	if v.FuncLocal {
		w.out.WriteString(" (func-local)")
	}
	//
	if !v.FileLine().TracingOn() {
		w.out.WriteString(" (no-trace)")
	}
	//
	if v.Value != nil {
		w.out.WriteString(" (init ")
		w.writeNode(v.Value, "")
		w.out.WriteString(")")
	}
	//
	w.out.WriteString(")")
}

func (w *writer) writePair(keyword string, lhs ast.Node, rhs ast.Node, indent string) {
	w.out.WriteString("(" + keyword + " ")
	w.writeNode(lhs, indent)
	w.out.WriteString(" ")
	w.writeNode(rhs, indent)
	w.out.WriteString(")")
}

func (w *writer) writeBlock(stmts []ast.Node, indent string) {
	inner := indent + "  "
	//
	for _, stmt := range stmts {
		w.out.WriteString("\n" + inner)
		w.writeNode(stmt, inner)
	}
	//
	w.out.WriteString(")")
}
