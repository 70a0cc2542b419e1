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

// Package netlist translates between the textual netlist format and the
// tree representation the compiler passes operate on.  A netlist file is a
// sequence of module forms:
//
//	(module top
//	  (var x (input) (width 1))
//	  (var y (output) (width 1))
//	  (cell a M (pin i (ref x)) (pin o (ref y))))
//	(module M ...)
//
// Cell targets resolve against the whole netlist; variable references
// resolve against the enclosing module.
package netlist

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/silica-lang/go-silica/pkg/hdl/ast"
	"github.com/silica-lang/go-silica/pkg/sexp"
)

// ReadFile reads and translates a netlist file.
func ReadFile(filename string) (*ast.Netlist, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return ReadString(filename, string(bytes))
}

// ReadString translates netlist text into a tree, or fails with an error
// identifying the offending line.
func ReadString(filename string, text string) (*ast.Netlist, error) {
	terms, err := sexp.ParseAll(text)
	if err != nil {
		return nil, err
	}
	//
	r := &reader{filename: filename}
	//
	return r.readNetlist(terms)
}

// reader holds the state threaded through one translation.
type reader struct {
	filename string
	netlist  *ast.Netlist
	// Variables of the module currently being read, by name.
	vars map[string]*ast.Var
	// Hoisted variables of every module, for resolving pins against modules
	// whose bodies have not been read yet.
	allVars map[*ast.Module]map[string]*ast.Var
}

// readNetlist translates a sequence of module forms.  Module shells and
// their variables are created up front, so cells and pins can resolve
// forward references.
func (r *reader) readNetlist(terms []sexp.SExp) (*ast.Netlist, error) {
	r.netlist = ast.NewNetlist(ast.NewFileLine(r.filename, 1))
	r.allVars = make(map[*ast.Module]map[string]*ast.Var)
	//
	var bodies [][]sexp.SExp
	// Pass one: module shells and variable declarations
	for _, term := range terms {
		mod, body, err := r.readModuleShell(term)
		if err != nil {
			return nil, err
		}
		//
		r.netlist.AddModule(mod)
		// Hoist variable declarations so pins resolve
		vars := make(map[string]*ast.Var)
		//
		for _, form := range body {
			if l, ok := form.(*sexp.List); ok && l.MatchSymbols(2, "var") {
				v, err := r.readVar(l)
				if err != nil {
					return nil, err
				}
				//
				vars[v.Name] = v
			}
		}
		//
		bodies = append(bodies, body)
		r.allVars[mod] = vars
	}
	// Pass two: module bodies
	for i, mod := range r.netlist.Modules {
		r.vars = r.allVars[mod]
		//
		for _, form := range bodies[i] {
			stmt, err := r.readStmt(form)
			if err != nil {
				return nil, err
			}
			//
			mod.AddStmt(stmt)
		}
	}
	//
	return r.netlist, nil
}

// readModuleShell translates a module or package header, returning the (as
// yet empty) module and its unread body forms.
func (r *reader) readModuleShell(term sexp.SExp) (*ast.Module, []sexp.SExp, error) {
	l, ok := term.(*sexp.List)
	//
	if !ok || (!l.MatchSymbols(2, "module") && !l.MatchSymbols(2, "package")) {
		return nil, nil, r.syntaxError(term, "expected module or package")
	}
	//
	mod := ast.NewModule(r.fileline(l), l.Symbol(1).Value)
	mod.IsPackage = l.MatchSymbols(2, "package")
	//
	body := l.Elements[2:]
	// Leading attribute lists
	for len(body) > 0 {
		attr, ok := body[0].(*sexp.List)
		if !ok || !attr.MatchSymbols(1, "public") {
			break
		}
		//
		mod.Public = true
		body = body[1:]
	}
	//
	return mod, body, nil
}

// readVar translates a variable declaration form, e.g.
// (var x (input) (width 8) (public-rw) (init (const 1 8))).
func (r *reader) readVar(l *sexp.List) (*ast.Var, error) {
	v := ast.NewVar(r.fileline(l), l.Symbol(1).Value, ast.DirLocal, 1)
	//
	for _, form := range l.Elements[2:] {
		attr, ok := form.(*sexp.List)
		if !ok || attr.Len() == 0 || !attr.Elements[0].IsSymbol() {
			return nil, r.syntaxError(form, "malformed variable attribute")
		}
		//
		switch attr.Symbol(0).Value {
		case "input":
			v.Dir = ast.DirInput
		case "output":
			v.Dir = ast.DirOutput
		case "inout":
			v.Dir = ast.DirInout
		case "public-rw":
			v.PublicRW = true
		case "func-local":
			v.FuncLocal = true
		case "no-trace":
			v.FileLine().SetTracingOn(false)
		case "width":
			w, err := r.readUint(attr, 1)
			if err != nil {
				return nil, err
			}
			//
			v.Width = w
		case "init":
			if attr.Len() != 2 {
				return nil, r.syntaxError(attr, "malformed initial value")
			}
			//
			value, err := r.readExpr(attr.Elements[1], false)
			if err != nil {
				return nil, err
			}
			//
			v.Value = value
		default:
			return nil, r.syntaxError(attr, fmt.Sprintf("unknown variable attribute \"%s\"", attr.Symbol(0).Value))
		}
	}
	//
	return v, nil
}

// readStmt translates one declaration or statement form.
//
//nolint:gocyclo
func (r *reader) readStmt(term sexp.SExp) (ast.Node, error) {
	l, ok := term.(*sexp.List)
	if !ok || l.Len() == 0 || !l.Elements[0].IsSymbol() {
		return nil, r.syntaxError(term, "expected statement")
	}
	//
	switch l.Symbol(0).Value {
	case "var":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed variable declaration")
		}
		// Module-level declarations were created during hoisting; nested
		// ones (function locals) are created here and join the same scope.
		if v, ok := r.vars[l.Symbol(1).Value]; ok {
			return v, nil
		}
		//
		v, err := r.readVar(l)
		if err != nil {
			return nil, err
		}
		//
		r.vars[v.Name] = v
		//
		return v, nil
	case "cell":
		return r.readCell(l)
	case "assignw":
		lhs, rhs, err := r.readAssignOperands(l)
		if err != nil {
			return nil, err
		}
		//
		return ast.NewAssignW(r.fileline(l), lhs, rhs), nil
	case "assignalias":
		lhs, rhs, err := r.readAssignOperands(l)
		if err != nil {
			return nil, err
		}
		//
		return ast.NewAssignAlias(r.fileline(l), lhs, rhs), nil
	case "always":
		stmts, err := r.readStmts(l.Elements[1:])
		if err != nil {
			return nil, err
		}
		//
		return ast.NewAlways(r.fileline(l), stmts...), nil
	case "task", "func":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed task declaration")
		}
		//
		stmts, err := r.readStmts(l.Elements[2:])
		if err != nil {
			return nil, err
		}
		//
		return ast.NewFTask(r.fileline(l), l.Symbol(1).Value, l.Symbol(0).Value == "func", stmts...), nil
	case "taskref":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed task reference")
		}
		//
		args, err := r.readExprs(l.Elements[2:])
		if err != nil {
			return nil, err
		}
		//
		return ast.NewFTaskRef(r.fileline(l), l.Symbol(1).Value, args...), nil
	case "typedef":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed typedef")
		}
		//
		width, err := r.readUint(l, 2)
		if err != nil {
			return nil, err
		}
		//
		return ast.NewTypedef(r.fileline(l), l.Symbol(1).Value, width), nil
	case "pragma":
		return r.readPragma(l)
	case "scopename":
		sn := ast.NewScopeName(r.fileline(l))
		for _, e := range l.Elements[1:] {
			if !e.IsSymbol() {
				return nil, r.syntaxError(e, "malformed scopename")
			}
			//
			sn.ScopeAttr = append(sn.ScopeAttr, ast.NewText(r.fileline(e), e.String()))
		}
		//
		return sn, nil
	case "coverdecl":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed coverdecl")
		}
		//
		cd := ast.NewCoverDecl(r.fileline(l), l.Symbol(1).Value)
		if l.Symbol(2) != nil {
			cd.Hier = l.Symbol(2).Value
		}
		//
		return cd, nil
	default:
		// Expression-valued statement forms (e.g. a bare xref)
		return r.readExpr(l, false)
	}
}

// readCell translates (cell inst target (pin port expr?)...), resolving the
// target module and its port variables.
func (r *reader) readCell(l *sexp.List) (ast.Node, error) {
	if l.Symbol(1) == nil || l.Symbol(2) == nil {
		return nil, r.syntaxError(l, "malformed cell")
	}
	//
	target := r.netlist.FindModule(l.Symbol(2).Value)
	if target == nil {
		return nil, r.syntaxError(l, fmt.Sprintf("unknown module \"%s\"", l.Symbol(2).Value))
	}
	//
	cell := ast.NewCell(r.fileline(l), l.Symbol(1).Value, target)
	//
	for _, form := range l.Elements[3:] {
		pl, ok := form.(*sexp.List)
		if !ok || !pl.MatchSymbols(2, "pin") {
			return nil, r.syntaxError(form, "malformed pin")
		}
		// Resolve the port against the target module
		port := r.allVars[target][pl.Symbol(1).Value]
		if port == nil {
			return nil, r.syntaxError(pl, fmt.Sprintf("unknown port \"%s\"", pl.Symbol(1).Value))
		}
		//
		var (
			expr ast.Node
			err  error
		)
		//
		if pl.Len() > 2 {
			if expr, err = r.readExpr(pl.Elements[2], port.IsOutOnly()); err != nil {
				return nil, err
			}
		}
		//
		cell.Pins = append(cell.Pins, ast.NewPin(r.fileline(pl), pl.Symbol(1).Value, port, expr))
	}
	//
	return cell, nil
}

func (r *reader) readPragma(l *sexp.List) (ast.Node, error) {
	if l.Symbol(1) == nil {
		return nil, r.syntaxError(l, "malformed pragma")
	}
	//
	switch l.Symbol(1).Value {
	case "inline":
		return ast.NewPragma(r.fileline(l), ast.PragInlineModule), nil
	case "no-inline":
		return ast.NewPragma(r.fileline(l), ast.PragNoInlineModule), nil
	default:
		return nil, r.syntaxError(l, fmt.Sprintf("unknown pragma \"%s\"", l.Symbol(1).Value))
	}
}

// readExpr translates an expression form: (const value width), (ref name) or
// (xref name dotted).
func (r *reader) readExpr(term sexp.SExp, write bool) (ast.Node, error) {
	l, ok := term.(*sexp.List)
	if !ok || l.Len() == 0 || !l.Elements[0].IsSymbol() {
		return nil, r.syntaxError(term, "expected expression")
	}
	//
	switch l.Symbol(0).Value {
	case "const":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed constant")
		}
		//
		value, ok := new(big.Int).SetString(l.Symbol(1).Value, 0)
		if !ok {
			return nil, r.syntaxError(l, fmt.Sprintf("malformed constant \"%s\"", l.Symbol(1).Value))
		}
		//
		width, err := r.readUint(l, 2)
		if err != nil {
			return nil, err
		}
		//
		return ast.NewConst(r.fileline(l), value, width), nil
	case "ref":
		if l.Symbol(1) == nil {
			return nil, r.syntaxError(l, "malformed reference")
		}
		//
		v, ok := r.vars[l.Symbol(1).Value]
		if !ok {
			return nil, r.syntaxError(l, fmt.Sprintf("unknown variable \"%s\"", l.Symbol(1).Value))
		}
		//
		return ast.NewVarRef(r.fileline(l), v, write), nil
	case "xref":
		if l.Symbol(1) == nil || l.Symbol(2) == nil {
			return nil, r.syntaxError(l, "malformed cross reference")
		}
		//
		return ast.NewVarXRef(r.fileline(l), l.Symbol(1).Value, l.Symbol(2).Value), nil
	default:
		return nil, r.syntaxError(l, fmt.Sprintf("unknown expression \"%s\"", l.Symbol(0).Value))
	}
}

func (r *reader) readAssignOperands(l *sexp.List) (ast.Node, ast.Node, error) {
	if l.Len() != 3 {
		return nil, nil, r.syntaxError(l, "malformed assignment")
	}
	//
	lhs, err := r.readExpr(l.Elements[1], true)
	if err != nil {
		return nil, nil, err
	}
	//
	rhs, err := r.readExpr(l.Elements[2], false)
	if err != nil {
		return nil, nil, err
	}
	//
	return lhs, rhs, nil
}

func (r *reader) readStmts(terms []sexp.SExp) ([]ast.Node, error) {
	stmts := make([]ast.Node, len(terms))
	//
	for i, term := range terms {
		stmt, err := r.readStmt(term)
		if err != nil {
			return nil, err
		}
		//
		stmts[i] = stmt
	}
	//
	return stmts, nil
}

func (r *reader) readExprs(terms []sexp.SExp) ([]ast.Node, error) {
	exprs := make([]ast.Node, len(terms))
	//
	for i, term := range terms {
		expr, err := r.readExpr(term, false)
		if err != nil {
			return nil, err
		}
		//
		exprs[i] = expr
	}
	//
	return exprs, nil
}

func (r *reader) readUint(l *sexp.List, index int) (uint, error) {
	s := l.Symbol(index)
	if s == nil {
		return 0, r.syntaxError(l, "expected number")
	}
	//
	n, err := strconv.ParseUint(s.Value, 10, 32)
	if err != nil {
		return 0, r.syntaxError(s, fmt.Sprintf("malformed number \"%s\"", s.Value))
	}
	//
	return uint(n), nil
}

func (r *reader) fileline(term sexp.SExp) *ast.FileLine {
	return ast.NewFileLine(r.filename, term.Line())
}

func (r *reader) syntaxError(term sexp.SExp, msg string) error {
	if term == nil {
		return sexp.NewSyntaxError(0, msg)
	}
	//
	return sexp.NewSyntaxError(term.Line(), msg)
}
