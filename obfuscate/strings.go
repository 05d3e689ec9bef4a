// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obfuscate

import (
	"encoding/hex"
	"log"

	"github.com/veil-lang/veil/syntax"
)

// EncodeStrings replaces every string literal in f, in place, with an
// expression that rebuilds the string from its hex form at run time:
//
//	"".join([chr(int(h[i:i + 2], 16)) for i in range(0, len(h), 2)])
//
// where h is the hex encoding of the original literal. The transform
// is stateless and per-node; it needs no scope information, and the
// names it introduces (chr, int, range, len, i) are left for the host
// runtime to resolve.
//
// When opts.PreserveDocstrings is set, a leading string literal of
// the file body or of a def, class, or lambda body is left intact.
func EncodeStrings(f *syntax.File, opts *Options) {
	e := encoder{preserve: opts != nil && opts.PreserveDocstrings}
	e.suite(f.Stmts)
}

type encoder struct {
	preserve bool
}

// suite rewrites a statement list that may begin with a docstring.
func (e *encoder) suite(stmts []syntax.Stmt) {
	for i, stmt := range stmts {
		if i == 0 && e.preserve && isDocstring(stmt) {
			continue
		}
		e.stmt(stmt)
	}
}

func isDocstring(stmt syntax.Stmt) bool {
	es, ok := stmt.(*syntax.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := es.X.(*syntax.Literal)
	return ok && lit.Token == syntax.STRING
}

func (e *encoder) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		e.stmt(stmt)
	}
}

func (e *encoder) stmt(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.ExprStmt:
		stmt.X = e.expr(stmt.X)

	case *syntax.BranchStmt, *syntax.ImportStmt, *syntax.FromImportStmt, *syntax.GlobalStmt:
		// no string literals

	case *syntax.ReturnStmt:
		if stmt.Result != nil {
			stmt.Result = e.expr(stmt.Result)
		}

	case *syntax.AssignStmt:
		for i, target := range stmt.Targets {
			stmt.Targets[i] = e.expr(target)
		}
		if stmt.Ann != nil {
			stmt.Ann = e.expr(stmt.Ann)
		}
		if stmt.RHS != nil {
			stmt.RHS = e.expr(stmt.RHS)
		}

	case *syntax.DelStmt:
		for i, x := range stmt.List {
			stmt.List[i] = e.expr(x)
		}

	case *syntax.IfStmt:
		stmt.Cond = e.expr(stmt.Cond)
		e.stmts(stmt.True)
		e.stmts(stmt.False)

	case *syntax.ForStmt:
		stmt.X = e.expr(stmt.X)
		e.stmts(stmt.Body)
		e.stmts(stmt.Else)

	case *syntax.WhileStmt:
		stmt.Cond = e.expr(stmt.Cond)
		e.stmts(stmt.Body)
		e.stmts(stmt.Else)

	case *syntax.WithStmt:
		for _, item := range stmt.Items {
			item.X = e.expr(item.X)
		}
		e.stmts(stmt.Body)

	case *syntax.DefStmt:
		for i, d := range stmt.Decorators {
			stmt.Decorators[i] = e.expr(d)
		}
		e.params(stmt.Params)
		if stmt.Returns != nil {
			stmt.Returns = e.expr(stmt.Returns)
		}
		e.suite(stmt.Body)

	case *syntax.ClassStmt:
		for i, d := range stmt.Decorators {
			stmt.Decorators[i] = e.expr(d)
		}
		for i, base := range stmt.Bases {
			stmt.Bases[i] = e.expr(base)
		}
		e.suite(stmt.Body)

	default:
		log.Panicf("unexpected stmt %T", stmt)
	}
}

// params rewrites default values; parameter names carry no strings.
func (e *encoder) params(params []syntax.Expr) {
	for _, param := range params {
		if b, ok := param.(*syntax.BinaryExpr); ok && b.Op == syntax.EQ {
			b.Y = e.expr(b.Y)
		}
	}
}

// expr returns the rewritten form of x. String literals are replaced;
// every other node is rewritten in place and returned unchanged. The
// replacement expressions are never revisited.
func (e *encoder) expr(x syntax.Expr) syntax.Expr {
	switch x := x.(type) {
	case *syntax.Ident:
		// nothing to do

	case *syntax.Literal:
		if x.Token == syntax.STRING {
			return decoderExpr(x.Value.(string))
		}

	case *syntax.ParenExpr:
		x.X = e.expr(x.X)

	case *syntax.UnaryExpr:
		if x.X != nil {
			x.X = e.expr(x.X)
		}

	case *syntax.BinaryExpr:
		x.X = e.expr(x.X)
		x.Y = e.expr(x.Y)

	case *syntax.DotExpr:
		x.X = e.expr(x.X)

	case *syntax.IndexExpr:
		x.X = e.expr(x.X)
		x.Y = e.expr(x.Y)

	case *syntax.SliceExpr:
		x.X = e.expr(x.X)
		if x.Lo != nil {
			x.Lo = e.expr(x.Lo)
		}
		if x.Hi != nil {
			x.Hi = e.expr(x.Hi)
		}
		if x.Step != nil {
			x.Step = e.expr(x.Step)
		}

	case *syntax.CallExpr:
		x.Fn = e.expr(x.Fn)
		for i, arg := range x.Args {
			x.Args[i] = e.expr(arg)
		}

	case *syntax.ListExpr:
		for i, elem := range x.List {
			x.List[i] = e.expr(elem)
		}

	case *syntax.SetExpr:
		for i, elem := range x.List {
			x.List[i] = e.expr(elem)
		}

	case *syntax.TupleExpr:
		for i, elem := range x.List {
			x.List[i] = e.expr(elem)
		}

	case *syntax.DictExpr:
		for _, entry := range x.List {
			entry := entry.(*syntax.DictEntry)
			entry.Key = e.expr(entry.Key)
			entry.Value = e.expr(entry.Value)
		}

	case *syntax.DictEntry:
		x.Key = e.expr(x.Key)
		x.Value = e.expr(x.Value)

	case *syntax.CondExpr:
		x.Cond = e.expr(x.Cond)
		x.True = e.expr(x.True)
		x.False = e.expr(x.False)

	case *syntax.LambdaExpr:
		e.params(x.Params)
		e.stmts(x.Body)

	case *syntax.Comprehension:
		x.Body = e.expr(x.Body)
		for _, clause := range x.Clauses {
			switch clause := clause.(type) {
			case *syntax.ForClause:
				clause.X = e.expr(clause.X)
			case *syntax.IfClause:
				clause.Cond = e.expr(clause.Cond)
			}
		}

	default:
		log.Panicf("unexpected expr %T", x)
	}
	return x
}

// decoderExpr builds the runtime decoding expression for s.
// Each syntax node is freshly allocated; the tree stays acyclic.
func decoderExpr(s string) syntax.Expr {
	h := hex.EncodeToString([]byte(s))

	hexLit := func() syntax.Expr {
		return &syntax.Literal{Token: syntax.STRING, Value: h}
	}
	ident := func(name string) *syntax.Ident {
		return &syntax.Ident{Name: name}
	}
	intLit := func(v int64) syntax.Expr {
		return &syntax.Literal{Token: syntax.INT, Value: v}
	}
	call := func(fn syntax.Expr, args ...syntax.Expr) syntax.Expr {
		return &syntax.CallExpr{Fn: fn, Args: args}
	}

	// h[i:i + 2]
	pair := &syntax.SliceExpr{
		X:  hexLit(),
		Lo: ident("i"),
		Hi: &syntax.BinaryExpr{Op: syntax.PLUS, X: ident("i"), Y: intLit(2)},
	}

	// chr(int(h[i:i + 2], 16))
	char := call(ident("chr"), call(ident("int"), pair, intLit(16)))

	// range(0, len(h), 2)
	indices := call(ident("range"), intLit(0), call(ident("len"), hexLit()), intLit(2))

	// [chr(...) for i in range(...)]
	comp := &syntax.Comprehension{
		Brack: syntax.LBRACK,
		Body:  char,
		Clauses: []syntax.Node{
			&syntax.ForClause{Vars: ident("i"), X: indices},
		},
	}

	// "".join([...])
	join := &syntax.DotExpr{
		X:    &syntax.Literal{Token: syntax.STRING, Value: ""},
		Name: ident("join"),
	}
	return call(join, comp)
}
