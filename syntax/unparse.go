// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file converts a syntax tree back to veil source.
// The output is canonical: one statement per line, four-space
// indentation, and minimal parentheses. Parsing the result yields a
// tree structurally identical to the input, so the printer may be
// applied to trees that have been rewritten in place.

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// UnparseFile returns the canonical source form of the file.
func UnparseFile(f *File) string {
	p := printer{indentUnit: "    "}
	for _, stmt := range f.Stmts {
		p.stmt(stmt)
	}
	return p.buf.String()
}

// Unparse returns the canonical source form of any node.
// Statements are terminated by a newline; expressions are not.
func Unparse(n Node) string {
	p := printer{indentUnit: "    "}
	switch n := n.(type) {
	case *File:
		return UnparseFile(n)
	case Stmt:
		p.stmt(n)
	case Expr:
		p.expr(n, precLow)
	default:
		panic(fmt.Sprintf("unparse: unexpected node %T", n))
	}
	return p.buf.String()
}

type printer struct {
	buf        bytes.Buffer
	indentUnit string
	depth      int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(&p.buf, format, args...)
}

func (p *printer) begin() {
	for i := 0; i < p.depth; i++ {
		p.buf.WriteString(p.indentUnit)
	}
}

// Expression precedence levels, from loosest to tightest.
// Levels 0-9 match the parser's binary operator levels.
const (
	precLow     = -1 // lambda, conditional expression
	precUnary   = 10 // +x -x ~x
	precPower   = 11 // x**y
	precPostfix = 12 // x.y x[i] x() and all primaries
)

// opPrec returns the precedence level of a binary operator token.
func opPrec(op Token) int {
	switch op {
	case NOT_IN, IS_NOT:
		return int(precedence[IN])
	case STARSTAR:
		return precPower
	}
	return int(precedence[op])
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		p.begin()
		p.expr(s.X, precLow)
		p.buf.WriteByte('\n')

	case *BranchStmt:
		p.begin()
		p.printf("%s\n", s.Token)

	case *ReturnStmt:
		p.begin()
		if s.Result != nil {
			p.buf.WriteString("return ")
			p.expr(s.Result, precLow)
			p.buf.WriteByte('\n')
		} else {
			p.buf.WriteString("return\n")
		}

	case *AssignStmt:
		p.begin()
		if s.Ann != nil {
			p.expr(s.Targets[0], precLow)
			p.buf.WriteString(": ")
			p.expr(s.Ann, precLow)
			if s.RHS != nil {
				p.buf.WriteString(" = ")
				p.expr(s.RHS, precLow)
			}
		} else {
			for _, t := range s.Targets {
				p.expr(t, precLow)
				p.printf(" %s ", s.Op)
			}
			p.expr(s.RHS, precLow)
		}
		p.buf.WriteByte('\n')

	case *DelStmt:
		p.begin()
		p.buf.WriteString("del ")
		p.exprList(s.List)
		p.buf.WriteByte('\n')

	case *GlobalStmt:
		p.begin()
		p.printf("%s ", s.Token)
		for i, id := range s.Names {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(id.Name)
		}
		p.buf.WriteByte('\n')

	case *ImportStmt:
		p.begin()
		p.buf.WriteString("import ")
		p.importNames(s.Names)
		p.buf.WriteByte('\n')

	case *FromImportStmt:
		p.begin()
		p.printf("from %s import ", s.Module)
		p.importNames(s.Names)
		p.buf.WriteByte('\n')

	case *IfStmt:
		p.begin()
		p.buf.WriteString("if ")
		p.ifTail(s)

	case *ForStmt:
		p.begin()
		p.buf.WriteString("for ")
		p.loopVars(s.Vars)
		p.buf.WriteString(" in ")
		p.expr(s.X, precLow)
		p.buf.WriteString(":\n")
		p.suite(s.Body)
		p.elseSuite(s.Else)

	case *WhileStmt:
		p.begin()
		p.buf.WriteString("while ")
		p.expr(s.Cond, precLow)
		p.buf.WriteString(":\n")
		p.suite(s.Body)
		p.elseSuite(s.Else)

	case *WithStmt:
		p.begin()
		p.buf.WriteString("with ")
		for i, item := range s.Items {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(item.X, precLow)
			if item.Vars != nil {
				p.buf.WriteString(" as ")
				p.loopVars(item.Vars)
			}
		}
		p.buf.WriteString(":\n")
		p.suite(s.Body)

	case *DefStmt:
		p.decorators(s.Decorators)
		p.begin()
		p.printf("def %s(", s.Name.Name)
		p.params(s.Params)
		p.buf.WriteString(")")
		if s.Returns != nil {
			p.buf.WriteString(" -> ")
			p.expr(s.Returns, precLow)
		}
		p.buf.WriteString(":\n")
		p.suite(s.Body)

	case *ClassStmt:
		p.decorators(s.Decorators)
		p.begin()
		p.printf("class %s", s.Name.Name)
		if len(s.Bases) > 0 {
			p.buf.WriteByte('(')
			p.exprList(s.Bases)
			p.buf.WriteByte(')')
		}
		p.buf.WriteString(":\n")
		p.suite(s.Body)

	default:
		panic(fmt.Sprintf("unparse: unexpected stmt %T", s))
	}
}

// ifTail prints the statement from the condition on, with the
// "if " or "elif " prefix already emitted.
func (p *printer) ifTail(s *IfStmt) {
	p.expr(s.Cond, precLow)
	p.buf.WriteString(":\n")
	p.suite(s.True)
	if len(s.False) == 0 {
		return
	}
	if elif, ok := s.False[0].(*IfStmt); ok && len(s.False) == 1 {
		p.begin()
		p.buf.WriteString("elif ")
		p.ifTail(elif)
		return
	}
	p.begin()
	p.buf.WriteString("else:\n")
	p.suite(s.False)
}

func (p *printer) suite(stmts []Stmt) {
	p.depth++
	if len(stmts) == 0 {
		p.begin()
		p.buf.WriteString("pass\n")
	}
	for _, stmt := range stmts {
		p.stmt(stmt)
	}
	p.depth--
}

func (p *printer) elseSuite(stmts []Stmt) {
	if len(stmts) == 0 {
		return
	}
	p.begin()
	p.buf.WriteString("else:\n")
	p.suite(stmts)
}

func (p *printer) decorators(decorators []Expr) {
	for _, d := range decorators {
		p.begin()
		p.buf.WriteByte('@')
		p.expr(d, precLow)
		p.buf.WriteByte('\n')
	}
}

func (p *printer) importNames(names []*ImportName) {
	for i, name := range names {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(name.Name)
		if name.As != nil {
			p.printf(" as %s", name.As.Name)
		}
	}
}

// loopVars prints a loop target, which may be an unparenthesized tuple.
func (p *printer) loopVars(vars Expr) {
	if tuple, ok := vars.(*TupleExpr); ok && !tuple.Lparen.IsValid() {
		p.exprList(tuple.List)
		return
	}
	p.expr(vars, precLow)
}

func (p *printer) exprList(list []Expr) {
	for i, x := range list {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.expr(x, precLow)
	}
}

// params prints a parameter or argument list.
// Defaults and keyword arguments (x=y) print without spaces.
func (p *printer) params(params []Expr) {
	for i, param := range params {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		switch param := param.(type) {
		case *UnaryExpr: // * or *args or **kwargs
			p.printf("%s", param.Op)
			if param.X != nil {
				p.expr(param.X, precLow)
			}
		case *BinaryExpr: // name=default
			p.expr(param.X, precPostfix)
			p.buf.WriteByte('=')
			p.expr(param.Y, precLow)
		default:
			p.expr(param, precLow)
		}
	}
}

// expr prints x, parenthesizing it if its own binding is looser than
// the context given by outer.
func (p *printer) expr(x Expr, outer int) {
	prec := exprPrec(x)
	if prec < outer {
		p.buf.WriteByte('(')
		p.exprInner(x)
		p.buf.WriteByte(')')
		return
	}
	p.exprInner(x)
}

// exprPrec returns the precedence of the outermost operator of x.
func exprPrec(x Expr) int {
	switch x := x.(type) {
	case *LambdaExpr, *CondExpr:
		return precLow
	case *BinaryExpr:
		return opPrec(x.Op)
	case *UnaryExpr:
		if x.Op == NOT {
			return int(precedence[NOT])
		}
		return precUnary
	case *TupleExpr:
		if x.Lparen.IsValid() {
			return precPostfix
		}
		return precLow
	}
	return precPostfix
}

func (p *printer) exprInner(x Expr) {
	switch x := x.(type) {
	case *Ident:
		p.buf.WriteString(x.Name)

	case *Literal:
		p.literal(x)

	case *ParenExpr:
		p.buf.WriteByte('(')
		p.expr(x.X, precLow)
		p.buf.WriteByte(')')

	case *UnaryExpr:
		switch x.Op {
		case NOT:
			p.buf.WriteString("not ")
			p.expr(x.X, int(precedence[NOT]))
		case STAR, STARSTAR: // argument forms
			p.printf("%s", x.Op)
			if x.X != nil {
				p.expr(x.X, precLow)
			}
		default:
			p.printf("%s", x.Op)
			p.expr(x.X, precUnary)
		}

	case *BinaryExpr:
		if x.Op == EQ {
			// keyword argument
			p.expr(x.X, precPostfix)
			p.buf.WriteByte('=')
			p.expr(x.Y, precLow)
			break
		}
		prec := opPrec(x.Op)
		if x.Op == STARSTAR {
			// the exponent associates to the right
			p.expr(x.X, precPostfix)
			p.printf(" %s ", tokenName(x.Op))
			p.expr(x.Y, precUnary)
			break
		}
		p.expr(x.X, prec)
		p.printf(" %s ", tokenName(x.Op))
		p.expr(x.Y, prec+1)

	case *CondExpr:
		p.expr(x.True, 0)
		p.buf.WriteString(" if ")
		p.expr(x.Cond, 0)
		p.buf.WriteString(" else ")
		p.expr(x.False, precLow)

	case *LambdaExpr:
		p.buf.WriteString("lambda")
		if len(x.Params) > 0 {
			p.buf.WriteByte(' ')
			p.params(x.Params)
		}
		p.buf.WriteString(": ")
		p.expr(x.Body[0].(*ReturnStmt).Result, precLow)

	case *DotExpr:
		p.expr(x.X, precPostfix)
		p.printf(".%s", x.Name.Name)

	case *IndexExpr:
		p.expr(x.X, precPostfix)
		p.buf.WriteByte('[')
		p.expr(x.Y, precLow)
		p.buf.WriteByte(']')

	case *SliceExpr:
		p.expr(x.X, precPostfix)
		p.buf.WriteByte('[')
		if x.Lo != nil {
			p.expr(x.Lo, precLow)
		}
		p.buf.WriteByte(':')
		if x.Hi != nil {
			p.expr(x.Hi, precLow)
		}
		if x.Step != nil {
			p.buf.WriteByte(':')
			p.expr(x.Step, precLow)
		}
		p.buf.WriteByte(']')

	case *CallExpr:
		p.expr(x.Fn, precPostfix)
		p.buf.WriteByte('(')
		p.params(x.Args)
		p.buf.WriteByte(')')

	case *ListExpr:
		p.buf.WriteByte('[')
		p.exprList(x.List)
		p.buf.WriteByte(']')

	case *SetExpr:
		p.buf.WriteByte('{')
		p.exprList(x.List)
		p.buf.WriteByte('}')

	case *DictExpr:
		p.buf.WriteByte('{')
		for i, entry := range x.List {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			entry := entry.(*DictEntry)
			p.expr(entry.Key, precLow)
			p.buf.WriteString(": ")
			p.expr(entry.Value, precLow)
		}
		p.buf.WriteByte('}')

	case *DictEntry:
		// only as a comprehension body
		p.expr(x.Key, precLow)
		p.buf.WriteString(": ")
		p.expr(x.Value, precLow)

	case *TupleExpr:
		if x.Lparen.IsValid() || len(x.List) == 0 {
			p.buf.WriteByte('(')
			p.exprList(x.List)
			p.buf.WriteByte(')')
			break
		}
		p.exprList(x.List)
		if len(x.List) == 1 {
			p.buf.WriteByte(',')
		}

	case *Comprehension:
		open, close := "[", "]"
		switch x.Brack {
		case LBRACE:
			open, close = "{", "}"
		case LPAREN:
			open, close = "(", ")"
		}
		p.buf.WriteString(open)
		p.expr(x.Body, precLow)
		for _, clause := range x.Clauses {
			switch clause := clause.(type) {
			case *ForClause:
				p.buf.WriteString(" for ")
				p.loopVars(clause.Vars)
				p.buf.WriteString(" in ")
				p.expr(clause.X, 0)
			case *IfClause:
				p.buf.WriteString(" if ")
				p.expr(clause.Cond, 0)
			}
		}
		p.buf.WriteString(close)

	default:
		panic(fmt.Sprintf("unparse: unexpected expr %T", x))
	}
}

// literal prints a literal, preferring the original lexeme when the
// node came from a parse. Synthesized literals (Raw == "") are
// formatted from their values.
func (p *printer) literal(x *Literal) {
	if x.Raw != "" {
		p.buf.WriteString(x.Raw)
		return
	}
	switch x.Token {
	case STRING:
		p.buf.WriteString(Quote(x.Value.(string)))
	case INT:
		p.buf.WriteString(strconv.FormatInt(x.Value.(int64), 10))
	case FLOAT:
		s := strconv.FormatFloat(x.Value.(float64), 'g', -1, 64)
		// keep it lexically a float
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		p.buf.WriteString(s)
	case NONE:
		p.buf.WriteString("None")
	case TRUE:
		p.buf.WriteString("True")
	case FALSE:
		p.buf.WriteString("False")
	default:
		panic(fmt.Sprintf("unparse: unexpected literal token %s", x.Token))
	}
}
