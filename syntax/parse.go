// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "log"

// This file defines a recursive-descent parser for veil.
// The LL(1) grammar of Python, and thus of veil, is not strictly
// expressible in recursive descent, but we'll get close enough.

// A Mode value is a set of flags (or 0) that controls optional parser
// functionality. No flags are currently defined.
type Mode uint

// Two composite comparison operators are produced by the parser and
// never by the scanner.
const (
	NOT_IN Token = maxToken + iota // not in
	IS_NOT                         // is not
)

func tokenName(tok Token) string {
	switch tok {
	case NOT_IN:
		return "not in"
	case IS_NOT:
		return "is not"
	}
	return tokenNames[tok]
}

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, ParseFile parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, ParseFile parses the file specified by filename.
func Parse(filename string, src interface{}, mode Mode) (f *File, err error) {
	in, err := newScanner(filename, src, mode&retainComments != 0)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	f = p.parseFile()
	if f != nil {
		f.Path = filename
	}
	return f, nil
}

// retainComments is reserved; comments are currently always discarded.
const retainComments Mode = 1 << 0

// ParseCompoundStmt parses a single compound statement:
// a blank line, a def, for, while, with, if, or class statement, or a
// semicolon-separated list of simple statements followed by a newline.
// These are the units on which the REPL operates.
// ParseCompoundStmt does not consume any following input.
// The parser calls the readline function each
// time it needs a new line of input.
func ParseCompoundStmt(filename string, readline func() ([]byte, error)) (f *File, err error) {
	in, err := newScanner(filename, readline, false)
	if err != nil {
		return nil, err
	}

	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token

	var stmts []Stmt

	switch p.tok {
	case DEF, IF, FOR, WHILE, WITH, CLASS, AT:
		stmts = p.parseStmt(stmts)
	case NEWLINE:
		// blank line
	default:
		stmts = p.parseSimpleStmt(stmts, false)
		// Do not consume the following NEWLINE, to avoid
		// blocking the caller's readline on a spurious call,
		// but insist that it is present.
		if p.tok != NEWLINE {
			p.in.errorf(p.in.pos, "got %#v, want newline", p.tok)
		}
	}

	return &File{Path: filename, Stmts: stmts}, nil
}

// ParseExpr parses a veil expression.
// A comma-separated list of expressions is parsed as a tuple.
// See Parse for explanation of parameters.
func ParseExpr(filename string, src interface{}, mode Mode) (expr Expr, err error) {
	in, err := newScanner(filename, src, mode&retainComments != 0)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	expr = p.parseExpr(false)

	// A following newline (e.g. "f()\n") appears outside any bracket,
	// braces or paren, so it must be a logical newline.
	if p.tok == NEWLINE {
		p.nextToken()
	}

	if p.tok != EOF {
		p.in.errorf(p.in.pos, "got %#v after expression, want EOF", p.tok)
	}
	return expr, nil
}

type parser struct {
	in     *scanner
	tok    Token
	tokval tokenValue
}

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	oldpos := p.tokval.pos
	p.tok = p.in.nextToken(&p.tokval)
	// enable to see the token stream
	if debug {
		log.Printf("nextToken: %-20s%+v\n", p.tok, p.tokval.pos)
	}
	return oldpos
}

// file_input = (NEWLINE | stmt)* EOF
func (p *parser) parseFile() *File {
	var stmts []Stmt
	for p.tok != EOF {
		if p.tok == NEWLINE {
			p.nextToken()
			continue
		}
		stmts = p.parseStmt(stmts)
	}
	return &File{Stmts: stmts}
}

func (p *parser) parseStmt(stmts []Stmt) []Stmt {
	switch p.tok {
	case DEF:
		return append(stmts, p.parseDefStmt(nil))
	case CLASS:
		return append(stmts, p.parseClassStmt(nil))
	case AT:
		return append(stmts, p.parseDecorated())
	case IF:
		return append(stmts, p.parseIfStmt())
	case FOR:
		return append(stmts, p.parseForStmt())
	case WHILE:
		return append(stmts, p.parseWhileStmt())
	case WITH:
		return append(stmts, p.parseWithStmt())
	}
	return p.parseSimpleStmt(stmts, true)
}

// decorated = ('@' test NEWLINE)+ (def_stmt | class_stmt)
func (p *parser) parseDecorated() Stmt {
	var decorators []Expr
	for p.tok == AT {
		p.nextToken() // '@'
		decorators = append(decorators, p.parseTest())
		if p.tok != NEWLINE {
			p.in.errorf(p.in.pos, "got %#v, want newline after decorator", p.tok)
		}
		p.nextToken()
	}
	switch p.tok {
	case DEF:
		return p.parseDefStmt(decorators)
	case CLASS:
		return p.parseClassStmt(decorators)
	}
	p.in.errorf(p.in.pos, "got %#v, want def or class after decorators", p.tok)
	panic("unreachable")
}

// def_stmt = DEF IDENT '(' params? ')' ('->' test)? ':' suite
func (p *parser) parseDefStmt(decorators []Expr) Stmt {
	defpos := p.nextToken() // consume DEF
	id := p.parseIdent()
	p.consume(LPAREN)
	params := p.parseParams()
	p.consume(RPAREN)
	var returns Expr
	if p.tok == ARROW {
		p.nextToken()
		returns = p.parseTest()
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &DefStmt{
		Def:        defpos,
		Decorators: decorators,
		Name:       id,
		Returns:    returns,
		Function: Function{
			StartPos: defpos,
			Params:   params,
			Body:     body,
		},
	}
}

// class_stmt = CLASS IDENT ('(' (test (',' test)* ','?)? ')')? ':' suite
func (p *parser) parseClassStmt(decorators []Expr) Stmt {
	classpos := p.nextToken() // consume CLASS
	id := p.parseIdent()
	var bases []Expr
	if p.tok == LPAREN {
		p.nextToken()
		for p.tok != RPAREN {
			bases = append(bases, p.parseTest())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		p.consume(RPAREN)
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &ClassStmt{
		Class:      classpos,
		Decorators: decorators,
		Name:       id,
		Bases:      bases,
		Body:       body,
	}
}

// if_stmt = IF test ':' suite (ELIF test ':' suite)* (ELSE ':' suite)?
func (p *parser) parseIfStmt() Stmt {
	ifpos := p.nextToken() // consume IF
	cond := p.parseTest()
	p.consume(COLON)
	body := p.parseSuite()
	ifStmt := &IfStmt{
		If:   ifpos,
		Cond: cond,
		True: body,
	}
	tail := ifStmt
	for p.tok == ELIF {
		elifpos := p.nextToken() // consume ELIF
		cond := p.parseTest()
		p.consume(COLON)
		body := p.parseSuite()
		nested := &IfStmt{
			If:   elifpos,
			Cond: cond,
			True: body,
		}
		tail.ElsePos = elifpos
		tail.False = []Stmt{nested}
		tail = nested
	}
	if p.tok == ELSE {
		tail.ElsePos = p.nextToken() // consume ELSE
		p.consume(COLON)
		tail.False = p.parseSuite()
	}
	return ifStmt
}

// for_stmt = FOR loop_variables IN expr ':' suite (ELSE ':' suite)?
func (p *parser) parseForStmt() Stmt {
	forpos := p.nextToken() // consume FOR
	vars := p.parseForLoopVariables()
	p.consume(IN)
	x := p.parseExpr(false)
	p.consume(COLON)
	body := p.parseSuite()
	var elseBody []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		elseBody = p.parseSuite()
	}
	return &ForStmt{
		For:  forpos,
		Vars: vars,
		X:    x,
		Body: body,
		Else: elseBody,
	}
}

// while_stmt = WHILE cond ':' suite (ELSE ':' suite)?
func (p *parser) parseWhileStmt() Stmt {
	whilepos := p.nextToken() // consume WHILE
	cond := p.parseTest()
	p.consume(COLON)
	body := p.parseSuite()
	var elseBody []Stmt
	if p.tok == ELSE {
		p.nextToken()
		p.consume(COLON)
		elseBody = p.parseSuite()
	}
	return &WhileStmt{
		While: whilepos,
		Cond:  cond,
		Body:  body,
		Else:  elseBody,
	}
}

// with_stmt = WITH test (AS loop_variables)? (',' test (AS loop_variables)?)* ':' suite
func (p *parser) parseWithStmt() Stmt {
	withpos := p.nextToken() // consume WITH
	var items []*WithItem
	for {
		x := p.parseTest()
		item := &WithItem{X: x}
		if p.tok == AS {
			p.nextToken()
			item.Vars = p.parseForLoopVariables()
		}
		items = append(items, item)
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	p.consume(COLON)
	body := p.parseSuite()
	return &WithStmt{
		With:  withpos,
		Items: items,
		Body:  body,
	}
}

// Equivalent to 'exprlist' production in Python grammar.
//
// loop_variables = primary_with_suffix (COMMA primary_with_suffix)* COMMA?
func (p *parser) parseForLoopVariables() Expr {
	// Avoid parseExpr because it would consume the IN token
	// following x in "for x in y: ...".
	v := p.parsePrimaryWithSuffix()
	if p.tok != COMMA {
		return v
	}

	list := []Expr{v}
	for p.tok == COMMA {
		p.nextToken()
		if terminatesExprList(p.tok) {
			break
		}
		list = append(list, p.parsePrimaryWithSuffix())
	}
	return &TupleExpr{List: list}
}

// simple_stmt = small_stmt (SEMI small_stmt)* SEMI? NEWLINE
// In REPL mode, it does not consume the NEWLINE.
func (p *parser) parseSimpleStmt(stmts []Stmt, consumeNL bool) []Stmt {
	for {
		stmts = append(stmts, p.parseSmallStmt())
		if p.tok != SEMI {
			break
		}
		p.nextToken() // consume SEMI
		if p.tok == NEWLINE || p.tok == EOF {
			break
		}
	}
	// EOF without NEWLINE occurs in `if x: pass`, for example.
	if p.tok != EOF && consumeNL {
		p.consume(NEWLINE)
	}

	return stmts
}

// small_stmt = RETURN expr?
//            | PASS | BREAK | CONTINUE
//            | DEL expr (',' expr)*
//            | GLOBAL IDENT (',' IDENT)*
//            | NONLOCAL IDENT (',' IDENT)*
//            | IMPORT dotted (AS IDENT)? (',' dotted (AS IDENT)?)*
//            | FROM dotted IMPORT IDENT (AS IDENT)? (',' IDENT (AS IDENT)?)*
//            | (expr ('=' | '+=' | ...) expr) | (expr ':' test ('=' expr)?)
//            | expr
func (p *parser) parseSmallStmt() Stmt {
	switch p.tok {
	case RETURN:
		pos := p.nextToken() // consume RETURN
		var result Expr
		if p.tok != EOF && p.tok != NEWLINE && p.tok != SEMI {
			result = p.parseExpr(false)
		}
		return &ReturnStmt{Return: pos, Result: result}

	case BREAK, CONTINUE, PASS:
		tok := p.tok
		pos := p.nextToken() // consume it
		return &BranchStmt{Token: tok, TokenPos: pos}

	case DEL:
		pos := p.nextToken() // consume DEL
		var list []Expr
		for {
			list = append(list, p.parseTest())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		return &DelStmt{Del: pos, List: list}

	case GLOBAL, NONLOCAL:
		tok := p.tok
		pos := p.nextToken() // consume GLOBAL or NONLOCAL
		var names []*Ident
		for {
			names = append(names, p.parseIdent())
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		return &GlobalStmt{TokenPos: pos, Token: tok, Names: names}

	case IMPORT:
		return p.parseImportStmt()

	case FROM:
		return p.parseFromImportStmt()
	}

	// Assignment
	x := p.parseExpr(false)
	switch p.tok {
	case EQ:
		targets := []Expr{x}
		var opPos Position
		for p.tok == EQ {
			opPos = p.nextToken() // consume '='
			targets = append(targets, p.parseExpr(false))
		}
		rhs := targets[len(targets)-1]
		return &AssignStmt{
			OpPos:   opPos,
			Op:      EQ,
			Targets: targets[:len(targets)-1],
			RHS:     rhs,
		}

	case PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, SLASHSLASH_EQ, PERCENT_EQ,
		STARSTAR_EQ, AMP_EQ, PIPE_EQ, CIRCUMFLEX_EQ, LTLT_EQ, GTGT_EQ:
		op := p.tok
		pos := p.nextToken() // consume op
		rhs := p.parseExpr(false)
		return &AssignStmt{
			OpPos:   pos,
			Op:      op,
			Targets: []Expr{x},
			RHS:     rhs,
		}

	case COLON:
		// Annotated assignment: x: T or x: T = v.
		pos := p.nextToken() // consume ':'
		ann := p.parseTest()
		var rhs Expr
		if p.tok == EQ {
			p.nextToken()
			rhs = p.parseExpr(false)
		}
		return &AssignStmt{
			OpPos:   pos,
			Op:      EQ,
			Targets: []Expr{x},
			Ann:     ann,
			RHS:     rhs,
		}
	}

	// Expression statement (e.g. function call).
	return &ExprStmt{X: x}
}

// import_stmt = IMPORT dotted (AS IDENT)? (',' dotted (AS IDENT)?)*
func (p *parser) parseImportStmt() Stmt {
	importpos := p.nextToken() // consume IMPORT
	var names []*ImportName
	for {
		names = append(names, p.parseImportName(true))
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return &ImportStmt{Import: importpos, Names: names}
}

// from_import_stmt = FROM dotted IMPORT IDENT (AS IDENT)? (',' IDENT (AS IDENT)?)*
func (p *parser) parseFromImportStmt() Stmt {
	frompos := p.nextToken() // consume FROM
	module, _ := p.parseDottedName()
	p.consume(IMPORT)
	var names []*ImportName
	for {
		names = append(names, p.parseImportName(false))
		if p.tok != COMMA {
			break
		}
		p.nextToken()
	}
	return &FromImportStmt{From: frompos, Module: module, Names: names}
}

// parseImportName parses one clause of an import statement.
// A member name in a from-import may not be dotted.
func (p *parser) parseImportName(dotted bool) *ImportName {
	var name string
	var pos Position
	if dotted {
		name, pos = p.parseDottedName()
	} else {
		id := p.parseIdent()
		name, pos = id.Name, id.NamePos
	}
	imp := &ImportName{NamePos: pos, Name: name}
	if p.tok == AS {
		p.nextToken()
		imp.As = p.parseIdent()
	}
	return imp
}

// dotted = IDENT ('.' IDENT)*
func (p *parser) parseDottedName() (string, Position) {
	id := p.parseIdent()
	name := id.Name
	for p.tok == DOT {
		p.nextToken()
		name += "." + p.parseIdent().Name
	}
	return name, id.NamePos
}

// parseTest parses a 'test', a single-component expression.
func (p *parser) parseTest() Expr {
	if p.tok == LAMBDA {
		return p.parseLambda(true)
	}

	x := p.parseTestPrec(0)

	// conditional expression (t IF cond ELSE f)
	if p.tok == IF {
		ifpos := p.nextToken()
		cond := p.parseTestPrec(0)
		if p.tok != ELSE {
			p.in.errorf(ifpos, "conditional expression without else clause")
		}
		elsepos := p.nextToken()
		else_ := p.parseTest()
		return &CondExpr{If: ifpos, Cond: cond, True: x, ElsePos: elsepos, False: else_}
	}

	return x
}

// parseTestNoCond parses a a single-component expression without
// consuming a trailing 'if'.  It is the production in a comprehension
// clause's iterable and condition, where 'if' begins the next clause.
func (p *parser) parseTestNoCond() Expr {
	if p.tok == LAMBDA {
		return p.parseLambda(false)
	}
	return p.parseTestPrec(0)
}

// parseLambda parses a lambda expression.
// The allowCond flag allows the body to be a conditional expression.
func (p *parser) parseLambda(allowCond bool) Expr {
	lambda := p.nextToken() // consume LAMBDA
	var params []Expr
	if p.tok != COLON {
		params = p.parseParams()
	}
	p.consume(COLON)

	var body Expr
	if allowCond {
		body = p.parseTest()
	} else {
		body = p.parseTestNoCond()
	}

	return &LambdaExpr{
		Lambda: lambda,
		Function: Function{
			StartPos: lambda,
			Params:   params,
			Body:     []Stmt{&ReturnStmt{Return: lambda, Result: body}},
		},
	}
}

func (p *parser) parseTestPrec(prec int) Expr {
	if prec >= len(preclevels) {
		return p.parseUnary()
	}

	// expr = NOT expr
	if p.tok == NOT && prec == int(precedence[NOT]) {
		pos := p.nextToken() // consume NOT
		x := p.parseTestPrec(prec)
		return &UnaryExpr{
			OpPos: pos,
			Op:    NOT,
			X:     x,
		}
	}

	return p.parseBinopExpr(prec)
}

// preclevels groups operators of equal precedence.
// Comparisons are nonassociative; other binary operators associate
// to the left.  Unary NOT has higher precedence than NOT IN.
var preclevels = [...][]Token{
	{OR},                                   // weakest
	{AND},                                  //
	{NOT},                                  // unary
	{EQL, NEQ, LT, GT, LE, GE, IN, IS},     // (and NOT IN, IS NOT)
	{PIPE},                                 //
	{CIRCUMFLEX},                           //
	{AMP},                                  //
	{LTLT, GTGT},                           //
	{MINUS, PLUS},                          //
	{STAR, PERCENT, SLASH, SLASHSLASH},     // strongest
}

// precedence maps each operator to its precedence (0-9), or -1 for other tokens.
var precedence [maxToken]int8

func init() {
	// populate precedence table
	for i := range precedence {
		precedence[i] = -1
	}
	for level, tokens := range preclevels {
		for _, tok := range tokens {
			precedence[tok] = int8(level)
		}
	}
}

// parseBinopExpr parses a binary operator expression at the given
// precedence level, and levels that bind more tightly.
func (p *parser) parseBinopExpr(prec int) Expr {
	x := p.parseTestPrec(prec + 1)
	for {
		// NOT can only appear here as part of "not in".
		if p.tok == NOT {
			if int(precedence[IN]) != prec {
				return x
			}
			pos := p.nextToken() // consume NOT
			if p.tok != IN {
				p.in.errorf(pos, `got %#v, want "in" after "not"`, p.tok)
			}
			p.nextToken() // consume IN
			y := p.parseTestPrec(prec + 1)
			x = &BinaryExpr{OpPos: pos, Op: NOT_IN, X: x, Y: y}
			continue
		}

		op := p.tok
		if int(precedence[op]) != prec {
			return x
		}
		pos := p.nextToken() // consume op
		if op == IS && p.tok == NOT {
			p.nextToken() // consume NOT
			op = IS_NOT
		}
		y := p.parseTestPrec(prec + 1)
		x = &BinaryExpr{OpPos: pos, Op: op, X: x, Y: y}
	}
}

// parseUnary parses an unary expression with an operator that binds
// more tightly than binary operators: +x, -x, ~x, or a power.
func (p *parser) parseUnary() Expr {
	switch p.tok {
	case PLUS, MINUS, TILDE:
		tok := p.tok
		pos := p.nextToken() // consume op
		x := p.parseUnary()
		return &UnaryExpr{OpPos: pos, Op: tok, X: x}
	}
	return p.parsePower()
}

// power = primary_with_suffix ('**' unary)?
// The exponent associates to the right: 2**3**2 is 2**(3**2).
func (p *parser) parsePower() Expr {
	x := p.parsePrimaryWithSuffix()
	if p.tok == STARSTAR {
		pos := p.nextToken() // consume '**'
		y := p.parseUnary()
		x = &BinaryExpr{OpPos: pos, Op: STARSTAR, X: x, Y: y}
	}
	return x
}

// primary_with_suffix = primary
//                     | primary '.' IDENT
//                     | primary slice_suffix
//                     | primary call_suffix
func (p *parser) parsePrimaryWithSuffix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case DOT:
			dot := p.nextToken()
			id := p.parseIdent()
			x = &DotExpr{Dot: dot, X: x, Name: id}
		case LBRACK:
			x = p.parseSliceSuffix(x)
		case LPAREN:
			x = p.parseCallSuffix(x)
		default:
			return x
		}
	}
}

// slice_suffix = '[' expr? ':' test? (':' test?)? ']' | '[' expr ']'
func (p *parser) parseSliceSuffix(x Expr) Expr {
	lbrack := p.nextToken() // consume '['
	var lo, hi, step Expr
	if p.tok != COLON {
		y := p.parseExpr(false)

		// index x[y]
		if p.tok == RBRACK {
			rbrack := p.nextToken()
			return &IndexExpr{X: x, Lbrack: lbrack, Y: y, Rbrack: rbrack}
		}

		lo = y
	}

	// slice or substring x[lo:hi:step]
	if p.tok == COLON {
		p.nextToken()
		if p.tok != COLON && p.tok != RBRACK {
			hi = p.parseTest()
		}
	}
	if p.tok == COLON {
		p.nextToken()
		if p.tok != RBRACK {
			step = p.parseTest()
		}
	}
	rbrack := p.consume(RBRACK)
	return &SliceExpr{X: x, Lbrack: lbrack, Lo: lo, Hi: hi, Step: step, Rbrack: rbrack}
}

// call_suffix = '(' arg_list? ')'
func (p *parser) parseCallSuffix(fn Expr) Expr {
	lparen := p.consume(LPAREN)
	var rparen Position
	var args []Expr
	if p.tok == RPAREN {
		rparen = p.nextToken()
	} else {
		args = p.parseArgs()
		rparen = p.consume(RPAREN)
	}
	return &CallExpr{Fn: fn, Lparen: lparen, Args: args, Rparen: rparen}
}

// parseArgs parses a list of actual arguments:
//	expr
//	IDENT '=' expr
//	'*' expr
//	'**' expr
func (p *parser) parseArgs() []Expr {
	var args []Expr
	for p.tok != RPAREN && p.tok != EOF {
		if len(args) > 0 {
			p.consume(COMMA)
		}
		if p.tok == RPAREN {
			break
		}

		// *args or **kwargs
		if p.tok == STAR || p.tok == STARSTAR {
			op := p.tok
			pos := p.nextToken()
			x := p.parseTest()
			args = append(args, &UnaryExpr{
				OpPos: pos,
				Op:    op,
				X:     x,
			})
			continue
		}

		// We use a different strategy from Python here:
		// instead of having a separate grammar production for
		// keyword arguments, we parse an ordinary expression
		// and then treat name=expr as a keyword argument.
		x := p.parseTest()
		if p.tok == EQ {
			// name = value
			if _, ok := x.(*Ident); !ok {
				p.in.errorf(p.in.pos, "keyword argument must have form name=expr")
			}
			opPos := p.nextToken()
			y := p.parseTest()
			x = &BinaryExpr{
				OpPos: opPos,
				Op:    EQ,
				X:     x,
				Y:     y,
			}
		}

		args = append(args, x)
	}
	return args
}

// params = (param COMMA)* param COMMA?
//        |
//
// param = IDENT
//       | IDENT EQ test
//       | STAR
//       | STAR IDENT
//       | STARSTAR IDENT
//
// parseParams parses a parameter list.  The resulting expressions are of the form:
//
//      *Ident                                          x
//      *Binary{Op: EQ, X: *Ident, Y: Expr}             x=y
//      *Unary{Op: STAR}                                *
//      *Unary{Op: STAR, X: *Ident}                     *args
//      *Unary{Op: STARSTAR, X: *Ident}                 **kwargs
func (p *parser) parseParams() []Expr {
	var params []Expr
	for p.tok != RPAREN && p.tok != COLON && p.tok != EOF {
		if len(params) > 0 {
			p.consume(COMMA)
		}
		if p.tok == RPAREN || p.tok == COLON {
			break
		}

		// * or *args or **kwargs
		if p.tok == STAR || p.tok == STARSTAR {
			op := p.tok
			pos := p.nextToken()
			var x Expr
			if op == STARSTAR || p.tok == IDENT {
				x = p.parseIdent()
			}
			params = append(params, &UnaryExpr{
				OpPos: pos,
				Op:    op,
				X:     x,
			})
			continue
		}

		// IDENT
		// IDENT = test
		id := p.parseIdent()
		if p.tok == EQ { // default value
			eq := p.nextToken()
			dflt := p.parseTest()
			params = append(params, &BinaryExpr{
				OpPos: eq,
				Op:    EQ,
				X:     id,
				Y:     dflt,
			})
			continue
		}

		params = append(params, id)
	}
	return params
}

// parseExpr parses an expression, possibly followed by a comma, in
// which case it is a tuple.
//
// In many cases we must use parseTest to avoid ambiguity such as
// f(x, y) vs. f((x, y)).
func (p *parser) parseExpr(inParens bool) Expr {
	x := p.parseTest()
	if p.tok != COMMA {
		return x
	}

	// tuple
	exprs := p.parseExprs([]Expr{x}, inParens)
	return &TupleExpr{List: exprs}
}

// parseExprs parses a comma-separated list of expressions, starting with the comma.
// It is used to parse tuples and list elements.
// expr_list = (',' expr)* ','?
func (p *parser) parseExprs(exprs []Expr, allowTrailingComma bool) []Expr {
	for p.tok == COMMA {
		pos := p.nextToken()
		if terminatesExprList(p.tok) {
			if !allowTrailingComma {
				p.in.errorf(pos, "unparenthesized tuple with trailing comma")
			}
			break
		}
		exprs = append(exprs, p.parseTest())
	}
	return exprs
}

// parsePrimary parses a primary expression:
// IDENT, literal, list or dict display, comprehension,
// parenthesized expression or tuple, or lambda.
func (p *parser) parsePrimary() Expr {
	switch p.tok {
	case IDENT:
		return p.parseIdent()

	case INT, FLOAT, STRING:
		var val interface{}
		tok := p.tok
		switch tok {
		case INT:
			val = p.tokval.int
		case FLOAT:
			val = p.tokval.float
		case STRING:
			val = p.tokval.string
		}
		raw := p.tokval.raw
		pos := p.nextToken()
		return &Literal{Token: tok, TokenPos: pos, Raw: raw, Value: val}

	case NONE, TRUE, FALSE:
		tok := p.tok
		raw := p.tokval.raw
		pos := p.nextToken()
		var val interface{}
		switch tok {
		case TRUE:
			val = true
		case FALSE:
			val = false
		}
		return &Literal{Token: tok, TokenPos: pos, Raw: raw, Value: val}

	case LBRACK:
		return p.parseList()

	case LBRACE:
		return p.parseDict()

	case LPAREN:
		lparen := p.nextToken()
		if p.tok == RPAREN {
			// empty tuple
			rparen := p.nextToken()
			return &TupleExpr{Lparen: lparen, Rparen: rparen}
		}

		e := p.parseExpr(true) // allow trailing comma
		if p.tok == FOR {
			// generator expression: (e for ...)
			comp := p.parseComprehensionSuffix(lparen, LPAREN, e)
			return comp
		}
		rparen := p.consume(RPAREN)
		return &ParenExpr{
			Lparen: lparen,
			X:      e,
			Rparen: rparen,
		}

	case LAMBDA:
		return p.parseLambda(true)

	case MINUS, PLUS, TILDE: // unary
		return p.parseUnary()
	}
	p.in.errorf(p.in.pos, "got %#v, want primary expression", p.tok)
	panic("unreachable")
}

// list = '[' ']'
//      | '[' expr ']'
//      | '[' expr expr_list ']'
//      | '[' expr (FOR loop_variables IN expr)+ ']'
func (p *parser) parseList() Expr {
	lbrack := p.nextToken() // consume '['
	if p.tok == RBRACK {
		// empty List
		rbrack := p.nextToken()
		return &ListExpr{Lbrack: lbrack, Rbrack: rbrack}
	}

	x := p.parseTest()

	if p.tok == FOR {
		// list comprehension
		return p.parseComprehensionSuffix(lbrack, LBRACK, x)
	}

	exprs := []Expr{x}
	if p.tok == COMMA {
		// multi-item list literal
		exprs = p.parseExprs(exprs, true) // allow trailing comma
	}

	rbrack := p.consume(RBRACK)
	return &ListExpr{Lbrack: lbrack, List: exprs, Rbrack: rbrack}
}

// dict = '{' '}'
//      | '{' dict_entry_list '}'
//      | '{' dict_entry FOR loop_variables IN expr '}'
//      | '{' expr_list '}'
//      | '{' expr FOR loop_variables IN expr '}'
func (p *parser) parseDict() Expr {
	lbrace := p.nextToken() // consume '{'
	if p.tok == RBRACE {
		// empty dict
		rbrace := p.nextToken()
		return &DictExpr{Lbrace: lbrace, Rbrace: rbrace}
	}

	x := p.parseTest()

	if p.tok == COLON {
		// dict display or comprehension
		entry := p.parseDictEntrySuffix(x)
		if p.tok == FOR {
			// dict comprehension
			return p.parseComprehensionSuffix(lbrace, LBRACE, entry)
		}
		entries := []Expr{entry}
		for p.tok == COMMA {
			p.nextToken()
			if p.tok == RBRACE {
				break
			}
			entries = append(entries, p.parseDictEntry())
		}
		rbrace := p.consume(RBRACE)
		return &DictExpr{Lbrace: lbrace, List: entries, Rbrace: rbrace}
	}

	if p.tok == FOR {
		// set comprehension
		return p.parseComprehensionSuffix(lbrace, LBRACE, x)
	}

	// set display
	exprs := []Expr{x}
	if p.tok == COMMA {
		exprs = p.parseExprs(exprs, true) // allow trailing comma
	}
	rbrace := p.consume(RBRACE)
	return &SetExpr{Lbrace: lbrace, List: exprs, Rbrace: rbrace}
}

// dict_entry = test ':' test
func (p *parser) parseDictEntry() Expr {
	k := p.parseTest()
	return p.parseDictEntrySuffix(k)
}

func (p *parser) parseDictEntrySuffix(k Expr) *DictEntry {
	colon := p.consume(COLON)
	v := p.parseTest()
	return &DictEntry{Key: k, Colon: colon, Value: v}
}

// comprehension_suffix = FOR loop_variables IN expr comp_suffix*
// comp_suffix = FOR loop_variables IN expr
//             | IF expr
//
// The brack token is LBRACK, LBRACE, or LPAREN; the matching close
// bracket ends the comprehension.
func (p *parser) parseComprehensionSuffix(lbrace Position, brack Token, body Expr) Expr {
	var clauses []Node
	for p.tok != endBracket(brack) {
		if p.tok == FOR {
			pos := p.nextToken()
			vars := p.parseForLoopVariables()
			in := p.consume(IN)
			// Following Python grammar, the operand of IN cannot be:
			// - a conditional expression ('x if y else z'),
			//   due to conflicts in Python grammar
			//   ('if' is used by the comprehension);
			// - a lambda expression
			// - an unparenthesized tuple.
			x := p.parseTestPrec(0)
			clauses = append(clauses, &ForClause{For: pos, Vars: vars, In: in, X: x})
		} else if p.tok == IF {
			pos := p.nextToken()
			cond := p.parseTestNoCond()
			clauses = append(clauses, &IfClause{If: pos, Cond: cond})
		} else {
			p.in.errorf(p.in.pos, "got %#v, want '%s', for, or if", p.tok, endBracket(brack))
		}
	}
	rbrack := p.nextToken()

	return &Comprehension{
		Brack:   brack,
		Lbrack:  lbrace,
		Body:    body,
		Clauses: clauses,
		Rbrack:  rbrack,
	}
}

func endBracket(brack Token) Token {
	switch brack {
	case LBRACK:
		return RBRACK
	case LBRACE:
		return RBRACE
	case LPAREN:
		return RPAREN
	}
	panic("unreachable")
}

func terminatesExprList(tok Token) bool {
	switch tok {
	case EOF, NEWLINE, EQ, RBRACE, RBRACK, RPAREN, SEMI, COLON, IN, IF, FOR, AS:
		return true
	}
	return false
}

// suite = simple_stmt | NEWLINE INDENT stmt+ OUTDENT
func (p *parser) parseSuite() []Stmt {
	if p.tok == NEWLINE {
		p.nextToken() // consume NEWLINE
		p.consume(INDENT)
		var stmts []Stmt
		for p.tok != OUTDENT && p.tok != EOF {
			stmts = p.parseStmt(stmts)
		}
		p.consume(OUTDENT)
		return stmts
	}
	return p.parseSimpleStmt(nil, true)
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.in.pos, "not an identifier")
	}
	id := &Ident{
		NamePos: p.tokval.pos,
		Name:    p.tokval.raw,
	}
	p.nextToken()
	return id
}

// consume requires the current token to be tok,
// consumes it, and returns its position.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.in.errorf(p.in.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

const debug = false
