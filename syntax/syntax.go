// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a parser and abstract syntax tree for veil,
// a small Python-like dialect.
//
// The tree is an owned, acyclic structure: each node is reachable from
// exactly one parent, so passes such as the renaming engine in package
// rename may rewrite nodes in place without aliasing concerns.
package syntax

// A Node is a node in a veil syntax tree.
type Node interface {
	// Span returns the start and end position of the expression.
	Span() (start, end Position)
}

// Start returns the start position of the expression.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the expression.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a veil source file.
type File struct {
	Path  string
	Stmts []Stmt
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a veil statement.
type Stmt interface {
	Node
	stmt()
}

func (*AssignStmt) stmt()     {}
func (*BranchStmt) stmt()     {}
func (*ClassStmt) stmt()      {}
func (*DefStmt) stmt()        {}
func (*DelStmt) stmt()        {}
func (*ExprStmt) stmt()       {}
func (*ForStmt) stmt()        {}
func (*FromImportStmt) stmt() {}
func (*GlobalStmt) stmt()     {}
func (*IfStmt) stmt()         {}
func (*ImportStmt) stmt()     {}
func (*ReturnStmt) stmt()     {}
func (*WhileStmt) stmt()      {}
func (*WithStmt) stmt()       {}

// An AssignStmt represents an assignment:
//	x = 0
//	x, y = y, x
//	x += 1
//	x: int = 0
//
// Op is EQ for ordinary and annotated assignments and an augmented
// token ({PLUS,MINUS,...}_EQ) otherwise. Targets has length one except
// for a chained assignment (x = y = 0), which is permitted only with
// Op EQ. Ann is the optional annotation of an annotated assignment;
// RHS is nil for a bare annotation (x: int).
type AssignStmt struct {
	OpPos   Position
	Op      Token
	Targets []Expr
	Ann     Expr // optional
	RHS     Expr // optional (bare annotation only)
}

func (x *AssignStmt) Span() (start, end Position) {
	start, _ = x.Targets[0].Span()
	if x.RHS != nil {
		_, end = x.RHS.Span()
	} else {
		_, end = x.Ann.Span()
	}
	return
}

// A Function represents the common parts of LambdaExpr and DefStmt.
//
// Each parameter is an *Ident, a BinaryExpr of the form name=default,
// or a UnaryExpr of the form *args or **kwargs.
type Function struct {
	StartPos Position // position of DEF or LAMBDA token
	Params   []Expr
	Body     []Stmt
}

func (x *Function) Span() (start, end Position) {
	_, end = x.Body[len(x.Body)-1].Span()
	return x.StartPos, end
}

// A DefStmt represents a function definition.
type DefStmt struct {
	Def        Position
	Decorators []Expr // optional; @f or @f(args) lines, outermost first
	Name       *Ident
	Returns    Expr // optional; -> annotation
	Function
}

func (x *DefStmt) Span() (start, end Position) {
	_, end = x.Function.Body[len(x.Body)-1].Span()
	return x.Def, end
}

// A ClassStmt represents a class definition.
// Bases and Decorators are resolved in the enclosing scope;
// Body has a scope of its own.
type ClassStmt struct {
	Class      Position
	Decorators []Expr // optional
	Name       *Ident
	Bases      []Expr // optional
	Body       []Stmt
}

func (x *ClassStmt) Span() (start, end Position) {
	_, end = x.Body[len(x.Body)-1].Span()
	return x.Class, end
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X Expr
}

func (x *ExprStmt) Span() (start, end Position) {
	return x.X.Span()
}

/// An IfStmt is a conditional: If Cond: True; else: False.
// 'elif' is desugared into a chain of IfStmts.
type IfStmt struct {
	If      Position // IF or ELIF
	Cond    Expr
	True    []Stmt
	ElsePos Position // ELSE or ELIF
	False   []Stmt   // optional
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.False
	if body == nil {
		body = x.True
	}
	_, end = body[len(body)-1].Span()
	return x.If, end
}

// An ImportName is one clause of an import statement: a possibly
// dotted module or member name with an optional binding alias.
// The renaming engine may mint an alias and write it back into As.
type ImportName struct {
	NamePos Position
	Name    string // "a" or "a.b.c"
	As      *Ident // optional
}

func (x *ImportName) Span() (start, end Position) {
	start = x.NamePos
	if x.As != nil {
		_, end = x.As.Span()
	} else {
		end = x.NamePos.add(x.Name)
	}
	return
}

// An ImportStmt binds modules: import a.b as c, d.
type ImportStmt struct {
	Import Position
	Names  []*ImportName
}

func (x *ImportStmt) Span() (start, end Position) {
	_, end = x.Names[len(x.Names)-1].Span()
	return x.Import, end
}

// A FromImportStmt binds members of a module:
// from a.b import c as d, e.
type FromImportStmt struct {
	From   Position
	Module string
	Names  []*ImportName
}

func (x *FromImportStmt) Span() (start, end Position) {
	_, end = x.Names[len(x.Names)-1].Span()
	return x.From, end
}

// A GlobalStmt redirects names to an enclosing scope:
// global x, y or nonlocal x, y.
// Token is GLOBAL or NONLOCAL.
type GlobalStmt struct {
	TokenPos Position
	Token    Token
	Names    []*Ident
}

func (x *GlobalStmt) Span() (start, end Position) {
	_, end = x.Names[len(x.Names)-1].Span()
	return x.TokenPos, end
}

// A DelStmt unbinds or removes values: del x, d[k].
type DelStmt struct {
	Del  Position
	List []Expr
}

func (x *DelStmt) Span() (start, end Position) {
	_, end = x.List[len(x.List)-1].Span()
	return x.Del, end
}

// A BranchStmt changes the flow of control: break, continue, pass.
type BranchStmt struct {
	Token    Token // = BREAK | CONTINUE | PASS
	TokenPos Position
}

func (x *BranchStmt) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Token.String())
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
}

func (x *ReturnStmt) Span() (start, end Position) {
	if x.Result == nil {
		return x.Return, x.Return.add("return")
	}
	_, end = x.Result.Span()
	return x.Return, end
}

// A ForStmt represents a loop: for Vars in X: Body else: Else.
type ForStmt struct {
	For  Position
	Vars Expr // name, or tuple of names
	X    Expr
	Body []Stmt
	Else []Stmt // optional
}

func (x *ForStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	_, end = body[len(body)-1].Span()
	return x.For, end
}

// A WhileStmt represents a loop: while Cond: Body else: Else.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  []Stmt
	Else  []Stmt // optional
}

func (x *WhileStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Body
	}
	_, end = body[len(body)-1].Span()
	return x.While, end
}

// A WithItem is one clause of a with statement: X as Vars.
type WithItem struct {
	X    Expr
	Vars Expr // optional; name, or tuple/list of names
}

func (x *WithItem) Span() (start, end Position) {
	start, end = x.X.Span()
	if x.Vars != nil {
		_, end = x.Vars.Span()
	}
	return
}

// A WithStmt represents a scoped resource: with Items: Body.
type WithStmt struct {
	With  Position
	Items []*WithItem
	Body  []Stmt
}

func (x *WithStmt) Span() (start, end Position) {
	_, end = x.Body[len(x.Body)-1].Span()
	return x.With, end
}

// An Expr is a veil expression.
type Expr interface {
	Node
	expr()
}

func (*BinaryExpr) expr()    {}
func (*CallExpr) expr()      {}
func (*Comprehension) expr() {}
func (*CondExpr) expr()      {}
func (*DictEntry) expr()     {}
func (*DictExpr) expr()      {}
func (*DotExpr) expr()       {}
func (*Ident) expr()         {}
func (*IndexExpr) expr()     {}
func (*LambdaExpr) expr()    {}
func (*ListExpr) expr()      {}
func (*Literal) expr()       {}
func (*ParenExpr) expr()     {}
func (*SetExpr) expr()       {}
func (*SliceExpr) expr()     {}
func (*TupleExpr) expr()     {}
func (*UnaryExpr) expr()     {}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A Literal represents a literal string, number, or keyword constant.
// Token is STRING, INT, FLOAT, NONE, TRUE, or FALSE.
// Raw is the uninterpreted source text; it may be empty for
// synthesized literals, in which case the printer derives it
// from Value.
type Literal struct {
	Token    Token
	TokenPos Position
	Raw      string      // uninterpreted text
	Value    interface{} // = string | int64 | float64 | nil
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// A CallExpr represents a function call expression: Fn(Args).
// Each argument is a plain expression, a BinaryExpr of the form
// name=value (keyword argument), or a UnaryExpr of the form *args
// or **kwargs.
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	start, _ = x.Fn.Span()
	return start, x.Rparen.add(")")
}

// A DotExpr represents a field or method selector: X.Name.
// Name is not a variable reference; only X is subject to renaming.
type DotExpr struct {
	X       Expr
	Dot     Position
	NamePos Position
	Name    *Ident
}

func (x *DotExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Name.Span()
	return
}

// A Comprehension represents a list, set, dict, or generator
// comprehension: [Body for ... if ...] and friends.
// Brack is LBRACK, LBRACE, or LPAREN; a brace comprehension is a
// dict comprehension if Body is a *DictEntry and a set comprehension
// otherwise.
type Comprehension struct {
	Brack   Token
	Lbrack  Position
	Body    Expr
	Clauses []Node // = *ForClause | *IfClause
	Rbrack  Position
}

func (x *Comprehension) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// A ForClause represents a for clause in a comprehension: for Vars in X.
type ForClause struct {
	For  Position
	Vars Expr // name, or tuple of names
	In   Position
	X    Expr
}

func (x *ForClause) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.For, end
}

// An IfClause represents an if clause in a comprehension: if Cond.
type IfClause struct {
	If   Position
	Cond Expr
}

func (x *IfClause) Span() (start, end Position) {
	_, end = x.Cond.Span()
	return x.If, end
}

// A DictExpr represents a dictionary literal: { List }.
type DictExpr struct {
	Lbrace Position
	List   []Expr // all *DictEntrys
	Rbrace Position
}

func (x *DictExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A DictEntry represents a dictionary entry: Key: Value.
// Used only within a DictExpr or a dict Comprehension.
type DictEntry struct {
	Key   Expr
	Colon Position
	Value Expr
}

func (x *DictEntry) Span() (start, end Position) {
	start, _ = x.Key.Span()
	_, end = x.Value.Span()
	return start, end
}

// A SetExpr represents a set literal: { List }.
type SetExpr struct {
	Lbrace Position
	List   []Expr
	Rbrace Position
}

func (x *SetExpr) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A LambdaExpr represents an inline function abstraction:
// lambda params: body.
// Body holds a single synthesized ReturnStmt.
type LambdaExpr struct {
	Lambda Position
	Function
}

func (x *LambdaExpr) Span() (start, end Position) {
	_, end = x.Function.Body[len(x.Body)-1].Span()
	return x.Lambda, end
}

// A ListExpr represents a list literal: [ List ].
type ListExpr struct {
	Lbrack Position
	List   []Expr
	Rbrack Position
}

func (x *ListExpr) Span() (start, end Position) {
	return x.Lbrack, x.Rbrack.add("]")
}

// CondExpr represents the conditional: X if COND else ELSE.
type CondExpr struct {
	If      Position
	Cond    Expr
	True    Expr
	ElsePos Position
	False   Expr
}

func (x *CondExpr) Span() (start, end Position) {
	start, _ = x.True.Span()
	_, end = x.False.Span()
	return start, end
}

// A TupleExpr represents a tuple literal: (List).
type TupleExpr struct {
	Lparen Position // optional (e.g. in x, y = 0, 1), but required if List is empty
	List   []Expr
	Rparen Position
}

func (x *TupleExpr) Span() (start, end Position) {
	if x.Lparen.IsValid() {
		return x.Lparen, x.Rparen
	} else {
		return Start(x.List[0]), End(x.List[len(x.List)-1])
	}
}

// A UnaryExpr represents a unary expression: Op X.
//
// As in Python, the parser uses UnaryExpr to represent *args and
// **kwargs in function definitions and calls, in which case Op is
// STAR or STARSTAR; a bare * separator in a parameter list is a
// UnaryExpr with nil X.
type UnaryExpr struct {
	OpPos Position
	Op    Token
	X     Expr // may be nil (e.g. "def f(*, x)")
}

func (x *UnaryExpr) Span() (start, end Position) {
	if x.X != nil {
		_, end = x.X.Span()
	} else {
		end = x.OpPos.add(x.Op.String())
	}
	return x.OpPos, end
}

// A BinaryExpr represents a binary expression: X Op Y.
//
// As in Python, the parser uses BinaryExpr to represent the keyword
// arguments and parameter defaults name=value, in which case Op is EQ.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}

// A SliceExpr represents a slice or substring expression: X[Lo:Hi:Step].
type SliceExpr struct {
	X            Expr
	Lbrack       Position
	Lo, Hi, Step Expr // all optional
	Rbrack       Position
}

func (x *SliceExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Rbrack
}

// An IndexExpr represents an index expression: X[Y].
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Y      Expr
	Rbrack Position
}

func (x *IndexExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Rbrack
}
