// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rename rewrites the identifiers of a veil syntax tree.
//
// The renamer makes a single depth-first pass over the tree, pushing a
// scope frame for each scope-introducing construct, minting an opaque
// alias for each binding it encounters, and rewriting every load of a
// bound name to the alias visible in the scope chain. Names that never
// resolve to a binding (builtins, injected globals) pass through
// verbatim; they are not errors.
//
// Under the Full policy every user binding is renamed. Under the
// Selective policy only aliases minted for imports are propagated:
// ordinary bindings are tracked, so that a local binding shadows the
// import alias, but are never themselves renamed.
package rename // import "github.com/veil-lang/veil/rename"

import (
	"fmt"
	"log"
	"strings"

	"github.com/veil-lang/veil/syntax"
)

// A Policy selects which bindings the renamer rewrites.
type Policy int

const (
	// Full renames every user-introduced binding and all its uses.
	Full Policy = iota

	// Selective renames only auto-generated import aliases, leaving
	// all other identifiers verbatim unless an import alias applies.
	Selective
)

// A LoopScoping value selects how loop and with bodies scope their
// bindings. The language itself leaks loop bindings into the
// enclosing scope; the isolated mode is a deliberate
// over-approximation that confines them to the body.
type LoopScoping int

const (
	IsolatedLoopScope LoopScoping = iota
	LeakingLoopScope
)

// DefaultMaxDepth is the scope nesting limit applied when
// Options.MaxDepth is zero.
const DefaultMaxDepth = 200

// Options configure a renaming traversal.
// The zero value is a full rename with random aliases, seed 0,
// isolated loop scoping, and the default nesting limit.
type Options struct {
	Policy      Policy
	Seed        int64 // alias generator seed; equal seeds give equal output
	AliasStyle  AliasStyle
	LoopScoping LoopScoping
	MaxDepth    int // scope nesting limit; 0 means DefaultMaxDepth
}

// An ErrorKind discriminates renaming failures.
type ErrorKind int

const (
	// MalformedTarget indicates an assignment or loop target that
	// cannot be decomposed into simple names.
	MalformedTarget ErrorKind = iota

	// NestingLimitExceeded indicates that scope nesting exceeded
	// Options.MaxDepth.
	NestingLimitExceeded

	// AliasExhaustion indicates that the alias generator failed to
	// mint a fresh name within its attempt bound.
	AliasExhaustion
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedTarget:
		return "malformed target"
	case NestingLimitExceeded:
		return "nesting limit exceeded"
	case AliasExhaustion:
		return "alias exhaustion"
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// An Error describes a renaming failure and its position.
type Error struct {
	Pos  syntax.Position
	Kind ErrorKind
	Msg  string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An ErrorList is a non-empty list of renaming errors.
type ErrorList []Error

func (e ErrorList) Error() string { return e[0].Error() }

// File rewrites the identifiers of file in place, per opts.
// opts may be nil, which is equivalent to new(Options).
//
// On error the tree may have been partially rewritten and must be
// discarded; there is no partial-success mode. Malformed targets are
// accumulated into an ErrorList so that one traversal reports them
// all; nesting and alias-exhaustion failures abort immediately with a
// single Error.
func File(file *syntax.File, opts *Options) (err error) {
	if opts == nil {
		opts = new(Options)
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	r := &renamer{
		opts:     opts,
		maxDepth: maxDepth,
		gen:      newAliasGen(opts.AliasStyle, opts.Seed),
		redirect: make(map[string]string),
	}

	defer func() {
		switch e := recover().(type) {
		case nil:
			// no panic
		case Error:
			err = e
		default:
			panic(e)
		}
	}()

	pos := syntax.MakePosition(&file.Path, 1, 1)
	r.push(pos) // file scope
	r.stmts(file.Stmts)
	r.scopes.pop()

	if len(r.errors) > 0 {
		return r.errors
	}
	return nil
}

// Expr rewrites the identifiers of a single expression in place.
// It is equivalent to renaming a one-statement file.
func Expr(expr syntax.Expr, opts *Options) error {
	start, _ := expr.Span()
	path := start.Filename()
	f := &syntax.File{Path: path, Stmts: []syntax.Stmt{&syntax.ExprStmt{X: expr}}}
	return File(f, opts)
}

type renamer struct {
	opts     *Options
	maxDepth int
	scopes   scopeStack
	gen      *aliasGen
	redirect map[string]string // original import name to alias, scope-independent
	errors   ErrorList
}

// errorf records a malformed-target error and continues the traversal.
func (r *renamer) errorf(pos syntax.Position, format string, args ...interface{}) {
	r.errors = append(r.errors, Error{
		Pos:  pos,
		Kind: MalformedTarget,
		Msg:  fmt.Sprintf(format, args...),
	})
}

// abort reports a fatal error by panicking; File recovers it.
func (r *renamer) abort(pos syntax.Position, kind ErrorKind, format string, args ...interface{}) {
	panic(Error{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (r *renamer) push(pos syntax.Position) {
	if r.scopes.depth() >= r.maxDepth {
		r.abort(pos, NestingLimitExceeded, "scope nesting exceeds limit (%d)", r.maxDepth)
	}
	r.scopes.push()
}

func (r *renamer) pop() { r.scopes.pop() }

// mint asks the alias generator for a fresh name.
func (r *renamer) mint(pos syntax.Position, hint string) string {
	alias, ok := r.gen.next(hint)
	if !ok {
		r.abort(pos, AliasExhaustion, "cannot mint fresh alias for %q after %d attempts", hint, maxMintAttempts)
	}
	return alias
}

// bind introduces a binding for id in the innermost frame.
// Under the full policy, id is rewritten to its alias; binding is
// idempotent, so rebinding a name in the same frame reuses the alias.
func (r *renamer) bind(id *syntax.Ident) {
	if r.opts.Policy == Selective {
		// Track the binding for shadow checks; keep the name.
		r.scopes.bind(id.Name, func() string { return id.Name })
		return
	}
	id.Name = r.scopes.bind(id.Name, func() string { return r.mint(id.NamePos, id.Name) })
}

// use rewrites a load of id if its name resolves to an alias.
// Unresolved loads pass through verbatim.
func (r *renamer) use(id *syntax.Ident) {
	if r.opts.Policy == Selective {
		if alias, ok := r.redirect[id.Name]; ok && !r.scopes.boundAnywhere(id.Name) {
			id.Name = alias
		}
		return
	}
	if alias, ok := r.scopes.lookup(id.Name); ok {
		id.Name = alias
	}
}

func (r *renamer) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

func (r *renamer) stmt(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.ExprStmt:
		r.expr(stmt.X)

	case *syntax.BranchStmt:
		// nothing to do

	case *syntax.ReturnStmt:
		if stmt.Result != nil {
			r.expr(stmt.Result)
		}

	case *syntax.AssignStmt:
		// Bind targets before visiting the value, so that a
		// self-referential assignment (x = x + 1) resolves both
		// occurrences to the same alias.
		for _, target := range stmt.Targets {
			r.bindTarget(target)
		}
		if stmt.Ann != nil {
			r.expr(stmt.Ann)
		}
		if stmt.RHS != nil {
			r.expr(stmt.RHS)
		}

	case *syntax.DelStmt:
		// Simple names in a del are neither loads nor new bindings;
		// they pass through. Attribute and index targets contain
		// loads of their base expression.
		for _, x := range stmt.List {
			if _, ok := x.(*syntax.Ident); !ok {
				r.expr(x)
			}
		}

	case *syntax.GlobalStmt:
		// Redirect each name to its known alias, if any, and make
		// the redirection visible to the rest of this frame.
		for _, id := range stmt.Names {
			original := id.Name
			if alias, ok := r.redirect[original]; ok {
				id.Name = alias
			} else if alias, ok := r.scopes.lookup(original); ok {
				id.Name = alias
			} else {
				continue
			}
			r.scopes.set(original, id.Name)
		}

	case *syntax.ImportStmt:
		for _, name := range stmt.Names {
			r.importName(name)
		}

	case *syntax.FromImportStmt:
		for _, name := range stmt.Names {
			r.importName(name)
		}

	case *syntax.IfStmt:
		r.expr(stmt.Cond)
		r.stmts(stmt.True)
		r.stmts(stmt.False)

	case *syntax.ForStmt:
		// The iterable is visited before the target is bound, so it
		// cannot capture its own loop variable. The loop variable
		// itself belongs to the enclosing frame; the isolated frame
		// confines only bindings made inside the body.
		r.expr(stmt.X)
		r.bindTarget(stmt.Vars)
		isolated := r.opts.LoopScoping == IsolatedLoopScope
		if isolated {
			r.push(stmt.For)
		}
		r.stmts(stmt.Body)
		r.stmts(stmt.Else)
		if isolated {
			r.pop()
		}

	case *syntax.WhileStmt:
		r.expr(stmt.Cond)
		isolated := r.opts.LoopScoping == IsolatedLoopScope
		if isolated {
			r.push(stmt.While)
		}
		r.stmts(stmt.Body)
		r.stmts(stmt.Else)
		if isolated {
			r.pop()
		}

	case *syntax.WithStmt:
		// As with for, each "as" variable binds in the enclosing
		// frame, before the body frame is pushed.
		for _, item := range stmt.Items {
			r.expr(item.X)
			if item.Vars != nil {
				r.bindTarget(item.Vars)
			}
		}
		isolated := r.opts.LoopScoping == IsolatedLoopScope
		if isolated {
			r.push(stmt.With)
		}
		r.stmts(stmt.Body)
		if isolated {
			r.pop()
		}

	case *syntax.DefStmt:
		r.function(stmt.Def, stmt.Decorators, stmt.Name, stmt.Returns, &stmt.Function)

	case *syntax.ClassStmt:
		// Decorators and bases are resolved in the enclosing scope,
		// before the class name is bound.
		for _, d := range stmt.Decorators {
			r.expr(d)
		}
		for _, base := range stmt.Bases {
			r.expr(base)
		}
		r.bind(stmt.Name)
		r.push(stmt.Class)
		r.stmts(stmt.Body)
		r.pop()

	default:
		log.Panicf("unexpected stmt %T", stmt)
	}
}

// function renames a def statement or, with nil name and decorators,
// a lambda. Decorators, default values, and the return annotation are
// resolved in the enclosing scope before the body frame is pushed,
// matching default-argument evaluation semantics.
func (r *renamer) function(pos syntax.Position, decorators []syntax.Expr, name *syntax.Ident, returns syntax.Expr, function *syntax.Function) {
	for _, d := range decorators {
		r.expr(d)
	}
	for _, param := range function.Params {
		if b, ok := param.(*syntax.BinaryExpr); ok && b.Op == syntax.EQ {
			r.expr(b.Y) // default value
		}
	}
	if returns != nil {
		r.expr(returns)
	}
	if name != nil {
		r.bind(name)
	}

	r.push(pos)
	for _, param := range function.Params {
		switch param := param.(type) {
		case *syntax.Ident:
			r.bind(param)
		case *syntax.BinaryExpr: // name=default
			if id, ok := param.X.(*syntax.Ident); ok {
				r.bind(id)
			}
		case *syntax.UnaryExpr: // *args, **kwargs, or bare *
			if id, ok := param.X.(*syntax.Ident); ok {
				r.bind(id)
			}
		}
	}
	r.stmts(function.Body)
	r.pop()
}

// importName binds one clause of an import statement.
//
// The name a clause introduces is its explicit alias if present,
// otherwise the first component of the (possibly dotted) module name,
// for which an alias is minted and written back into the clause.
// Under the full policy that name is renamed like any other binding.
// A minted alias is registered in the redirect table without a scope
// binding for the original name, so that loads of the original
// redirect unless a user binding shadows them. An explicit alias
// under the selective policy is the user's own choice of name and
// registers nothing.
func (r *renamer) importName(name *syntax.ImportName) {
	// A dotted import introduces its first component.
	bound := name.Name
	if i := strings.IndexByte(bound, '.'); i >= 0 {
		bound = bound[:i]
	}

	if r.opts.Policy == Selective {
		if name.As != nil {
			return
		}
		alias := r.mint(name.NamePos, bound)
		name.As = &syntax.Ident{NamePos: name.NamePos, Name: alias}
		r.redirect[bound] = alias
		return
	}

	if name.As != nil {
		original := name.As.Name
		r.bind(name.As)
		r.redirect[original] = name.As.Name
		return
	}
	alias := r.scopes.bind(bound, func() string { return r.mint(name.NamePos, bound) })
	name.As = &syntax.Ident{NamePos: name.NamePos, Name: alias}
	r.redirect[bound] = alias
}

// bindTarget decomposes an assignment or loop target into simple
// names and binds each one. Attribute and index targets are not new
// bindings; their base expressions are loads.
func (r *renamer) bindTarget(target syntax.Expr) {
	switch target := target.(type) {
	case *syntax.Ident:
		r.bind(target)
	case *syntax.TupleExpr:
		for _, elem := range target.List {
			r.bindTarget(elem)
		}
	case *syntax.ListExpr:
		for _, elem := range target.List {
			r.bindTarget(elem)
		}
	case *syntax.ParenExpr:
		r.bindTarget(target.X)
	case *syntax.UnaryExpr:
		// starred target: *rest
		if target.Op == syntax.STAR && target.X != nil {
			r.bindTarget(target.X)
			return
		}
		start, _ := target.Span()
		r.errorf(start, "cannot bind %s expression as target", target.Op)
	case *syntax.DotExpr, *syntax.IndexExpr, *syntax.SliceExpr:
		r.expr(target)
	default:
		start, _ := target.Span()
		r.errorf(start, "cannot bind %s as target", nodeName(target))
	}
}

func (r *renamer) expr(expr syntax.Expr) {
	switch expr := expr.(type) {
	case *syntax.Ident:
		r.use(expr)

	case *syntax.Literal:
		// nothing to do

	case *syntax.ParenExpr:
		r.expr(expr.X)

	case *syntax.UnaryExpr:
		if expr.X != nil {
			r.expr(expr.X)
		}

	case *syntax.BinaryExpr:
		if expr.Op == syntax.EQ {
			// keyword argument: the name belongs to the callee
			r.expr(expr.Y)
			return
		}
		r.expr(expr.X)
		r.expr(expr.Y)

	case *syntax.DotExpr:
		r.expr(expr.X) // attribute name is not a binding

	case *syntax.IndexExpr:
		r.expr(expr.X)
		r.expr(expr.Y)

	case *syntax.SliceExpr:
		r.expr(expr.X)
		if expr.Lo != nil {
			r.expr(expr.Lo)
		}
		if expr.Hi != nil {
			r.expr(expr.Hi)
		}
		if expr.Step != nil {
			r.expr(expr.Step)
		}

	case *syntax.CallExpr:
		r.expr(expr.Fn)
		for _, arg := range expr.Args {
			r.expr(arg)
		}

	case *syntax.ListExpr:
		for _, x := range expr.List {
			r.expr(x)
		}

	case *syntax.SetExpr:
		for _, x := range expr.List {
			r.expr(x)
		}

	case *syntax.TupleExpr:
		for _, x := range expr.List {
			r.expr(x)
		}

	case *syntax.DictExpr:
		for _, entry := range expr.List {
			entry := entry.(*syntax.DictEntry)
			r.expr(entry.Key)
			r.expr(entry.Value)
		}

	case *syntax.DictEntry:
		r.expr(expr.Key)
		r.expr(expr.Value)

	case *syntax.CondExpr:
		r.expr(expr.Cond)
		r.expr(expr.True)
		r.expr(expr.False)

	case *syntax.LambdaExpr:
		r.function(expr.Lambda, nil, nil, nil, &expr.Function)

	case *syntax.Comprehension:
		r.comprehension(expr)

	default:
		log.Panicf("unexpected expr %T", expr)
	}
}

// comprehension renames a list, set, dict, or generator comprehension.
// The whole comprehension gets one frame; the first clause's iterable
// is resolved in the enclosing scope before any target is bound.
func (r *renamer) comprehension(comp *syntax.Comprehension) {
	first := comp.Clauses[0].(*syntax.ForClause)
	r.expr(first.X)
	r.push(comp.Lbrack)
	r.bindTarget(first.Vars)
	for _, clause := range comp.Clauses[1:] {
		switch clause := clause.(type) {
		case *syntax.ForClause:
			r.expr(clause.X)
			r.bindTarget(clause.Vars)
		case *syntax.IfClause:
			r.expr(clause.Cond)
		}
	}
	r.expr(comp.Body)
	r.pop()
}

func nodeName(n syntax.Node) string {
	switch n.(type) {
	case *syntax.Literal:
		return "literal"
	case *syntax.CallExpr:
		return "call result"
	case *syntax.Comprehension:
		return "comprehension"
	case *syntax.LambdaExpr:
		return "lambda"
	case *syntax.CondExpr:
		return "conditional expression"
	case *syntax.BinaryExpr:
		return "operator"
	}
	return fmt.Sprintf("%T", n)
}
