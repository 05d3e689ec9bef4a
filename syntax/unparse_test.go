// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"testing"

	"github.com/veil-lang/veil/syntax"
)

// unparseTests maps source to its canonical printed form.
// The canonical form must itself print unchanged (see TestUnparseStable).
var unparseTests = []struct {
	input, want string
}{
	{"x=1", "x = 1\n"},
	{"x   :  int", "x: int\n"},
	{"x : int = 3", "x: int = 3\n"},
	{"x = y = 1", "x = y = 1\n"},
	{"x //= 2", "x //= 2\n"},
	{"del x, y[0]", "del x, y[0]\n"},
	{"global  x ,  y", "global x, y\n"},
	{"nonlocal z", "nonlocal z\n"},
	{"import a.b as c, d", "import a.b as c, d\n"},
	{"from m.n import a as b, c", "from m.n import a as b, c\n"},
	{"return", "return\n"},
	{"return 1, 2", "return 1, 2\n"},

	{"if a: pass", "if a:\n    pass\n"},
	{"if a: x = 1\nelif b: x = 2\nelse: x = 3",
		"if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"},
	{"for x, y in z: break\nelse: pass",
		"for x, y in z:\n    break\nelse:\n    pass\n"},
	{"while cond: continue", "while cond:\n    continue\n"},
	{"with open(f) as g, h: pass", "with open(f) as g, h:\n    pass\n"},
	{"def f(a, b=1, *args, **kwargs) -> int: return a",
		"def f(a, b=1, *args, **kwargs) -> int:\n    return a\n"},
	{"@memo\n@app.route(\"/\")\ndef f(): pass",
		"@memo\n@app.route(\"/\")\ndef f():\n    pass\n"},
	{"class C(Base, mixin=M): pass", "class C(Base, mixin=M):\n    pass\n"},
	{"def f():\n 'doc'\n pass", "def f():\n    'doc'\n    pass\n"},

	// minimal parentheses
	{"x+y*z", "x + y * z\n"},
	{"(x+y)*z", "(x + y) * z\n"},
	{"2**3**2", "2 ** 3 ** 2\n"},
	{"(2**3)**2", "(2 ** 3) ** 2\n"},
	{"-2 ** -3", "-2 ** -3\n"},
	{"a if b else c", "a if b else c\n"},
	{"f(a, x=y, *args, **kwargs)", "f(a, x=y, *args, **kwargs)\n"},
	{"lambda x, y=1: x", "lambda x, y=1: x\n"},
	{"lambda: 0", "lambda: 0\n"},
	{"not a in b", "not a in b\n"},
	{"a not in b", "a not in b\n"},
	{"a is not b", "a is not b\n"},
	{"x[1:2:3]", "x[1:2:3]\n"},
	{"x[:]", "x[:]\n"},
	{"x[lo:]", "x[lo:]\n"},
	{"~a | b & c", "~a | b & c\n"},
	{"{1: 'a', 2: 'b'}", "{1: 'a', 2: 'b'}\n"},
	{"{x: y for x, y in z}", "{x: y for x, y in z}\n"},
	{"[x for x in y if x]", "[x for x in y if x]\n"},
	{"(x for x in y)", "(x for x in y)\n"},
	{"{x for x in y}", "{x for x in y}\n"},
	{"(1,)", "(1,)\n"},
	{"()", "()\n"},
	{"x.f().g[i]", "x.f().g[i]\n"},
}

func TestUnparse(t *testing.T) {
	for _, test := range unparseTests {
		f, err := syntax.Parse("foo.vl", test.input, 0)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, err)
			continue
		}
		if got := syntax.UnparseFile(f); got != test.want {
			t.Errorf("unparse `%s` = %q, want %q", test.input, got, test.want)
		}
	}
}

// TestUnparseStable checks that printing is a fixed point: the
// canonical form parses to a tree that prints as itself.
func TestUnparseStable(t *testing.T) {
	for _, test := range unparseTests {
		f, err := syntax.Parse("foo.vl", test.want, 0)
		if err != nil {
			t.Errorf("reparse %q failed: %v", test.want, err)
			continue
		}
		if got := syntax.UnparseFile(f); got != test.want {
			t.Errorf("unparse not stable: %q printed as %q", test.want, got)
		}
	}
}

// TestUnparseRoundTrip checks that printing preserves tree structure.
func TestUnparseRoundTrip(t *testing.T) {
	for _, test := range unparseTests {
		f1, err := syntax.Parse("foo.vl", test.input, 0)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, err)
			continue
		}
		f2, err := syntax.Parse("foo.vl", syntax.UnparseFile(f1), 0)
		if err != nil {
			t.Errorf("reparse of `%s` failed: %v", test.input, err)
			continue
		}
		for i := range f1.Stmts {
			if w, g := treeString(f1.Stmts[i]), treeString(f2.Stmts[i]); w != g {
				t.Errorf("round trip of `%s` changed tree: %s -> %s", test.input, w, g)
			}
		}
	}
}

func TestUnparseExpr(t *testing.T) {
	e, err := syntax.ParseExpr("foo.vl", "f(x) + 1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := syntax.Unparse(e), "f(x) + 1"; got != want {
		t.Errorf("Unparse = %q, want %q", got, want)
	}
}
