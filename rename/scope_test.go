// Copyright 2023 The Veil Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rename

import "testing"

func TestScopeBindIdempotent(t *testing.T) {
	var s scopeStack
	s.push()
	mints := 0
	mint := func() string { mints++; return "alias1" }

	if got := s.bind("x", mint); got != "alias1" {
		t.Errorf("bind = %q, want alias1", got)
	}
	if got := s.bind("x", mint); got != "alias1" {
		t.Errorf("rebind = %q, want alias1", got)
	}
	if mints != 1 {
		t.Errorf("mint called %d times, want 1", mints)
	}
}

func TestScopeLookupInnermost(t *testing.T) {
	var s scopeStack
	s.push()
	s.bind("x", func() string { return "outer" })
	s.push()
	s.bind("x", func() string { return "inner" })

	if alias, ok := s.lookup("x"); !ok || alias != "inner" {
		t.Errorf("lookup in inner frame = %q, %v, want inner, true", alias, ok)
	}
	s.pop()
	if alias, ok := s.lookup("x"); !ok || alias != "outer" {
		t.Errorf("lookup after pop = %q, %v, want outer, true", alias, ok)
	}
	if _, ok := s.lookup("y"); ok {
		t.Error("lookup of unbound name succeeded")
	}
}

func TestScopeSet(t *testing.T) {
	var s scopeStack
	s.push()
	s.bind("x", func() string { return "minted" })
	s.set("x", "redirected")

	if alias, _ := s.lookup("x"); alias != "redirected" {
		t.Errorf("lookup after set = %q, want redirected", alias)
	}
	// set then bind reuses the redirection
	if got := s.bind("x", func() string { return "fresh" }); got != "redirected" {
		t.Errorf("bind after set = %q, want redirected", got)
	}
}

func TestScopeBoundAnywhere(t *testing.T) {
	var s scopeStack
	s.push()
	s.bind("x", func() string { return "x" })
	s.push()

	if !s.boundAnywhere("x") {
		t.Error("x not reported bound from inner frame")
	}
	if s.boundAnywhere("y") {
		t.Error("y reported bound")
	}
	s.pop()
	s.pop()
	if s.boundAnywhere("x") {
		t.Error("x reported bound after its frame was popped")
	}
}

func TestScopeDepth(t *testing.T) {
	var s scopeStack
	for i := 0; i < 3; i++ {
		if s.depth() != i {
			t.Fatalf("depth = %d, want %d", s.depth(), i)
		}
		s.push()
	}
	s.pop()
	if s.depth() != 2 {
		t.Errorf("depth after pop = %d, want 2", s.depth())
	}
}
